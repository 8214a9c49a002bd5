package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"lockhash"
	"lockhash/logutil"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashtable-tester",
		Short: "Compare the locking disciplines of a chained hash table",
		Long: "Insert threads*size random keys into every configured hash table kind, " +
			"time the insert phase and check that no entry was lost.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				return err
			}
			logutil.SetupLogger(cfg.Log)
			defer func() { _ = logutil.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			metrics, _ := cmd.Flags().GetBool("metrics")
			if err := run(ctx, cfg, metrics); err != nil {
				logutil.Error("hashtable tester failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	defaults := lockhash.DefaultConfig()
	flags := cmd.Flags()
	flags.String("config", "", "TOML config file, overridden by the other flags")
	flags.IntP("threads", "t", defaults.Threads, "number of insert workers")
	flags.IntP("size", "s", defaults.Size, "number of keys inserted by every worker")
	flags.Int("capacity", defaults.Capacity, "number of buckets")
	flags.Int("stripes", defaults.Stripes, "number of locks of the striped table")
	flags.String("hash", defaults.Hash, "hash function: bernstein or murmur3")
	flags.String("keygen", defaults.KeyGen, "key generator: random or snowflake")
	flags.Int("key-length", defaults.KeyLength, "length of random keys")
	flags.StringSlice("kinds", defaults.Kinds, "tables to run: base, v1, v2, striped")
	flags.Int("readers", defaults.Readers, "goroutines looking keys up during the insert phase")
	flags.Bool("sync-reads", defaults.SyncReads, "lookups take the covering lock in read mode")
	flags.Int64("seed", defaults.Seed, "key generation seed, 0 picks one from the clock")
	flags.String("log-level", defaults.Log.Level, "log level")
	flags.String("log-file", defaults.Log.Filename, "log file, stderr if empty")
	flags.Bool("metrics", false, "print the Prometheus metrics of the runs")
	return cmd
}

// loadConfig reads the config file if any, then applies the flags set on the command line.
func loadConfig(flags *pflag.FlagSet) (lockhash.Config, error) {
	cfg := lockhash.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = lockhash.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "threads":
			cfg.Threads, err = flags.GetInt(f.Name)
		case "size":
			cfg.Size, err = flags.GetInt(f.Name)
		case "capacity":
			cfg.Capacity, err = flags.GetInt(f.Name)
		case "stripes":
			cfg.Stripes, err = flags.GetInt(f.Name)
		case "hash":
			cfg.Hash, err = flags.GetString(f.Name)
		case "keygen":
			cfg.KeyGen, err = flags.GetString(f.Name)
		case "key-length":
			cfg.KeyLength, err = flags.GetInt(f.Name)
		case "kinds":
			cfg.Kinds, err = flags.GetStringSlice(f.Name)
		case "readers":
			cfg.Readers, err = flags.GetInt(f.Name)
		case "sync-reads":
			cfg.SyncReads, err = flags.GetBool(f.Name)
		case "seed":
			cfg.Seed, err = flags.GetInt64(f.Name)
		case "log-level":
			cfg.Log.Level, err = flags.GetString(f.Name)
		case "log-file":
			cfg.Log.Filename, err = flags.GetString(f.Name)
		}
	})
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg lockhash.Config, metrics bool) error {
	tester, err := lockhash.NewTester(cfg)
	if err != nil {
		return err
	}
	if _, err := tester.Generate(); err != nil {
		return err
	}
	results, err := tester.RunAll(ctx)
	if err != nil {
		return err
	}
	if err := tester.Report(os.Stdout, results); err != nil {
		return err
	}
	if metrics {
		if err := tester.WriteMetrics(os.Stdout); err != nil {
			return err
		}
	}
	return lockhash.CheckResults(results)
}
