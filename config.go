package lockhash

import (
	"math"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"lockhash/ds"
	"lockhash/logutil"
	"lockhash/util"
)

const (
	defaultThreads   = 4
	defaultSize      = 25000
	defaultKeyLength = 16

	KeyGenRandom    = "random"
	KeyGenSnowflake = "snowflake"
)

var defaultKinds = []string{"base", "v1", "v2"}

type Config struct {
	Threads   int      `toml:"threads"`    // insert workers
	Size      int      `toml:"size"`       // keys inserted by every worker
	Capacity  int      `toml:"capacity"`   // buckets, default 4096
	Stripes   int      `toml:"stripes"`    // locks of the striped table, default 64
	Hash      string   `toml:"hash"`       // bernstein or murmur3
	KeyGen    string   `toml:"keygen"`     // random or snowflake
	KeyLength int      `toml:"key-length"` // length of random keys
	Readers   int      `toml:"readers"`    // goroutines calling Has during the insert phase
	SyncReads bool     `toml:"sync-reads"` // readers take the covering lock
	Kinds     []string `toml:"kinds"`      // tables to run, in order
	Seed      int64    `toml:"seed"`       // key generation seed; 0 picks one from the clock

	Log logutil.LogConfig `toml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Threads:   defaultThreads,
		Size:      defaultSize,
		Capacity:  ds.DefaultCapacity,
		Stripes:   ds.DefaultStripes,
		Hash:      "bernstein",
		KeyGen:    KeyGenRandom,
		KeyLength: defaultKeyLength,
		Kinds:     append([]string(nil), defaultKinds...),
		Log:       logutil.DefaultLogConfig(),
	}
}

// LoadConfig decodes a TOML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if !util.PathExist(path) {
		return cfg, errors.Wrapf(ErrConfigNotFound, "%s", path)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "decode config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Threads <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "threads must be positive, got %d", c.Threads)
	}
	if c.Size <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "size must be positive, got %d", c.Size)
	}
	if total := int64(c.Threads) * int64(c.Size); total > math.MaxUint32 {
		return errors.Wrapf(ErrInvalidConfig, "%d keys do not fit in uint32 values", total)
	}
	if c.Capacity <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "capacity must be positive, got %d", c.Capacity)
	}
	if c.Stripes <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "stripes must be positive, got %d", c.Stripes)
	}
	if c.Readers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "readers must not be negative, got %d", c.Readers)
	}
	if _, err := util.ParseHasher(c.Hash); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "hash %q", c.Hash)
	}
	switch c.KeyGen {
	case KeyGenRandom:
		if !keySpaceFits(c.KeyLength, c.Threads*c.Size) {
			return errors.Wrapf(ErrInvalidConfig, "%d random keys of length %d do not fit the key space", c.Threads*c.Size, c.KeyLength)
		}
	case KeyGenSnowflake:
	default:
		return errors.Wrapf(ErrInvalidConfig, "keygen %q", c.KeyGen)
	}
	if len(c.Kinds) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no kinds to run")
	}
	if _, err := c.kinds(); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	if err := c.Log.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log: %v", err)
	}
	return nil
}

func (c *Config) kinds() ([]ds.Kind, error) {
	kinds := make([]ds.Kind, 0, len(c.Kinds))
	for i, name := range c.Kinds {
		kind, err := ds.ParseKind(name)
		if err != nil {
			return nil, errors.Wrapf(err, "kinds[%d] %q", i, name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Options returns the table options of a validated config.
func (c *Config) Options() ds.Options {
	hasher, _ := util.ParseHasher(c.Hash)
	return ds.Options{
		Capacity:  c.Capacity,
		Stripes:   c.Stripes,
		Hasher:    hasher,
		SyncReads: c.SyncReads,
	}
}

// keySpaceFits reports whether len(alphabet)^length >= n.
func keySpaceFits(length, n int) bool {
	if length <= 0 {
		return false
	}
	space := 1
	for i := 0; i < length; i++ {
		space *= len(alphabet)
		if space >= n {
			return true
		}
	}
	return space >= n
}
