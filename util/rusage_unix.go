//go:build linux || darwin

package util

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// Usage is a snapshot of the resources consumed by this process so far.
type Usage struct {
	User   time.Duration // CPU time spent in user mode
	System time.Duration // CPU time spent in the kernel
	MaxRSS int64         // peak resident set size in bytes
}

// Sub returns the CPU time consumed between prev and u.
// MaxRSS is a high-water mark and is carried over from u unchanged.
func (u Usage) Sub(prev Usage) Usage {
	return Usage{
		User:   u.User - prev.User,
		System: u.System - prev.System,
		MaxRSS: u.MaxRSS,
	}
}

// ReadUsage reads the process resource usage through getrusage(2).
func ReadUsage() (Usage, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return Usage{}, err
	}
	maxRSS := int64(ru.Maxrss)
	// linux reports kilobytes, darwin bytes
	if runtime.GOOS == "linux" {
		maxRSS <<= 10
	}
	return Usage{
		User:   time.Duration(ru.Utime.Nano()),
		System: time.Duration(ru.Stime.Nano()),
		MaxRSS: maxRSS,
	}, nil
}
