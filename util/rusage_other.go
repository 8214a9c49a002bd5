//go:build !linux && !darwin

package util

import (
	"errors"
	"time"
)

type Usage struct {
	User   time.Duration
	System time.Duration
	MaxRSS int64
}

func (u Usage) Sub(prev Usage) Usage {
	return Usage{User: u.User - prev.User, System: u.System - prev.System, MaxRSS: u.MaxRSS}
}

// ReadUsage is not supported on this platform.
func ReadUsage() (Usage, error) {
	return Usage{}, errors.ErrUnsupported
}
