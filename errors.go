package lockhash

import "github.com/cockroachdb/errors"

var (
	ErrInvalidConfig  = errors.New("invalid config")
	ErrConfigNotFound = errors.New("config file not found")
	ErrNotGenerated   = errors.New("keys have not been generated")
	ErrMissingEntries = errors.New("hash table lost entries")
)
