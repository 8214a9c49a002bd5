package util

import (
	"errors"
	"strings"

	"github.com/spaolacci/murmur3"
)

// bernsteinSeed is the initial accumulator of the djb2 hash.
const bernsteinSeed uint32 = 5381

var ErrUnknownHasher = errors.New("unknown hash function")

// HashFunc maps a key to a 32-bit digest. Implementations must be pure.
type HashFunc func(key []byte) uint32

// Bernstein is the classic djb2 hash: h = h*33 + b for every byte, starting at 5381.
// The empty key hashes to the seed.
func Bernstein(key []byte) uint32 {
	h := bernsteinSeed
	for _, b := range key {
		h = h<<5 + h + uint32(b)
	}
	return h
}

// Murmur3 returns the 32-bit murmur3 digest of key with a zero seed.
// Unlike the runtime hash it is stable across processes.
func Murmur3(key []byte) uint32 {
	return murmur3.Sum32(key)
}

// ParseHasher returns the hash function registered under name.
// The empty name selects Bernstein.
func ParseHasher(name string) (HashFunc, error) {
	switch strings.ToLower(name) {
	case "", "bernstein", "djb2":
		return Bernstein, nil
	case "murmur3":
		return Murmur3, nil
	}
	return nil, ErrUnknownHasher
}
