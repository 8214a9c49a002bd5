package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBernstein(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
		want uint32
	}{
		{name: "empty", key: []byte{}, want: 5381},
		{name: "nil", key: nil, want: 5381},
		{name: "single byte", key: []byte("a"), want: 5381*33 + 'a'},
		{name: "two bytes", key: []byte("ab"), want: (5381*33+'a')*33 + 'b'},
		{name: "wraps", key: []byte("hello world, this key overflows 32 bits"), want: bernsteinRef("hello world, this key overflows 32 bits")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bernstein(tt.key))
		})
	}
}

// bernsteinRef computes djb2 in 64 bits and truncates at the end.
func bernsteinRef(s string) uint32 {
	h := uint64(5381)
	for i := 0; i < len(s); i++ {
		h = (h*33 + uint64(s[i])) & 0xffffffff
	}
	return uint32(h)
}

func TestBernstein_Deterministic(t *testing.T) {
	key := []byte("alice")
	first := Bernstein(key)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Bernstein(key))
	}
	assert.NotEqual(t, Bernstein([]byte("alice")), Bernstein([]byte("bob")))
}

// Under -race run with -gcflags=all=-d=checkptr=0: murmur3 v1.1.0 fails checkptr.
func TestMurmur3(t *testing.T) {
	assert.Equal(t, Murmur3([]byte("alice")), Murmur3([]byte("alice")))
	assert.Equal(t, uint32(0), Murmur3(nil))
	assert.NotEqual(t, Murmur3([]byte("alice")), Bernstein([]byte("alice")))
}

func TestParseHasher(t *testing.T) {
	tests := []struct {
		name    string
		want    HashFunc
		wantErr error
	}{
		{name: "", want: Bernstein},
		{name: "bernstein", want: Bernstein},
		{name: "DJB2", want: Bernstein},
		{name: "murmur3", want: Murmur3},
		{name: "fnv", wantErr: ErrUnknownHasher},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHasher(tt.name)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			assert.Nil(t, err)
			key := []byte("LockHash")
			assert.Equal(t, tt.want(key), got(key))
		})
	}
}

func TestReadUsage(t *testing.T) {
	before, err := ReadUsage()
	assert.Nil(t, err)
	sum := 0
	for i := 0; i < 1<<20; i++ {
		sum += i
	}
	after, err := ReadUsage()
	assert.Nil(t, err)
	delta := after.Sub(before)
	assert.GreaterOrEqual(t, int64(delta.User+delta.System), int64(0))
	assert.Greater(t, after.MaxRSS, int64(0))
	assert.Equal(t, after.MaxRSS, delta.MaxRSS)
}
