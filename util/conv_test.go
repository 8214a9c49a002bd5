package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteToString(t *testing.T) {
	assert.Equal(t, "", ByteToString(nil))
	assert.Equal(t, "", ByteToString([]byte{}))
	assert.Equal(t, "LockHash", ByteToString([]byte("LockHash")))
}
