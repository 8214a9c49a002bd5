package util

import (
	"unsafe"
)

// ByteToString converts byte slice to a string without memory allocation.
// The result must not outlive b or observe later writes to it.
func ByteToString(b []byte) string {
	/* #nosec G103 */
	return unsafe.String(unsafe.SliceData(b), len(b))
}
