// Package hashutil defines narrow hash.Hash extensions for the fixed-width
// CRC checksums used by the FLAC frame format.
package hashutil

import "hash"

// Hash8 is the common interface implemented by 8-bit hash.Hash algorithms.
type Hash8 interface {
	hash.Hash
	// Sum8 returns the current 8-bit hash.
	Sum8() uint8
}

// Hash16 is the common interface implemented by 16-bit hash.Hash algorithms.
type Hash16 interface {
	hash.Hash
	// Sum16 returns the current 16-bit hash.
	Sum16() uint16
}
