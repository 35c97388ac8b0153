// Package scrub zeroes buffers that briefly held secret material.
//
// The core derivation pipeline holds a seed password, a per-site secret, and
// one or more random index draws in plain memory for the lifetime of a single
// call. Every such buffer is wiped with Bytes as soon as it is no longer
// needed, on every return path including errors and retries.
package scrub

import "unsafe"

// Bytes overwrites every byte of data with zero. It is safe to call on a nil
// or empty slice.
//
// Adapted from the word-at-a-time zeroing loop keyfish's kfstore package uses
// to wipe decrypted database buffers.
func Bytes(data []byte) {
	n := len(data)
	m := n &^ 7 // number of full 64-bit chunks in n
	i := 0
	for ; i < m; i += 8 {
		v := (*uint64)(unsafe.Pointer(&data[i]))
		*v = 0
	}
	for ; i < n; i++ {
		data[i] = 0
	}
}

// Array32 overwrites a fixed 32-byte secret, such as a salt or site secret.
func Array32(data *[32]byte) {
	Bytes(data[:])
}
