//go:build !unix

package vstack

import "github.com/cockroachdb/errors"

const reserveSupported = false

func reserveRange(size uint64) (backing, error) {
	return nil, errors.New("vstack: no address-space reservation primitive on this platform")
}
