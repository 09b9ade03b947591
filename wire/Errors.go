/*
File Name:  Errors.go
*/

package wire

import "errors"

var (
	// ErrSizeMismatch is returned when a wire buffer does not match an
	// expected fixed size.
	ErrSizeMismatch = errors.New("wire: size mismatch")

	// ErrAeadAuth is returned when link-layer AEAD fails to open.
	ErrAeadAuth = errors.New("wire: link AEAD authentication failed")
)
