/*
File Name:  Request.go
*/

package packet

import "github.com/narrowmesh/core/hbfi"

// Request is the Narrow-Waist Request packet: a bare name.
type Request struct {
	HBFI hbfi.HBFI
}

// NewRequest returns a Request packet naming h.
func NewRequest(h hbfi.HBFI) Request {
	return Request{HBFI: h}
}
