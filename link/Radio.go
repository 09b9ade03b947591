/*
File Name:  Radio.go

Radio is the framed-radio transport named in §6 and explicitly marked
out of scope there ("reply-to is a carrier frequency; out of scope
here"). The stub exists so ReplyToRF round-trips through the type
system like the other three variants, but Run always fails: no radio
hardware binding is implemented.
*/

package link

import (
	"context"
	"errors"
)

// ErrRadioUnsupported is returned by Radio.Run; framed-radio transport
// is out of scope for this core.
var ErrRadioUnsupported = errors.New("link: radio transport is not implemented")

// Radio is a placeholder Link for the ReplyToRF reply-to variant.
type Radio struct {
	cfg Config
}

// NewRadio builds a Radio placeholder Link for cfg.
func NewRadio(cfg Config) *Radio {
	return &Radio{cfg: cfg}
}

// ID implements Link.
func (r *Radio) ID() ID {
	return r.cfg.ID
}

// Run implements Link. It always returns ErrRadioUnsupported.
func (r *Radio) Run(ctx context.Context) error {
	return ErrRadioUnsupported
}
