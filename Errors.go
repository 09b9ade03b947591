/*
File Name:  Errors.go
*/

package core

import "errors"

// errAlreadyPeered is returned by PeerWithLink for a Link Identifier
// already registered with the broker.
var errAlreadyPeered = errors.New("core: link already peered with broker")
