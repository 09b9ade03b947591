/*
File Name:  Filters.go

Filters allow the caller to intercept broker events, mirroring the
teacher's Filter.go: a struct of optional hook functions, defaulted to
blanks by init() so the rest of the package can call them without a
nil check at every call site.
*/

package core

import (
	"github.com/narrowmesh/core/classifier"
	"github.com/narrowmesh/core/link"
)

// Filters contains all functions to install as hooks. Use nil for
// unused; init() fills in blank defaults. The functions are called
// sequentially and block execution; a slow filter should start its own
// goroutine.
type Filters struct {
	// LogError is called for any error or noteworthy drop decision.
	LogError func(function, format string, v ...interface{})

	// NewLink is called when the broker registers a previously unseen
	// Link Identifier, either through PeerWithLink or by auto-registering
	// a first-contact link in the dispatch worker.
	NewLink func(id link.ID)

	// ChokeDefense is called whenever the choke-defense litmus crosses
	// into a non-permit tier for a Request.
	ChokeDefense func(tier classifier.DefenseTier, litmus int)
}

func (f *Filters) init() {
	if f.LogError == nil {
		f.LogError = func(function, format string, v ...interface{}) {}
	}
	if f.NewLink == nil {
		f.NewLink = func(id link.ID) {}
	}
	if f.ChokeDefense == nil {
		f.ChokeDefense = func(tier classifier.DefenseTier, litmus int) {}
	}
}
