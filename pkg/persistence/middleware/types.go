// Package middleware wraps a ports.Archive to transform snapshots on their
// way in and out of storage. The engine's in-memory tree is never modified.
package middleware

import "github.com/aretw0/arbor/pkg/ports"

// Middleware allows wrapping an Archive to add behavior.
type Middleware func(ports.Archive) ports.Archive

// Chain applies mws around archive. The first middleware is the outermost.
func Chain(archive ports.Archive, mws ...Middleware) ports.Archive {
	for i := len(mws) - 1; i >= 0; i-- {
		archive = mws[i](archive)
	}
	return archive
}
