//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/planweave/internal/store"
)

// openStore falls back to the in-memory store; the KuzuDB backend requires
// CGO.
func openStore(path string) (store.Store, error) {
	if path != "" {
		return nil, fmt.Errorf("persistent store %q requires a CGO build", path)
	}
	return store.NewMemStore(), nil
}
