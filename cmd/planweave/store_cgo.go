//go:build cgo

package main

import "github.com/dusk-indust/planweave/internal/store"

// openStore returns a persistent KuzuDB-backed store when a path is
// configured, otherwise an in-memory store.
func openStore(path string) (store.Store, error) {
	if path == "" {
		return store.NewMemStore(), nil
	}
	return store.NewKuzuFileStore(path)
}
