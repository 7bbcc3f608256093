//go:build cgo

package main

import (
	"context"
	"fmt"

	"github.com/dusk-indust/structmerge/internal/store"
)

// openStore opens the Kuzu database at dir, or an in-memory store when dir
// is empty.
func openStore(ctx context.Context, dir string) (store.Store, error) {
	if dir == "" {
		return store.NewMemStore(), nil
	}
	s, err := store.NewKuzuFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	if err := s.InitSchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return s, nil
}
