//go:build !cgo

package main

import (
	"context"
	"errors"

	"github.com/dusk-indust/structmerge/internal/store"
)

func openStore(_ context.Context, dir string) (store.Store, error) {
	if dir == "" {
		return store.NewMemStore(), nil
	}
	return nil, errors.New("--store needs a cgo build")
}
