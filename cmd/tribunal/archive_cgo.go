//go:build cgo

package main

import (
	"context"

	"github.com/dusk-indust/tribunal/internal/archive"
)

// defaultArchivePath is used when tribunal.yml sets no archivePath.
const defaultArchivePath = ".tribunal/archive"

// openArchive opens the durable KuzuDB-backed archive.
func openArchive(path string) (archive.Store, error) {
	if path == "" {
		path = defaultArchivePath
	}
	store, err := archive.NewKuzuFileStore(path)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
