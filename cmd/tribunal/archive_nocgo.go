//go:build !cgo

package main

import (
	"log"

	"github.com/dusk-indust/tribunal/internal/archive"
)

// openArchive falls back to the in-memory archive when the binary was built
// without CGO. Runs are still auditable within the process but do not
// survive it.
func openArchive(path string) (archive.Store, error) {
	if path != "" {
		log.Printf("WARNING: built without cgo; archivePath %s ignored, using in-memory archive", path)
	}
	return archive.NewMemStore(), nil
}
