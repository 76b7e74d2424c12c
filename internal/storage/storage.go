package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"househunt/server/internal/models"
)

// Storage persists uploaded property images and serves them back to the
// thumbnail worker. Implementations must be safe for concurrent use.
type Storage interface {
	// Save writes a new object derived from the client-supplied filename,
	// making the stored name collision-free, and returns the image metadata
	// (stored filename + retrievable path) to denormalize onto the property.
	Save(ctx context.Context, filename string, r io.Reader) (models.PropertyImage, error)

	// Open returns a reader over a previously stored object.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)

	// Put writes an object under an exact name, overwriting any existing one.
	Put(ctx context.Context, filename string, r io.Reader) error
}

// ThumbName derives the stored name of the downsized copy of an image.
func ThumbName(filename string) string {
	ext := path.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_thumb.jpg"
}

// sanitizeFilename strips path separators from a client-supplied name so it
// cannot escape the storage prefix.
func sanitizeFilename(filename string) string {
	filename = path.Base(filename)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, filename)
}
