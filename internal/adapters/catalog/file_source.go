package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	apperrors "github.com/zatekoja/pharmacy-locator/pkg/errors"
)

// FileSource loads the catalog from a JSON file on disk
type FileSource struct {
	path string
}

// NewFileSource creates a new file catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and decodes the catalog file
func (s *FileSource) Load(ctx context.Context) ([]entities.Pharmacy, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("catalog file " + s.path)
		}
		return nil, apperrors.NewExternalError("failed to open catalog file", err)
	}
	defer f.Close()

	return Decode(ctx, f, s.path)
}
