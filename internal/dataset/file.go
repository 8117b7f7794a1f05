package dataset

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// FileLoader returns a LoadFunc reading the CSV at path.
func FileLoader(path string, opts domain.LoadOptions) LoadFunc {
	return func(ctx context.Context, maxRows int) (*domain.Table, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()

		t, err := domain.Load(bufio.NewReaderSize(f, 1<<16), maxRows, opts)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return t, nil
	}
}
