package data

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bgokden/labelsplit/catalogue"
	"github.com/disintegration/imaging"
	goburrow "github.com/goburrow/cache"
	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
)

// GridCache decodes label grids from disk and keeps recently used ones in memory.
// Grids handed out by the cache are shared and must be treated as read-only.
type GridCache struct {
	Catalogue *catalogue.Catalogue
	Provider  goburrow.LoadingCache
}

// NewGridCache creates a cache holding at most size decoded grids.
func NewGridCache(cat *catalogue.Catalogue, size int) *GridCache {
	gc := &GridCache{
		Catalogue: cat,
	}
	load := func(k goburrow.Key) (goburrow.Value, error) {
		return gc.decode(fmt.Sprintf("%s", k))
	}
	gc.Provider = goburrow.NewLoadingCache(load,
		goburrow.WithMaximumSize(size),
		goburrow.WithExpireAfterAccess(30*time.Minute),
	)
	return gc
}

// Get returns the label grid stored at path. CSV files are read as integer
// matrices, anything else is decoded as a colour-coded ground-truth image.
func (gc *GridCache) Get(path string) ([][]int, error) {
	value, err := gc.Provider.Get(path)
	if err != nil {
		return nil, err
	}
	grid, ok := value.([][]int)
	if !ok {
		return nil, errors.Errorf("label grid %v is corrupt", path)
	}
	return grid, nil
}

// Invalidate drops every cached grid.
func (gc *GridCache) Invalidate() {
	gc.Provider.InvalidateAll()
}

func (gc *GridCache) decode(path string) ([][]int, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadLabelGridFile(path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "decoding ground truth %q", path)
	}
	grid, invalid := gc.Catalogue.RGBToLabels(img)
	if invalid > 0 {
		logging.Info("WARN: there are %d pixels with invalid colours in image %s. Setting these to void.\n", invalid, path)
	}
	return grid, nil
}
