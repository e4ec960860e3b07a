package data

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
)

// Directory layout of the MSRC-v2 database.
const (
	ImagesDir        = "Images"
	GroundTruthDir   = "GroundTruth"
	HighQualityGTDir = "SegmentationsGTHighQuality"
)

// LoadOptions controls LoadMSRC.
type LoadOptions struct {
	// Subset lists image file names relative to the Images directory. Empty means all.
	Subset []string
	// PreferHQ uses the high quality segmentation when one exists.
	PreferHQ bool
	// OnLoaded is called after each image is loaded.
	OnLoaded func(name string)
}

// GroundTruthPath maps Images/<base>.<ext> to GroundTruth/<base>_GT.<ext>.
func GroundTruthPath(dir, imageName string) string {
	ext := filepath.Ext(imageName)
	base := strings.TrimSuffix(imageName, ext)
	return filepath.Join(dir, GroundTruthDir, base+"_GT"+ext)
}

// HighQualityPath maps Images/<base>.<ext> to SegmentationsGTHighQuality/<base>_HQGT.<ext>.
func HighQualityPath(dir, imageName string) string {
	ext := filepath.Ext(imageName)
	base := strings.TrimSuffix(imageName, ext)
	return filepath.Join(dir, HighQualityGTDir, base+"_HQGT"+ext)
}

// ListImages returns the .bmp and .png file names under <dir>/Images, sorted.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, ImagesDir))
	if err != nil {
		return nil, errors.Wrapf(err, "listing images of %v", dir)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".bmp", ".png":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadMSRC loads the ground truth of every selected image of an MSRC style
// database through cache.
func LoadMSRC(dir string, cache *GridCache, opts LoadOptions) ([]*LabeledImage, error) {
	names := opts.Subset
	if len(names) == 0 {
		var err error
		names, err = ListImages(dir)
		if err != nil {
			return nil, err
		}
	}
	images := make([]*LabeledImage, 0, len(names))
	for _, name := range names {
		name = strings.TrimPrefix(filepath.ToSlash(name), ImagesDir+"/")
		gtPath := GroundTruthPath(dir, name)
		if opts.PreferHQ {
			hqPath := HighQualityPath(dir, name)
			if _, err := os.Stat(hqPath); err == nil {
				gtPath = hqPath
			}
		}
		if logging.Verbose {
			logging.Info("Loading gt image %v\n", gtPath)
		}
		grid, err := cache.Get(gtPath)
		if err != nil {
			return nil, err
		}
		images = append(images, &LabeledImage{
			Name:            name,
			ImagePath:       filepath.Join(dir, ImagesDir, name),
			GroundTruthPath: gtPath,
			LabelGrid:       grid,
		})
		if opts.OnLoaded != nil {
			opts.OnLoaded(name)
		}
	}
	if len(images) == 0 {
		return nil, errors.Errorf("zero images loaded from %v", dir)
	}
	return images, nil
}
