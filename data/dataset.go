package data

import (
	"sort"
	"time"

	"github.com/magneticio/go-common/logging"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// Dataset is a named, loaded image collection.
type Dataset struct {
	Name     string
	Path     string
	Images   []*LabeledImage
	LoadedAt time.Time
}

// Registry keeps loaded datasets in memory. Datasets that are not accessed
// for the retention period are evicted.
type Registry struct {
	DataList  *cache.Cache
	Retention time.Duration
}

// NewRegistry
func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	reg := &Registry{
		Retention: retention,
	}
	reg.DataList = cache.New(retention, 1*time.Minute)
	reg.DataList.OnEvicted(func(key string, value interface{}) {
		logging.Info("Dataset %v evicted\n", key)
	})
	return reg
}

// Add registers dts, replacing any dataset with the same name.
func (reg *Registry) Add(dts *Dataset) error {
	if dts == nil || dts.Name == "" {
		return errors.New("dataset must have a name")
	}
	if len(dts.Images) == 0 {
		return errors.Errorf("Data %v has no images", dts.Name)
	}
	if dts.LoadedAt.IsZero() {
		dts.LoadedAt = time.Now()
	}
	reg.DataList.Set(dts.Name, dts, reg.Retention)
	return nil
}

func (reg *Registry) Get(name string) (*Dataset, error) {
	item, ok := reg.DataList.Get(name)
	if !ok {
		return nil, errors.Errorf("Data %v does not exist", name)
	}
	if dts, ok := item.(*Dataset); ok {
		// refresh expiration on access
		reg.DataList.Set(name, dts, reg.Retention)
		return dts, nil
	}
	return nil, errors.Errorf("Data %v is corrupt", name)
}

func (reg *Registry) Delete(name string) error {
	if _, ok := reg.DataList.Get(name); !ok {
		return errors.Errorf("Data %v does not exist", name)
	}
	reg.DataList.Delete(name)
	return nil
}

// List returns registered dataset names, sorted.
func (reg *Registry) List() []string {
	sourceList := reg.DataList.Items()
	keys := make([]string, 0, len(sourceList))
	for k := range sourceList {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
