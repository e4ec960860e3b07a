package store

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/bgokden/labelsplit/models"
	badger "github.com/dgraph-io/badger/v3"
	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
)

const manifestPrefix = "manifest/"

// ErrNotFound is returned for an unknown manifest id.
var ErrNotFound = errors.New("manifest not found")

// Store keeps partition manifests in a badger database, keyed by manifest id.
// Ids are ksuids, so List returns manifests oldest first.
type Store struct {
	DB *badger.DB
	// TTL expires manifests after the given time; 0 keeps them forever.
	TTL time.Duration
}

// Open opens or creates the database under dir.
func Open(dir string) (*Store, error) {
	return open(badger.DefaultOptions(dir).WithLogger(nil))
}

// OpenInMemory opens a database that is dropped on Close.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening manifest store %q", opts.Dir)
	}
	return &Store{DB: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}

func key(id string) []byte {
	return []byte(manifestPrefix + id)
}

// Save writes m, replacing a manifest with the same id.
func (s *Store) Save(m *models.Manifest) error {
	if m == nil || m.ID == "" {
		return errors.New("manifest without id")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return errors.Wrapf(err, "encoding manifest %v", m.ID)
	}
	err := s.DB.Update(func(txn *badger.Txn) error {
		if s.TTL > 0 {
			return txn.SetEntry(badger.NewEntry(key(m.ID), buf.Bytes()).WithTTL(s.TTL))
		}
		return txn.Set(key(m.ID), buf.Bytes())
	})
	if err != nil {
		return errors.Wrapf(err, "saving manifest %v", m.ID)
	}
	logging.Info("Saved manifest %v for dataset %v\n", m.ID, m.Dataset)
	return nil
}

// Get returns the manifest stored under id or ErrNotFound.
func (s *Store) Get(id string) (*models.Manifest, error) {
	var m *models.Manifest
	err := s.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrNotFound, "id %v", id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			m, err = decode(v)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns every stored manifest, optionally only those of one dataset.
func (s *Store) List(dataset string) ([]*models.Manifest, error) {
	manifests := []*models.Manifest{}
	err := s.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		opts.Prefix = []byte(manifestPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				m, err := decode(v)
				if err != nil {
					return err
				}
				if dataset == "" || m.Dataset == dataset {
					manifests = append(manifests, m)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifests, nil
}

// Delete removes the manifest stored under id. Deleting an unknown id is ErrNotFound.
func (s *Store) Delete(id string) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(id)); err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrNotFound, "id %v", id)
		} else if err != nil {
			return err
		}
		return txn.Delete(key(id))
	})
}

func decode(v []byte) (*models.Manifest, error) {
	m := &models.Manifest{}
	if err := gob.NewDecoder(bytes.NewReader(v)).Decode(m); err != nil {
		return nil, errors.Wrap(err, "decoding manifest")
	}
	return m, nil
}
