package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bgokden/labelsplit/catalogue"
	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/split"
	"github.com/bgokden/labelsplit/store"
	"github.com/gorilla/mux"
	"github.com/jinzhu/copier"
	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
)

// Server exposes loaded datasets and stored partitions over REST.
type Server struct {
	Registry  *data.Registry
	Store     *store.Store
	Catalogue *catalogue.Catalogue
	Grids     *data.GridCache
	// Defaults fill the fields a partition request leaves out.
	Defaults split.Config

	health int32
	ready  int32
}

// NewServer wires a server over the given collaborators and marks it healthy.
func NewServer(reg *data.Registry, st *store.Store, cat *catalogue.Catalogue, defaults split.Config) *Server {
	s := &Server{
		Registry:  reg,
		Store:     st,
		Catalogue: cat,
		Grids:     data.NewGridCache(cat, 1024),
		Defaults:  defaults,
	}
	s.SetHealth(true)
	return s
}

// SetHealth flips the /health answer.
func (s *Server) SetHealth(ok bool) { atomic.StoreInt32(&s.health, boolInt(ok)) }

// SetReady flips the /ready answer.
func (s *Server) SetReady(ok bool) { atomic.StoreInt32(&s.ready, boolInt(ok)) }

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (s *Server) GetReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if atomic.LoadInt32(&s.ready) == 1 {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"alive": false}`)
	}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if atomic.LoadInt32(&s.health) == 1 {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	} else {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"alive": false}`)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// DatasetInfo describes a registered dataset.
type DatasetInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path,omitempty"`
	Images   int       `json:"images"`
	LoadedAt time.Time `json:"loadedAt"`
}

// LoadRequest asks the server to load an MSRC style database from its filesystem.
type LoadRequest struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Subset   []string `json:"subset,omitempty"`
	PreferHQ bool     `json:"preferHQ,omitempty"`
}

// PartitionRequest overrides the server defaults for one partition. Seed 0
// means a time based seed.
type PartitionRequest struct {
	DatasetScale             float64 `json:"datasetScale"`
	KeepClassDistForTraining bool    `json:"keepClassDistForTraining"`
	TrainSplit               float64 `json:"trainSplit"`
	ValidationSplit          float64 `json:"validationSplit"`
	TestSplit                float64 `json:"testSplit"`
	Seed                     int64   `json:"seed"`
}

// ClassStat is one row of the dataset statistics.
type ClassStat struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Pixels   int64   `json:"pixels"`
	Fraction float64 `json:"fraction"`
	Images   int     `json:"images"`
}

// DatasetStats is the per-class pixel summary of a dataset.
type DatasetStats struct {
	Name        string      `json:"name"`
	Images      int         `json:"images"`
	TotalPixels int64       `json:"totalPixels"`
	VoidPixels  int64       `json:"voidPixels"`
	Classes     []ClassStat `json:"classes"`
	Missing     []string    `json:"missing,omitempty"`
}

func (s *Server) ListDatasets(w http.ResponseWriter, r *http.Request) {
	infos := []DatasetInfo{}
	for _, name := range s.Registry.List() {
		dts, err := s.Registry.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, DatasetInfo{Name: dts.Name, Path: dts.Path, Images: len(dts.Images), LoadedAt: dts.LoadedAt})
	}
	respondWithJSON(w, http.StatusOK, infos)
}

func (s *Server) LoadDataset(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()
	if req.Name == "" || req.Path == "" {
		respondWithError(w, http.StatusBadRequest, "name and path are required")
		return
	}
	images, err := data.LoadMSRC(req.Path, s.Grids, data.LoadOptions{Subset: req.Subset, PreferHQ: req.PreferHQ})
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	dts := &data.Dataset{Name: req.Name, Path: req.Path, Images: images}
	if err := s.Registry.Add(dts); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, DatasetInfo{Name: dts.Name, Path: dts.Path, Images: len(images), LoadedAt: dts.LoadedAt})
}

func (s *Server) GetDatasetStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	dts, err := s.Registry.Get(name)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	stats, err := Stats(dts, s.Catalogue)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// Stats computes the per-class pixel summary of dts.
func Stats(dts *data.Dataset, cat *catalogue.Catalogue) (*DatasetStats, error) {
	table, err := split.CountClassPixels(dts.Images, cat)
	if err != nil {
		return nil, err
	}
	stats := &DatasetStats{
		Name:        dts.Name,
		Images:      len(dts.Images),
		TotalPixels: table.Total,
		VoidPixels:  table.Total - table.NonVoidTotal(),
	}
	nonVoid := table.NonVoidTotal()
	for _, id := range split.ClassIDs(cat) {
		cs := ClassStat{ID: id, Name: cat.Name(id), Pixels: table.Counts[id]}
		if nonVoid > 0 {
			cs.Fraction = float64(table.Counts[id]) / float64(nonVoid)
		}
		for _, img := range dts.Images {
			if img.Has(id) {
				cs.Images++
			}
		}
		stats.Classes = append(stats.Classes, cs)
	}
	_, missing := split.Coverage(dts.Images, cat)
	for _, id := range missing {
		stats.Missing = append(stats.Missing, cat.Name(id))
	}
	return stats, nil
}

// requestConfig merges a partition request body over the server defaults.
func (s *Server) requestConfig(body io.Reader) (split.Config, int64, error) {
	var req PartitionRequest
	if err := copier.Copy(&req, &s.Defaults); err != nil {
		return split.Config{}, 0, err
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil && err != io.EOF {
		return split.Config{}, 0, errors.Wrap(err, "Invalid request payload")
	}
	var cfg split.Config
	if err := copier.Copy(&cfg, &req); err != nil {
		return split.Config{}, 0, err
	}
	return cfg, req.Seed, nil
}

func (s *Server) CreatePartition(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	dts, err := s.Registry.Get(name)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	defer r.Body.Close()
	cfg, seed, err := s.requestConfig(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := []split.Option{}
	if seed != 0 {
		opts = append(opts, split.WithSeed(seed))
	}
	p, err := split.NewPartitioner(s.Catalogue, opts...).Partition(dts.Images, cfg)
	switch {
	case errors.Is(err, split.ErrInvalidConfiguration):
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	manifest := p.Manifest(dts.Name)
	if err := s.Store.Save(manifest); err != nil {
		logging.Error("Manifest save error: %v\n", err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, manifest)
}

func (s *Server) ListPartitions(w http.ResponseWriter, r *http.Request) {
	manifests, err := s.Store.List(r.URL.Query().Get("dataset"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, manifests)
}

func (s *Server) GetPartition(w http.ResponseWriter, r *http.Request) {
	m, err := s.Store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}

func (s *Server) DeletePartition(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(mux.Vars(r)["id"]); err != nil {
		respondWithStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondWithStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}

// Router returns the REST routes of s.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", s.GetHealth).Methods("GET")
	router.HandleFunc("/health", s.GetHealth).Methods("GET")
	router.HandleFunc("/ready", s.GetReady).Methods("GET")
	router.HandleFunc("/datasets", s.ListDatasets).Methods("GET")
	router.HandleFunc("/datasets", s.LoadDataset).Methods("POST")
	router.HandleFunc("/datasets/{name}/stats", s.GetDatasetStats).Methods("GET")
	router.HandleFunc("/datasets/{name}/partitions", s.CreatePartition).Methods("POST")
	router.HandleFunc("/partitions", s.ListPartitions).Methods("GET")
	router.HandleFunc("/partitions/{id}", s.GetPartition).Methods("GET")
	router.HandleFunc("/partitions/{id}", s.DeletePartition).Methods("DELETE")
	return router
}

// RestApi serves the routes on addr until the listener fails.
func (s *Server) RestApi(addr string) error {
	logging.Info("Rest api started on %v\n", addr)
	s.SetReady(true)
	err := http.ListenAndServe(addr, s.Router())
	s.SetReady(false)
	logging.Error("Http Server failure: %v\n", err)
	return err
}
