package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bgokden/labelsplit/catalogue"
	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/models"
	"github.com/bgokden/labelsplit/server"
	"github.com/bgokden/labelsplit/split"
	"github.com/bgokden/labelsplit/store"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/suite"
)

type ServerSuite struct {
	suite.Suite
	store  *store.Store
	server *server.Server
	ts     *httptest.Server
}

// everyClass returns n images that each hold all 21 MSRC classes.
func everyClass(n int) []*data.LabeledImage {
	images := make([]*data.LabeledImage, n)
	for i := range images {
		row := make([]int, 22)
		for id := range row {
			row[id] = id
		}
		images[i] = data.NewLabeledImage(fmt.Sprintf("%d_1_s.bmp", i), [][]int{row})
	}
	return images
}

func (s *ServerSuite) SetupTest() {
	st, err := store.OpenInMemory()
	s.Require().NoError(err)
	s.store = st
	reg := data.NewRegistry(time.Hour)
	s.Require().NoError(reg.Add(&data.Dataset{Name: "msrc", Images: everyClass(50)}))
	s.server = server.NewServer(reg, st, catalogue.MSRC(), split.DefaultConfig())
	s.ts = httptest.NewServer(s.server.Router())
}

func (s *ServerSuite) TearDownTest() {
	s.ts.Close()
	s.NoError(s.store.Close())
}

func (s *ServerSuite) do(method, path, body string) *http.Response {
	req, err := http.NewRequest(method, s.ts.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *ServerSuite) decode(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func (s *ServerSuite) TestHealthAndReady() {
	resp := s.do("GET", "/health", "")
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do("GET", "/ready", "")
	resp.Body.Close()
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	s.server.SetReady(true)
	resp = s.do("GET", "/ready", "")
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerSuite) TestDatasets() {
	var infos []server.DatasetInfo
	resp := s.do("GET", "/datasets", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &infos)
	s.Require().Len(infos, 1)
	s.Equal("msrc", infos[0].Name)
	s.Equal(50, infos[0].Images)

	var stats server.DatasetStats
	resp = s.do("GET", "/datasets/msrc/stats", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &stats)
	s.Equal(int64(50*22), stats.TotalPixels)
	s.Equal(int64(50), stats.VoidPixels)
	s.Require().Len(stats.Classes, 21)
	s.Equal("building", stats.Classes[0].Name)
	s.Equal(int64(50), stats.Classes[0].Pixels)
	s.Equal(50, stats.Classes[0].Images)
	s.InDelta(1.0/21, stats.Classes[0].Fraction, 1e-9)
	s.Empty(stats.Missing)

	resp = s.do("GET", "/datasets/other/stats", "")
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestPartitionLifecycle() {
	var m models.Manifest
	resp := s.do("POST", "/datasets/msrc/partitions", `{"keepClassDistForTraining": false, "seed": 5}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.decode(resp, &m)
	s.NotEmpty(m.ID)
	s.Equal(int64(5), m.Seed)
	s.False(m.Config.KeepClassDistForTraining)
	s.Equal(0.6, m.Config.TrainSplit)
	s.Len(m.Train, 30)
	s.Len(m.Test, 10)
	s.Len(m.Validation, 10)

	var list []models.Manifest
	resp = s.do("GET", "/partitions?dataset=msrc", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &list)
	s.Require().Len(list, 1)
	s.Equal(m.ID, list[0].ID)

	var got models.Manifest
	resp = s.do("GET", "/partitions/"+m.ID, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &got)
	s.Equal(m.Train, got.Train)

	resp = s.do("DELETE", "/partitions/"+m.ID, "")
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do("GET", "/partitions/"+m.ID, "")
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestPartitionDefaults() {
	var m models.Manifest
	resp := s.do("POST", "/datasets/msrc/partitions", "")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.decode(resp, &m)
	s.Equal(split.DefaultConfig(), m.Config)
	s.Equal(50, m.Size())
	s.Len(m.Targets, 21)
}

func (s *ServerSuite) TestPartitionErrors() {
	resp := s.do("POST", "/datasets/msrc/partitions", `{"trainSplit": 0.9}`)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do("POST", "/datasets/msrc/partitions", `{not json`)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do("POST", "/datasets/missing/partitions", `{}`)
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.do("DELETE", "/partitions/unknown", "")
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestLoadDataset() {
	cat := catalogue.MSRC()
	dir := s.T().TempDir()
	for _, sub := range []string{data.ImagesDir, data.GroundTruthDir} {
		s.Require().NoError(os.MkdirAll(filepath.Join(dir, sub), 0755))
	}
	rendered := cat.LabelsToRGB([][]int{{0, 1}, {2, 21}})
	s.Require().NoError(imaging.Save(rendered, filepath.Join(dir, data.ImagesDir, "1_1_s.png")))
	s.Require().NoError(imaging.Save(rendered, data.GroundTruthPath(dir, "1_1_s.png")))

	var info server.DatasetInfo
	resp := s.do("POST", "/datasets", fmt.Sprintf(`{"name": "disk", "path": %q}`, dir))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.decode(resp, &info)
	s.Equal("disk", info.Name)
	s.Equal(1, info.Images)

	resp = s.do("POST", "/datasets", `{"name": "nopath"}`)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do("POST", "/datasets", fmt.Sprintf(`{"name": "empty", "path": %q}`, s.T().TempDir()))
	resp.Body.Close()
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}
