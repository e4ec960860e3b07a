package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bgokden/labelsplit/catalogue"
	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/server"
	"github.com/bgokden/labelsplit/store"
	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var port int
var directory string
var retention time.Duration
var datasets []string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve labelsplit",
	Long: `Serve the labelsplit REST api:
  labelsplit serve
  labelsplit serve --dataset msrc=./msrc_objcategimagedatabase_v2 --directory ./manifests
  `,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := LoadSplitSettings(viper.GetViper())
		if err != nil {
			return err
		}
		var st *store.Store
		if directory == "" {
			st, err = store.OpenInMemory()
		} else {
			st, err = store.Open(directory)
		}
		if err != nil {
			return err
		}
		defer st.Close()

		cat := catalogue.MSRC()
		reg := data.NewRegistry(retention)
		for _, entry := range datasets {
			name, path, err := parseDataset(entry)
			if err != nil {
				return err
			}
			images, err := loadCollection(path, cat, false)
			if err != nil {
				return err
			}
			if err := reg.Add(&data.Dataset{Name: name, Path: path, Images: images}); err != nil {
				return err
			}
			logging.Info("Dataset %v loaded with %d images\n", name, len(images))
		}
		s := server.NewServer(reg, st, cat, settings.Config)
		return s.RestApi(fmt.Sprintf(":%d", port))
	},
}

// parseDataset splits "name=path"; a bare path is named after its directory.
func parseDataset(entry string) (string, string, error) {
	name, path := "", entry
	if i := strings.Index(entry, "="); i >= 0 {
		name, path = entry[:i], entry[i+1:]
	}
	if path == "" {
		return "", "", errors.Errorf("dataset %q has no path", entry)
	}
	if name == "" {
		name = filepath.Base(filepath.Clean(path))
	}
	return name, path, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 8000, "port")
	serveCmd.Flags().StringVarP(&directory, "directory", "d", "", "manifest store directory, in memory if empty")
	serveCmd.Flags().DurationVarP(&retention, "retention", "r", 24*time.Hour, "how long an unused dataset stays loaded")
	serveCmd.Flags().StringSliceVarP(&datasets, "dataset", "", []string{}, "datasets to load at start as name=path, Comma separated lists are supported")
}
