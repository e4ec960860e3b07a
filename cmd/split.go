package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bgokden/labelsplit/catalogue"
	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/export"
	"github.com/bgokden/labelsplit/split"
	"github.com/bgokden/labelsplit/store"
	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var storeDir string
var outDir string
var preferHQ bool

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split <datasetDir>",
	Short: "Partition an MSRC style database",
	Long: `Partition an MSRC style database into train, validation and test lists:
  labelsplit split ./msrc --out ./splits
  labelsplit split ./msrc --trainSplit 0.8 --validationSplit 0.1 --testSplit 0.1 --seed 7
  `,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := LoadSplitSettings(viper.GetViper())
		if err != nil {
			return err
		}
		cat := catalogue.MSRC()
		images, err := loadCollection(args[0], cat, preferHQ)
		if err != nil {
			return err
		}
		p, err := split.NewPartitioner(cat, settings.Options()...).Partition(images, settings.Config)
		if err != nil {
			return err
		}
		manifest := p.Manifest(filepath.Base(filepath.Clean(args[0])))

		if storeDir != "" {
			st, err := store.Open(storeDir)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Save(manifest); err != nil {
				return err
			}
		}
		if outDir != "" {
			if err := export.NewWriter().Write(outDir, manifest, cat); err != nil {
				return err
			}
		}

		fmt.Printf("Partition %v (seed %v)\n", manifest.ID, manifest.Seed)
		fmt.Printf("  train:      %d\n  validation: %d\n  test:       %d\n", len(p.Train), len(p.Validation), len(p.Test))
		if len(p.Remainder) > 0 {
			fmt.Printf("  unused:     %d\n", len(p.Remainder))
		}
		for _, w := range p.Warnings {
			fmt.Printf("  warning: %v\n", w)
		}
		return nil
	},
}

// loadCollection loads every image of an MSRC style database under dir,
// drawing a progress bar on stderr.
func loadCollection(dir string, cat *catalogue.Catalogue, hq bool) ([]*data.LabeledImage, error) {
	names, err := data.ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no images found under %v", filepath.Join(dir, data.ImagesDir))
	}
	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("loading ground truth"),
		progressbar.OptionSetVisibility(!logging.Verbose),
	)
	defer bar.Finish()
	return data.LoadMSRC(dir, data.NewGridCache(cat, len(names)), data.LoadOptions{
		Subset:   names,
		PreferHQ: hq,
		OnLoaded: func(string) { bar.Add(1) },
	})
}

func init() {
	rootCmd.AddCommand(splitCmd)
	bindSplitFlags(splitCmd.Flags(), viper.GetViper())
	splitCmd.Flags().StringVarP(&storeDir, "store", "s", "", "directory of the manifest store, empty to skip")
	splitCmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write train.txt, val.txt, test.txt and data.yaml to")
	splitCmd.Flags().BoolVarP(&preferHQ, "hq", "", false, "use high quality segmentations where available")
}
