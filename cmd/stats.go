package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/bgokden/labelsplit/catalogue"
	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/server"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsHQ bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <datasetDir>",
	Short: "Print per-class pixel statistics of an MSRC style database",
	Long: `Print per-class pixel statistics of an MSRC style database:
  labelsplit stats ./msrc
  `,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalogue.MSRC()
		images, err := loadCollection(args[0], cat, statsHQ)
		if err != nil {
			return err
		}
		stats, err := server.Stats(&data.Dataset{Name: filepath.Base(filepath.Clean(args[0])), Images: images}, cat)
		if err != nil {
			return err
		}
		return printStats(os.Stdout, stats)
	},
}

func printStats(out io.Writer, stats *server.DatasetStats) error {
	fmt.Fprintf(out, "%v: %d images, %s pixels, %s void\n",
		stats.Name, stats.Images, humanize.Comma(stats.TotalPixels), humanize.Comma(stats.VoidPixels))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "id\tclass\tpixels\tshare\timages\t")
	for _, cs := range stats.Classes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f%%\t%d\t\n", cs.ID, cs.Name, humanize.Comma(cs.Pixels), cs.Fraction*100, cs.Images)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(stats.Missing) > 0 {
		fmt.Fprintf(out, "classes without any pixel: %v\n", stats.Missing)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVarP(&statsHQ, "hq", "", false, "use high quality segmentations where available")
}
