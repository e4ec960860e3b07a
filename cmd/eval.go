package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/bgokden/labelsplit/catalogue"
	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/eval"
	"github.com/spf13/cobra"
)

var msrcDir string

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <evalList.csv>",
	Short: "Score predicted label images against ground truth",
	Long: `Score predicted label images against ground truth, pixel by pixel.
Each line of the list holds a prediction and a ground truth file; relative
ground truth names are looked up under <msrc>/GroundTruth:
  labelsplit eval evalList.csv --msrc ./msrc
  `,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := eval.ReadEvaluationListFile(args[0])
		if err != nil {
			return err
		}
		if msrcDir != "" {
			resolveGroundTruth(pairs, msrcDir)
		}
		cat := catalogue.MSRC()
		e := &eval.Evaluator{Grids: data.NewGridCache(cat, 64), Void: cat.VoidID()}
		report, err := e.EvaluateAll(pairs)
		if err != nil {
			return err
		}
		for i, r := range report.Results {
			fmt.Printf("\tResult#%d: %v %v\n", i+1, r.Name, r)
		}
		fmt.Printf("Total: %v\n", report.Total)
		fmt.Printf("Mean per-image accuracy: %.2f%%\n", report.MeanAccuracy*100)
		return nil
	},
}

func resolveGroundTruth(pairs []eval.Pair, dir string) {
	for i := range pairs {
		if !filepath.IsAbs(pairs[i].GroundTruth) {
			pairs[i].GroundTruth = filepath.Join(dir, data.GroundTruthDir, pairs[i].GroundTruth)
		}
	}
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&msrcDir, "msrc", "m", "", "MSRC database directory for relative ground truth names")
}
