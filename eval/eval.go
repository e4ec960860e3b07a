package eval

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bgokden/labelsplit/data"
	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Result holds the pixel counts of one or more evaluated predictions.
type Result struct {
	Name    string `json:"name,omitempty"`
	Correct int64  `json:"correct"`
	ValidGT int64  `json:"validGT"`
	VoidGT  int64  `json:"voidGT"`
	All     int64  `json:"all"`
}

// Incorrect is the number of non-void ground truth pixels predicted wrong.
func (r Result) Incorrect() int64 {
	return r.ValidGT - r.Correct
}

// Accuracy is the share of non-void ground truth pixels predicted right, or 0
// when there are none.
func (r Result) Accuracy() float64 {
	if r.ValidGT == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.ValidGT)
}

// Add returns the pixel-wise sum of r and o.
func (r Result) Add(o Result) Result {
	return Result{
		Correct: r.Correct + o.Correct,
		ValidGT: r.ValidGT + o.ValidGT,
		VoidGT:  r.VoidGT + o.VoidGT,
		All:     r.All + o.All,
	}
}

func (r Result) String() string {
	return fmt.Sprintf("correct=%d valid=%d void=%d all=%d accuracy=%.2f%%",
		r.Correct, r.ValidGT, r.VoidGT, r.All, r.Accuracy()*100)
}

// EvaluatePrediction compares a predicted label grid with its ground truth pixel
// by pixel. Void ground truth pixels are left out; a void prediction on a
// labelled pixel counts as wrong.
func EvaluatePrediction(pred, gt [][]int, void int) (Result, error) {
	if len(pred) != len(gt) {
		return Result{}, errors.Errorf("prediction has %d rows, ground truth %d", len(pred), len(gt))
	}
	var r Result
	for y := range gt {
		if len(pred[y]) != len(gt[y]) {
			return Result{}, errors.Errorf("row %d: prediction has %d columns, ground truth %d", y, len(pred[y]), len(gt[y]))
		}
		for x, want := range gt[y] {
			r.All++
			if want == void {
				r.VoidGT++
				continue
			}
			r.ValidGT++
			if got := pred[y][x]; got != void && got == want {
				r.Correct++
			}
		}
	}
	return r, nil
}

// Pair names a prediction file and the ground truth it is scored against.
type Pair struct {
	Prediction  string
	GroundTruth string
}

// ReadEvaluationList parses "prediction,groundTruth" lines. Blank lines and
// lines starting with # are skipped.
func ReadEvaluationList(r io.Reader) ([]Pair, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	pairs := []Pair{}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading evaluation list")
		}
		if len(record) != 2 {
			return nil, errors.Errorf("evaluation list record %d has %d fields, want 2", line, len(record))
		}
		pairs = append(pairs, Pair{
			Prediction:  strings.TrimSpace(record[0]),
			GroundTruth: strings.TrimSpace(record[1]),
		})
	}
	return pairs, nil
}

// ReadEvaluationListFile reads an evaluation list from path.
func ReadEvaluationListFile(path string) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	pairs, err := ReadEvaluationList(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "evaluation list %q", path)
	}
	return pairs, nil
}

// Evaluator scores prediction files against ground truth files loaded through a
// shared grid cache.
type Evaluator struct {
	Grids *data.GridCache
	Void  int
}

// EvaluatePair loads both grids of p and compares them.
func (e *Evaluator) EvaluatePair(p Pair) (Result, error) {
	pred, err := e.Grids.Get(p.Prediction)
	if err != nil {
		return Result{}, err
	}
	gt, err := e.Grids.Get(p.GroundTruth)
	if err != nil {
		return Result{}, err
	}
	r, err := EvaluatePrediction(pred, gt, e.Void)
	if err != nil {
		return Result{}, errors.WithMessagef(err, "%v against %v", p.Prediction, p.GroundTruth)
	}
	r.Name = p.GroundTruth
	return r, nil
}

// Report is the outcome of evaluating a list of pairs.
type Report struct {
	Results []Result `json:"results"`
	Total   Result   `json:"total"`
	// MeanAccuracy averages the per-image accuracies; Total.Accuracy weighs by pixel.
	MeanAccuracy float64 `json:"meanAccuracy"`
}

// EvaluateAll scores every pair and stops at the first failure.
func (e *Evaluator) EvaluateAll(pairs []Pair) (*Report, error) {
	report := &Report{Results: make([]Result, 0, len(pairs))}
	accuracies := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		r, err := e.EvaluatePair(p)
		if err != nil {
			return nil, err
		}
		if logging.Verbose {
			logging.Info("%v: %v\n", r.Name, r)
		}
		report.Results = append(report.Results, r)
		report.Total = report.Total.Add(r)
		accuracies = append(accuracies, r.Accuracy())
	}
	if len(accuracies) > 0 {
		report.MeanAccuracy = floats.Sum(accuracies) / float64(len(accuracies))
	}
	logging.Info("Processed %d evaluation results\n", len(report.Results))
	return report, nil
}
