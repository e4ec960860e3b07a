package split

import (
	"fmt"
	"math"

	"github.com/bgokden/labelsplit/data"
	"gonum.org/v1/gonum/floats"
)

// FrequencyTable is the per-class pixel count of a collection.
// Counts is indexed by class id over [0, NumClasses); Total counts every pixel visited,
// void and out-of-range labels included.
type FrequencyTable struct {
	Counts []int64
	Total  int64
	Void   int
}

// NonVoidTotal sums the counts of every class except void.
func (ft FrequencyTable) NonVoidTotal() int64 {
	var sum int64
	for id, n := range ft.Counts {
		if id != ft.Void {
			sum += n
		}
	}
	return sum
}

// CountClassPixels visits every pixel of every image once and counts labels in
// [0, NumClasses). A void id inside that range is counted like any other id.
func CountClassPixels(images []*data.LabeledImage, classes Classes) (FrequencyTable, error) {
	if len(images) == 0 {
		return FrequencyTable{}, ErrEmptyCollection
	}
	table := FrequencyTable{
		Counts: make([]int64, classes.NumClasses()),
		Void:   classes.VoidID(),
	}
	for _, img := range images {
		for _, row := range img.LabelGrid {
			for _, id := range row {
				table.Total++
				if id >= 0 && id < len(table.Counts) {
					table.Counts[id]++
				}
			}
		}
	}
	return table, nil
}

// Distribution is a target probability per class id. The void entry, when in range, is 0.
type Distribution []float64

// Sum adds up all entries.
func (d Distribution) Sum() float64 {
	return floats.Sum(d)
}

// EstimateDistribution normalises the non-void counts of table to sum to 1.
func EstimateDistribution(table FrequencyTable, classes Classes) (Distribution, error) {
	if len(table.Counts) != classes.NumClasses() {
		return nil, fmt.Errorf("%w: table has %d classes, want %d", ErrDistributionSize, len(table.Counts), classes.NumClasses())
	}
	dist := make(Distribution, len(table.Counts))
	for _, id := range ClassIDs(classes) {
		dist[id] = float64(table.Counts[id])
	}
	sum := floats.Sum(dist)
	if sum == 0 || math.IsNaN(sum) {
		return nil, fmt.Errorf("%w: no class pixels among %d counted", ErrDegenerateDistribution, table.Total)
	}
	floats.Scale(1/sum, dist)
	return dist, nil
}
