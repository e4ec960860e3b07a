package data

import (
	"sort"
	"sync"
)

// LabeledImage is one sample of a collection: an image reference and its
// per-pixel ground-truth labels.
type LabeledImage struct {
	Name            string
	ImagePath       string
	GroundTruthPath string
	// LabelGrid is indexed [row][col]. It is never modified after loading.
	LabelGrid [][]int

	classesOnce sync.Once
	classes     []int
}

// NewLabeledImage is an utility function to wrap an in-memory label grid
func NewLabeledImage(name string, grid [][]int) *LabeledImage {
	return &LabeledImage{
		Name:      name,
		LabelGrid: grid,
	}
}

// Classes returns the distinct labels present in the grid in ascending order,
// void included.
func (li *LabeledImage) Classes() []int {
	li.classesOnce.Do(func() {
		seen := make(map[int]struct{})
		for _, row := range li.LabelGrid {
			for _, id := range row {
				seen[id] = struct{}{}
			}
		}
		li.classes = make([]int, 0, len(seen))
		for id := range seen {
			li.classes = append(li.classes, id)
		}
		sort.Ints(li.classes)
	})
	return li.classes
}

// Has reports whether any pixel carries label id.
func (li *LabeledImage) Has(id int) bool {
	classes := li.Classes()
	i := sort.SearchInts(classes, id)
	return i < len(classes) && classes[i] == id
}

// Pixels returns the number of labelled pixels.
func (li *LabeledImage) Pixels() int {
	n := 0
	for _, row := range li.LabelGrid {
		n += len(row)
	}
	return n
}

// Names returns the names of images in order.
func Names(images []*LabeledImage) []string {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
	}
	return names
}
