package split

import (
	"github.com/bgokden/labelsplit/data"
)

// Classes describes the label space: ids [0, NumClasses) plus a reserved void id.
// *catalogue.Catalogue implements it.
type Classes interface {
	NumClasses() int
	VoidID() int
}

// ClassSpace is a plain Classes value.
type ClassSpace struct {
	N    int
	Void int
}

func (cs ClassSpace) NumClasses() int { return cs.N }
func (cs ClassSpace) VoidID() int     { return cs.Void }

// ClassIDs returns the non-void class ids in ascending order.
func ClassIDs(classes Classes) []int {
	ids := make([]int, 0, classes.NumClasses())
	for id := 0; id < classes.NumClasses(); id++ {
		if id != classes.VoidID() {
			ids = append(ids, id)
		}
	}
	return ids
}

func isClass(classes Classes, id int) bool {
	return id >= 0 && id < classes.NumClasses() && id != classes.VoidID()
}

// coverage tracks which non-void classes a set of images represents.
type coverage struct {
	classes Classes
	seen    []bool
	n       int
	want    int
}

func newCoverage(classes Classes) *coverage {
	return &coverage{
		classes: classes,
		seen:    make([]bool, classes.NumClasses()),
		want:    len(ClassIDs(classes)),
	}
}

// adds reports whether img holds a class not seen yet.
func (c *coverage) adds(img *data.LabeledImage) bool {
	for _, id := range img.Classes() {
		if isClass(c.classes, id) && !c.seen[id] {
			return true
		}
	}
	return false
}

func (c *coverage) add(img *data.LabeledImage) {
	for _, id := range img.Classes() {
		if isClass(c.classes, id) && !c.seen[id] {
			c.seen[id] = true
			c.n++
		}
	}
}

func (c *coverage) complete() bool {
	return c.n >= c.want
}

func (c *coverage) missing() []int {
	missing := []int{}
	for _, id := range ClassIDs(c.classes) {
		if !c.seen[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// Coverage returns the non-void classes present in images, ascending, and the
// ones absent.
func Coverage(images []*data.LabeledImage, classes Classes) (present, missing []int) {
	cov := newCoverage(classes)
	for _, img := range images {
		cov.add(img)
	}
	present = []int{}
	for _, id := range ClassIDs(classes) {
		if cov.seen[id] {
			present = append(present, id)
		}
	}
	return present, cov.missing()
}
