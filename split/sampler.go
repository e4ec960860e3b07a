package split

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/bgokden/labelsplit/data"
)

// Strategy names the way a sample was drawn.
type Strategy int

const (
	// StrategyUniform draws uniformly at random without looking at classes.
	StrategyUniform Strategy = iota
	// StrategyCoverage prefers images that bring unseen classes until all are covered.
	StrategyCoverage
	// StrategyBalanced meets a per-class target count derived from a distribution.
	StrategyBalanced
)

func (s Strategy) String() string {
	switch s {
	case StrategyUniform:
		return "uniform"
	case StrategyCoverage:
		return "coverage"
	case StrategyBalanced:
		return "balanced"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Sample is the result of SampleBalanced.
type Sample struct {
	Images   []*data.LabeledImage
	Strategy Strategy
	// Targets holds the repaired per-class target counts when Strategy is
	// StrategyBalanced; len(Images) equals their sum.
	Targets []int
	// Covered lists the non-void classes present in Images.
	Covered  []int
	Warnings []Warning
}

// Sampler draws images out of a Pool without replacement.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	classes  Classes
	rng      *rand.Rand
	warnings []Warning
}

// NewSampler returns a sampler over classes drawing from rng. A nil rng is
// replaced by a time seeded one.
func NewSampler(classes Classes, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{classes: classes, rng: rng}
}

// Warnings returns every warning raised by this sampler so far.
func (s *Sampler) Warnings() []Warning {
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s *Sampler) warn(kind WarningKind, format string, args ...interface{}) {
	s.warnings = append(s.warnings, newWarning(kind, format, args...))
}

// SampleUniform moves n images from pool into the result.
//
// Without requireCoverage every draw is uniform over the remaining pool.
// With requireCoverage the first draw is uniform; afterwards, while some class is
// still uncovered, only images adding an uncovered class are eligible (the draw
// is uniform among them); once every class is covered draws are uniform again.
// If the pool cannot supply a missing class the sampler stops seeking coverage
// and records WarnCoverageUnattainable.
//
// n larger than the pool is ErrSampleTooLarge and leaves the pool untouched.
func (s *Sampler) SampleUniform(pool *Pool, n int, requireCoverage bool) ([]*data.LabeledImage, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return s.uniform(pool, n, requireCoverage)
}

func (s *Sampler) uniform(pool *Pool, n int, requireCoverage bool) ([]*data.LabeledImage, error) {
	if n < 0 || n > len(pool.items) {
		return nil, fmt.Errorf("%w: asked for %d of %d images", ErrSampleTooLarge, n, len(pool.items))
	}
	result := make([]*data.LabeledImage, 0, n)
	if !requireCoverage {
		for len(result) < n {
			result = append(result, pool.take(s.rng.Intn(len(pool.items))))
		}
		return result, nil
	}

	cov := newCoverage(s.classes)
	seeking := true
	for len(result) < n {
		idx := -1
		if len(result) > 0 && seeking && !cov.complete() {
			candidates := pool.indicesWhere(cov.adds)
			if len(candidates) > 0 {
				idx = candidates[s.rng.Intn(len(candidates))]
			} else {
				seeking = false
				s.warn(WarnCoverageUnattainable, "classes %v are not in the remaining %d images; drawing the other %d at random",
					cov.missing(), len(pool.items), n-len(result))
			}
		}
		if idx < 0 {
			idx = s.rng.Intn(len(pool.items))
		}
		img := pool.take(idx)
		cov.add(img)
		result = append(result, img)
	}
	return result, nil
}

// SampleBalanced draws a sample whose per-class image counts follow dist scaled
// by n, keeping at least one image per class when requireCoverage is set.
//
// The steps run in this order:
//  1. n <= 1: uniform sample of n, WarnFallbackUniform.
//  2. targets are round-half-even(n * dist[c]); if they sum below 1: uniform sample, WarnFallbackUniform.
//  3. without requireCoverage: uniform sample of n.
//  4. zero targets become 1, WarnZeroTargetRepair.
//  5. n below the class count: coverage sample of one image per class, WarnInfeasibleCoverage.
//  6. per class in id order, uniform draws among remaining images holding that
//     class until its target is met; ErrPoolExhausted when none is left.
//
// A failed call leaves the pool as it found it.
func (s *Sampler) SampleBalanced(pool *Pool, n int, dist Distribution, requireCoverage bool) (*Sample, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	mark := len(s.warnings)
	sample, err := s.balanced(pool, n, dist, requireCoverage)
	if err != nil {
		return nil, err
	}
	sample.Warnings = append([]Warning(nil), s.warnings[mark:]...)
	return sample, nil
}

func (s *Sampler) balanced(pool *Pool, n int, dist Distribution, requireCoverage bool) (*Sample, error) {
	if len(dist) != s.classes.NumClasses() {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrDistributionSize, len(dist), s.classes.NumClasses())
	}
	if n <= 1 {
		s.warn(WarnFallbackUniform, "only %d sample(s) requested, returning a random sample regardless of labels", n)
		return s.uniformSample(pool, n, false, StrategyUniform)
	}

	ids := ClassIDs(s.classes)
	targets := make([]int, s.classes.NumClasses())
	total := 0
	for _, id := range ids {
		targets[id] = int(math.RoundToEven(float64(n) * dist[id]))
		total += targets[id]
	}
	if total < 1 {
		s.warn(WarnFallbackUniform, "%d samples under the class distribution round to nothing, returning %d random samples", n, n)
		return s.uniformSample(pool, n, false, StrategyUniform)
	}
	if !requireCoverage {
		return s.uniformSample(pool, n, false, StrategyUniform)
	}

	repaired := 0
	for _, id := range ids {
		if targets[id] == 0 {
			targets[id] = 1
			repaired++
		}
	}
	if repaired > 0 {
		s.warn(WarnZeroTargetRepair, "%d classes had a target of 0 samples, each raised to 1", repaired)
	}

	if n < len(ids) {
		s.warn(WarnInfeasibleCoverage, "all classes wanted but only %d samples requested for %d classes, returning %d coverage samples",
			n, len(ids), len(ids))
		return s.uniformSample(pool, len(ids), true, StrategyCoverage)
	}

	snapshot := pool.snapshot()
	result := make([]*data.LabeledImage, 0, n)
	for _, id := range ids {
		class := id
		for count := 0; count < targets[class]; count++ {
			candidates := pool.indicesWhere(func(img *data.LabeledImage) bool {
				return img.Has(class)
			})
			if len(candidates) == 0 {
				err := fmt.Errorf("%w: class %d still needs %d of %d images and none of the %d left hold it",
					ErrPoolExhausted, class, targets[class]-count, targets[class], len(pool.items))
				pool.restore(snapshot)
				return nil, err
			}
			img := pool.take(candidates[s.rng.Intn(len(candidates))])
			result = append(result, img)
		}
	}
	present, _ := Coverage(result, s.classes)
	return &Sample{
		Images:   result,
		Strategy: StrategyBalanced,
		Targets:  targets,
		Covered:  present,
	}, nil
}

func (s *Sampler) uniformSample(pool *Pool, n int, requireCoverage bool, strategy Strategy) (*Sample, error) {
	images, err := s.uniform(pool, n, requireCoverage)
	if err != nil {
		return nil, err
	}
	present, _ := Coverage(images, s.classes)
	return &Sample{Images: images, Strategy: strategy, Covered: present}, nil
}
