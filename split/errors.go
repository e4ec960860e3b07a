package split

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps one of them.
var (
	// ErrInvalidConfiguration reports unusable input: bad proportions, an empty
	// collection or a sample larger than its pool.
	ErrInvalidConfiguration = errors.New("split: invalid configuration")
	// ErrDegenerateDistribution reports a frequency table without any class pixels.
	ErrDegenerateDistribution = errors.New("split: degenerate class distribution")
	// ErrPoolExhausted reports a per-class target that no remaining image can meet.
	ErrPoolExhausted = errors.New("split: pool exhausted")
)

var (
	// ErrEmptyCollection is returned when there are no images to work on.
	ErrEmptyCollection = fmt.Errorf("%w: empty image collection", ErrInvalidConfiguration)
	// ErrInvalidSplit is returned when split proportions are out of range or do not sum to 1.
	ErrInvalidSplit = fmt.Errorf("%w: train, validation and test must sum to 1", ErrInvalidConfiguration)
	// ErrInvalidScale is returned when the dataset scale is outside (0,1].
	ErrInvalidScale = fmt.Errorf("%w: dataset scale must be in (0,1]", ErrInvalidConfiguration)
	// ErrSampleTooLarge is returned when more images are requested than the pool holds.
	ErrSampleTooLarge = fmt.Errorf("%w: requested sample does not fit the pool", ErrInvalidConfiguration)
	// ErrDistributionSize is returned when a distribution does not match the class space.
	ErrDistributionSize = fmt.Errorf("%w: distribution does not match class count", ErrInvalidConfiguration)
)
