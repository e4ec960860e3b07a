package split

import (
	"sync"

	"github.com/bgokden/labelsplit/data"
)

// Pool holds the images not yet assigned to any subset. Sampling calls take
// images out of it; a Pool is never read after being handed to the next stage
// by the caller that drained it. Each sampling call holds the pool's lock for
// its whole duration.
type Pool struct {
	mu    sync.Mutex
	items []*data.LabeledImage
}

// NewPool creates a pool over a copy of images; the caller's slice is left untouched.
func NewPool(images []*data.LabeledImage) *Pool {
	items := make([]*data.LabeledImage, len(images))
	copy(items, images)
	return &Pool{items: items}
}

// Len returns the number of images left.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Images returns a copy of the remaining images in pool order.
func (p *Pool) Images() []*data.LabeledImage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*data.LabeledImage, len(p.items))
	copy(out, p.items)
	return out
}

// Drain removes and returns every remaining image.
func (p *Pool) Drain() []*data.LabeledImage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.items
	p.items = nil
	if out == nil {
		out = []*data.LabeledImage{}
	}
	return out
}

// take removes item i by swapping in the last item. Order is not preserved.
func (p *Pool) take(i int) *data.LabeledImage {
	last := len(p.items) - 1
	img := p.items[i]
	p.items[i] = p.items[last]
	p.items[last] = nil
	p.items = p.items[:last]
	return img
}

func (p *Pool) snapshot() []*data.LabeledImage {
	s := make([]*data.LabeledImage, len(p.items))
	copy(s, p.items)
	return s
}

func (p *Pool) restore(s []*data.LabeledImage) {
	p.items = s
}

// indicesWhere returns the positions of images matching keep.
func (p *Pool) indicesWhere(keep func(*data.LabeledImage) bool) []int {
	out := []int{}
	for i, img := range p.items {
		if keep(img) {
			out = append(out, i)
		}
	}
	return out
}
