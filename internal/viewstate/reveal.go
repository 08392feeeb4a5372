package viewstate

import (
	"errors"
	"slices"
)

var ErrUnknownElement = errors.New("unknown reveal element")

// Latch flips from hidden to revealed once and stays there.
type Latch struct {
	revealed bool
}

// Observe records a visibility sample and reports whether this call revealed the latch.
func (l *Latch) Observe(intersecting bool) bool {
	if l.revealed || !intersecting {
		return false
	}
	l.revealed = true

	return true
}

func (l *Latch) Revealed() bool {
	return l.revealed
}

// Reveals keeps one independent latch per element id.
type Reveals struct {
	latches map[string]*Latch
	order   []string
}

func NewReveals(ids ...string) *Reveals {
	reveals := &Reveals{latches: make(map[string]*Latch, len(ids))}
	for _, id := range ids {
		reveals.Add(id)
	}

	return reveals
}

// Add registers an element. Adding a known id keeps its current latch.
func (r *Reveals) Add(id string) {
	if _, found := r.latches[id]; found {
		return
	}
	r.latches[id] = &Latch{}
	r.order = append(r.order, id)
}

func (r *Reveals) Observe(id string, intersecting bool) (bool, bool, error) {
	latch, found := r.latches[id]
	if !found {
		return false, false, ErrUnknownElement
	}
	changed := latch.Observe(intersecting)

	return latch.Revealed(), changed, nil
}

func (r *Reveals) Revealed(id string) bool {
	latch, found := r.latches[id]

	return found && latch.Revealed()
}

func (r *Reveals) Known(id string) bool {
	_, found := r.latches[id]

	return found
}

func (r *Reveals) IDs() []string {
	return slices.Clone(r.order)
}
