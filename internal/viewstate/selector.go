// Package viewstate holds the per-visitor UI state machines behind the page:
// selector panels, the contact form, reveal latches and the navigation shell.
package viewstate

import (
	"errors"
	"slices"
)

var (
	ErrNoOptions       = errors.New("selector has no options")
	ErrDuplicateOption = errors.New("duplicate selector option")
	ErrUnknownOption   = errors.New("unknown selector option")
)

// Panel tracks exactly one active option out of a fixed, ordered set.
type Panel[K comparable] struct {
	options []K
	active  int
}

// NewPanel builds a panel over options with the first one active.
func NewPanel[K comparable](options ...K) (*Panel[K], error) {
	if len(options) == 0 {
		return nil, ErrNoOptions
	}

	seen := make(map[K]struct{}, len(options))
	for _, opt := range options {
		if _, found := seen[opt]; found {
			return nil, ErrDuplicateOption
		}
		seen[opt] = struct{}{}
	}

	return &Panel[K]{options: slices.Clone(options)}, nil
}

func (p *Panel[K]) Active() K {
	return p.options[p.active]
}

func (p *Panel[K]) ActiveIndex() int {
	return p.active
}

func (p *Panel[K]) IsActive(key K) bool {
	return p.options[p.active] == key
}

// Options returns a copy of the option keys in display order.
func (p *Panel[K]) Options() []K {
	return slices.Clone(p.options)
}

// Select makes key the only active option. Unknown keys leave the panel unchanged.
func (p *Panel[K]) Select(key K) error {
	idx := slices.Index(p.options, key)
	if idx < 0 {
		return ErrUnknownOption
	}
	p.active = idx

	return nil
}

func (p *Panel[K]) SelectIndex(idx int) error {
	if idx < 0 || idx >= len(p.options) {
		return ErrUnknownOption
	}
	p.active = idx

	return nil
}
