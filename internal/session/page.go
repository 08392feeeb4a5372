// Package session keeps the view state of each mounted page between requests.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/srich3/portfolio/internal/content"
	"github.com/srich3/portfolio/internal/viewstate"
)

// ErrClosed is returned by Do once the page has been torn down.
var ErrClosed = errors.New("page closed")

// Page is the root container for one visitor: a navigation shell followed by
// independent sections, each owning its own state.
type Page struct {
	mu sync.Mutex

	ID           string
	Nav          viewstate.NavShell
	Projects     *viewstate.Panel[string]
	Architecture *viewstate.Panel[string]
	Contact      *viewstate.ContactForm
	Reveals      *viewstate.Reveals

	// lastSeen is unix nanoseconds, read without the page lock.
	lastSeen atomic.Int64
	closed   bool
}

// NewPage builds a page with every selector on its first option.
func NewPage(id string, site *content.Site, scheduler viewstate.Scheduler, now time.Time) (*Page, error) {
	projects, errProjects := viewstate.NewPanel(site.ProjectIDs()...)
	if errProjects != nil {
		return nil, errProjects
	}

	architecture, errArch := viewstate.NewPanel(site.ArchitectureIDs()...)
	if errArch != nil {
		return nil, errArch
	}

	page := &Page{
		ID:           id,
		Projects:     projects,
		Architecture: architecture,
		Contact:      viewstate.NewContactForm(scheduler),
		Reveals:      viewstate.NewReveals(site.RevealIDs()...),
	}
	page.touch(now)

	return page, nil
}

// Do runs fn with exclusive access to the page.
func (p *Page) Do(fn func(page *Page) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	return fn(p)
}

func (p *Page) touch(now time.Time) {
	p.lastSeen.Store(now.UnixNano())
}

func (p *Page) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, p.lastSeen.Load()))
}

// Close tears the page down and cancels its pending timers.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.Contact.Close()
}
