// Package scraper defines the country scraper contract and the registry the
// HTTP layer and scheduler resolve scrapers from.
package scraper

import (
	"context"
	"fmt"
	"sync"

	"github.com/presswatch/presswatch/internal/shared/types"
)

// Scraper fetches press releases for a single country.
type Scraper interface {
	// Country is the lowercase route identifier, e.g. "china".
	Country() string
	// DisplayName is the human-readable country name, e.g. "China".
	DisplayName() string
	// Method describes how releases are obtained, e.g. "Browser Automation".
	Method() string
	// Scrape fetches up to pages list pages and returns the extracted releases.
	Scrape(ctx context.Context, pages int) ([]types.PressRelease, error)
}

// Registry holds the registered country scrapers.
type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]Scraper
	order    []string
}

// NewRegistry creates an empty scraper registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]Scraper)}
}

// Register adds a scraper, replacing any previous one for the same country.
func (r *Registry) Register(s Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scrapers[s.Country()]; !exists {
		r.order = append(r.order, s.Country())
	}
	r.scrapers[s.Country()] = s
}

// Get returns the scraper for a country.
func (r *Registry) Get(country string) (Scraper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scrapers[country]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for country %q", country)
	}
	return s, nil
}

// Countries returns registered country identifiers in registration order.
func (r *Registry) Countries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Stats returns registry statistics for health reporting.
func (r *Registry) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"countries": len(r.scrapers),
	}
}
