package geoip

import (
	"context"
	"sync"
)

// StaticLocator serves fixed results from memory and records every lookup.
type StaticLocator struct {
	mu      sync.RWMutex
	results map[string]*LocationResult
	lookups []string
}

func NewStaticLocator(results map[string]*LocationResult) *StaticLocator {
	if results == nil {
		results = make(map[string]*LocationResult)
	}
	return &StaticLocator{results: results}
}

func (s *StaticLocator) Locate(_ context.Context, ip string) (*LocationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, ip)
	return s.results[ip], nil
}

// Put registers the result for ip.
func (s *StaticLocator) Put(ip string, result *LocationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[ip] = result
}

// Lookups returns every IP passed to Locate, in call order.
func (s *StaticLocator) Lookups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lookups))
	copy(out, s.lookups)
	return out
}
