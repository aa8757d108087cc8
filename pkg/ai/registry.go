package ai

import "strings"

// ProviderInfo is the introspection record exposed for one scorer.
type ProviderInfo struct {
	Available bool `json:"available"`
}

// Registry holds every configured scorer and selects the best available one.
// It is assembled once at startup and read-only afterwards, so concurrent
// reads need no locking.
type Registry struct {
	scorers []Scorer
}

// NewRegistry builds a registry over the given scorers in registration
// order. A mock scorer is appended automatically when none of the given
// scorers is the mock, guaranteeing the registry never has zero usable
// providers.
func NewRegistry(scorers ...Scorer) *Registry {
	hasMock := false
	for _, s := range scorers {
		if s.Name() == "mock" {
			hasMock = true
		}
	}
	if !hasMock {
		scorers = append(scorers, NewMockScorer())
	}
	return &Registry{scorers: scorers}
}

// Select returns the scorer to use. A preferred provider wins when it is
// registered and available; otherwise the first available non-mock scorer in
// registration order is chosen, and the mock closes the gap. Real providers
// are preferred for quality; the mock guarantees liveness without
// credentials.
func (r *Registry) Select(preferred string) (Scorer, error) {
	preferred = strings.ToLower(strings.TrimSpace(preferred))

	if preferred != "" {
		for _, s := range r.scorers {
			if s.Name() == preferred && s.Available() {
				return s, nil
			}
		}
	}

	for _, s := range r.scorers {
		if s.Name() != "mock" && s.Available() {
			return s, nil
		}
	}

	for _, s := range r.scorers {
		if s.Name() == "mock" && s.Available() {
			return s, nil
		}
	}

	return nil, ErrNoProvider
}

// Available lists the names of all scorers whose availability flag is set.
func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.scorers))
	for _, s := range r.scorers {
		if s.Available() {
			names = append(names, s.Name())
		}
	}
	return names
}

// Info returns the per-provider introspection map.
func (r *Registry) Info() map[string]ProviderInfo {
	info := make(map[string]ProviderInfo, len(r.scorers))
	for _, s := range r.scorers {
		info[s.Name()] = ProviderInfo{Available: s.Available()}
	}
	return info
}
