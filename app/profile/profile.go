// Package profile holds the domain profiles that parameterize ranking and
// quality assessment: relevance keywords, origin quotas and claims an
// analysis must not make.
package profile

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/pulse-comb/app/rank"
)

type Profile struct {
	Name             string          `yaml:"-" json:"name"`
	Keywords         []string        `yaml:"keywords" json:"keywords"`
	PrivilegedOrigin string          `yaml:"privileged_origin" json:"privileged_origin,omitempty"`
	QuotaFloor       *int            `yaml:"quota_floor" json:"quota_floor,omitempty"`
	MinTargets       int             `yaml:"min_targets" json:"min_targets,omitempty"`
	ForbiddenClaims  []string        `yaml:"forbidden_claims" json:"forbidden_claims"`
	Heuristics       rank.Heuristics `yaml:"heuristics" json:"-"`
}

// RankOptions merges the profile with service-wide fallbacks.
func (p *Profile) RankOptions(minTargets int, privilegedOrigin string, quotaFloor int) rank.Options {
	opts := rank.Options{
		MinTotal:         minTargets,
		Keywords:         p.Keywords,
		PrivilegedOrigin: privilegedOrigin,
		QuotaFloor:       quotaFloor,
		Heuristics:       p.Heuristics,
	}
	if p.MinTargets > 0 {
		opts.MinTotal = p.MinTargets
	}
	if p.PrivilegedOrigin != "" {
		opts.PrivilegedOrigin = p.PrivilegedOrigin
	}
	if p.QuotaFloor != nil {
		opts.QuotaFloor = *p.QuotaFloor
	}
	return opts
}

type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewStore returns a store holding the built-in profiles.
func NewStore() *Store {
	s := &Store{profiles: make(map[string]*Profile)}
	for _, p := range builtins() {
		s.profiles[p.Name] = p
	}
	return s
}

type profilesFile struct {
	Profiles map[string]yaml.Node `yaml:"profiles"`
}

// LoadFile adds or replaces profiles from a YAML file. Unset heuristics keep
// their default values.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profiles file: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	loaded := make(map[string]*Profile, len(file.Profiles))
	for name, node := range file.Profiles {
		p := &Profile{Name: name, Heuristics: rank.DefaultHeuristics()}
		if err := node.Decode(p); err != nil {
			return fmt.Errorf("invalid profile %s: %w", name, err)
		}
		if p.QuotaFloor != nil && *p.QuotaFloor < 0 {
			return fmt.Errorf("invalid profile %s: quota floor must be non-negative", name)
		}
		loaded[name] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range loaded {
		s.profiles[name] = p
		slog.Debug("Profile loaded", "profile", name, "keywords", len(p.Keywords))
	}

	return nil
}

func (s *Store) Get(name string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}
	return p, nil
}

func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
