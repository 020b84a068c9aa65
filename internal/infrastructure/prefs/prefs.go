package prefs

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/viper"
)

// Store persists operator preferences to a local JSON file. The excluded
// group list must survive restarts; writes go to disk before the setter
// returns.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// NewStore opens the preference file, creating state in memory if the file
// does not exist yet.
func NewStore(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("reading preference file %s: %w", path, err)
		}
		// Missing file means first run; defaults apply.
	}

	return &Store{v: v, path: path}, nil
}

// ExcludedGroups returns the persisted exclusion list, sorted.
func (s *Store) ExcludedGroups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.v.GetStringSlice("excluded_groups")
	sorted := make([]string, len(groups))
	copy(sorted, groups)
	sort.Strings(sorted)
	return sorted
}

// SetExcludedGroups replaces the exclusion list and writes it to disk.
// Duplicates are collapsed.
func (s *Store) SetExcludedGroups(groups []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(groups))
	unique := make([]string, 0, len(groups))
	for _, g := range groups {
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		unique = append(unique, g)
	}
	sort.Strings(unique)

	s.v.Set("excluded_groups", unique)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing preference file %s: %w", s.path, err)
	}
	return nil
}
