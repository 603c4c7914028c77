// Package skills loads curated skill profiles from a datapack file. The
// datapack is a cached model artifact fetched by the prefetch step, so the
// worker can resolve a profile name like "backend" into a concrete skill
// list without the client sending one.
package skills

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

var ErrUnknownProfile = errors.New("unknown skills profile")

// Datapack is the on-disk artifact layout.
type Datapack struct {
	Locale   string              `json:"locale"`
	Profiles map[string][]string `json:"profiles"`
}

// Library is an immutable, name-indexed view over a datapack.
type Library struct {
	locale   string
	profiles map[string][]string
}

// Load reads and indexes a datapack file.
func Load(path string) (*Library, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read datapack: %w", err)
	}
	var dp Datapack
	if err := json.Unmarshal(raw, &dp); err != nil {
		return nil, fmt.Errorf("parse datapack %s: %w", path, err)
	}
	return FromDatapack(dp)
}

// FromDatapack validates and indexes an already-decoded datapack.
func FromDatapack(dp Datapack) (*Library, error) {
	if len(dp.Profiles) == 0 {
		return nil, errors.New("datapack has no profiles")
	}
	profiles := make(map[string][]string, len(dp.Profiles))
	for name, list := range dp.Profiles {
		if name == "" {
			return nil, errors.New("datapack has a profile with an empty name")
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("profile %q has no skills", name)
		}
		profiles[name] = append([]string(nil), list...)
	}
	return &Library{locale: dp.Locale, profiles: profiles}, nil
}

func (l *Library) Locale() string { return l.locale }

// Names returns the profile names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.profiles))
	for name := range l.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns a copy of the named skill list.
func (l *Library) Profile(name string) ([]string, error) {
	list, ok := l.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return append([]string(nil), list...), nil
}
