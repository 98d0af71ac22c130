package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/derekparker/trie"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
)

var (
	ErrUnknownLocation   = errors.New("unknown location")
	ErrAmbiguousLocation = errors.New("ambiguous location")
)

// Locations maps location names to positions. Lookups ignore case and
// accept any prefix that identifies a single name.
type Locations struct {
	mu    sync.RWMutex
	names *trie.Trie // lower-cased name -> pathfind.Position
}

// NewLocations creates an empty registry.
func NewLocations() *Locations {
	return &Locations{names: trie.New()}
}

// Add registers or replaces a location.
func (l *Locations) Add(name string, pos pathfind.Position) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownLocation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.names.Find(key); ok {
		l.names.Remove(key)
	}
	l.names.Add(key, pos)
	return nil
}

// Resolve returns the position registered under name or a unique prefix of it.
func (l *Locations) Resolve(name string) (pathfind.Position, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return pathfind.Position{}, fmt.Errorf("%w: empty name", ErrUnknownLocation)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if node, ok := l.names.Find(key); ok {
		return node.Meta().(pathfind.Position), nil
	}

	matches := l.names.PrefixSearch(key)
	switch len(matches) {
	case 0:
		return pathfind.Position{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	case 1:
		node, _ := l.names.Find(matches[0])
		return node.Meta().(pathfind.Position), nil
	default:
		sort.Strings(matches)
		return pathfind.Position{}, fmt.Errorf("%w: %q matches %s",
			ErrAmbiguousLocation, name, strings.Join(matches, ", "))
	}
}

// Names returns all registered names, sorted.
func (l *Locations) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := l.names.Keys()
	sort.Strings(names)
	return names
}

// Len returns the number of locations.
func (l *Locations) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names.Keys())
}
