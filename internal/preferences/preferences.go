// Package preferences provides the key/value store consulted and written by
// request handlers. Values are strings in two scopes: per-user values belonging
// to the logged-in character, and global values kept in per-user sections of a
// shared file, with the "" section holding the defaults every user starts from.
package preferences

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"loathing_assistant/internal/pkg/logger"
)

// Scope selects the user or global section of the store.
type Scope int

const (
	// User is the per-character scope.
	User Scope = iota
	// Global is the application scope, sectioned by user name.
	Global
)

// Persister saves and loads preference values. A nil Persister keeps the
// store in memory only.
type Persister interface {
	LoadPreferences(ctx context.Context, scope Scope, user string) (map[string]string, error)
	SavePreference(ctx context.Context, scope Scope, user, key, value string) error
}

// defaults are returned for keys never written.
var defaults = map[string]string{
	"retrieveContacts":      "true",
	"considerShadowNoodles": "true",
	"relayBrowserOnly":      "false",
	"showStashIngredients":  "true",
	"homemadeRobotUpgrades": "0",
}

type key struct {
	scope   Scope
	section string
	name    string
}

// Store is a session's preference store.
type Store struct {
	mu        sync.RWMutex
	user      string
	values    map[key]string
	persister Persister
	log       *logger.Logger
}

// NewStore creates an empty store for user.
func NewStore(user string, p Persister, l *logger.Logger) *Store {
	if l == nil {
		l = logger.Nop()
	}
	return &Store{user: user, values: make(map[key]string), persister: p, log: l}
}

// User returns the name of the user the store belongs to.
func (s *Store) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Load replaces the user and global values of user with those of the persister.
func (s *Store) Load(ctx context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	if s.persister == nil {
		return nil
	}

	for _, section := range []struct {
		scope Scope
		user  string
	}{{User, user}, {Global, user}, {Global, ""}} {
		values, err := s.persister.LoadPreferences(ctx, section.scope, section.user)
		if err != nil {
			s.log.Sugar().Errorf("Failed to load preferences for %q: %s", section.user, err)
			return err
		}
		for name, value := range values {
			s.values[key{section.scope, section.user, name}] = value
		}
	}
	return nil
}

// String returns the user value of name, or its default.
func (s *Store) String(name string) string {
	return s.get(key{User, s.User(), name})
}

// Bool coerces the user value of name to a bool.
func (s *Store) Bool(name string) bool {
	return toBool(s.String(name))
}

// Int coerces the user value of name to an int, 0 when unparsable.
func (s *Store) Int(name string) int {
	return toInt(s.String(name))
}

// SetString writes the user value of name.
func (s *Store) SetString(name, value string) {
	s.set(key{User, s.User(), name}, value)
}

// SetBool writes the user value of name.
func (s *Store) SetBool(name string, value bool) {
	s.SetString(name, strconv.FormatBool(value))
}

// SetInt writes the user value of name.
func (s *Store) SetInt(name string, value int) {
	s.SetString(name, strconv.Itoa(value))
}

// GlobalString returns the current user's global value of name.
func (s *Store) GlobalString(name string) string {
	return s.get(key{Global, s.User(), name})
}

// GlobalBool coerces the current user's global value of name to a bool.
func (s *Store) GlobalBool(name string) bool {
	return toBool(s.GlobalString(name))
}

// SetGlobalString writes the current user's global value of name.
func (s *Store) SetGlobalString(name, value string) {
	s.set(key{Global, s.User(), name}, value)
}

// SharedString returns the global value of name from the section of user,
// where "" is the section every user starts from.
func (s *Store) SharedString(user, name string) string {
	return s.get(key{Global, user, name})
}

// SetSharedString writes the global value of name in the section of user.
func (s *Store) SetSharedString(user, name, value string) {
	s.set(key{Global, user, name}, value)
}

// ResetDaily clears every user value whose name starts with an underscore;
// those track once-per-day actions.
func (s *Store) ResetDaily() {
	s.mu.Lock()
	var cleared []key
	for k := range s.values {
		if k.scope == User && k.section == s.user && strings.HasPrefix(k.name, "_") {
			cleared = append(cleared, k)
		}
	}
	s.mu.Unlock()

	for _, k := range cleared {
		s.set(k, "")
	}
}

func (s *Store) get(k key) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[k]; ok {
		return v
	}
	return defaults[k.name]
}

func (s *Store) set(k key, value string) {
	s.mu.Lock()
	s.values[k] = value
	p := s.persister
	s.mu.Unlock()

	if p == nil {
		return
	}

	const saveTimeout = 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.SavePreference(ctx, k.scope, k.section, k.name, value); err != nil {
		s.log.Sugar().Errorf("Failed to save preference %q: %s", k.name, err)
	}
}

func toBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func toInt(v string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
	if err != nil {
		return 0
	}
	return n
}
