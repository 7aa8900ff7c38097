package query

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/nrfta/admin-go"
)

// Store keeps the query state of every registered resource.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	config *admin.ListConfig
	states map[string]State
}

// NewStore creates an empty store. Resources registered without an explicit
// initial state start from NewState(config).
func NewStore(config *admin.ListConfig) *Store {
	if config == nil {
		config = admin.NewListConfig()
	}
	return &Store{
		config: config,
		states: map[string]State{},
	}
}

// Register adds a resource to the store and returns its current state.
// Registering a resource twice keeps the existing state.
func (s *Store) Register(resource string, initial ...State) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[resource]; ok {
		return state.Clone()
	}

	state := NewState(s.config)
	if len(initial) > 0 {
		state = s.normalize(initial[0])
	}
	s.states[resource] = state
	return state.Clone()
}

// Unregister forgets the state of a resource.
func (s *Store) Unregister(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, resource)
}

// Get returns the state of a resource and whether it is registered.
func (s *Store) Get(resource string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[resource]
	if !ok {
		return State{}, false
	}
	return state.Clone(), true
}

// Apply reduces the state of a resource with intent and stores the result.
// Intents for unregistered resources are ignored and reported with false.
// An intent whose result fails the config's Validate, such as a page size
// above MaxPerPage, leaves the state unchanged.
func (s *Store) Apply(resource string, intent Intent) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[resource]
	if !ok {
		return State{}, false
	}

	next := Reduce(state, intent)
	if err := s.config.Validate(next.Pagination()); err != nil {
		return state.Clone(), true
	}
	s.states[resource] = next
	return next.Clone(), true
}

// Replace overwrites the state of a registered resource.
func (s *Store) Replace(resource string, state State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[resource]; !ok {
		return false
	}
	s.states[resource] = s.normalize(state)
	return true
}

// normalize copies state with its page size brought within the config.
func (s *Store) normalize(state State) State {
	out := state.Clone()
	out.PerPage = s.config.EffectivePerPage(out.PerPage)
	if out.Page < 1 {
		out.Page = 1
	}
	return out
}

// Resources returns the registered resource names, sorted.
func (s *Store) Resources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := lo.Keys(s.states)
	sort.Strings(names)
	return names
}
