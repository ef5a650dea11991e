package session

import (
	"sort"
	"sync"

	"relaybot/internal/domain"
)

// maxRoutesPerUser caps how many reply-routable tokens are retained per
// user. Recording a new route evicts that user's oldest token beyond the
// cap, so replies to very old relayed messages stop resolving instead of
// the table growing without bound.
const maxRoutesPerUser = 64

// State owns all in-memory session bookkeeping: which users are pending or
// active, and the routing table correlating relayed message tokens back to
// their origin user. All access goes through its methods; the internal
// containers are never exposed.
type State struct {
	mu      sync.Mutex
	pending map[int64]struct{}
	active  map[int64]struct{}

	routes     map[int]int64   // relayed message token -> origin user
	userTokens map[int64][]int // per-user tokens, oldest first
	lastToken  map[int64]int   // most recent token per user
}

// New creates an empty session state.
func New() *State {
	return &State{
		pending:    make(map[int64]struct{}),
		active:     make(map[int64]struct{}),
		routes:     make(map[int]int64),
		userTokens: make(map[int64][]int),
		lastToken:  make(map[int64]int),
	}
}

// Of returns the user's current session state.
func (s *State) Of(userID int64) domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateOf(userID)
}

func (s *State) stateOf(userID int64) domain.SessionState {
	if _, ok := s.active[userID]; ok {
		return domain.StateActive
	}
	if _, ok := s.pending[userID]; ok {
		return domain.StatePending
	}
	return domain.StateNone
}

// Apply moves a user from none to pending. If the user is already pending
// or active the call is a no-op and the current state is returned.
func (s *State) Apply(userID int64) (bool, domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.stateOf(userID); current != domain.StateNone {
		return false, current
	}
	s.pending[userID] = struct{}{}
	return true, domain.StatePending
}

// Cancel removes a pending request. Returns false if the user was not
// pending.
func (s *State) Cancel(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[userID]; !ok {
		return false
	}
	delete(s.pending, userID)
	return true
}

// Accept moves a pending user to active. Returns false if the user is no
// longer pending, so a second operator acting on the same request sees
// that it was already handled.
func (s *State) Accept(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[userID]; !ok {
		return false
	}
	delete(s.pending, userID)
	s.active[userID] = struct{}{}
	return true
}

// Reject drops a pending request. Returns false if the user is no longer
// pending.
func (s *State) Reject(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[userID]; !ok {
		return false
	}
	delete(s.pending, userID)
	return true
}

// Connect puts a user into the active state regardless of whether a
// pending request exists; any pending membership is dropped.
func (s *State) Connect(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, userID)
	s.active[userID] = struct{}{}
}

// End terminates an active session. Returns false if the user had none.
func (s *State) End(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[userID]; !ok {
		return false
	}
	delete(s.active, userID)
	return true
}

// Clear removes the user from both sets and reports the state they held.
// Used when a user is banned.
func (s *State) Clear(userID int64) domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.stateOf(userID)
	delete(s.pending, userID)
	delete(s.active, userID)
	return prior
}

// Pending returns all pending user IDs in ascending order.
func (s *State) Pending() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.pending)
}

// Active returns all active user IDs in ascending order.
func (s *State) Active() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.active)
}

// RecordRoute maps a relayed message token to its origin user and updates
// the user's last-routed token. Tokens beyond the per-user retention cap
// are evicted oldest-first.
func (s *State) RecordRoute(token int, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes[token] = userID
	s.lastToken[userID] = token

	tokens := append(s.userTokens[userID], token)
	if len(tokens) > maxRoutesPerUser {
		evicted := tokens[0]
		tokens = tokens[1:]
		delete(s.routes, evicted)
	}
	s.userTokens[userID] = tokens
}

// ResolveRoute returns the origin user for a relayed message token.
func (s *State) ResolveRoute(token int) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.routes[token]
	return userID, ok
}

// RecordLastToken overwrites the user's last-routed token without adding
// a routing entry. Used for operator-to-user deliveries, which are not
// reply-routable themselves.
func (s *State) RecordLastToken(userID int64, token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastToken[userID] = token
}

// LastToken returns the most recent token recorded for a user.
func (s *State) LastToken(userID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.lastToken[userID]
	return token, ok
}

func sortedKeys(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
