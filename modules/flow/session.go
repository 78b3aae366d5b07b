package flow

import (
	"sync"

	"bakerybot/modules/cart"
	"bakerybot/modules/catalog"
)

// State identifies a step of the selection conversation.
type State string

const (
	// StateIdle indicates there is no active selection.
	StateIdle State = "idle"
	// StateChoosingCategory awaits a product category pick.
	StateChoosingCategory State = "choosing_category"
	// StateChoosingItem awaits an item or course pick.
	StateChoosingItem State = "choosing_item"
	// StateAdjustingQuantity awaits decrease/increase/confirm for a picked entry.
	StateAdjustingQuantity State = "adjusting_quantity"
	// StateViewingCart awaits the checkout confirm/clear decision.
	StateViewingCart State = "viewing_cart"
)

// Pending carries the selection being built before it lands in the cart.
type Pending struct {
	Kind     catalog.Kind
	Category string
	Entry    catalog.Entry
	Quantity int
	// HasEntry distinguishes a picked entry from a browse in progress.
	HasEntry bool
}

// toCartLine converts the confirmed selection into a cart line.
func (p *Pending) toCartLine() cart.Line {
	return cart.Line{
		Item:     p.Entry.Name,
		Kind:     p.Entry.Kind,
		Quantity: p.Quantity,
		Price:    p.Entry.Price,
	}
}

// Session stores conversation state, the cart, and the pending selection for
// one user. Handlers for a single conversation run one at a time, so session
// fields need no lock of their own.
type Session struct {
	State   State
	Cart    *cart.Cart
	Pending *Pending
}

// Sessions is the process-wide session store keyed by user id.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[int64]*Session)}
}

// Get returns the session for a user, creating an idle one with an empty
// cart if none exists yet.
func (s *Sessions) Get(userID int64) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess = &Session{State: StateIdle, Cart: cart.New()}
	s.sessions[userID] = sess
	return sess
}

// State returns the current state of a user, or StateIdle if no session exists.
func (s *Sessions) State(userID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// Drop removes the entire session for a user.
func (s *Sessions) Drop(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// reset abandons the selection in progress, keeping the cart.
func (sess *Session) reset() {
	sess.State = StateIdle
	sess.Pending = nil
}
