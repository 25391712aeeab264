// Package history keeps the ordered message log of one negotiation session.
// The log lives in memory and is discarded with its session.
package history

import "sync"

// Listener is notified after every append, in append order, also across
// concurrent writers. A listener must not call Append on the same Store.
type Listener func(Message)

// Store is an append-only message log. Insertion order is authoritative;
// CreatedAt is informational only.
type Store struct {
	notifyMu  sync.Mutex // held from append through notification
	mu        sync.RWMutex
	messages  []Message
	listeners []Listener
}

func NewStore() *Store {
	return &Store{}
}

// Subscribe registers l for future appends.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Append adds msg to the end of the log.
func (s *Store) Append(msg Message) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l(msg)
	}
}

// All returns a copy of the log in insertion order.
func (s *Store) All() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message, if any.
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
