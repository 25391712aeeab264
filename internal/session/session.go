// Package session runs one negotiation conversation: it gates user actions
// through a state machine, dispatches accepted input to the negotiator and
// records every outcome in the session's message log.
package session

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/history"
	"github.com/comigor/creatorvault/internal/logger"
	"github.com/comigor/creatorvault/internal/vault"
)

// FSM States
type State string

const (
	StateIdle         State = "Idle"         // online, nothing in flight
	StatePending      State = "Pending"      // one request in flight
	StateDisconnected State = "Disconnected" // offline until Reconnect
)

// FSM Triggers
type Trigger string

const (
	TriggerSubmit              Trigger = "Submit"
	TriggerCompletionSucceeded Trigger = "CompletionSucceeded"
	TriggerCompletionFailed    Trigger = "CompletionFailed"
	TriggerReconnect           Trigger = "Reconnect"
)

type Connectivity string

const (
	Online  Connectivity = "online"
	Offline Connectivity = "offline"
)

// System notices appended on failure and recovery.
const (
	FailureNotice  = "Agent communication failure. The neural link has been severed."
	RecoveryNotice = "System rebooting... Neural link re-established."
)

// Outcome reports what Submit did.
type Outcome string

const (
	OutcomeRejected Outcome = "rejected" // pending or offline; nothing changed
	OutcomeReplied  Outcome = "replied"
	OutcomeFailed   Outcome = "failed"
)

// Negotiator is the request orchestrator as seen by a session.
type Negotiator interface {
	Negotiate(ctx context.Context, asset vault.Asset, log []history.Message, input string) (string, error)
}

// Session is one negotiation conversation. At most one request is in flight;
// the Pending state, not a held lock, enforces that.
type Session struct {
	ID    string
	Asset vault.Asset

	negotiator Negotiator
	timeout    time.Duration
	log        *history.Store

	mu  sync.Mutex // guards check-and-fire on fsm
	fsm *stateless.StateMachine
}

type Option func(*Session)

// WithTimeout bounds each dispatch; an expired request counts as a failure.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithNotice seeds the log with a system notice.
func WithNotice(content string) Option {
	return func(s *Session) {
		s.log.Append(history.NewMessage(history.RoleSystem, content))
	}
}

func New(id string, asset vault.Asset, negotiator Negotiator, opts ...Option) *Session {
	s := &Session{
		ID:         id,
		Asset:      asset,
		negotiator: negotiator,
		log:        history.NewStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fsm = s.newStateMachine()
	return s
}

func (s *Session) newStateMachine() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateIdle)
	fsm.SetTriggerParameters(TriggerSubmit, reflect.TypeOf(""))
	fsm.SetTriggerParameters(TriggerCompletionSucceeded, reflect.TypeOf(""))

	// State: Idle
	// Entered after a reply or a reconnect.
	fsm.Configure(StateIdle).
		Permit(TriggerSubmit, StatePending).
		OnEntryFrom(TriggerCompletionSucceeded, func(_ context.Context, args ...any) error {
			s.log.Append(history.NewMessage(history.RoleAgent, args[0].(string)))
			return nil
		}).
		OnEntryFrom(TriggerReconnect, func(_ context.Context, _ ...any) error {
			s.log.Append(history.NewMessage(history.RoleSystem, RecoveryNotice))
			return nil
		})

	// State: Pending
	// The user message is appended on entry and never rolled back.
	fsm.Configure(StatePending).
		OnEntryFrom(TriggerSubmit, func(_ context.Context, args ...any) error {
			s.log.Append(history.NewMessage(history.RoleUser, args[0].(string)))
			return nil
		}).
		Permit(TriggerCompletionSucceeded, StateIdle).
		Permit(TriggerCompletionFailed, StateDisconnected)

	// State: Disconnected
	// Input is refused until an explicit Reconnect. The failed request is not retried.
	fsm.Configure(StateDisconnected).
		OnEntry(func(_ context.Context, _ ...any) error {
			s.log.Append(history.NewMessage(history.RoleSystem, FailureNotice))
			return nil
		}).
		Permit(TriggerReconnect, StateIdle)

	fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		logger.L.Debug("session transition", "session_id", s.ID, "trigger", t.Trigger, "from", t.Source, "to", t.Destination)
	})
	return fsm
}

// Submit sends text to the negotiator. Empty or whitespace-only text is an
// apperr InvalidInput error. While a request is pending or the agent is
// offline, Submit does nothing and returns OutcomeRejected.
//
// A failed completion is not returned as an error: it is recorded as a system
// notice and the session moves to Disconnected.
func (s *Session) Submit(ctx context.Context, text string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return OutcomeRejected, apperr.InvalidInput("empty message")
	}
	l := logger.With("session_id", s.ID, "asset_id", s.Asset.ID)

	s.mu.Lock()
	if ok, _ := s.fsm.CanFire(TriggerSubmit, text); !ok {
		s.mu.Unlock()
		l.Debug("submit ignored", "state", s.State())
		return OutcomeRejected, nil
	}
	prior := s.log.All()
	if err := s.fsm.FireCtx(ctx, TriggerSubmit, text); err != nil {
		s.mu.Unlock()
		return OutcomeRejected, err
	}
	s.mu.Unlock()

	// Dispatch cannot be cancelled by the caller once started.
	dispatchCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(dispatchCtx, s.timeout)
		defer cancel()
	}
	reply, err := s.negotiator.Negotiate(dispatchCtx, s.Asset, prior, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	fireCtx := context.WithoutCancel(ctx)
	if err != nil {
		l.Warn("agent went offline", "error", err)
		if ferr := s.fsm.FireCtx(fireCtx, TriggerCompletionFailed); ferr != nil {
			return OutcomeFailed, ferr
		}
		return OutcomeFailed, nil
	}
	if ferr := s.fsm.FireCtx(fireCtx, TriggerCompletionSucceeded, reply); ferr != nil {
		return OutcomeFailed, ferr
	}
	return OutcomeReplied, nil
}

// Reconnect brings a Disconnected session back to Idle and appends a recovery
// notice. In any other state it does nothing and returns false.
func (s *Session) Reconnect(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ok, _ := s.fsm.CanFire(TriggerReconnect); !ok {
		return false, nil
	}
	if err := s.fsm.FireCtx(ctx, TriggerReconnect); err != nil {
		return false, err
	}
	logger.L.Info("agent reconnected", "session_id", s.ID)
	return true, nil
}

func (s *Session) State() State {
	return s.fsm.MustState().(State)
}

func (s *Session) Connectivity() Connectivity {
	if s.State() == StateDisconnected {
		return Offline
	}
	return Online
}

func (s *Session) Pending() bool {
	return s.State() == StatePending
}

// Messages returns the log in insertion order.
func (s *Session) Messages() []history.Message {
	return s.log.All()
}

// Subscribe registers l for every future log append.
func (s *Session) Subscribe(l history.Listener) {
	s.log.Subscribe(l)
}
