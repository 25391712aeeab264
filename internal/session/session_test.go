package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/history"
	"github.com/comigor/creatorvault/internal/negotiation"
	"github.com/comigor/creatorvault/internal/vault"
)

var testAsset = vault.Asset{
	ID:     "as-001",
	Name:   "Cyberpunk Soundscape Vol 1",
	Params: vault.Params{MinPrice: decimal.RequireFromString("0.2"), RoyaltyPercentage: 5, DurationDays: 365},
}

type mockNegotiator struct {
	NegotiateFunc func(ctx context.Context, asset vault.Asset, log []history.Message, input string) (string, error)
	calls         int
}

func (m *mockNegotiator) Negotiate(ctx context.Context, asset vault.Asset, log []history.Message, input string) (string, error) {
	m.calls++
	return m.NegotiateFunc(ctx, asset, log, input)
}

func replying(text string) *mockNegotiator {
	return &mockNegotiator{NegotiateFunc: func(context.Context, vault.Asset, []history.Message, string) (string, error) {
		return text, nil
	}}
}

func failing(err error) *mockNegotiator {
	return &mockNegotiator{NegotiateFunc: func(context.Context, vault.Asset, []history.Message, string) (string, error) {
		return "", apperr.CompletionFailure("negotiation request failed", err)
	}}
}

func TestSubmit_FailureDisconnects(t *testing.T) {
	neg := failing(errors.New("503 service unavailable"))
	s := New("s1", testAsset, neg)

	out, err := s.Submit(context.Background(), "offer 0.1 ETH")
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, out)
	require.Equal(t, 1, neg.calls)

	require.Equal(t, StateDisconnected, s.State())
	require.Equal(t, Offline, s.Connectivity())
	require.False(t, s.Pending())

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, history.RoleUser, msgs[0].Role)
	require.Equal(t, "offer 0.1 ETH", msgs[0].Content)
	require.Equal(t, history.RoleSystem, msgs[1].Role)
	require.Equal(t, FailureNotice, msgs[1].Content)
}

func TestSubmit_SuccessWithSentinel(t *testing.T) {
	s := New("s1", testAsset, replying("OFFER ACCEPTED: 0.25 ETH, 7% royalty, 365 days."))

	out, err := s.Submit(context.Background(), "0.25 ETH and 7% royalty?")
	require.NoError(t, err)
	require.Equal(t, OutcomeReplied, out)
	require.Equal(t, StateIdle, s.State())
	require.Equal(t, Online, s.Connectivity())

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, history.RoleAgent, msgs[1].Role)

	// render twice; the affordance shows once per render
	for range 2 {
		shown := 0
		for _, m := range s.Messages() {
			if negotiation.Accepted(m.Content) {
				shown++
			}
		}
		require.Equal(t, 1, shown)
	}
}

func TestSubmit_InvalidInput(t *testing.T) {
	neg := replying("never")
	s := New("s1", testAsset, neg)

	for _, text := range []string{"", "   ", "\n\t"} {
		out, err := s.Submit(context.Background(), text)
		require.ErrorIs(t, err, apperr.ErrInvalidInput)
		require.Equal(t, OutcomeRejected, out)
	}
	require.Empty(t, s.Messages())
	require.Zero(t, neg.calls)
	require.Equal(t, StateIdle, s.State())
}

func TestSubmit_OfflineIsNoOp(t *testing.T) {
	neg := failing(errors.New("down"))
	s := New("s1", testAsset, neg)
	_, err := s.Submit(context.Background(), "first")
	require.NoError(t, err)
	before := s.Messages()

	out, err := s.Submit(context.Background(), "second")
	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, out)
	require.Equal(t, before, s.Messages())
	require.Equal(t, 1, neg.calls)
}

func TestSubmit_PendingIsNoOp(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	neg := &mockNegotiator{NegotiateFunc: func(context.Context, vault.Asset, []history.Message, string) (string, error) {
		close(entered)
		<-release
		return "counter 0.3 ETH", nil
	}}
	s := New("s1", testAsset, neg)

	done := make(chan Outcome)
	go func() {
		out, _ := s.Submit(context.Background(), "first")
		done <- out
	}()
	<-entered

	require.True(t, s.Pending())
	before := s.Messages()
	out, err := s.Submit(context.Background(), "second")
	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, out)
	require.Equal(t, before, s.Messages())

	close(release)
	require.Equal(t, OutcomeReplied, <-done)
	require.Len(t, s.Messages(), 2)
	require.Equal(t, 1, neg.calls)
}

func TestSubmit_HistoryExcludesNewInput(t *testing.T) {
	var gotLog []history.Message
	var gotInput string
	neg := &mockNegotiator{NegotiateFunc: func(_ context.Context, _ vault.Asset, log []history.Message, input string) (string, error) {
		gotLog, gotInput = log, input
		return "ok", nil
	}}
	s := New("s1", testAsset, neg, WithNotice("licensee joined"))

	_, err := s.Submit(context.Background(), "offer 0.15 ETH")
	require.NoError(t, err)
	require.Len(t, gotLog, 1)
	require.Equal(t, "licensee joined", gotLog[0].Content)
	require.Equal(t, "offer 0.15 ETH", gotInput)
}

func TestReconnect(t *testing.T) {
	s := New("s1", testAsset, failing(errors.New("down")))

	ok, err := s.Reconnect(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "reconnect from Idle must be a no-op")
	require.Empty(t, s.Messages())

	_, err = s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	before := len(s.Messages())

	ok, err = s.Reconnect(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateIdle, s.State())

	msgs := s.Messages()
	require.Len(t, msgs, before+1)
	require.Equal(t, history.RoleSystem, msgs[len(msgs)-1].Role)
	require.Equal(t, RecoveryNotice, msgs[len(msgs)-1].Content)

	ok, err = s.Reconnect(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Len(t, s.Messages(), before+1)
}

func TestReconnect_DoesNotRetry(t *testing.T) {
	neg := failing(errors.New("down"))
	s := New("s1", testAsset, neg)
	_, _ = s.Submit(context.Background(), "hello")
	_, _ = s.Reconnect(context.Background())

	require.Equal(t, 1, neg.calls)
}

// Every accepted submit ends in exactly one agent reply or failure notice.
func TestSubmit_NoSubmissionLost(t *testing.T) {
	n := 0
	neg := &mockNegotiator{NegotiateFunc: func(context.Context, vault.Asset, []history.Message, string) (string, error) {
		n++
		if n%3 == 0 {
			return "", errors.New("flaky")
		}
		return "counter", nil
	}}
	s := New("s1", testAsset, neg)

	var completions int
	s.Subscribe(func(m history.Message) {
		if m.Role == history.RoleAgent || m.Content == FailureNotice {
			completions++
		}
	})

	accepted := 0
	for i := range 20 {
		out, err := s.Submit(context.Background(), "offer")
		require.NoError(t, err)
		if out != OutcomeRejected {
			accepted++
		}
		if i%4 == 0 {
			_, _ = s.Reconnect(context.Background())
		}
	}
	require.Equal(t, accepted, completions)
	require.Equal(t, accepted, neg.calls)
}

func TestSubmit_TimeoutDisconnects(t *testing.T) {
	neg := &mockNegotiator{NegotiateFunc: func(ctx context.Context, _ vault.Asset, _ []history.Message, _ string) (string, error) {
		<-ctx.Done()
		return "", apperr.CompletionFailure("negotiation request failed", ctx.Err())
	}}
	s := New("s1", testAsset, neg, WithTimeout(20*time.Millisecond))

	out, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, out)
	require.Equal(t, StateDisconnected, s.State())
}

func TestSubmit_CallerCancelDoesNotAbortDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	neg := &mockNegotiator{NegotiateFunc: func(ctx context.Context, _ vault.Asset, _ []history.Message, _ string) (string, error) {
		cancel()
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "still here", nil
	}}
	s := New("s1", testAsset, neg)

	out, err := s.Submit(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, OutcomeReplied, out)
}

func TestManager(t *testing.T) {
	m := NewManager(replying("hi"), time.Second)

	s := m.Start(testAsset)
	require.NotEmpty(t, s.ID)
	require.Equal(t, 1, m.Len())

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, history.RoleSystem, msgs[0].Role)
	require.Contains(t, msgs[0].Content, `"Cyberpunk Soundscape Vol 1"`)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	other := m.Start(testAsset)
	require.NotEqual(t, s.ID, other.ID)
	_, err = other.Submit(context.Background(), "only here")
	require.NoError(t, err)
	require.Len(t, s.Messages(), 1)

	require.NoError(t, m.End(s.ID))
	_, err = m.Get(s.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, m.End(s.ID), apperr.ErrNotFound)
}
