package session

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kidchat/internal/application/credential"
	"github.com/doeshing/kidchat/internal/application/reveal"
	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/infrastructure/security"
	"github.com/doeshing/kidchat/internal/ports"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (plainHasher) Compare(hash, password string) bool  { return hash == "h:"+password }

type memStore struct {
	records  map[string]domain.DeviceRecord
	persists int
	fail     error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]domain.DeviceRecord{}}
}

func (s *memStore) Load(_ context.Context, id string) (domain.DeviceRecord, error) {
	if s.fail != nil {
		return domain.DeviceRecord{}, s.fail
	}
	rec, ok := s.records[id]
	if !ok {
		return domain.NewDeviceRecord(id, time.Now()), nil
	}
	return rec, nil
}

func (s *memStore) Persist(_ context.Context, rec domain.DeviceRecord) error {
	if s.fail != nil {
		return s.fail
	}
	s.persists++
	s.records[rec.DeviceID] = rec
	return nil
}

type scriptedGenerator struct {
	chunks  []string
	err     error
	history []domain.PromptMessage
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(_ context.Context, history []domain.PromptMessage) iter.Seq2[string, error] {
	g.history = history
	return func(yield func(string, error) bool) {
		for _, c := range g.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if g.err != nil {
			yield("", g.err)
		}
	}
}

type memActivity struct {
	entries []domain.ActivityEntry
}

func (m *memActivity) Record(e domain.ActivityEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memActivity) Entries(int, domain.ActivityKind) ([]domain.ActivityEntry, error) {
	return m.entries, nil
}
func (m *memActivity) Clear() error             { m.entries = nil; return nil }
func (m *memActivity) ExportJSON(string) error { return nil }
func (m *memActivity) Path() string            { return "" }

func (m *memActivity) kinds() []domain.ActivityKind {
	var out []domain.ActivityKind
	for _, e := range m.entries {
		out = append(out, e.Kind)
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	engine   *Engine
	store    *memStore
	gen      *scriptedGenerator
	activity *memActivity
	clock    *clock
	state    *State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	creds := credential.NewManager(plainHasher{})
	f := &fixture{
		store:    newMemStore(),
		gen:      &scriptedGenerator{chunks: []string{"Hello", " there"}},
		activity: &memActivity{},
		clock:    &clock{t: time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)},
	}
	f.engine = &Engine{
		Credentials: creds,
		Reveals:     reveal.NewAuthorizer(creds),
		Filter:      security.NewKeywordFilter(""),
		Generator:   f.gen,
		Store:       f.store,
		Activity:    f.activity,
		Logger:      nopLogger{},
		Now:         f.clock.now,
	}
	st, err := f.engine.Open(context.Background(), "device-1")
	require.NoError(t, err)
	f.state = st
	return f
}

func (f *fixture) apply(ev Event) Outcome {
	return f.engine.Apply(context.Background(), f.state, ev)
}

func TestSendPromptAppendsUnfilteredReply(t *testing.T) {
	f := newFixture(t)
	var streamed []string
	out := f.apply(SendPrompt{Prompt: "hi", OnChunk: func(c string) { streamed = append(streamed, c) }})

	require.True(t, out.Accepted)
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"Hello", " there"}, streamed)
	require.Equal(t, 2, f.state.Transcript.Len())
	reply := f.state.Transcript.Messages[1]
	assert.Equal(t, "Hello there", reply.Content)
	assert.False(t, reply.IsFiltered)
	assert.Nil(t, reply.OriginalContent)
	assert.Equal(t, 1, out.MessageIndex)
}

func TestSendPromptRejectsEmptyInput(t *testing.T) {
	f := newFixture(t)
	out := f.apply(SendPrompt{Prompt: "   "})
	assert.False(t, out.Accepted)
	require.ErrorIs(t, out.Err, domain.ErrEmptyInput)
	assert.Zero(t, f.state.Transcript.Len())
}

func TestFilteredReplyAndReveal(t *testing.T) {
	f := newFixture(t)
	f.gen.chunks = []string{"a secret ", "plan"}
	require.True(t, f.apply(SetBannedTerms{Raw: "Secret"}).Accepted)
	require.True(t, f.apply(SetPassword{Password: "pw"}).Accepted)

	out := f.apply(SendPrompt{Prompt: "tell me"})
	require.True(t, out.Accepted)
	reply := f.state.Transcript.Messages[out.MessageIndex]
	assert.True(t, reply.IsFiltered)
	assert.Equal(t, domain.DefaultRedactionPlaceholder, reply.Content)
	require.NotNil(t, reply.OriginalContent)
	assert.Equal(t, "a secret plan", *reply.OriginalContent)

	denied := f.apply(Reveal{Index: -1, Password: "wrong"})
	assert.False(t, denied.Accepted)
	require.ErrorIs(t, denied.Err, domain.ErrUnauthorized)
	assert.False(t, f.state.Transcript.Messages[out.MessageIndex].IsRevealed)

	ok := f.apply(Reveal{Index: -1, Password: "pw"})
	require.True(t, ok.Accepted)
	assert.Equal(t, "a secret plan", ok.Message)
	assert.True(t, f.state.Transcript.Messages[out.MessageIndex].IsRevealed)

	assert.Contains(t, f.activity.kinds(), domain.ActivityFiltered)
	assert.Contains(t, f.activity.kinds(), domain.ActivityRevealDenied)
	assert.Contains(t, f.activity.kinds(), domain.ActivityRevealed)
	for _, e := range f.activity.entries {
		assert.NotContains(t, e.Detail, "plan", "activity log never carries the original reply")
	}
}

func TestRevealOnlyLatestMessage(t *testing.T) {
	f := newFixture(t)
	f.gen.chunks = []string{"bad stuff"}
	f.apply(SetBannedTerms{Raw: "bad"})
	f.apply(SetPassword{Password: "pw"})
	first := f.apply(SendPrompt{Prompt: "one"})

	f.gen.chunks = []string{"fine"}
	f.apply(SendPrompt{Prompt: "two"})

	out := f.apply(Reveal{Index: first.MessageIndex, Password: "pw"})
	assert.False(t, out.Accepted)
	require.ErrorIs(t, out.Err, domain.ErrInvalidState)
	assert.False(t, f.state.Transcript.Messages[first.MessageIndex].IsRevealed)
}

func TestModelHistoryWithholdsHiddenReplies(t *testing.T) {
	f := newFixture(t)
	f.gen.chunks = []string{"bad stuff"}
	f.apply(SetBannedTerms{Raw: "bad"})
	f.apply(SetPassword{Password: "pw"})
	f.apply(SendPrompt{Prompt: "one"})

	f.gen.chunks = []string{"ok"}
	f.apply(SendPrompt{Prompt: "two"})
	assert.Equal(t, []domain.PromptMessage{
		{Role: "user", Content: "one"},
		{Role: "user", Content: "two"},
	}, f.gen.history)
}

func TestRevealedReplyIsSentBackAsOriginal(t *testing.T) {
	f := newFixture(t)
	f.gen.chunks = []string{"bad stuff"}
	f.apply(SetBannedTerms{Raw: "bad"})
	f.apply(SetPassword{Password: "pw"})
	f.apply(SendPrompt{Prompt: "one"})
	require.True(t, f.apply(Reveal{Index: -1, Password: "pw"}).Accepted)

	f.gen.chunks = []string{"ok"}
	f.apply(SendPrompt{Prompt: "two"})
	assert.Equal(t, []domain.PromptMessage{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "bad stuff"},
		{Role: "user", Content: "two"},
	}, f.gen.history)
}

func TestUpstreamFailureBecomesAssistantMessage(t *testing.T) {
	f := newFixture(t)
	f.gen.chunks = []string{"partial"}
	f.gen.err = errors.New("connection reset")

	out := f.apply(SendPrompt{Prompt: "hi"})
	assert.True(t, out.Accepted)
	require.ErrorIs(t, out.Err, domain.ErrUpstreamFailure)
	reply := f.state.Transcript.Messages[out.MessageIndex]
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Equal(t, "Error generating response: connection reset", reply.Content)
	assert.False(t, reply.IsFiltered)
	assert.Contains(t, f.activity.kinds(), domain.ActivityUpstreamFailure)
}

func TestTimeLimitBlocksPrompts(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.apply(SetTimeLimit{Active: true, Minutes: 1}).Accepted)

	f.clock.advance(30 * time.Second)
	require.True(t, f.apply(SendPrompt{Prompt: "hi"}).Accepted)

	f.clock.advance(31 * time.Second)
	out := f.apply(SendPrompt{Prompt: "again"})
	assert.False(t, out.Accepted)
	require.ErrorIs(t, out.Err, domain.ErrInvalidState)
	assert.True(t, out.Usage.Exceeded)
	assert.True(t, f.state.Record.TimeExceededFlag)
	assert.InDelta(t, 61, f.store.records["device-1"].TimeUsedTodaySeconds, 0.001, "boundary crossing is persisted")
	assert.Contains(t, f.activity.kinds(), domain.ActivityLimitReached)

	require.True(t, f.apply(ResetTimer{}).Accepted)
	assert.True(t, f.apply(SendPrompt{Prompt: "after reset"}).Accepted)
}

func TestLockedSettingsRejectEdits(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.apply(SetPassword{Password: "pw"}).Accepted)
	assert.True(t, f.state.Record.KeywordsLocked)

	for _, ev := range []Event{SetBannedTerms{Raw: "x"}, SetTimeLimit{Active: true, Minutes: 5}, ResetTimer{}} {
		out := f.apply(ev)
		assert.False(t, out.Accepted, out.Event)
		require.ErrorIs(t, out.Err, domain.ErrInvalidState, out.Event)
	}
	assert.Empty(t, f.state.Record.BannedTerms)
	assert.False(t, f.state.Record.TimeLimitActive)

	assert.False(t, f.apply(UnlockSettings{Password: "bad"}).Accepted)
	require.True(t, f.apply(UnlockSettings{Password: "pw"}).Accepted)
	require.True(t, f.apply(SetBannedTerms{Raw: "x"}).Accepted)
	require.True(t, f.apply(LockSettings{}).Accepted)
	assert.True(t, f.store.records["device-1"].KeywordsLocked)
	assert.Equal(t, "x", f.store.records["device-1"].BannedTerms)
}

func TestChangePasswordFlow(t *testing.T) {
	f := newFixture(t)
	f.apply(SetPassword{Password: "old"})

	out := f.apply(ChangePassword{Current: "nope", New: "new"})
	require.ErrorIs(t, out.Err, domain.ErrUnauthorized)
	out = f.apply(ChangePassword{Current: "old", New: ""})
	require.ErrorIs(t, out.Err, domain.ErrEmptyInput)
	require.True(t, f.apply(ChangePassword{Current: "old", New: "new"}).Accepted)
	assert.True(t, f.engine.Credentials.Verify(&f.state.Record, "new"))
}

func TestPersistenceFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.store.fail = errors.New("disk full")

	out := f.apply(SetPassword{Password: "pw"})
	assert.True(t, out.Accepted)
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], "persistence failure")
	assert.True(t, f.state.Record.HasCredential(), "in-memory state is kept")
}

func TestOpenFallsBackToDefaultsOnLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.store.fail = errors.New("corrupt")
	st, err := f.engine.Open(context.Background(), "device-2")
	require.ErrorIs(t, err, domain.ErrPersistenceFailure)
	require.NotNil(t, st)
	assert.Equal(t, "device-2", st.Record.DeviceID)
	assert.Equal(t, domain.DefaultTimeLimitMinutes, st.Record.TimeLimitMinutes)
}

func TestStatusMessage(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "No daily time limit is active.", f.apply(Status{}).Message)
	f.apply(SetTimeLimit{Active: true, Minutes: 10})
	f.clock.advance(4 * time.Minute)
	assert.Equal(t, "6m0s left today.", f.apply(Status{}).Message)
}

var _ ports.ActivityLog = (*memActivity)(nil)
