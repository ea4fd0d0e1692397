package helpers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/domain"
)

func TestConsoleReadsLinesAndPipedPasswordsFromOneBuffer(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(strings.NewReader("hello\r\nsecret\nlast"), &out)

	line, err := console.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	password, err := console.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret", password)

	line, err = console.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "last", line, "a final line without newline is still returned")

	_, err = console.ReadLine("")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> Password: ", out.String())
}

func TestReadNewPassword(t *testing.T) {
	console := NewConsole(strings.NewReader("abc\nabc\n"), io.Discard)
	password, err := console.ReadNewPassword("New: ")
	require.NoError(t, err)
	assert.Equal(t, "abc", password)

	console = NewConsole(strings.NewReader("abc\nxyz\n"), io.Discard)
	_, err = console.ReadNewPassword("New: ")
	assert.EqualError(t, err, "passwords do not match")
}

func TestPromptForYesNo(t *testing.T) {
	cases := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"", true, true},
		{"maybe\n", true, false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		got := PromptForYesNo(NewConsole(strings.NewReader(tc.input), &out), "Continue?", tc.def)
		assert.Equal(t, tc.want, got, "input %q default %t", tc.input, tc.def)
		assert.Contains(t, out.String(), "Continue? [")
	}
}

type scriptedApplier struct {
	outcomes map[string]session.Outcome
	events   []string
}

func (a *scriptedApplier) Apply(_ context.Context, st *session.State, ev session.Event) session.Outcome {
	name := eventName(ev)
	a.events = append(a.events, name)
	out, ok := a.outcomes[name]
	if !ok {
		out = session.Outcome{Accepted: true}
	}
	switch ev.(type) {
	case session.UnlockSettings:
		if out.Accepted {
			st.Record.KeywordsLocked = false
		}
	case session.LockSettings:
		st.Record.KeywordsLocked = true
	}
	return out
}

func eventName(ev session.Event) string {
	switch ev.(type) {
	case session.UnlockSettings:
		return "unlock"
	case session.LockSettings:
		return "lock"
	case session.SetBannedTerms:
		return "keywords"
	default:
		return "other"
	}
}

func lockedState() *session.State {
	hash := "hash"
	return &session.State{Record: domain.DeviceRecord{DeviceID: "d", CredentialHash: &hash, KeywordsLocked: true}}
}

func TestApplyPrivilegedUnlocksAppliesAndRelocks(t *testing.T) {
	applier := &scriptedApplier{outcomes: map[string]session.Outcome{
		"unlock":   {Accepted: true, Warnings: []string{"slow disk"}},
		"keywords": {Accepted: true, Message: "Banned keywords updated (1 terms)."},
	}}
	st := lockedState()
	console := NewConsole(strings.NewReader("pw\n"), io.Discard)

	out := ApplyPrivileged(context.Background(), applier, st, console, session.SetBannedTerms{Raw: "x"})
	assert.True(t, out.Accepted)
	assert.Equal(t, []string{"unlock", "keywords", "lock"}, applier.events)
	assert.Equal(t, []string{"slow disk"}, out.Warnings)
	assert.True(t, st.Record.KeywordsLocked)
}

func TestApplyPrivilegedStopsOnWrongPassword(t *testing.T) {
	denied := session.Outcome{Err: domain.ErrUnauthorized}
	applier := &scriptedApplier{outcomes: map[string]session.Outcome{"unlock": denied}}
	st := lockedState()

	out := ApplyPrivileged(context.Background(), applier, st, NewConsole(strings.NewReader("bad\n"), io.Discard), session.SetBannedTerms{Raw: "x"})
	assert.False(t, out.Accepted)
	assert.ErrorIs(t, out.Err, domain.ErrUnauthorized)
	assert.Equal(t, []string{"unlock"}, applier.events)
}

func TestApplyPrivilegedSkipsPromptWhenUnlocked(t *testing.T) {
	applier := &scriptedApplier{}
	st := &session.State{}

	out := ApplyPrivileged(context.Background(), applier, st, NewConsole(strings.NewReader(""), io.Discard), session.SetBannedTerms{Raw: "x"})
	assert.True(t, out.Accepted)
	assert.Equal(t, []string{"keywords"}, applier.events)
}

func TestApplyPrivilegedReportsMissingInput(t *testing.T) {
	applier := &scriptedApplier{}
	out := ApplyPrivileged(context.Background(), applier, lockedState(), NewConsole(strings.NewReader(""), io.Discard), session.SetBannedTerms{Raw: "x"})
	assert.False(t, out.Accepted)
	assert.ErrorIs(t, out.Err, io.EOF)
	assert.Empty(t, applier.events)
}

func TestVerifyGuardian(t *testing.T) {
	verify := func(_ *domain.DeviceRecord, password string) bool { return password == "pw" }

	ok, err := VerifyGuardian(&session.State{}, verify, NewConsole(strings.NewReader(""), io.Discard))
	require.NoError(t, err)
	assert.True(t, ok, "no password set means nothing to check")

	ok, err = VerifyGuardian(lockedState(), verify, NewConsole(strings.NewReader("pw\n"), io.Discard))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyGuardian(lockedState(), verify, NewConsole(strings.NewReader("nope\n"), io.Discard))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	err := Report(&out, session.Outcome{Accepted: true, Message: "done", Warnings: []string{"careful", " "}})
	require.NoError(t, err)
	assert.Equal(t, "Warning: careful\ndone\n", out.String())

	err = Report(io.Discard, session.Outcome{Err: domain.ErrEmptyInput})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	err = Report(io.Discard, session.Outcome{Event: "reveal"})
	assert.EqualError(t, err, "reveal rejected")
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestDescribeUsage(t *testing.T) {
	rec := domain.DeviceRecord{TimeLimitMinutes: 30}
	assert.Equal(t, "off (30 minutes when enabled)", DescribeUsage(rec, domain.Usage{}))

	active := domain.Usage{Active: true, LimitSeconds: 1800, UsedSeconds: 600}
	assert.Equal(t, "20m0s left of 30 minutes", DescribeUsage(rec, active))

	spent := domain.Usage{Active: true, LimitSeconds: 1800, UsedSeconds: 1800, Exceeded: true}
	assert.Equal(t, "reached (30m0s of 30 minutes used)", DescribeUsage(rec, spent))
}
