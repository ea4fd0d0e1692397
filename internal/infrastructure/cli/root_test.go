package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/domain"
)

type harness struct {
	t          *testing.T
	configPath string
	dataDir    string
	logs       bytes.Buffer
}

func newHarness(t *testing.T, backend string) *harness {
	t.Helper()
	dir := t.TempDir()
	config := `
device_id: test-device
preferences:
  default_model: offline
models:
  - name: offline
    provider: offline
storage:
  backend: ` + backend + `
  data_dir: ` + dir + `
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))
	return &harness{t: t, configPath: path, dataDir: dir}
}

func (h *harness) run(input string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(Options{
		In:  strings.NewReader(input),
		Out: &out,
		App: app.Options{LogOutput: &h.logs},
	})
	root.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGuardianFlow(t *testing.T) {
	for _, backend := range []string{"json", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			h := newHarness(t, backend)

			out, err := h.run("pw\npw\n", "guardian", "set")
			require.NoError(t, err)
			assert.Contains(t, out, "Password set successfully!")

			_, err = h.run("again\nagain\n", "guardian", "set")
			require.ErrorIs(t, err, domain.ErrInvalidState)

			_, err = h.run("wrong\n", "keywords", "set", "bad, worse")
			require.ErrorIs(t, err, domain.ErrUnauthorized)

			out, err = h.run("pw\n", "keywords", "set", "bad, worse")
			require.NoError(t, err)
			assert.Contains(t, out, "Banned keywords updated (2 terms).")

			out, err = h.run("", "status")
			require.NoError(t, err)
			assert.Contains(t, out, "Device:           test-device")
			assert.Contains(t, out, "locked")
			assert.Contains(t, out, "Banned keywords:  2")

			out, err = h.run("pw\n", "keywords", "show")
			require.NoError(t, err)
			assert.Contains(t, out, "- bad\n- worse\n")

			_, err = h.run("nope\n", "keywords", "show")
			require.Error(t, err)
		})
	}
}

func TestGuardianSetRequiresMatchingPasswords(t *testing.T) {
	h := newHarness(t, "json")
	_, err := h.run("one\ntwo\n", "guardian", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
}

func TestLimitCommands(t *testing.T) {
	h := newHarness(t, "json")

	_, err := h.run("", "limit", "set", "0")
	require.Error(t, err)

	out, err := h.run("", "limit", "set", "45")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily time limit set to 45 minutes.")

	out, err = h.run("", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "left of 45 minutes")

	out, err = h.run("", "limit", "disable")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily time limit turned off.")

	out, err = h.run("", "limit", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Today's usage has been reset.")
}

func TestSettingsUnlockStaysUnlocked(t *testing.T) {
	h := newHarness(t, "json")
	_, err := h.run("pw\npw\n", "guardian", "set")
	require.NoError(t, err)

	_, err = h.run("pw\n", "settings", "unlock")
	require.NoError(t, err)

	out, err := h.run("", "limit", "set", "10")
	require.NoError(t, err, "no password needed while unlocked")
	assert.Contains(t, out, "10 minutes")

	_, err = h.run("", "settings", "lock")
	require.NoError(t, err)
	_, err = h.run("", "limit", "set", "20")
	require.Error(t, err, "locked again, and empty input is not the password")
}

func TestREPLChatAndReveal(t *testing.T) {
	h := newHarness(t, "json")
	_, err := h.run("pw\npw\n", "guardian", "set")
	require.NoError(t, err)
	_, err = h.run("pw\n", "keywords", "set", "offline")
	require.NoError(t, err)

	out, err := h.run("hello\n/reveal\nwrong\n/reveal\npw\n/status\n/bogus\n/quit\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, domain.DefaultRedactionPlaceholder)
	assert.Contains(t, out, revealHint)
	assert.Contains(t, out, "unauthorized")
	assert.Contains(t, out, "Hello! I'm running offline right now, but I'm happy to chat.")
	assert.Contains(t, out, "off (30 minutes when enabled)")
	assert.Contains(t, out, "Unknown command /bogus")

	out, err = h.run("pw\n", "activity", "list")
	require.NoError(t, err)
	for _, kind := range []string{"filtered", "reveal_denied", "revealed", "keywords_updated", "credential_set"} {
		assert.Contains(t, out, kind)
	}
	assert.NotContains(t, out, "happy to chat", "original replies never reach the log")
}

func TestREPLUnfilteredReplyAndEOF(t *testing.T) {
	h := newHarness(t, "sqlite")
	out, err := h.run("hello\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Assistant: Hello! I'm running offline")
	assert.NotContains(t, out, revealHint)
}

func TestActivityExportAndClear(t *testing.T) {
	h := newHarness(t, "json")
	_, err := h.run("", "limit", "set", "15")
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "activity.jsonl")
	out, err := h.run("", "activity", "export", dest)
	require.NoError(t, err)
	assert.Contains(t, out, dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"limit_updated"`)

	out, err = h.run("n\n", "activity", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Activity log left unchanged.")

	out, err = h.run("", "activity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "limit_updated")

	out, err = h.run("y\n", "activity", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Activity log cleared.")

	out, err = h.run("", "activity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No activity recorded yet.")
}

func TestVersionSkipsContainer(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd(Options{Out: &out})
	root.SetArgs([]string{"--config", "/nonexistent/dir/that/cannot/exist/config.yaml", "version", "--short"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestDoctorReportsOpenDevice(t *testing.T) {
	h := newHarness(t, "sqlite")
	out, err := h.run("", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "[OK] Config file")
	assert.Contains(t, out, "[OK] Settings store - sqlite backend, device test-device")
	assert.Contains(t, out, "[WARN] Guardian password")
	assert.Contains(t, out, "[WARN] Keyword filter")
	assert.Contains(t, out, "[OK] Model - offline answers offline")
}

func TestCorruptDeviceFileIsReportedAndKept(t *testing.T) {
	h := newHarness(t, "json")
	_, err := h.run("pw\npw\n", "guardian", "set")
	require.NoError(t, err)

	path := filepath.Join(h.dataDir, "devices", "test-device.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	truncated := data[:len(data)-3]
	require.NoError(t, os.WriteFile(path, truncated, 0o600))

	out, err := h.run("", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not set", "the session runs on defaults")
	assert.Contains(t, h.logs.String(), "device record load failed")

	kept, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, truncated, kept, "loading does not overwrite the stored hash")
}

