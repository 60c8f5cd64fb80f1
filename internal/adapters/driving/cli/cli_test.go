package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driven/config/file"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// setupWorkspace points the CLI at a throwaway config directory and
// history database.
func setupWorkspace(t *testing.T) {
	t.Helper()
	dir := t.TempDir()

	oldConfig := configDir
	configDir = dir
	t.Cleanup(func() { configDir = oldConfig })

	store, err := file.NewSettingsStore(dir)
	require.NoError(t, err)
	settings := domain.DefaultSettings()
	settings.HistoryPath = filepath.Join(dir, "history.db")
	settings.PageSize = 2
	require.NoError(t, store.Save(settings))
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flags keep their values between invocations; reset them so one
	// test cannot leak into the next.
	searchConversation, searchFrom, searchJSON = "", "", false
	searchLimit = 0
	tuiConversation = ""

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "convofind version")
}

func TestImportLinkSearchFlow(t *testing.T) {
	setupWorkspace(t)

	transcript := writeTranscript(t,
		`{"conversation":"team","message":1,"sender":"alice","sent_at":"2026-08-27T10:00:00Z","body":"hello one"}`,
		`{"conversation":"team","message":2,"sender":"bob","sent_at":"2026-08-27T10:01:00Z","body":"unrelated"}`,
		`{"conversation":"team","message":3,"sender":"alice","sent_at":"2026-08-27T10:02:00Z","body":"hello three"}`,
		`{"conversation":"team-old","message":1,"sender":"bob","sent_at":"2026-08-26T09:00:00Z","body":"hello from before"}`,
	)

	out, err := execute(t, "import", transcript)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 4 messages.")

	out, err = execute(t, "link", "team", "team-old")
	require.NoError(t, err)
	assert.Contains(t, out, "Linked team -> team-old.")

	out, err = execute(t, "conversations")
	require.NoError(t, err)
	assert.Contains(t, out, "team (migrated from team-old)")

	out, err = execute(t, "search", "hello", "-c", "team", "--json")
	require.NoError(t, err)

	var payload struct {
		Total   int `json:"total"`
		Results []struct {
			Conversation string `json:"conversation"`
			Message      int64  `json:"message"`
			Body         string `json:"body"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, 3, payload.Total)
	require.Len(t, payload.Results, 3)

	// Conversation matches come first, newest first; the predecessor's
	// match is appended last.
	assert.Equal(t, "team", payload.Results[0].Conversation)
	assert.Equal(t, int64(3), payload.Results[0].Message)
	assert.Equal(t, "team", payload.Results[1].Conversation)
	assert.Equal(t, int64(1), payload.Results[1].Message)
	assert.Equal(t, "team-old", payload.Results[2].Conversation)
	assert.Equal(t, "hello from before", payload.Results[2].Body)
}

func TestSearchSenderFilterFlag(t *testing.T) {
	setupWorkspace(t)

	transcript := writeTranscript(t,
		`{"conversation":"team","message":1,"sender":"alice","sent_at":"2026-08-27T10:00:00Z","body":"hello"}`,
		`{"conversation":"team","message":2,"sender":"bob","sent_at":"2026-08-27T10:01:00Z","body":"hello"}`,
	)
	_, err := execute(t, "import", transcript)
	require.NoError(t, err)

	out, err := execute(t, "search", "hello", "--from", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 1 matches")
	assert.Contains(t, out, "bob")
}

func TestSearchNoMatches(t *testing.T) {
	setupWorkspace(t)

	transcript := writeTranscript(t,
		`{"conversation":"team","message":1,"sender":"alice","sent_at":"2026-08-27T10:00:00Z","body":"hello"}`,
	)
	_, err := execute(t, "import", transcript)
	require.NoError(t, err)

	out, err := execute(t, "search", "nothing-matches")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages found.")
}

func TestSearchWithoutHistoryFails(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "search", "hello")
	assert.ErrorIs(t, err, domain.ErrNoHistory)
}

func TestImportRejectsMalformedLine(t *testing.T) {
	setupWorkspace(t)

	transcript := writeTranscript(t, `{"conversation":"team"`)
	_, err := execute(t, "import", transcript)
	assert.Error(t, err)
}

func TestLinkRejectsSelfReference(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "link", "team", "team")
	assert.Error(t, err)
}
