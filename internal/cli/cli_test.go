package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appsearch/internal/domain"
)

const testCatalog = `[
  {"name": "gmail", "description": "Send emails with Google Mail.", "actions": [
    {"name": "send_email", "description": "Send an email to a recipient."},
    {"name": "forward_email", "description": "Forward an existing email."},
    {"name": "apply_label", "description": "Apply a label to an email."}
  ]},
  {"name": "hubspot", "description": "CRM for sales teams.", "actions": [
    {"name": "create_contact", "description": "Create a new contact with name, email and phone."},
    {"name": "update_deal", "description": "Change the stage of a sales deal."},
    {"name": "log_call", "description": "Record a phone call on a contact timeline."}
  ]},
  {"name": "github", "description": "Code hosting.", "actions": [
    {"name": "open_issue", "description": "Open a new issue in a repository."},
    {"name": "merge_pull_request", "description": "Merge an approved pull request."},
    {"name": "create_release", "description": "Publish a tagged release."}
  ]}
]`

// writeFixture creates a config using the file generator, the hashing
// embedder and a SQLite file, and returns its path.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))

	cfg := `generator:
  type: file
  file:
    path: ` + catalogPath + `
embedder:
  type: hashing
  dimension: 256
store:
  type: sqlite
  dsn_env: APPSEARCH_CLI_TEST_DSN
  dsn: ` + filepath.Join(dir, "appsearch.db") + `
seeder:
  min_delay_ms: 0
  max_delay_ms: 5
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	t.Setenv("APPSEARCH_CLI_TEST_DSN", "")
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "appsearch", cmd.Name())

	seed, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, "seed", seed.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.Flags().Lookup("interactive"))
}

func TestSeedThenFindEndToEnd(t *testing.T) {
	cfgPath := writeFixture(t)

	out, stderr, err := execute(t, "--config", cfgPath, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 apps and 9 actions (9 actions stored).")
	assert.Contains(t, stderr, "inserted action")
	assert.Contains(t, stderr, "run_id=")

	out, _, err = execute(t, "--config", cfgPath, "--format", "json", "create", "a", "new", "contact")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   FindResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "create a new contact", resp.Data.Query)
	assert.Equal(t, "create_contact", resp.Data.Match.ActionName)
	assert.Equal(t, "hubspot", resp.Data.Match.AppName)

	out, _, err = execute(t, "--config", cfgPath, "merge pull request")
	require.NoError(t, err)
	assert.Contains(t, out, "merge_pull_request")
	assert.Contains(t, out, "distance=")
}

func TestSeedTwiceAccumulates(t *testing.T) {
	cfgPath := writeFixture(t)

	_, _, err := execute(t, "--config", cfgPath, "seed", "--no-delay")
	require.NoError(t, err)
	out, _, err := execute(t, "--config", cfgPath, "--format", "json", "seed", "--no-delay")
	require.NoError(t, err)

	var resp struct {
		Data SeedResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, SeedResult{Apps: 3, Actions: 9, Stored: 18}, resp.Data)
}

func TestSeedWithMalformedCatalog(t *testing.T) {
	cfgPath := writeFixture(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"apps": []}`), 0o644))

	out, _, err := execute(t, "--config", cfgPath, "--format", "json", "seed", "--catalog", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, out, `"kind":"PARSE"`)

	// nothing was written
	_, _, err = execute(t, "--config", cfgPath, "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}

func TestFindOnEmptyStore(t *testing.T) {
	cfgPath := writeFixture(t)

	_, _, err := execute(t, "--config", cfgPath, "send an email")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, domain.ErrNoMatch)
	assert.Contains(t, err.Error(), "appsearch seed")
}

func TestCommandErrors(t *testing.T) {
	cfgPath := writeFixture(t)

	tests := map[string][]string{
		"missing description": {"--config", cfgPath},
		"invalid format":      {"--config", cfgPath, "--format", "xml", "q"},
		"unknown flag":        {"--config", cfgPath, "--bogus", "q"},
		"seed takes no args":  {"--config", cfgPath, "seed", "extra"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestBadConfigIsCommandError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: cassandra\n"), 0o644))

	_, _, err := execute(t, "--config", path, "q")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBadConfigWritesJSONError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: cassandra\n"), 0o644))

	for _, args := range [][]string{
		{"--config", path, "--format", "json", "q"},
		{"--config", path, "--format", "json", "seed"},
	} {
		out, _, err := execute(t, args...)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, `"status":"error"`)
		assert.Contains(t, out, `"kind":"COMMAND"`)
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "PARSE", errorKind(WrapExitError(ExitFailure, "seed failed", domain.ErrParse)))
	assert.Equal(t, "CANCELED", errorKind(WrapExitError(ExitFailure, "seed failed", context.Canceled)))
	assert.Equal(t, "COMMAND", errorKind(errors.New("bad flag")))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	wrapped := WrapExitError(ExitFailure, "seed failed", domain.ErrStore)
	assert.ErrorIs(t, wrapped, domain.ErrStore)
	assert.Equal(t, "seed failed: STORE", wrapped.Error())
}

func TestOutputFormatterText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Success(SeedResult{Apps: 1, Actions: 2, Stored: 2}))
	require.NoError(t, f.Error(errors.New("ignored in text mode")))
	assert.Equal(t, "Seeded 1 apps and 2 actions (2 actions stored).\n", buf.String())
}
