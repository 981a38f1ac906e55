package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncService "github.com/m04kA/SMC-BayLedger/internal/service/sync"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()

	content := fmt.Sprintf(`
[logs]
level = "error"

[cache]
path = %q

[remote]
enabled = false

[pricing]
hourly_rate = 4000

[[resources]]
id = 1
label = "Bay 1"

[hours.monday]
open = "09:00"
close = "22:00"
`, filepath.Join(dir, "cache", "bayledger.db"))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "sync")

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "config.toml", flag.DefValue)
}

func TestSync_MissingConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "sync",
		"--config", filepath.Join(dir, "missing.toml"),
		"--env-file", filepath.Join(dir, ".env"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestSync_LocalOnlyModeReportsUnavailableRemote(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	out, err := execute(t, "sync",
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, ".env"),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, syncService.ErrRemoteUnavailable)
	assert.Contains(t, out, "pushed=0 failed=0 pulled=0 conflicts=0 released=0")

	_, statErr := os.Stat(filepath.Join(dir, "cache", "bayledger.db"))
	assert.NoError(t, statErr, "local cache must be created")
}
