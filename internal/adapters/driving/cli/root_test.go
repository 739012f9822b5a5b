package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/urbanbot/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "urbanbot", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ask", "chat", "tui", "summary", "serve", "mcp", "config", "auth", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	defer logger.SetVerbose(false)

	_, err := executeCommand(t, "", "--verbose", "version")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestRootCmd_LoadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("URBANBOT_CLI_TEST_VAR=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("URBANBOT_CLI_TEST_VAR") })

	_, err := executeCommand(t, "", "--env-file", path, "version")

	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("URBANBOT_CLI_TEST_VAR"))
}

func TestRootCmd_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("URBANBOT_CLI_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("URBANBOT_CLI_TEST_KEEP", "from-env")

	_, err := executeCommand(t, "", "--env-file", path, "version")

	require.NoError(t, err)
	assert.Equal(t, "from-env", os.Getenv("URBANBOT_CLI_TEST_KEEP"))
}

func TestRootCmd_MissingEnvFileIgnored(t *testing.T) {
	_, err := executeCommand(t, "", "--env-file", filepath.Join(t.TempDir(), "absent.env"), "version")
	assert.NoError(t, err)
}

func TestOpenRuntime_NotConfigured(t *testing.T) {
	prev := runtimeFactory
	runtimeFactory = nil
	defer func() { runtimeFactory = prev }()

	_, err := openRuntime(context.Background())
	assert.EqualError(t, err, "runtime not configured")
}

func TestOpenRuntime_FactoryError(t *testing.T) {
	prev := runtimeFactory
	runtimeFactory = func(context.Context) (Runtime, error) { return nil, errors.New("boom") }
	defer func() { runtimeFactory = prev }()

	_, err := executeCommand(t, "", "summary")
	assert.EqualError(t, err, "boom")
}
