//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	ServerURL  string
	Username   string
	Password   string
	Repository string
	RbtPath    string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		ServerURL:  os.Getenv("RBT_INTEGRATION_URL"),
		Username:   os.Getenv("RBT_INTEGRATION_USERNAME"),
		Password:   os.Getenv("RBT_INTEGRATION_PASSWORD"),
		Repository: os.Getenv("RBT_INTEGRATION_REPOSITORY"),
		RbtPath:    getRbtPath(),
		Verbose:    os.Getenv("RBT_VERBOSE") == "true",
	}
}

// getRbtPath determines the path to the rbt binary
func getRbtPath() string {
	if path := os.Getenv("RBT_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../rbt",
		"./rbt",
		"../rbt",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "rbt" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.ServerURL == "" {
		t.Skip("RBT_INTEGRATION_URL not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.RbtPath); err != nil {
		t.Skipf("rbt binary not found at %s, skipping integration test", config.RbtPath)
	}
}

// SkipIfNoCredentials skips test if no login is configured
func (config *TestConfig) SkipIfNoCredentials(t *testing.T) {
	t.Helper()

	if config.Username == "" || config.Password == "" {
		t.Skip("RBT_INTEGRATION_USERNAME or RBT_INTEGRATION_PASSWORD not set, skipping")
	}
}

// CommandRunner runs rbt against an isolated config file
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes an rbt command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	cmd := exec.Command(runner.config.RbtPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.RbtPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertStatOK checks that output is a JSON payload whose stat is ok
func AssertStatOK(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &payload), "Output is not valid JSON: %s", output)
	require.Equal(t, "ok", payload["stat"])

	return payload
}
