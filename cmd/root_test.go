// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/sitecheck/internal/config"
)

// executeCommand runs args against a fresh command tree from a clean
// working directory so no stray config.yaml is picked up.
func executeCommand(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// withProbe adds a command that captures the loaded configuration.
func withProbe(root *cobra.Command, got **config.Config) *cobra.Command {
	probe := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			*got = cfg
			return err
		},
	}
	probe.Flags().StringP("report-dir", "o", "", "")
	probe.Flags().StringSlice("only", nil, "")
	probe.Flags().Bool("headless", false, "")
	root.AddCommand(probe)
	return root
}

func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeCommand(t, NewRootCommand(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "sitecheck version "+Version+"\n", out)
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, NewRootCommand(), "version")
	require.NoError(t, err)
	assert.Equal(t, "sitecheck version "+Version+"\n", out)
}

func TestRootCmd_NoArgs(t *testing.T) {
	out, err := executeCommand(t, NewRootCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "homepage suite")
	for _, sub := range []string{"run", "list", "lint", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg *config.Config
	_, err := executeCommand(t, withProbe(NewRootCommand(), &cfg), "probe")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "https://www.recodesolutions.com", cfg.Browser.StartURL)
	assert.Equal(t, "ExtentReport.html", cfg.Report.File)
	assert.Equal(t, 10*time.Second, cfg.Suite.WaitTimeout)
	assert.Empty(t, cfg.Suite.Only)
}

func TestConfigPrecedence(t *testing.T) {
	path := createTempConfig(t, `
browser:
  headless: true
  start_url: https://staging.example.com
report:
  dir: /tmp/from-file
  title: Staging Report
suite:
  wait_timeout: 3s
`)
	t.Setenv("SITECHECK_REPORT_TITLE", "From Env")
	t.Setenv("SITECHECK_SUITE_WAIT_TIMEOUT", "4s")

	var cfg *config.Config
	_, err := executeCommand(t, withProbe(NewRootCommand(), &cfg),
		"probe", "--config", path, "-o", "/tmp/from-flag", "--only", "TC01_HoverOnAboutUs,TC02_HoverOnSolutions")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Browser.Headless, "file overrides default")
	assert.Equal(t, "https://staging.example.com", cfg.Browser.StartURL)
	assert.Equal(t, "From Env", cfg.Report.Title, "env overrides file")
	assert.Equal(t, 4*time.Second, cfg.Suite.WaitTimeout)
	assert.Equal(t, "/tmp/from-flag", cfg.Report.Dir, "flag overrides file")
	assert.Equal(t, []string{"TC01_HoverOnAboutUs", "TC02_HoverOnSolutions"}, cfg.Suite.Only)
}

func TestUnchangedFlagKeepsFileValue(t *testing.T) {
	path := createTempConfig(t, "browser:\n  headless: true\n")

	var cfg *config.Config
	_, err := executeCommand(t, withProbe(NewRootCommand(), &cfg), "probe", "-c", path)
	require.NoError(t, err)
	assert.True(t, cfg.Browser.Headless)
}

func TestInvalidConfig(t *testing.T) {
	t.Run("bad start url", func(t *testing.T) {
		t.Setenv("SITECHECK_BROWSER_START_URL", "not a url")
		_, err := executeCommand(t, NewRootCommand(), "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start_url")
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := executeCommand(t, NewRootCommand(), "list", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := createTempConfig(t, "browser: [unclosed\n")
		_, err := executeCommand(t, NewRootCommand(), "list", "--config", path)
		require.Error(t, err)
	})
}

func TestListCmd(t *testing.T) {
	out, err := executeCommand(t, NewRootCommand(), "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 34)
	assert.True(t, strings.HasPrefix(lines[0], "TC01_HoverOnAboutUs"))
	assert.True(t, strings.HasPrefix(lines[33], "TC34_VerifyAwardsSection"))

	out, err = executeCommand(t, NewRootCommand(), "list", "--locators")
	require.NoError(t, err)
	assert.Contains(t, out, "    //")
}
