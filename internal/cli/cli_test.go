package cli_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/upsimu/internal/cli"
)

func run(t *testing.T, dbPath, input string, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRoot()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(append([]string{"--db", dbPath, "--profile", "ada", "--log-level", "ERROR"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestScenariosCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "upsimu.db")

	out, err := run(t, dbPath, "", "scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "volvo\tVolvo History")
	assert.Contains(t, out, "financial")
}

func TestPlayAndProgress(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "upsimu.db")

	out, err := run(t, dbPath, "It was the ÖV4\nfrom 1927, named after Jakob\n", "play", "volvo", "--fast")
	require.NoError(t, err)
	assert.Contains(t, out, "Tell me about the first Volvo car we produced")
	assert.Contains(t, out, "Score: 2.0 / 3 ★★☆")

	out, err = run(t, dbPath, "", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Level: Beginner")
	assert.Contains(t, out, "XP: 200")
	assert.Contains(t, out, "volvo\tbest 2.0\tattempts 1")

	_, err = run(t, dbPath, "", "reset")
	assert.Error(t, err)

	out, err = run(t, dbPath, "", "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress reset for ada")

	out, err = run(t, dbPath, "", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "XP: 0")
}

func TestPlayAbandonsOnEOF(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "upsimu.db")

	out, err := run(t, dbPath, "", "play", "financial", "--fast")
	require.NoError(t, err)
	assert.NotContains(t, out, "Score:")
}

func TestPlayUnknownScenario(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "upsimu.db")

	_, err := run(t, dbPath, "", "play", "nope")
	assert.Error(t, err)
}
