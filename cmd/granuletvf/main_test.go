package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	out, err := run(t, "", "query", "--threads", "2", "--log-level", "error",
		"SELECT greetings FROM hello('Alice', count => 3)")
	require.NoError(t, err)
	assert.Equal(t, "greetings\nHello Alice 3\nHello Alice 2\nHello Alice 1\n", out)
}

func TestQueryCommandFromStdin(t *testing.T) {
	out, err := run(t, "select count(*) AS n from hello('Bob', count=10)\n",
		"query", "--log-level", "error", "--format", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "n\n10\n", out)
}

func TestQueryCommandError(t *testing.T) {
	_, err := run(t, "", "query", "--log-level", "error", "SELECT * FROM hello('A', count => -2)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hint:")
}

func TestFunctionsCommand(t *testing.T) {
	out, err := run(t, "", "functions", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "hello(String, count => Int64)\n", out)
}

func TestInvalidMemoryLimit(t *testing.T) {
	_, err := run(t, "", "functions", "--memory-limit", "plenty")
	assert.ErrorContains(t, err, "--memory-limit")
}
