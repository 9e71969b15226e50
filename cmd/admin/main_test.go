package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOptionsValidate(t *testing.T) {
	ok := createOptions{Username: " ops ", Email: " ops@example.com ", Password: "long enough pass"}
	require.NoError(t, ok.validate())
	assert.Equal(t, "ops", ok.Username)
	assert.Equal(t, "ops@example.com", ok.Email)

	cases := map[string]createOptions{
		"blank username": {Username: "   ", Email: "ops@example.com", Password: "long enough pass"},
		"long username":  {Username: strings.Repeat("a", 51), Email: "ops@example.com", Password: "long enough pass"},
		"bad email":      {Username: "ops", Email: "ops", Password: "long enough pass"},
		"short password": {Username: "ops", Email: "ops@example.com", Password: "short"},
	}
	for name, opts := range cases {
		opts := opts
		assert.Error(t, opts.validate(), name)
	}
}

func TestCreateRejectsBlankUsernameBeforeConnecting(t *testing.T) {
	t.Setenv("POSTGRES_URI", "")
	cmd := newCreateCommand()
	cmd.SetArgs([]string{"--username", "  ", "--email", "ops@example.com", "--password", "long enough pass"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
}
