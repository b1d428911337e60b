package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"backup", "export"},
		{"backup", "restore"},
		{"reset"},
		{"user", "create"},
	} {
		found, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}

	restore, _, err := root.Find([]string{"backup", "restore"})
	require.NoError(t, err)
	assert.NotNil(t, restore.Flags().Lookup("yes"))
	assert.NotNil(t, restore.Flags().Lookup("principal"))
}

func TestBackupCommandsRequirePrincipal(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")

	root := NewRootCmd()
	root.SetArgs([]string{"reset", "--yes"})
	err := root.Execute()
	assert.ErrorContains(t, err, "--principal is required")
}

func TestResetRequiresConfirmation(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	root := NewRootCmd()
	root.SetArgs([]string{"reset", "--principal", "42"})
	err := root.Execute()
	assert.ErrorContains(t, err, "confirmation")
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"user", "create", "--email", "ops@example.com", "--password", "s3cret-pass", "--role", "root"})
	err := root.Execute()
	assert.ErrorContains(t, err, `unknown role "root"`)
}
