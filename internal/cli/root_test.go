package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "planctl", cmd.Use)
	assert.Contains(t, cmd.Long, "data directory")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"backup", "create"}, {"backup", "list"}, {"backup", "restore"}, {"backup", "stats"},
		{"user", "add"}, {"user", "list"}, {"user", "delete"}, {"user", "passwd"},
		{"catalog", "list"}, {"catalog", "warehouses"}, {"catalog", "export"}, {"catalog", "import"}, {"catalog", "init"},
		{"changelog", "list"},
		{"security", "tail"},
		{"health"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dirFlag := cmd.PersistentFlags().Lookup("data-dir")
	require.NotNil(t, dirFlag)
	assert.Equal(t, "d", dirFlag.Shorthand)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestUserAddFlags(t *testing.T) {
	cmd := NewRootCommand()
	addCmd, _, err := cmd.Find([]string{"user", "add"})
	require.NoError(t, err)

	roleFlag := addCmd.Flags().Lookup("role")
	require.NotNil(t, roleFlag)
	assert.Equal(t, "r", roleFlag.Shorthand)
	assert.Equal(t, "user", roleFlag.DefValue)
}

func TestSecurityTailFlags(t *testing.T) {
	cmd := NewRootCommand()
	tailCmd, _, err := cmd.Find([]string{"security", "tail"})
	require.NoError(t, err)

	n := tailCmd.Flags().Lookup("lines")
	require.NotNil(t, n)
	assert.Equal(t, "50", n.DefValue)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "-d", t.TempDir(), "health"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
