package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDatabasePath_TableDriven(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"absolute file", "/var/lib/bytechef/flows.db", "/var/lib/bytechef/flows.db"},
		{"absolute directory", "/var/lib/bytechef", "/var/lib/bytechef/bytechef.db"},
		{"directory with trailing slash", "/var/lib/bytechef/", "/var/lib/bytechef/bytechef.db"},
		{"relative file", "./flows.db", "flows.db"},
		{"relative directory", "./data", "data/bytechef.db"},
		{"uppercase extension", "/tmp/FLOWS.DB", "/tmp/FLOWS.DB"},
		{"empty string", "", "bytechef.db"},
		{"current dir", ".", "bytechef.db"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := filepath.FromSlash(tc.input)
			expected := filepath.FromSlash(tc.expected)
			require.Equal(t, expected, ResolveDatabasePath(input))
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, home, ExpandHome("~"))
	require.Equal(t, filepath.Join(home, ".config", "bytechef.log"), ExpandHome("~/.config/bytechef.log"))
	require.Equal(t, "/etc/bytechef", ExpandHome("/etc/bytechef"))
	require.Equal(t, "~user/x", ExpandHome("~user/x"), "other users' homes are not expanded")
}

func TestResolveDatabasePath_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, "flows", DatabaseFile), ResolveDatabasePath("~/flows"))
}
