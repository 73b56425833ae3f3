package pathguard

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "x.jpg"), []byte("x"), 0644))

	tests := []struct {
		name      string
		requested string
		roots     []string
		want      bool
	}{
		{
			name:      "file inside root",
			requested: filepath.Join(sub, "x.jpg"),
			roots:     []string{root},
			want:      true,
		},
		{
			name:      "root itself",
			requested: root,
			roots:     []string{root},
			want:      true,
		},
		{
			name:      "traversal escape is rejected",
			requested: root + "/../../etc/passwd",
			roots:     []string{root},
			want:      false,
		},
		{
			name:      "traversal that stays inside is fine",
			requested: sub + "/../sub/x.jpg",
			roots:     []string{root},
			want:      true,
		},
		{
			name:      "sibling directory sharing a name prefix",
			requested: root + "2/x.jpg",
			roots:     []string{root},
			want:      false,
		},
		{
			name:      "unrelated path",
			requested: "/etc/passwd",
			roots:     []string{root},
			want:      false,
		},
		{
			name:      "second root matches",
			requested: filepath.Join(sub, "x.jpg"),
			roots:     []string{"/somewhere/else", root},
			want:      true,
		},
		{
			name:      "no roots denies everything",
			requested: filepath.Join(sub, "x.jpg"),
			roots:     nil,
			want:      false,
		},
		{
			name:      "nonexistent path inside root is still contained",
			requested: filepath.Join(root, "missing.jpg"),
			roots:     []string{root},
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.requested, tt.roots))
		})
	}
}

func TestAllowedSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.jpg"), []byte("x"), 0644))

	link := filepath.Join(root, "link.jpg")
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.jpg"), link))

	// The symlink target resolves outside the root, so it's rejected even
	// though the link itself sits inside.
	assert.False(t, Allowed(link, []string{root}))
	assert.True(t, Allowed(link, []string{root, outside}))
}
