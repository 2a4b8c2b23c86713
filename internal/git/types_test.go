package git

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommit_IsMerge(t *testing.T) {
	tests := []struct {
		name    string
		parents []string
		expect  bool
	}{
		{"no parents (root)", nil, false},
		{"one parent", []string{"abc"}, false},
		{"two parents (merge)", []string{"abc", "def"}, true},
		{"three parents (octopus)", []string{"a", "b", "c"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Commit{Parents: tt.parents}
			require.Equal(t, tt.expect, c.IsMerge())
		})
	}
}

func TestCommit_PrimaryParent(t *testing.T) {
	require.Equal(t, "", Commit{}.PrimaryParent())
	require.True(t, Commit{}.IsRoot())

	c := Commit{Parents: []string{"first", "second"}}
	require.Equal(t, "first", c.PrimaryParent())
	require.False(t, c.IsRoot())
}

func TestCommit_ShortSha(t *testing.T) {
	tests := []struct {
		name   string
		sha    string
		expect string
	}{
		{"normal", "abc1234567890def", "abc12345"},
		{"short sha", "abc", "abc"},
		{"exact length", "abcdefgh", "abcdefgh"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Commit{Sha: tt.sha}
			require.Equal(t, tt.expect, c.ShortSha())
		})
	}
}

func TestCommit_Summary(t *testing.T) {
	tests := []struct {
		name    string
		message string
		expect  string
	}{
		{"single line", "[FIX] web: tooltip", "[FIX] web: tooltip"},
		{"with body", "[IMP] stock: routes\n\nLonger body.\n", "[IMP] stock: routes"},
		{"leading newline", "\nfirst\nsecond", "first"},
		{"crlf", "title\r\nbody", "title"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, Commit{Message: tt.message}.Summary())
		})
	}
}

func TestCommit_IsEmpty(t *testing.T) {
	require.True(t, Commit{}.IsEmpty())
	require.False(t, Commit{Sha: "abc"}.IsEmpty())
}

func TestNewReferenceName(t *testing.T) {
	tests := []struct {
		canonical string
		friendly  string
	}{
		{"refs/heads/master", "master"},
		{"refs/heads/saas-17.1", "saas-17.1"},
		{"refs/remotes/origin/17.0", "origin/17.0"},
		{"refs/tags/v1.0", "v1.0"},
		{"HEAD", "HEAD"},
	}
	for _, tt := range tests {
		t.Run(tt.canonical, func(t *testing.T) {
			r := NewReferenceName(tt.canonical)
			require.Equal(t, tt.canonical, r.Canonical)
			require.Equal(t, tt.friendly, r.Friendly)
		})
	}
}

func TestBranch_FriendlyName(t *testing.T) {
	b := Branch{Name: NewBranchReferenceName("16.0")}
	require.Equal(t, "16.0", b.FriendlyName())
	require.Equal(t, "refs/heads/16.0", b.Name.Canonical)
}
