package declaration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/haierkeys/menu-tree-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userLinks = `
user.page:
  title: My account
  route_name: user.page
  menu_name: account
  weight: -10
user.logout:
  title: Log out
  route_name: user.logout
  menu_name: account
  weight: 10
user.node:
  title: First article
  route_name: entity.node.canonical
  route_parameters:
    node: 1
  parent: user.page
  enabled: false
  expanded: true
`

func TestParse_KeepsOrderAndDefaults(t *testing.T) {
	decls, err := Parse("user", []byte(userLinks))
	require.NoError(t, err)
	require.Len(t, decls, 3)

	assert.Equal(t, "user.page", decls[0].ID)
	assert.Equal(t, "user.logout", decls[1].ID)
	assert.Equal(t, "user.node", decls[2].ID)

	assert.Equal(t, "account", decls[0].MenuName)
	assert.Equal(t, -10, decls[0].Weight)
	assert.True(t, decls[0].Enabled)
	assert.False(t, decls[0].Expanded)
	assert.Equal(t, "user", decls[0].Provider)

	node := decls[2]
	assert.Equal(t, DefaultMenu, node.MenuName)
	assert.Equal(t, "user.page", node.ParentID)
	assert.Equal(t, "1", node.RouteParams["node"])
	assert.False(t, node.Enabled)
	assert.True(t, node.Expanded)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"missing title", "x.link:\n  route_name: user.page\n"},
		{"missing target", "x.link:\n  title: X\n"},
		{"self parent", "x.link:\n  title: X\n  url: https://example.com\n  parent: x.link\n"},
		{"reserved prefix", "menu_link_content:1:\n  title: X\n  url: https://example.com\n"},
		{"bad yaml", "x.link: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x", []byte(tt.data))
			assert.ErrorIs(t, err, code.ErrorInvalidDeclaration)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	decls, err := Parse("x", []byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.links.menu.yml"), []byte(userLinks), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contact.links.menu.yml"),
		[]byte("contact.site_page:\n  title: Contact\n  route_name: contact.site_page\n  menu_name: footer\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	decls, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, decls, 4)
	assert.Equal(t, "contact.site_page", decls[0].ID)
	assert.Equal(t, "contact", decls[0].Provider)
	assert.Equal(t, "user.page", decls[1].ID)

	missing, err := LoadDir(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestProviderOf(t *testing.T) {
	assert.Equal(t, "user", ProviderOf("/etc/links/user.links.menu.yml"))
	assert.Equal(t, "", ProviderOf("user.yml"))
}
