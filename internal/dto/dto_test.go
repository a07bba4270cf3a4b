package dto

import (
	"testing"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMenuDTO(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	d, err := NewMenuDTO(&domain.MenuSummary{
		Menu:         domain.Menu{ID: "main", Label: "Main navigation", Locked: true, CreatedAt: at, UpdatedAt: at},
		LinkCount:    4,
		PendingCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "main", d.ID)
	assert.Equal(t, "Main navigation", d.Label)
	assert.True(t, d.Locked)
	assert.EqualValues(t, 4, d.LinkCount)
	assert.EqualValues(t, 1, d.PendingCount)
	assert.Equal(t, at.Unix(), d.UpdatedAt.Unix())
}

func TestNewLinkDTO(t *testing.T) {
	content := &domain.MenuLink{
		ID:            "menu_link_content:1",
		MenuName:      "main",
		ParentID:      "user.page",
		Weight:        -2,
		Title:         "Node",
		Target:        domain.Target{Kind: domain.TargetKindRoute, RouteName: "entity.node.canonical", RouteParams: map[string]string{"node": "5"}, Path: "/node/5", Query: "x=1"},
		Enabled:       true,
		Origin:        domain.LinkOriginContent,
		Provider:      domain.ContentProvider,
		RevisionState: domain.RevisionStatePending,
		Revision:      3,
	}
	d, err := NewLinkDTO(content)
	require.NoError(t, err)
	assert.Equal(t, "main", d.MenuName)
	assert.Equal(t, "user.page", d.ParentID)
	assert.Equal(t, -2, d.Weight)
	assert.Equal(t, "/node/5?x=1", d.Link)
	assert.Equal(t, domain.TargetKindRoute, d.Kind)
	assert.Equal(t, "5", d.RouteParams["node"])
	assert.Equal(t, domain.RevisionStatePending, d.RevisionState)
	assert.EqualValues(t, 3, d.Revision)

	plugin := &domain.MenuLink{
		ID:       "user.logout",
		MenuName: "account",
		Title:    "Log out",
		Target:   domain.Target{Kind: domain.TargetKindFront},
		Origin:   domain.LinkOriginPlugin,
		Provider: "user",
		Revision: 1,
	}
	d, err = NewLinkDTO(plugin)
	require.NoError(t, err)
	assert.Equal(t, domain.FrontPage, d.Link)
	assert.Empty(t, d.RevisionState)
	assert.Zero(t, d.Revision)
	assert.Nil(t, d.RouteParams)
}

func TestNewTreeDTOAndParentOptions(t *testing.T) {
	a := &domain.MenuLink{ID: "a", MenuName: "main", Title: "A", Enabled: true}
	b := &domain.MenuLink{ID: "b", MenuName: "main", ParentID: "a", Title: "B", Enabled: true}

	entries, err := NewTreeDTO([]domain.TreeEntry{{Link: a, Depth: 0, HasChildren: true}, {Link: b, Depth: 1}})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.True(t, entries[0].HasChildren)
	assert.Equal(t, 1, entries[1].Depth)

	opts := NewParentOptionDTOList([]tree.ParentOption{{Link: a, Depth: 0}, {Link: b, Depth: 1}})
	require.Len(t, opts, 2)
	assert.Equal(t, "-- A", opts[0].Label)
	assert.Equal(t, "---- B", opts[1].Label)
	assert.Equal(t, "main", opts[1].Menu)
}

func TestRequestConversion(t *testing.T) {
	w := 5
	draft := (&LinkCreateRequest{Menu: "main", Title: "T", Link: "/node/1", Weight: &w}).Draft()
	assert.Equal(t, "main", draft.MenuName)
	assert.Equal(t, 5, *draft.Weight)
	assert.Nil(t, draft.Enabled)

	title := "New"
	patch := (&LinkUpdateRequest{ID: "x", Title: &title}).Patch()
	assert.Equal(t, "New", *patch.Title)
	assert.False(t, patch.TouchesStructure())

	params := (&MenuTreeRequest{Menu: "main", MaxDepth: 2, OnlyEnabled: true}).Parameters()
	assert.Equal(t, 2, params.MaxDepth)
	assert.True(t, params.OnlyEnabled)
}
