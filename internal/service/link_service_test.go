package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateLink_DepthChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := ""
	for i := 1; i <= 9; i++ {
		l := f.mustCreate(t, "main", parent, fmt.Sprintf("level %d", i), 0)
		parent = l.ID
	}

	_, err := f.links.CreateLink(ctx, &domain.LinkDraft{
		MenuName: "main", ParentID: parent, Title: "level 10", Link: "<front>",
	})
	assert.ErrorIs(t, err, code.ErrorDepthExceeded)

	n, err := f.links.CountLinks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	f.checkInvariants(t)
}

func TestCreateLink_Defaults(t *testing.T) {
	f := newFixture(t)

	l, err := f.links.CreateLink(context.Background(), &domain.LinkDraft{
		MenuName: "main",
		Title:    "  Article  ",
		Link:     "/node/5?page=2#comments",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(l.ID, domain.ContentIDPrefix))
	assert.Equal(t, "Article", l.Title)
	assert.True(t, l.Enabled)
	assert.False(t, l.Expanded)
	assert.Equal(t, 0, l.Weight)
	assert.Equal(t, domain.LinkOriginContent, l.Origin)
	assert.Equal(t, domain.ContentProvider, l.Provider)
	assert.Equal(t, domain.RevisionStateDefault, l.RevisionState)
	assert.Equal(t, "/node/5?page=2#comments", l.Target.String())

	stored, err := f.links.GetLink(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, "entity.node.canonical", stored.Target.RouteName)
	assert.Equal(t, "5", stored.Target.RouteParams["node"])
}

func TestCreateLink_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.mustCreate(t, "main", "", "root", 0)

	tests := []struct {
		name  string
		draft domain.LinkDraft
		want  error
	}{
		{"invalid target", domain.LinkDraft{MenuName: "main", Title: "x", Link: "/no/such/page"}, code.ErrorInvalidTarget},
		{"inaccessible target", domain.LinkDraft{MenuName: "main", Title: "x", Link: "/admin/people/permissions"}, code.ErrorTargetInaccessible},
		{"missing parent", domain.LinkDraft{MenuName: "main", ParentID: "menu_link_content:nope", Title: "x", Link: "<front>"}, code.ErrorParentNotFound},
		{"parent in other menu", domain.LinkDraft{MenuName: "footer", ParentID: root.ID, Title: "x", Link: "<front>"}, code.ErrorCrossMenuParentMismatch},
		{"missing menu", domain.LinkDraft{MenuName: "nowhere", Title: "x", Link: "<front>"}, code.ErrorMenuNotFound},
		{"missing title", domain.LinkDraft{MenuName: "main", Title: " ", Link: "<front>"}, code.ErrorInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := tt.draft
			_, err := f.links.CreateLink(ctx, &draft)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	n, err := f.links.CountLinks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateLink_MenuFromParent(t *testing.T) {
	f := newFixture(t)
	root := f.mustCreate(t, "footer", "", "root", 0)

	child, err := f.links.CreateLink(context.Background(), &domain.LinkDraft{
		ParentID: root.ID, Title: "child", Link: "https://www.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "footer", child.MenuName)
	assert.Equal(t, domain.TargetKindExternal, child.Target.Kind)
}

func TestMoveLink_IntoDescendantIsCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", a.ID, "B", 0)
	c := f.mustCreate(t, "main", b.ID, "C", 0)

	_, err := f.links.MoveLink(ctx, a.ID, c.ID, "")
	assert.ErrorIs(t, err, code.ErrorCycleDetected)

	_, err = f.links.MoveLink(ctx, a.ID, a.ID, "")
	assert.ErrorIs(t, err, code.ErrorCycleDetected)

	got, err := f.links.GetLink(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.ParentID)
	f.checkInvariants(t)
}

func TestMoveLink_SubtreeDepth(t *testing.T) {
	f := newFixture(t, func(c *ServiceConfig) { c.MaxDepth = 3 })
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", a.ID, "B", 0)
	x := f.mustCreate(t, "main", "", "X", 0)
	f.mustCreate(t, "main", x.ID, "Y", 0)

	// X has a child, so below B it would need four levels
	_, err := f.links.MoveLink(ctx, x.ID, b.ID, "")
	assert.ErrorIs(t, err, code.ErrorDepthExceeded)

	_, err = f.links.MoveLink(ctx, x.ID, a.ID, "")
	require.NoError(t, err)
	f.checkInvariants(t)
}

func TestMoveLink_PreservesSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", a.ID, "B", 0)
	f.mustCreate(t, "main", b.ID, "B2", 2)
	f.mustCreate(t, "main", b.ID, "B1", 1)
	f.mustCreate(t, "main", a.ID, "C", 5)
	other := f.mustCreate(t, "main", "", "Other", 10)

	before, err := f.links.Subtree(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.links.MoveLink(ctx, b.ID, other.ID, "")
	require.NoError(t, err)

	after, err := f.links.Subtree(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	tree, err := f.links.ListTree(ctx, "main", 0, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "Other", "B", "B1", "B2"}, titles(tree))
	f.checkInvariants(t)
}

func TestMoveLink_CrossMenuCarriesDescendants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", a.ID, "B", 0)
	c := f.mustCreate(t, "main", b.ID, "C", 0)

	moved, err := f.links.MoveLink(ctx, a.ID, "", "footer")
	require.NoError(t, err)
	assert.Equal(t, "footer", moved.MenuName)

	for _, id := range []string{b.ID, c.ID} {
		l, err := f.links.GetLink(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "footer", l.MenuName)
	}

	mainTree, err := f.links.ListTree(ctx, "main", 0, true)
	require.NoError(t, err)
	assert.Empty(t, mainTree)

	footerTree, err := f.links.ListTree(ctx, "footer", 0, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(footerTree))

	_, err = f.links.MoveLink(ctx, b.ID, "", "nowhere")
	assert.ErrorIs(t, err, code.ErrorMenuNotFound)
	f.checkInvariants(t)
}

func TestPendingRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	p := f.mustCreate(t, "main", "", "P", 0)

	pending, err := f.links.SetRevisionState(ctx, p.ID, domain.RevisionStatePending)
	require.NoError(t, err)
	assert.True(t, pending.IsPending())
	assert.Equal(t, p.Revision+1, pending.Revision)

	_, err = f.links.MoveLink(ctx, p.ID, a.ID, "")
	assert.ErrorIs(t, err, code.ErrorPendingRevisionLocked)

	_, err = f.links.MoveLink(ctx, p.ID, "", "")
	assert.ErrorIs(t, err, code.ErrorPendingRevisionLocked)

	_, err = f.links.UpdateLink(ctx, p.ID, &domain.LinkPatch{Weight: intPtr(3)})
	assert.ErrorIs(t, err, code.ErrorPendingRevisionLocked)

	updated, err := f.links.UpdateLink(ctx, p.ID, &domain.LinkPatch{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	_, err = f.links.ToggleEnabled(ctx, p.ID, false)
	require.NoError(t, err)

	_, err = f.links.CreateLink(ctx, &domain.LinkDraft{MenuName: "main", ParentID: p.ID, Title: "child", Link: "<front>"})
	assert.ErrorIs(t, err, code.ErrorPendingRevisionParent)

	_, err = f.links.MoveLink(ctx, a.ID, p.ID, "")
	assert.ErrorIs(t, err, code.ErrorPendingRevisionParent)

	n, err := f.links.CountPending(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	options, err := f.links.ParentOptions(ctx, []string{"main"}, "")
	require.NoError(t, err)
	for _, o := range options {
		assert.NotEqual(t, p.ID, o.Link.ID)
	}

	_, err = f.links.SetRevisionState(ctx, p.ID, domain.RevisionStateDefault)
	require.NoError(t, err)
	_, err = f.links.MoveLink(ctx, p.ID, a.ID, "")
	require.NoError(t, err)
	f.checkInvariants(t)
}

func TestSetRevisionState_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	f.mustCreate(t, "main", a.ID, "B", 0)

	_, err := f.links.SetRevisionState(ctx, a.ID, domain.RevisionStatePending)
	assert.ErrorIs(t, err, code.ErrorPendingRevisionParent)

	_, err = f.links.SetRevisionState(ctx, a.ID, domain.RevisionState("draft"))
	assert.ErrorIs(t, err, code.ErrorInvalidParams)

	_, err = f.links.SetRevisionState(ctx, "menu_link_content:nope", domain.RevisionStatePending)
	assert.ErrorIs(t, err, code.ErrorLinkNotFound)
}

type fakeRevisions map[string]bool

func (r fakeRevisions) IsPendingRevision(_ context.Context, id string) bool {
	return r[id]
}

func TestRevisionLookupIsHonoured(t *testing.T) {
	revisions := fakeRevisions{}
	f := newFixtureWithLookup(t, revisions)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", "", "B", 0)
	revisions[b.ID] = true

	_, err := f.links.MoveLink(ctx, b.ID, a.ID, "")
	assert.ErrorIs(t, err, code.ErrorPendingRevisionLocked)

	_, err = f.links.MoveLink(ctx, a.ID, b.ID, "")
	assert.ErrorIs(t, err, code.ErrorPendingRevisionParent)
}

func TestWeightsArePreserved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.mustCreate(t, "main", "", "parent", 0)
	var last *domain.MenuLink
	for w := -50; w <= 51; w++ {
		last = f.mustCreate(t, "main", parent.ID, fmt.Sprintf("w%d", w), w)
	}

	got, err := f.links.GetLink(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, 51, got.Weight)

	entries, err := f.links.ListTree(ctx, "main", 0, true)
	require.NoError(t, err)
	require.Len(t, entries, 103)
	assert.Equal(t, "w-50", entries[1].Link.Title)
	assert.Equal(t, "w51", entries[102].Link.Title)
	assert.Equal(t, 51, entries[102].Link.Weight)
}

func TestDeleteLink_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", a.ID, "B", 0)
	c := f.mustCreate(t, "main", b.ID, "C", 0)
	d := f.mustCreate(t, "main", a.ID, "D", 1)
	keep := f.mustCreate(t, "main", "", "Keep", 1)

	require.NoError(t, f.links.DeleteLink(ctx, b.ID))

	entries, err := f.links.ListTree(ctx, "main", 0, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, d.ID, keep.ID}, treeIDs(entries))

	_, err = f.links.GetLink(ctx, c.ID)
	assert.ErrorIs(t, err, code.ErrorLinkNotFound)

	assert.ErrorIs(t, f.links.DeleteLink(ctx, b.ID), code.ErrorLinkNotFound)

	n, err := f.links.CountLinks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestLoadTree_Parameters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", a.ID, "B", 0)
	f.mustCreate(t, "main", b.ID, "C", 0)
	hidden := f.mustCreate(t, "main", "", "Hidden", 1)
	f.mustCreate(t, "main", hidden.ID, "Under hidden", 0)

	_, err := f.links.ToggleEnabled(ctx, hidden.ID, false)
	require.NoError(t, err)

	// A is collapsed
	entries, err := f.links.ListTree(ctx, "main", 0, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(entries))
	assert.True(t, entries[0].HasChildren)

	entries, err = f.links.ListTree(ctx, "main", 2, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(entries))

	_, err = f.links.UpdateLink(ctx, a.ID, &domain.LinkPatch{Expanded: boolPtr(true)})
	require.NoError(t, err)
	entries, err = f.links.ListTree(ctx, "main", 0, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(entries))

	entries, err = f.links.LoadTree(ctx, "main", domain.TreeParameters{ExpandAll: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "Hidden", "Under hidden"}, titles(entries))
	assert.Equal(t, 2, entries[2].Depth)

	// depths are counted from MinDepth
	entries, err = f.links.LoadTree(ctx, "main", domain.TreeParameters{ExpandAll: true, MinDepth: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "Under hidden"}, titles(entries))
	assert.Equal(t, 0, entries[0].Depth)
	assert.Equal(t, 1, entries[1].Depth)

	_, err = f.links.ListTree(ctx, "nowhere", 0, true)
	assert.ErrorIs(t, err, code.ErrorMenuNotFound)
}

// cancelOnListRepo 在读取菜单链接时取消调用方的 context
type cancelOnListRepo struct {
	domain.MenuLinkRepository
	cancel context.CancelFunc
}

func (r *cancelOnListRepo) ListByMenu(ctx context.Context, menuName string) ([]*domain.MenuLink, error) {
	r.cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.MenuLinkRepository.ListByMenu(ctx, menuName)
}

func TestLoadTree_SharedLoadIgnoresCallerCancel(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, "main", "", "A", 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := &cancelOnListRepo{MenuLinkRepository: f.linkRepo, cancel: cancel}
	links := NewLinkService(repo, f.overlayRepo, f.menuRepo, nil, nil, f.config, zap.NewNop())

	entries, err := links.LoadTree(ctx, "main", domain.TreeParameters{ExpandAll: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(entries))
}

func TestParentOptions(t *testing.T) {
	f := newFixture(t, func(c *ServiceConfig) { c.MaxDepth = 3 })
	ctx := context.Background()

	a := f.mustCreate(t, "main", "", "A", 0)
	b := f.mustCreate(t, "main", a.ID, "B", 0)
	c := f.mustCreate(t, "main", b.ID, "C", 0)
	x := f.mustCreate(t, "main", "", "X", 1)
	f.mustCreate(t, "main", x.ID, "Y", 0)

	// a new link can go below A or B, but C is already at the last level
	options, err := f.links.ParentOptions(ctx, []string{"main"}, "")
	require.NoError(t, err)
	var got []string
	for _, o := range options {
		got = append(got, o.Link.Title)
	}
	assert.Equal(t, []string{"A", "B", "X", "Y"}, got)
	assert.NotContains(t, got, c.Title)

	// X has a child, so it fits only below root-level links
	options, err = f.links.ParentOptions(ctx, []string{"main"}, x.ID)
	require.NoError(t, err)
	got = got[:0]
	for _, o := range options {
		got = append(got, o.Link.Title)
	}
	assert.Equal(t, []string{"A"}, got)
}

func TestUpdateLink_Target(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustCreate(t, "main", "", "A", 0)

	updated, err := f.links.UpdateLink(ctx, a.ID, &domain.LinkPatch{Link: strPtr("route:entity.node.canonical;node=9")})
	require.NoError(t, err)
	assert.Equal(t, "/node/9", updated.Target.String())
	assert.Equal(t, a.Revision+1, updated.Revision)

	_, err = f.links.UpdateLink(ctx, a.ID, &domain.LinkPatch{Link: strPtr("/admin/people/permissions")})
	assert.ErrorIs(t, err, code.ErrorTargetInaccessible)

	_, err = f.links.UpdateLink(ctx, "menu_link_content:nope", &domain.LinkPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, code.ErrorLinkNotFound)
}

func TestConcurrentMovesKeepInvariants(t *testing.T) {
	f := newFixture(t, func(c *ServiceConfig) { c.MaxDepth = 4 })
	ctx := context.Background()

	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, f.mustCreate(t, "main", "", fmt.Sprintf("L%d", i), i).ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < len(ids); i++ {
		for j := 0; j < len(ids); j++ {
			if i == j {
				continue
			}
			wg.Add(1)
			go func(id, parent string) {
				defer wg.Done()
				// cycle and depth failures are expected; the registry must stay valid
				_, _ = f.links.MoveLink(ctx, id, parent, "")
			}(ids[i], ids[j])
		}
	}
	wg.Wait()

	f.checkInvariants(t)
	n, err := f.links.CountLinks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(ids)), n)
}
