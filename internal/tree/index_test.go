package tree

import (
	"errors"
	"fmt"
	"testing"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/pkg/code"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func link(id, menu, parent string, weight int) *domain.MenuLink {
	return &domain.MenuLink{
		ID:            id,
		MenuName:      menu,
		ParentID:      parent,
		Weight:        weight,
		Title:         id,
		Enabled:       true,
		Origin:        domain.LinkOriginContent,
		RevisionState: domain.RevisionStateDefault,
	}
}

func ids(links []*domain.MenuLink) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.ID
	}
	return out
}

// A
// ├── B
// │   └── C
// │       └── D
// └── E
// F
func sampleIndex(maxDepth int) *Index {
	return New([]*domain.MenuLink{
		link("A", "main", "", 0),
		link("B", "main", "A", 0),
		link("C", "main", "B", 0),
		link("D", "main", "C", 0),
		link("E", "main", "A", 1),
		link("F", "main", "", 5),
		link("X", "footer", "", 0),
	}, maxDepth)
}

func TestDepthAndAncestors(t *testing.T) {
	ix := sampleIndex(9)

	d, err := ix.Depth("D")
	require.NoError(t, err)
	assert.Equal(t, 3, d)
	assert.Equal(t, []string{"C", "B", "A"}, ix.Ancestors("D"))
	assert.Empty(t, ix.Ancestors("A"))

	d, err = ix.Depth("A")
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = ix.Depth("missing")
	assert.True(t, errors.Is(err, code.ErrorLinkNotFound))

	assert.Equal(t, 3, ix.Height("A"))
	assert.Equal(t, 0, ix.Height("D"))
}

func TestComputeDepth(t *testing.T) {
	ix := sampleIndex(9)

	d, err := ix.ComputeDepth("F", "D")
	require.NoError(t, err)
	assert.Equal(t, 4, d)

	d, err = ix.ComputeDepth("new", "")
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = ix.ComputeDepth("A", "A")
	assert.True(t, errors.Is(err, code.ErrorCycleDetected))

	_, err = ix.ComputeDepth("A", "C")
	assert.True(t, errors.Is(err, code.ErrorCycleDetected))

	_, err = ix.ComputeDepth("A", "nope")
	assert.True(t, errors.Is(err, code.ErrorParentNotFound))
}

func TestValidateMove(t *testing.T) {
	pending := func(id string) bool { return id == "E" }

	tests := []struct {
		name    string
		max     int
		link    string
		parent  string
		menu    string
		wantErr error
	}{
		{name: "move to root", max: 9, link: "C", parent: "", menu: "main"},
		{name: "move under sibling", max: 9, link: "F", parent: "B", menu: "main"},
		{name: "new link under leaf", max: 9, link: "new", parent: "D", menu: "main"},
		{name: "into own descendant", max: 9, link: "A", parent: "C", menu: "main", wantErr: code.ErrorCycleDetected},
		{name: "onto itself", max: 9, link: "B", parent: "B", menu: "main", wantErr: code.ErrorCycleDetected},
		{name: "pending parent", max: 9, link: "F", parent: "E", menu: "main", wantErr: code.ErrorPendingRevisionParent},
		{name: "parent in other menu", max: 9, link: "F", parent: "X", menu: "main", wantErr: code.ErrorCrossMenuParentMismatch},
		{name: "menu change keeps parent menu", max: 9, link: "F", parent: "A", menu: "footer", wantErr: code.ErrorCrossMenuParentMismatch},
		{name: "missing parent", max: 9, link: "F", parent: "nope", menu: "main", wantErr: code.ErrorParentNotFound},
		{name: "new link below last level", max: 4, link: "new", parent: "D", menu: "main", wantErr: code.ErrorDepthExceeded},
		{name: "subtree would overflow", max: 3, link: "B", parent: "F", menu: "main", wantErr: code.ErrorDepthExceeded},
		{name: "subtree fits exactly", max: 4, link: "B", parent: "", menu: "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := sampleIndex(tt.max)
			err := ix.ValidateMove(tt.link, tt.parent, tt.menu, pending)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateMove_ChainStopsAtMaxDepth(t *testing.T) {
	ix := New(nil, 9)
	parent := ""
	for i := 1; i <= 9; i++ {
		id := fmt.Sprintf("L%d", i)
		require.NoError(t, ix.ValidateMove(id, parent, "m", nil), "link %d", i)
		ix.Put(link(id, "m", parent, 0))
		parent = id
	}

	err := ix.ValidateMove("L10", parent, "m", nil)
	assert.True(t, errors.Is(err, code.ErrorDepthExceeded))

	d, err := ix.Depth("L9")
	require.NoError(t, err)
	assert.Equal(t, 8, d)
}

func TestSubtreeOrdering(t *testing.T) {
	ix := New([]*domain.MenuLink{
		link("root", "main", "", 0),
		link("b", "main", "root", 2),
		link("a", "main", "root", 2),
		link("z", "main", "root", -1),
		link("b1", "main", "b", 0),
		link("z1", "main", "z", 3),
		link("z0", "main", "z", 1),
		link("z00", "main", "z0", 0),
	}, 9)

	assert.Equal(t, []string{"z", "a", "b", "b1", "z0", "z1", "z00"}, ix.Subtree("root"))
	assert.Equal(t, []string{"z", "a", "b"}, ids(ix.Children("root")))
	assert.Empty(t, ix.Subtree("z00"))
	assert.True(t, ix.IsDescendant("z00", "root"))
	assert.False(t, ix.IsDescendant("root", "z00"))
}

func TestWalk(t *testing.T) {
	links := []*domain.MenuLink{
		link("A", "main", "", 0),
		link("A1", "main", "A", 0),
		link("A11", "main", "A1", 0),
		link("B", "main", "", 1),
		link("B1", "main", "B", 0),
		link("C", "main", "", 2),
		link("C1", "main", "C", 0),
	}
	links[0].Expanded = true // A
	links[3].Expanded = true // B
	links[4].Enabled = false // B1
	links[5].Enabled = false // C

	entryIDs := func(entries []domain.TreeEntry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = fmt.Sprintf("%s@%d", e.Link.ID, e.Depth)
		}
		return out
	}

	ix := New(links, 9)

	assert.Equal(t,
		[]string{"A@0", "A1@1", "B@0"},
		entryIDs(ix.Walk("main", domain.TreeParameters{OnlyEnabled: true})))

	assert.Equal(t,
		[]string{"A@0", "A1@1", "A11@2", "B@0"},
		entryIDs(ix.Walk("main", domain.TreeParameters{OnlyEnabled: true, ExpandAll: true})))

	assert.Equal(t,
		[]string{"A@0", "A1@1", "A11@2", "B@0", "B1@1", "C@0", "C1@1"},
		entryIDs(ix.Walk("main", domain.TreeParameters{ExpandAll: true})))

	assert.Equal(t,
		[]string{"A@0", "A1@1", "B@0", "B1@1", "C@0", "C1@1"},
		entryIDs(ix.Walk("main", domain.TreeParameters{ExpandAll: true, MaxDepth: 2})))

	assert.Equal(t,
		[]string{"A1@0", "A11@1", "B1@0", "C1@0"},
		entryIDs(ix.Walk("main", domain.TreeParameters{ExpandAll: true, MinDepth: 1})))

	entries := ix.Walk("main", domain.TreeParameters{OnlyEnabled: true})
	assert.True(t, entries[0].HasChildren)
	// B has only a disabled child
	assert.False(t, entries[2].HasChildren)
}

func TestParentOptions(t *testing.T) {
	ix := sampleIndex(4)
	pending := func(id string) bool { return id == "E" }

	// D is at depth 3, the last level of a 4-level menu, so it cannot hold children.
	opts := ix.ParentOptions("main", "", pending)
	var got []string
	for _, o := range opts {
		got = append(got, o.Link.ID)
	}
	assert.Equal(t, []string{"A", "B", "C", "F"}, got)

	// B's subtree is two levels high: only depth 0 parents remain, B itself excluded.
	opts = ix.ParentOptions("main", "B", pending)
	got = got[:0]
	for _, o := range opts {
		got = append(got, o.Link.ID)
	}
	assert.Equal(t, []string{"A", "F"}, got)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, sampleIndex(9).Check(nil))
	assert.Error(t, sampleIndex(3).Check(nil))

	cyclic := New([]*domain.MenuLink{
		link("a", "main", "b", 0),
		link("b", "main", "a", 0),
	}, 9)
	assert.True(t, errors.Is(cyclic.Check(nil), code.ErrorCycleDetected))
}

// Random move sequences gated by ValidateMove never break the invariants and
// never change the size of the moved subtree.
func TestProperty_MovesPreserveInvariants(t *testing.T) {
	const n = 15
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("validated moves keep the forest acyclic and depth bounded", prop.ForAll(
		func(movers, parents []int) bool {
			links := make([]*domain.MenuLink, n)
			for i := range links {
				links[i] = link(fmt.Sprintf("n%02d", i), "main", "", i%3)
			}
			ix := New(links, 4)

			for step := range movers {
				mover := links[movers[step]]
				parentID := ""
				if p := parents[step]; p < n {
					parentID = links[p].ID
				}
				before := len(ix.Subtree(mover.ID))
				if err := ix.ValidateMove(mover.ID, parentID, "main", nil); err != nil {
					continue
				}
				mover.ParentID = parentID
				ix.Put(mover)

				if err := ix.Check(nil); err != nil {
					t.Logf("invariant broken after moving %s under %q: %v", mover.ID, parentID, err)
					return false
				}
				if after := len(ix.Subtree(mover.ID)); after != before {
					t.Logf("subtree of %s changed size: %d -> %d", mover.ID, before, after)
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, gen.IntRange(0, n-1)),
		gen.SliceOfN(40, gen.IntRange(0, n)),
	))

	properties.TestingRun(t)
}
