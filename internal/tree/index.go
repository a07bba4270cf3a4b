// Package tree derives parent/child structure from a snapshot of menu links
// and validates structural changes before they are written.
package tree

import (
	"fmt"
	"sort"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/pkg/code"
)

// DefaultMaxDepth is the number of levels a menu holds when not configured.
const DefaultMaxDepth = 9

// PendingFunc reports whether a link has a pending revision.
type PendingFunc func(id string) bool

// Index is built from a registry snapshot. It is not safe for concurrent use.
type Index struct {
	maxDepth int
	links    map[string]*domain.MenuLink

	dirty    bool
	children map[string][]*domain.MenuLink
	roots    map[string][]*domain.MenuLink
}

// New indexes links. maxDepth <= 0 selects DefaultMaxDepth.
func New(links []*domain.MenuLink, maxDepth int) *Index {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	ix := &Index{
		maxDepth: maxDepth,
		links:    make(map[string]*domain.MenuLink, len(links)),
		dirty:    true,
	}
	for _, l := range links {
		ix.links[l.ID] = l
	}
	return ix
}

// MaxDepth returns the number of levels a menu may hold; depth is always < MaxDepth.
func (ix *Index) MaxDepth() int {
	return ix.maxDepth
}

// Len returns the number of indexed links.
func (ix *Index) Len() int {
	return len(ix.links)
}

// Get returns the link with id.
func (ix *Index) Get(id string) (*domain.MenuLink, bool) {
	l, ok := ix.links[id]
	return l, ok
}

// Put inserts or replaces a link.
func (ix *Index) Put(l *domain.MenuLink) {
	ix.links[l.ID] = l
	ix.dirty = true
}

// Remove drops a link; its children become roots until re-parented.
func (ix *Index) Remove(id string) {
	delete(ix.links, id)
	ix.dirty = true
}

// Links returns every indexed link ordered by menu then id.
func (ix *Index) Links() []*domain.MenuLink {
	out := make([]*domain.MenuLink, 0, len(ix.links))
	for _, l := range ix.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MenuName != out[j].MenuName {
			return out[i].MenuName < out[j].MenuName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (ix *Index) ensure() {
	if !ix.dirty {
		return
	}
	ix.children = make(map[string][]*domain.MenuLink)
	ix.roots = make(map[string][]*domain.MenuLink)
	for _, l := range ix.links {
		if _, ok := ix.links[l.ParentID]; l.ParentID != "" && ok {
			ix.children[l.ParentID] = append(ix.children[l.ParentID], l)
			continue
		}
		ix.roots[l.MenuName] = append(ix.roots[l.MenuName], l)
	}
	for _, list := range ix.children {
		sortSiblings(list)
	}
	for _, list := range ix.roots {
		sortSiblings(list)
	}
	ix.dirty = false
}

// Less orders siblings by weight, then title, then id.
func Less(a, b *domain.MenuLink) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}

func sortSiblings(list []*domain.MenuLink) {
	sort.Slice(list, func(i, j int) bool { return Less(list[i], list[j]) })
}

// Children returns the ordered direct children of id.
func (ix *Index) Children(id string) []*domain.MenuLink {
	ix.ensure()
	return ix.children[id]
}

// Roots returns the ordered root links of menu. A link whose parent is not
// indexed is reported as a root.
func (ix *Index) Roots(menu string) []*domain.MenuLink {
	ix.ensure()
	return ix.roots[menu]
}

// Ancestors returns the ancestor ids of id, parent first. The walk stops at
// a missing parent or when a corrupt cycle would repeat a link.
func (ix *Index) Ancestors(id string) []string {
	var out []string
	seen := map[string]struct{}{id: {}}
	l, ok := ix.links[id]
	for ok && l.ParentID != "" {
		if _, dup := seen[l.ParentID]; dup {
			break
		}
		parent, found := ix.links[l.ParentID]
		if !found {
			break
		}
		seen[parent.ID] = struct{}{}
		out = append(out, parent.ID)
		l = parent
	}
	return out
}

// Depth returns the number of ancestors of id.
func (ix *Index) Depth(id string) (int, error) {
	l, ok := ix.links[id]
	if !ok {
		return 0, code.ErrorLinkNotFound.WithDetails(id)
	}
	return ix.ComputeDepth(id, l.ParentID)
}

// ComputeDepth returns the depth linkID would have under proposedParentID.
// It fails with ErrorCycleDetected when the proposed parent is linkID itself
// or one of its descendants.
func (ix *Index) ComputeDepth(linkID, proposedParentID string) (int, error) {
	if proposedParentID == "" {
		return 0, nil
	}
	depth := 1
	seen := make(map[string]struct{})
	cur := proposedParentID
	for {
		if cur == linkID {
			return 0, code.ErrorCycleDetected.WithDetails(fmt.Sprintf("%s cannot be placed below %s", linkID, proposedParentID))
		}
		if _, dup := seen[cur]; dup {
			return 0, code.ErrorCycleDetected.WithDetails(fmt.Sprintf("ancestors of %s form a cycle", proposedParentID))
		}
		seen[cur] = struct{}{}
		l, ok := ix.links[cur]
		if !ok {
			return 0, code.ErrorParentNotFound.WithDetails(cur)
		}
		if l.ParentID == "" {
			return depth, nil
		}
		if _, ok := ix.links[l.ParentID]; !ok {
			return depth, nil
		}
		cur = l.ParentID
		depth++
	}
}

// Height returns how many levels lie below id; a leaf has height 0.
func (ix *Index) Height(id string) int {
	height := 0
	level := ix.Children(id)
	for len(level) > 0 {
		height++
		var next []*domain.MenuLink
		for _, l := range level {
			next = append(next, ix.Children(l.ID)...)
		}
		level = next
	}
	return height
}

// Subtree returns the descendants of id breadth first, ordered by
// (depth, weight, title).
func (ix *Index) Subtree(id string) []string {
	type entry struct {
		link  *domain.MenuLink
		depth int
	}
	var all []entry
	level := ix.Children(id)
	for depth := 1; len(level) > 0; depth++ {
		var next []*domain.MenuLink
		for _, l := range level {
			all = append(all, entry{link: l, depth: depth})
			next = append(next, ix.Children(l.ID)...)
		}
		level = next
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].depth != all[j].depth {
			return all[i].depth < all[j].depth
		}
		return Less(all[i].link, all[j].link)
	})
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = e.link.ID
	}
	return out
}

// IsDescendant reports whether id lies in the subtree below ancestorID.
func (ix *Index) IsDescendant(id, ancestorID string) bool {
	for _, a := range ix.Ancestors(id) {
		if a == ancestorID {
			return true
		}
	}
	return false
}

// ValidateMove checks that linkID may be placed under proposedParentID in
// proposedMenu. linkID need not be indexed yet; a new link has no subtree.
func (ix *Index) ValidateMove(linkID, proposedParentID, proposedMenu string, isPending PendingFunc) error {
	depth := 0
	if proposedParentID != "" {
		parent, ok := ix.links[proposedParentID]
		if !ok {
			return code.ErrorParentNotFound.WithDetails(proposedParentID)
		}
		if parent.MenuName != proposedMenu {
			return code.ErrorCrossMenuParentMismatch.WithDetails(
				fmt.Sprintf("parent %s belongs to menu %s, not %s", parent.ID, parent.MenuName, proposedMenu))
		}
		d, err := ix.ComputeDepth(linkID, proposedParentID)
		if err != nil {
			return err
		}
		if isPending != nil && isPending(proposedParentID) {
			return code.ErrorPendingRevisionParent.WithDetails(proposedParentID)
		}
		depth = d
	}

	height := 0
	if _, ok := ix.links[linkID]; ok {
		height = ix.Height(linkID)
	}
	if depth+height >= ix.maxDepth {
		return code.ErrorDepthExceeded.WithDetails(fmt.Sprintf("maximum depth is %d levels", ix.maxDepth))
	}
	return nil
}

// ParentOption is a link that may receive a child, with its depth.
type ParentOption struct {
	Link  *domain.MenuLink
	Depth int
}

// ParentOptions lists, per menu in tree order, the links linkID may be
// placed under. linkID may be empty for a link that does not exist yet.
func (ix *Index) ParentOptions(menu string, linkID string, isPending PendingFunc) []ParentOption {
	height := 0
	if _, ok := ix.links[linkID]; ok {
		height = ix.Height(linkID)
	}
	var out []ParentOption
	var visit func(l *domain.MenuLink, depth int)
	visit = func(l *domain.MenuLink, depth int) {
		if l.ID == linkID {
			return
		}
		if depth+1+height >= ix.maxDepth {
			return
		}
		if isPending == nil || !isPending(l.ID) {
			out = append(out, ParentOption{Link: l, Depth: depth})
		}
		for _, c := range ix.Children(l.ID) {
			visit(c, depth+1)
		}
	}
	for _, r := range ix.Roots(menu) {
		visit(r, 0)
	}
	return out
}

// Walk materializes menu in render order (depth first, siblings ordered).
func (ix *Index) Walk(menu string, params domain.TreeParameters) []domain.TreeEntry {
	var out []domain.TreeEntry
	visible := func(l *domain.MenuLink) bool {
		return !params.OnlyEnabled || l.Enabled
	}
	var visit func(l *domain.MenuLink, depth int)
	visit = func(l *domain.MenuLink, depth int) {
		if !visible(l) {
			return
		}
		if params.MaxDepth > 0 && depth >= params.MinDepth+params.MaxDepth {
			return
		}
		children := ix.Children(l.ID)
		hasChildren := false
		for _, c := range children {
			if visible(c) {
				hasChildren = true
				break
			}
		}
		if depth >= params.MinDepth {
			out = append(out, domain.TreeEntry{Link: l, Depth: depth - params.MinDepth, HasChildren: hasChildren})
		}
		if !params.ExpandAll && !l.Expanded && depth >= params.MinDepth {
			return
		}
		for _, c := range children {
			visit(c, depth+1)
		}
	}
	for _, r := range ix.Roots(menu) {
		visit(r, 0)
	}
	return out
}

// Check verifies the structural invariants over the whole snapshot.
func (ix *Index) Check(isPending PendingFunc) error {
	for _, l := range ix.Links() {
		if l.ParentID == "" {
			continue
		}
		parent, ok := ix.links[l.ParentID]
		if !ok {
			return code.ErrorParentNotFound.WithDetails(fmt.Sprintf("%s -> %s", l.ID, l.ParentID))
		}
		if parent.MenuName != l.MenuName {
			return code.ErrorCrossMenuParentMismatch.WithDetails(l.ID)
		}
		if isPending != nil && isPending(parent.ID) {
			return code.ErrorPendingRevisionParent.WithDetails(l.ID)
		}
		depth, err := ix.ComputeDepth(l.ID, l.ParentID)
		if err != nil {
			return err
		}
		if depth >= ix.maxDepth {
			return code.ErrorDepthExceeded.WithDetails(l.ID)
		}
	}
	return nil
}
