package ast

import (
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
)

// Path addresses a subtree by the sequence of child indices from some root.
// The empty path addresses the root itself.
type Path []int

// Equal reports whether p and other address the same position.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a (non-strict) prefix of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Append returns a new path with idx appended; it never aliases p's backing
// array, since Path values are shared freely across trees.
func (p Path) Append(idx int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = idx
	return out
}

var nextTreeID int64

func newTreeID() int64 { return atomic.AddInt64(&nextTreeID, 1) }

// Tree is an immutable derivation tree. Value is either a nonterminal label
// ("<expr>") or a terminal string. Children is nil for an open leaf (a
// still-unexpanded nonterminal) and a non-nil (possibly empty) slice for a
// node whose expansion is fixed, matching the source's "None vs []"
// distinction between open and closed leaves.
//
// Trees are never mutated after construction; every transformation returns a
// new *Tree. ID is stable across all structural operations that preserve a
// subtree: ReplacePath and Substitute keep an ancestor's ID when rebuilding
// it, and keep a surviving subtree's ID untouched.
type Tree struct {
	value    string
	children []*Tree
	id       int64

	isOpenOnce sync.Once
	isOpenVal  bool

	idHashOnce sync.Once
	idHashVal  uint64

	structHashOnce sync.Once
	structHashVal  uint64

	stringOnce    sync.Once
	stringVal     string
	stringOpenOnce sync.Once
	stringOpenVal  string

	pathsOnce sync.Once
	pathsVal  []PathTree
}

// PathTree pairs a path with the subtree found there.
type PathTree struct {
	Path Path
	Tree *Tree
}

// NewOpenLeaf creates an unexpanded leaf: Value is normally a nonterminal
// label, and Children is nil.
func NewOpenLeaf(value string) *Tree {
	return &Tree{value: value, id: newTreeID()}
}

// NewLeaf creates a closed, childless leaf (a terminal, or a nonterminal that
// expands to nothing).
func NewLeaf(value string) *Tree {
	return &Tree{value: value, children: []*Tree{}, id: newTreeID()}
}

// NewNode creates a node with the given children. Passing a nil slice
// produces an open leaf; callers who want a definitely-closed node with no
// children should use NewLeaf instead.
func NewNode(value string, children []*Tree) *Tree {
	return &Tree{value: value, children: children, id: newTreeID()}
}

// newNodeWithID is the internal constructor used by ReplacePath and
// Substitute to rebuild ancestors while retaining their original ID.
func newNodeWithID(value string, children []*Tree, id int64) *Tree {
	return &Tree{value: value, children: children, id: id}
}

func (t *Tree) Value() string { return t.value }
func (t *Tree) ID() int64     { return t.id }

// Children returns the node's children, or nil if the node is an open leaf.
func (t *Tree) Children() []*Tree { return t.children }

func (t *Tree) NumChildren() int { return len(t.children) }

// RootNonterminal returns the node's value (trees are rooted at a
// nonterminal unless the node is itself a terminal).
func (t *Tree) RootNonterminal() string { return t.value }

// IsOpen reports whether this node, or any descendant, is an open leaf. The
// result is computed once and cached; it is only ever invalidated by
// rebuilding the node (ReplacePath/Substitute produce fresh *Tree values).
func (t *Tree) IsOpen() bool {
	t.isOpenOnce.Do(func() {
		if t.children == nil {
			t.isOpenVal = true
			return
		}
		for _, c := range t.children {
			if c.IsOpen() {
				t.isOpenVal = true
				return
			}
		}
	})
	return t.isOpenVal
}

func (t *Tree) IsComplete() bool { return !t.IsOpen() }

// GetSubtree follows path from the root. Undefined (returns nil) for an
// invalid path; use IsValidPath to check first.
func (t *Tree) GetSubtree(path Path) *Tree {
	cur := t
	for _, idx := range path {
		if cur.children == nil || idx < 0 || idx >= len(cur.children) {
			return nil
		}
		cur = cur.children[idx]
	}
	return cur
}

func (t *Tree) IsValidPath(path Path) bool {
	cur := t
	for _, idx := range path {
		if cur.children == nil || idx < 0 || idx >= len(cur.children) {
			return false
		}
		cur = cur.children[idx]
	}
	return true
}

const (
	// TraversePreorder visits a node before its children.
	TraversePreorder = iota
	// TraversePostorder visits a node after its children.
	TraversePostorder
)

// Traverse walks the tree iteratively (no recursion, so arbitrarily deep
// trees are safe), in pre- or post-order, optionally right-to-left, stopping
// early if abort returns true for some visited node.
func (t *Tree) Traverse(order int, reverse bool, action func(Path, *Tree), abort func(Path, *Tree) bool) {
	type frame struct {
		path Path
		tree *Tree
	}

	stack1 := []frame{{nil, t}}
	var stack2 []frame

	walkReverse := reverse
	if order == TraversePostorder {
		walkReverse = !reverse
	}

	for len(stack1) > 0 {
		f := stack1[len(stack1)-1]
		stack1 = stack1[:len(stack1)-1]

		if abort != nil && abort(f.path, f.tree) {
			return
		}

		if order == TraversePostorder {
			stack2 = append(stack2, f)
		}
		if order == TraversePreorder {
			action(f.path, f.tree)
		}

		if f.tree.children != nil {
			n := len(f.tree.children)
			if walkReverse {
				for i := 0; i < n; i++ {
					stack1 = append(stack1, frame{f.path.Append(i), f.tree.children[i]})
				}
			} else {
				for i := n - 1; i >= 0; i-- {
					stack1 = append(stack1, frame{f.path.Append(i), f.tree.children[i]})
				}
			}
		}
	}

	if order == TraversePostorder {
		for i := len(stack2) - 1; i >= 0; i-- {
			action(stack2[i].path, stack2[i].tree)
		}
	}
}

// Paths enumerates every (path, subtree) pair in depth-first preorder.
func (t *Tree) Paths() []PathTree {
	t.pathsOnce.Do(func() {
		var result []PathTree
		t.Traverse(TraversePreorder, false, func(p Path, n *Tree) {
			result = append(result, PathTree{Path: p, Tree: n})
		}, nil)
		t.pathsVal = result
	})
	return t.pathsVal
}

// Leaves restricts Paths to closed, childless nodes.
func (t *Tree) Leaves() []PathTree {
	var result []PathTree
	for _, pt := range t.Paths() {
		if len(pt.Tree.children) == 0 && pt.Tree.children != nil {
			result = append(result, pt)
		}
	}
	return result
}

// OpenLeaves restricts Paths to still-unexpanded nodes.
func (t *Tree) OpenLeaves() []PathTree {
	var result []PathTree
	for _, pt := range t.Paths() {
		if pt.Tree.children == nil {
			result = append(result, pt)
		}
	}
	return result
}

// HasUniqueIDs reports whether every subtree in t carries a distinct ID.
func (t *Tree) HasUniqueIDs() bool {
	seen := make(map[int64]*Tree, len(t.Paths()))
	for _, pt := range t.Paths() {
		if other, ok := seen[pt.Tree.id]; ok && other != pt.Tree {
			return false
		}
		seen[pt.Tree.id] = pt.Tree
	}
	return true
}

// FindNode returns the path (relative to t) of the subtree whose ID matches
// id, in preorder, or (nil, false) if no such subtree exists.
func (t *Tree) FindNode(id int64) (Path, bool) {
	for _, pt := range t.Paths() {
		if pt.Tree.id == id {
			return pt.Path, true
		}
	}
	return nil, false
}

// Filter collects every subtree for which f holds, in preorder. If
// enforceUnique is true and more than one match is found, Filter panics
// (mirroring the source's RuntimeError), since this is a programmer-error
// condition callers who pass enforceUnique are asserting can't happen.
func (t *Tree) Filter(f func(*Tree) bool, enforceUnique bool) []PathTree {
	var result []PathTree
	for _, pt := range t.Paths() {
		if f(pt.Tree) {
			result = append(result, pt)
			if enforceUnique && len(result) > 1 {
				panic("ast: found searched-for element more than once")
			}
		}
	}
	return result
}

// ReplacePath returns a new tree with replacement inserted at path in place
// of the original subtree. Ancestors are rebuilt with fresh node values that
// retain their original IDs; replacement keeps its own ID unless retainID is
// requested, in which case it is rebuilt to inherit the replaced subtree's
// ID. ReplacePath panics if path is invalid; callers that are not sure
// should check IsValidPath first.
func (t *Tree) ReplacePath(path Path, replacement *Tree, retainID bool) *Tree {
	stack := make([]*Tree, 1, len(path)+1)
	stack[0] = t
	for _, idx := range path {
		cur := stack[len(stack)-1]
		if cur.children == nil || idx < 0 || idx >= len(cur.children) {
			panic("ast: invalid path in ReplacePath")
		}
		stack = append(stack, cur.children[idx])
	}

	if retainID {
		replacement = newNodeWithID(replacement.value, replacement.children, stack[len(stack)-1].id)
	}

	cur := replacement
	for i := len(path) - 1; i >= 0; i-- {
		parent := stack[i]
		idx := path[i]
		newChildren := make([]*Tree, len(parent.children))
		copy(newChildren, parent.children)
		newChildren[idx] = cur
		cur = newNodeWithID(parent.value, newChildren, parent.id)
	}

	return cur
}

// TreeSubstitution maps the ID of a subtree to its replacement.
type TreeSubstitution map[int64]*Tree

// Substitute repeatedly replaces, by ID, every subtree named as a key of
// subst. Entries whose original subtree's ID already occurs inside some
// other entry's replacement value (other than trivially, when that other
// replacement shares the same ID) are dropped first, so that nested
// replacements never apply twice.
func (t *Tree) Substitute(subst map[*Tree]*Tree) *Tree {
	type entry struct {
		origID int64
		repl   *Tree
	}
	var entries []entry
	for orig, repl := range subst {
		keep := true
		for otherOrig, otherRepl := range subst {
			if otherOrig == orig {
				continue
			}
			if otherRepl.id == orig.id {
				continue
			}
			if _, found := otherRepl.FindNode(orig.id); found {
				keep = false
				break
			}
		}
		if keep {
			entries = append(entries, entry{origID: orig.id, repl: repl})
		}
	}

	result := t
	for _, e := range entries {
		if path, ok := result.FindNode(e.origID); ok {
			result = result.ReplacePath(path, e.repl, false)
		}
	}
	return result
}

// NewIDs returns a structurally equal copy of t with every node assigned a
// fresh ID, needed to insert a cached "template" tree (e.g. a bind
// expression's tree prefix) more than once without ID collisions.
func (t *Tree) NewIDs() *Tree {
	if t.children == nil {
		return NewOpenLeaf(t.value)
	}
	children := make([]*Tree, len(t.children))
	for i, c := range t.children {
		children[i] = c.NewIDs()
	}
	return NewNode(t.value, children)
}

// IsPrefix reports whether t is a structural prefix of other: same shape,
// same values, down to t's leaves (which must either be open, or match
// other's corresponding leaf exactly).
func (t *Tree) IsPrefix(other *Tree) bool {
	if t.value != other.value {
		return false
	}
	if t.children == nil {
		return true
	}
	if other.children == nil {
		return false
	}
	if len(t.children) != len(other.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].IsPrefix(other.children[i]) {
			return false
		}
	}
	return true
}

// IsPotentialPrefix is like IsPrefix but treats an open leaf in other as a
// wildcard that could still be expanded to make t a prefix.
func (t *Tree) IsPotentialPrefix(other *Tree) bool {
	if t.value != other.value {
		return false
	}
	if t.children == nil {
		return true
	}
	if other.children == nil {
		return true
	}
	if len(t.children) != len(other.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].IsPotentialPrefix(other.children[i]) {
			return false
		}
	}
	return true
}

// ParseTree is the bare (value, children?) tuple form used to interchange
// trees with a grammar library; nil Children means an open leaf, matching
// Tree's own convention.
type ParseTree struct {
	Value    string
	Children []*ParseTree
}

func (t *Tree) ToParseTree() *ParseTree {
	if t.children == nil {
		return &ParseTree{Value: t.value}
	}
	children := make([]*ParseTree, len(t.children))
	for i, c := range t.children {
		children[i] = c.ToParseTree()
	}
	return &ParseTree{Value: t.value, Children: children}
}

func FromParseTree(pt *ParseTree) *Tree {
	if pt.Children == nil {
		return NewOpenLeaf(pt.Value)
	}
	children := make([]*Tree, len(pt.Children))
	for i, c := range pt.Children {
		children[i] = FromParseTree(c)
	}
	return NewNode(pt.Value, children)
}

// ToString concatenates the tree's terminals left to right. Open leaves
// contribute nothing unless showOpenLeaves is set, in which case they
// contribute their nonterminal label.
func (t *Tree) ToString(showOpenLeaves bool) string {
	cache := &t.stringVal
	once := &t.stringOnce
	if showOpenLeaves {
		cache = &t.stringOpenVal
		once = &t.stringOpenOnce
	}
	once.Do(func() {
		var b strings.Builder
		var walk func(n *Tree)
		walk = func(n *Tree) {
			if n.children == nil {
				if showOpenLeaves {
					b.WriteString(n.value)
				}
				return
			}
			if len(n.children) == 0 {
				if !IsNonterminal(n.value) {
					b.WriteString(n.value)
				}
				return
			}
			for _, c := range n.children {
				walk(c)
			}
		}
		walk(t)
		*cache = b.String()
	})
	return *cache
}

func (t *Tree) String() string { return t.ToString(true) }

func combineHash(seed uint64, parts ...uint64) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8*(len(parts)+1))
	putU64(buf[0:8], seed)
	for i, p := range parts {
		putU64(buf[8*(i+1):8*(i+2)], p)
	}
	h.Write(buf)
	return h.Sum64()
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func stringHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// IdentityHash depends on value, ID, and children's identity hashes: two
// trees with the same shape but different IDs hash differently.
func (t *Tree) IdentityHash() uint64 {
	t.idHashOnce.Do(func() {
		base := stringHash(t.value)
		idPart := uint64(t.id)
		if t.children == nil {
			t.idHashVal = combineHash(base, idPart)
			return
		}
		parts := make([]uint64, 0, len(t.children)+1)
		parts = append(parts, idPart)
		for _, c := range t.children {
			parts = append(parts, c.IdentityHash())
		}
		t.idHashVal = combineHash(base, parts...)
	})
	return t.idHashVal
}

// StructuralHash depends only on value and children, ignoring IDs: two
// structurally-equal trees with different IDs hash the same.
func (t *Tree) StructuralHash() uint64 {
	t.structHashOnce.Do(func() {
		base := stringHash(t.value)
		if t.children == nil {
			t.structHashVal = base
			return
		}
		parts := make([]uint64, 0, len(t.children))
		for _, c := range t.children {
			parts = append(parts, c.StructuralHash())
		}
		t.structHashVal = combineHash(base, parts...)
	})
	return t.structHashVal
}

// StructurallyEqual compares t and other by shape and value only, ignoring
// IDs.
func (t *Tree) StructurallyEqual(other *Tree) bool {
	if other == nil {
		return false
	}
	if t.value != other.value {
		return false
	}
	if (t.children == nil) != (other.children == nil) {
		return false
	}
	if t.children == nil {
		return true
	}
	if len(t.children) != len(other.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].StructurallyEqual(other.children[i]) {
			return false
		}
	}
	return true
}

// Equal compares t and other by shape, value, AND id: trees with identical
// structure but different IDs (e.g. two NewIDs() copies) are not Equal.
func (t *Tree) Equal(other *Tree) bool {
	if other == nil {
		return false
	}
	if t.value != other.value || t.id != other.id {
		return false
	}
	if (t.children == nil) != (other.children == nil) {
		return false
	}
	if len(t.children) != len(other.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return true
}
