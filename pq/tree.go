package pq

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/google/btree"
)

// leafItem is the google/btree Item backing a Tree's leaf index: an
// ordered map from ground-set value to the leaf Node holding it.
type leafItem struct {
	value int
	leaf  *Node
}

func (a leafItem) Less(than btree.Item) bool {
	return a.value < than.(leafItem).value
}

// Tree is a PQ-tree over a ground set of integers. The zero value is not
// usable; build one with New.
type Tree struct {
	root       *Node
	leafIndex  *btree.BTree
	reductions []*treeset.Set
	invalid    bool
}

const leafIndexDegree = 32

// New builds a Tree whose root is a single P-node with one leaf per
// distinct value in values: the tree that admits every permutation of
// the ground set, before any reduction narrows it.
func New(values []int) *Tree {
	t := &Tree{root: newPNode(), leafIndex: btree.New(leafIndexDegree)}
	seen := treeset.NewWithIntComparator()
	for _, v := range values {
		if seen.Contains(v) {
			continue
		}
		seen.Add(v)
		leaf := newLeaf(v)
		addPChildTail(t.root, leaf)
		t.leafIndex.ReplaceOrInsert(leafItem{value: v, leaf: leaf})
	}
	return t
}

// leafFor looks up the leaf holding value, if the tree's ground set
// contains it.
func (t *Tree) leafFor(v int) (*Node, bool) {
	item := t.leafIndex.Get(leafItem{value: v})
	if item == nil {
		return nil, false
	}
	return item.(leafItem).leaf, true
}

// copyNode deep-copies the subtree rooted at n. Sibling links for a
// copied Q-node's children are rebuilt from scratch by walking the
// original chain, never by translating pointers, per spec §4.B.
func copyNode(n *Node) *Node {
	switch n.kind {
	case Leaf:
		return newLeaf(n.value)
	case PNode:
		np := newPNode()
		np.label = n.label
		for c := n.pHead; c != nil; c = c.pNext {
			addPChildTail(np, copyNode(c))
		}
		return np
	default: // QNode
		nq := newQNode()
		nq.label = n.label
		var prevOrig, prevCopy *Node
		cur := n.endmost[0]
		for cur != nil {
			c2 := copyNode(cur)
			c2.parent = nq
			if prevCopy == nil {
				nq.endmost[0] = c2
			} else {
				addSibling(prevCopy, c2)
				addSibling(c2, prevCopy)
			}
			next := nextStep(cur, prevOrig)
			prevOrig, prevCopy = cur, c2
			cur = next
		}
		nq.endmost[1] = prevCopy
		return nq
	}
}

// buildLeafIndex walks a freshly copied tree and populates an ordered
// leaf index for it, exactly as New does for a freshly constructed one.
func buildLeafIndex(root *Node) *btree.BTree {
	idx := btree.New(leafIndexDegree)
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.kind {
		case Leaf:
			idx.ReplaceOrInsert(leafItem{value: n.value, leaf: n})
		case PNode:
			for c := n.pHead; c != nil; c = c.pNext {
				walk(c)
			}
		case QNode:
			var prev *Node
			cur := n.endmost[0]
			for cur != nil {
				walk(cur)
				next := nextStep(cur, prev)
				prev, cur = cur, next
			}
		}
	}
	walk(root)
	return idx
}

// Copy returns a deep copy of t, used to implement SafeReduce/SafeReduceAll.
func (t *Tree) Copy() *Tree {
	root := copyNode(t.root)
	reductions := make([]*treeset.Set, len(t.reductions))
	copy(reductions, t.reductions)
	return &Tree{
		root:       root,
		leafIndex:  buildLeafIndex(root),
		reductions: reductions,
		invalid:    t.invalid,
	}
}

func frontierWalk(n *Node, out *[]int) {
	switch n.kind {
	case Leaf:
		*out = append(*out, n.value)
	case PNode:
		for c := n.pHead; c != nil; c = c.pNext {
			frontierWalk(c, out)
		}
	case QNode:
		var prev *Node
		cur := n.endmost[0]
		for cur != nil {
			frontierWalk(cur, out)
			next := nextStep(cur, prev)
			prev, cur = cur, next
		}
	}
}

// Frontier returns the left-to-right sequence of leaf values: one
// admissible permutation consistent with every reduction applied so far.
func (t *Tree) Frontier() []int {
	var out []int
	frontierWalk(t.root, &out)
	return out
}

// containedSet is the union of every reduction set applied so far.
func (t *Tree) containedSet() *treeset.Set {
	out := treeset.NewWithIntComparator()
	for _, s := range t.reductions {
		for _, v := range s.Values() {
			out.Add(v)
		}
	}
	return out
}

// ReducedFrontier returns Frontier filtered down to leaves that have
// appeared in at least one prior reduction.
func (t *Tree) ReducedFrontier() []int {
	contained := t.containedSet()
	full := t.Frontier()
	out := make([]int, 0, len(full))
	for _, v := range full {
		if contained.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reductions is the audit log of every subset successfully reduced so
// far, in application order, each sorted ascending.
func (t *Tree) Reductions() [][]int {
	out := make([][]int, len(t.reductions))
	for i, s := range t.reductions {
		out[i] = intsOf(s)
	}
	return out
}

// Contained is the union of every set in Reductions, sorted ascending.
func (t *Tree) Contained() []int {
	return intsOf(t.containedSet())
}

func intsOf(s *treeset.Set) []int {
	vals := s.Values()
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = v.(int)
	}
	return out
}

// Print renders the tree's current structure: P-nodes as "( ... )",
// Q-nodes as "[ ... ]", leaves as their integer, single-space separators.
// Debug-only; not a wire format.
func (t *Tree) Print() string {
	var b strings.Builder
	printNode(t.root, &b)
	return b.String()
}

func printNode(n *Node, b *strings.Builder) {
	switch n.kind {
	case Leaf:
		b.WriteString(strconv.Itoa(n.value))
	case PNode:
		b.WriteByte('(')
		for c := n.pHead; c != nil; c = c.pNext {
			printNode(c, b)
			if c.pNext != nil {
				b.WriteByte(' ')
			}
		}
		b.WriteByte(')')
	case QNode:
		b.WriteByte('[')
		var prev *Node
		cur := n.endmost[0]
		for cur != nil {
			printNode(cur, b)
			next := nextStep(cur, prev)
			prev, cur = cur, next
			if cur != nil {
				b.WriteByte(' ')
			}
		}
		b.WriteByte(']')
	}
}

// Root returns the tree's root node, for read-only introspection.
func (t *Tree) Root() *Node { return t.root }

// Children returns n's children in the tree's current internal order:
// arbitrary for a P-node, left-to-right for a Q-node.
func (t *Tree) Children(n *Node) []*Node {
	switch n.kind {
	case PNode:
		return pChildren(n)
	case QNode:
		out := make([]*Node, 0, 4)
		var prev *Node
		cur := n.endmost[0]
		for cur != nil {
			out = append(out, cur)
			next := nextStep(cur, prev)
			prev, cur = cur, next
		}
		return out
	default:
		return nil
	}
}

// NodeKind reports whether n is a leaf, P-node, or Q-node.
func (t *Tree) NodeKind(n *Node) Kind { return n.kind }

// LeafValue returns n's value and true if n is a leaf, or (0, false)
// otherwise.
func (t *Tree) LeafValue(n *Node) (int, bool) {
	if n.kind != Leaf {
		return 0, false
	}
	return n.value, true
}
