package pq

import "github.com/emirpasic/gods/sets/treeset"

// resolveLeaves looks up the leaf for every distinct value in values,
// preserving first-seen order, and fails if any value is unknown to the
// tree's ground set.
func (t *Tree) resolveLeaves(values []int) ([]*Node, error) {
	leaves := make([]*Node, 0, len(values))
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		leaf, ok := t.leafFor(v)
		if !ok {
			return nil, &UnknownElementError{Value: v}
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

// resetTransient clears label/mark/counters throughout the subtree rooted
// at n, returning it to the state every node must be in between
// reductions (spec invariant 4).
func resetTransient(n *Node) {
	n.label = labelEmpty
	n.mark = markUnmarked
	n.pertinentLeafCount = 0
	n.pertinentChildCount = 0
	n.pseudochild = false
	switch n.kind {
	case PNode:
		for c := n.pHead; c != nil; c = c.pNext {
			resetTransient(c)
		}
	case QNode:
		for _, c := range childrenInOrder(n) {
			resetTransient(c)
		}
	}
}

// cleanupPseudo tears down a pseudo-node built for this reduction,
// splicing whatever is left of its children back into the real Q-node
// whose sibling run it stood in for, using the neighbours recorded at
// synthesis time. Used on both success and template-miss failure, since a
// poisoned tree should still not leak a floating pseudo-node into it.
func cleanupPseudo(pseudo *Node) {
	host := pseudo.pseudoHost
	members := childrenInOrder(pseudo)
	for i := 0; i < 2; i++ {
		end := pseudo.endmost[i]
		if end == nil {
			continue
		}
		nb := pseudo.pseudoNeighbors[i]
		if nb != nil {
			addSibling(nb, end)
			addSibling(end, nb)
			continue
		}
		if host == nil {
			continue
		}
		for j := 0; j < 2; j++ {
			if host.endmost[j] == nil || host.endmost[j].parent != host {
				host.endmost[j] = end
				end.parent = host
				break
			}
		}
	}
	if host != nil {
		for _, m := range members {
			m.parent = host
		}
	}
	pseudo.endmost[0], pseudo.endmost[1] = nil, nil
}

// Reduce narrows the tree's admitted permutations to those having every
// element of s consecutive. It returns false (and poisons the tree for
// every later non-safe call) if s contains an unknown value, if the
// pertinent subtree cannot be arranged to satisfy the bubble pass, or if
// some pertinent node matches no template.
func (t *Tree) Reduce(s []int) (bool, error) {
	set := treeset.NewWithIntComparator()
	for _, v := range s {
		set.Add(v)
	}

	if set.Size() < 2 {
		t.reductions = append(t.reductions, set)
		return true, nil
	}

	if t.invalid {
		return false, &PoisonedTreeError{}
	}

	leaves, err := t.resolveLeaves(s)
	if err != nil {
		t.invalid = true
		return false, err
	}

	pseudo, err := bubble(t, leaves)
	if err != nil {
		t.invalid = true
		return false, err
	}

	target := len(leaves)
	work := newNodeQueue(uint(target))
	for _, l := range leaves {
		l.pertinentLeafCount = 1
		work.Push(l)
	}

	for {
		x := work.Pop()
		if x == nil {
			if pseudo != nil {
				cleanupPseudo(pseudo)
			}
			t.invalid = true
			return false, &BubbleError{}
		}

		origParent := x.parent
		isRoot := x.pertinentLeafCount >= target
		ok, result := applyTemplates(x, isRoot)
		if !ok {
			if pseudo != nil {
				cleanupPseudo(pseudo)
			}
			t.invalid = true
			return false, &TemplateMissError{Kind: x.kind, Root: isRoot}
		}

		if isRoot {
			switch {
			case x.pseudonode:
				cleanupPseudo(x)
			case origParent == nil:
				t.root = result
				result.parent = nil
			case result != x:
				replaceChildInParent(origParent, x, result)
			}
			break
		}

		if origParent != nil {
			origParent.pertinentLeafCount += x.pertinentLeafCount
			origParent.pertinentChildCount--
			if result != x {
				replaceChildInParent(origParent, x, result)
			}
			if origParent.pertinentChildCount == 0 {
				work.Push(origParent)
			}
		}
	}

	resetTransient(t.root)
	t.reductions = append(t.reductions, set)
	return true, nil
}

// ReduceAll applies Reduce to each set in order, stopping at the first
// failure.
func (t *Tree) ReduceAll(sets [][]int) (bool, error) {
	for _, s := range sets {
		if ok, err := t.Reduce(s); !ok {
			return false, err
		}
	}
	return true, nil
}

// restore replaces t's live state with a previously taken snapshot.
func (t *Tree) restore(snapshot *Tree) {
	t.root = snapshot.root
	t.leafIndex = snapshot.leafIndex
	t.reductions = snapshot.reductions
	t.invalid = snapshot.invalid
}

// SafeReduce is Reduce with rollback: on failure, t is left exactly as it
// was before the call instead of being poisoned.
func (t *Tree) SafeReduce(s []int) (bool, error) {
	snapshot := t.Copy()
	ok, err := t.Reduce(s)
	if !ok {
		t.restore(snapshot)
	}
	return ok, err
}

// SafeReduceAll is ReduceAll with rollback across the whole list: if any
// set fails, t is restored to its state before the first of them.
func (t *Tree) SafeReduceAll(sets [][]int) (bool, error) {
	snapshot := t.Copy()
	ok, err := t.ReduceAll(sets)
	if !ok {
		t.restore(snapshot)
	}
	return ok, err
}
