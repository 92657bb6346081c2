package pq

// A template is a predicate-and-rewrite: it reports whether n matches its
// pattern and, if so, the node that should stand in n's place going
// forward (n itself for a label-only rewrite, or a freshly built node for
// a structural one). The caller is responsible for installing the result
// in n's former position; a template only ever mutates n's own subtree.
type templateFunc func(n *Node) (matched bool, result *Node)

var nonRootTemplates = []templateFunc{l1, p1, p3, p5, q1, q2}
var rootTemplates = []templateFunc{l1, p1, p2, p4, p6, q1, q2, q3}

// applyTemplates tries every template valid for n's role in fixed order,
// stopping at the first match.
func applyTemplates(n *Node, root bool) (bool, *Node) {
	table := nonRootTemplates
	if root {
		table = rootTemplates
	}
	for _, tpl := range table {
		if ok, result := tpl(n); ok {
			return true, result
		}
	}
	return false, nil
}

// l1: a leaf is always full once reached by the reduce driver; it is
// pertinent only because it belongs to S.
func l1(n *Node) (bool, *Node) {
	if n.kind != Leaf {
		return false, nil
	}
	n.label = labelFull
	return true, n
}

// p1: every child of a P-node is full.
func p1(n *Node) (bool, *Node) {
	if n.kind != PNode {
		return false, nil
	}
	nEmpty, nFull, nPartial, _, _ := countByLabel(n)
	if nPartial != 0 || nEmpty != 0 || nFull == 0 {
		return false, nil
	}
	n.label = labelFull
	return true, n
}

// p2 (root only): no partial children, a genuine empty/full mix. The full
// children are grouped into one fresh P-node child; the host becomes
// partial. A lone full child is left in place rather than wrapped.
func p2(n *Node) (bool, *Node) {
	if n.kind != PNode {
		return false, nil
	}
	nEmpty, nFull, nPartial, _, _ := countByLabel(n)
	if nPartial != 0 || nEmpty == 0 || nFull == 0 {
		return false, nil
	}
	if nFull > 1 {
		full := collectFullChildren(n)
		addPChildTail(n, full)
	}
	n.label = labelPartial
	return true, n
}

// p3 (non-root): no partial children, a genuine empty/full mix. The host
// is replaced by a fresh 2-child Q-node: a full aggregate on one end, an
// empty aggregate on the other.
func p3(n *Node) (bool, *Node) {
	if n.kind != PNode {
		return false, nil
	}
	nEmpty, nFull, nPartial, _, _ := countByLabel(n)
	if nPartial != 0 || nEmpty == 0 || nFull == 0 {
		return false, nil
	}
	full := collectFullChildren(n)
	full.label = labelFull

	var empty *Node
	if nEmpty == 1 {
		empty = n.pHead
		removePChild(n, empty)
	} else {
		empty = newPNode()
		for c := n.pHead; c != nil; c = n.pHead {
			removePChild(n, c)
			addPChildTail(empty, c)
		}
	}
	empty.label = labelEmpty

	q := newQNode()
	q.label = labelPartial
	addQChildTail(q, empty)
	addQChildTail(q, full)
	return true, q
}

// spliceFullIntoPartialEnd appends full onto partial's full-labelled end,
// becoming the new endmost there.
func spliceFullIntoPartialEnd(partial, full *Node) {
	end := endmostWithLabel(partial, labelFull)
	addSibling(end, full)
	addSibling(full, end)
	replaceEndmost(partial, end, full)
	full.parent = partial
}

// spliceEmptyIntoPartialEnd is spliceFullIntoPartialEnd's mirror image.
func spliceEmptyIntoPartialEnd(partial, empty *Node) {
	end := endmostWithLabel(partial, labelEmpty)
	addSibling(end, empty)
	addSibling(empty, end)
	replaceEndmost(partial, end, empty)
	empty.parent = partial
}

// p4 (root only): exactly one partial child, any mix of empty/full. The
// partial Q-node absorbs the host's full children on its full end. If
// nothing but the partial is left, the host is elided.
func p4(n *Node) (bool, *Node) {
	if n.kind != PNode {
		return false, nil
	}
	nEmpty, nFull, nPartial, _, firstPartial := countByLabel(n)
	if nPartial != 1 {
		return false, nil
	}
	partial := firstPartial
	if nFull > 0 {
		full := collectFullChildren(n)
		full.label = labelFull
		spliceFullIntoPartialEnd(partial, full)
	}
	if nEmpty == 0 {
		removePChild(n, partial)
		return true, partial
	}
	return true, n
}

// p5 (non-root): exactly one partial child. It is promoted to the host's
// own position, absorbing the host's full children on its full end and
// the host's empty children (the lone empty child, or a fresh P-node
// holding them if there are several) on its empty end.
func p5(n *Node) (bool, *Node) {
	if n.kind != PNode {
		return false, nil
	}
	nEmpty, nFull, nPartial, _, firstPartial := countByLabel(n)
	if nPartial != 1 {
		return false, nil
	}
	partial := firstPartial
	removePChild(n, partial)

	if nFull > 0 {
		full := collectFullChildren(n)
		full.label = labelFull
		spliceFullIntoPartialEnd(partial, full)
	}
	if nEmpty > 0 {
		var empty *Node
		if nEmpty == 1 {
			empty = n.pHead
			removePChild(n, empty)
		} else {
			empty = newPNode()
			for c := n.pHead; c != nil; c = n.pHead {
				removePChild(n, c)
				addPChildTail(empty, c)
			}
		}
		empty.label = labelEmpty
		spliceEmptyIntoPartialEnd(partial, empty)
	}
	return true, partial
}

// appendQChain rebuilds src's child chain, starting from the endmost
// carrying startLabel, as a fresh run of tail-appends onto dst. src's own
// sibling links are cleared node by node as they are consumed; src itself
// is discarded once the walk completes.
func appendQChain(dst, src *Node, startLabel label) {
	start := endmostWithLabel(src, startLabel)
	if start == nil {
		start = src.endmost[0]
	}
	var prev *Node
	cur := start
	for cur != nil {
		next := nextStep(cur, prev)
		cur.sibling[0], cur.sibling[1] = nil, nil
		addQChildTail(dst, cur)
		prev, cur = cur, next
	}
}

// p6 (root only): exactly two partial children. They are fused into one
// Q-node by joining their full ends, with any of the host's full children
// inserted as an aggregate between them. The host is elided if nothing
// else remains.
func p6(n *Node) (bool, *Node) {
	if n.kind != PNode {
		return false, nil
	}
	partials := partialChildren(n)
	if len(partials) != 2 {
		return false, nil
	}
	_, nFull, _, _, _ := countByLabel(n)
	a, b := partials[0], partials[1]
	removePChild(n, a)
	removePChild(n, b)

	var full *Node
	if nFull > 0 {
		full = collectFullChildren(n)
		full.label = labelFull
	}

	merged := newQNode()
	appendQChain(merged, a, labelEmpty)
	if full != nil {
		addQChildTail(merged, full)
	}
	appendQChain(merged, b, labelFull)

	if n.pCount == 0 {
		return true, merged
	}
	addPChildTail(n, merged)
	return true, n
}

// q1: every child of a Q-node is full.
func q1(n *Node) (bool, *Node) {
	if n.kind != QNode {
		return false, nil
	}
	for _, c := range childrenInOrder(n) {
		if c.label != labelFull {
			return false, nil
		}
	}
	n.label = labelFull
	return true, n
}

// scanRun walks a Q-node's children left to right and checks them against
// empty* partial? full* partial? empty*, the shape every valid reduction
// leaves behind. It reports the partial children found (in order) and the
// lengths of the leading/trailing empty runs, used to tell whether the
// full/partial block touches either physical end.
func scanRun(children []*Node) (partials []*Node, leadingEmpty, trailingEmpty int, ok bool) {
	const (
		stLeading = iota
		stAfterLeadingPartial
		stFullRun
		stAfterTrailingPartial
		stTrailing
	)
	state := stLeading
	for _, c := range children {
		switch c.label {
		case labelEmpty:
			if state == stLeading {
				leadingEmpty++
			} else {
				state = stTrailing
				trailingEmpty++
			}
		case labelFull:
			switch state {
			case stLeading, stAfterLeadingPartial, stFullRun:
				state = stFullRun
			default:
				return nil, 0, 0, false
			}
		case labelPartial:
			switch state {
			case stLeading:
				state = stAfterLeadingPartial
			case stAfterLeadingPartial, stFullRun:
				state = stAfterTrailingPartial
			default:
				return nil, 0, 0, false
			}
			partials = append(partials, c)
			if len(partials) > 2 {
				return nil, 0, 0, false
			}
		}
	}
	return partials, leadingEmpty, trailingEmpty, true
}

// dissolveSingle splices partial into host's sibling chain, replacing the
// position it occupies. Each of partial's live neighbours tells us which
// of partial's own two ends (full- or empty-labelled) belongs there; a
// side with no live neighbour is flush with host's own boundary and takes
// whichever end the live side didn't use (or, for a pseudo-node host,
// always the empty end, since there is no structural empty sibling to
// consult there).
func dissolveSingle(host, partial *Node, pseudoHost bool) {
	fullEnd := endmostWithLabel(partial, labelFull)
	emptyEnd := endmostWithLabel(partial, labelEmpty)
	usedFull, usedEmpty := false, false
	for _, c := range childrenInOrder(partial) {
		c.parent = host
	}

	for i := 0; i < 2; i++ {
		nb := partial.sibling[i]
		if nb == nil {
			continue
		}
		if nb.label == labelFull {
			replaceSibling(nb, partial, fullEnd)
			usedFull = true
		} else {
			replaceSibling(nb, partial, emptyEnd)
			usedEmpty = true
		}
	}

	for i := 0; i < 2; i++ {
		if host.endmost[i] != partial {
			continue
		}
		end := emptyEnd
		switch {
		case pseudoHost:
			end = emptyEnd
		case usedFull && !usedEmpty:
			end = emptyEnd
		case usedEmpty && !usedFull:
			end = fullEnd
		}
		host.endmost[i] = end
		end.parent = host
	}
	partial.endmost[0], partial.endmost[1] = nil, nil
}

// q2: at most one partial child, and the full/partial run touches at
// least one physical end of the Q-node (an endmost-full run, a lone
// endmost-partial child, or a full run abutting one partial).
func q2(n *Node) (bool, *Node) {
	if n.kind != QNode {
		return false, nil
	}
	partials, leadEmpty, trailEmpty, ok := scanRun(childrenInOrder(n))
	if !ok || len(partials) > 1 {
		return false, nil
	}
	if leadEmpty > 0 && trailEmpty > 0 {
		return false, nil
	}
	if len(partials) == 1 {
		dissolveSingle(n, partials[0], n.pseudonode)
	}
	if len(partials) == 0 && leadEmpty == 0 && trailEmpty == 0 {
		n.label = labelFull
	} else {
		n.label = labelPartial
	}
	return true, n
}

// q3 (root only): at most two partial children, forming a single
// consecutive run with any partials only at the run's two ends; the run
// need not touch either physical end (q2 already claimed every case that
// does, except when two partials are both present).
func q3(n *Node) (bool, *Node) {
	if n.kind != QNode {
		return false, nil
	}
	partials, leadEmpty, trailEmpty, ok := scanRun(childrenInOrder(n))
	if !ok || len(partials) == 0 {
		return false, nil
	}

	if len(partials) == 2 && areSiblings(partials[0], partials[1]) {
		a, b := partials[0], partials[1]
		aFull := endmostWithLabel(a, labelFull)
		bFull := endmostWithLabel(b, labelFull)
		unlinkSiblings(a, b)
		addSibling(aFull, bFull)
		addSibling(bFull, aFull)
		dissolveSingle(n, a, n.pseudonode)
		dissolveSingle(n, b, n.pseudonode)
	} else {
		for _, p := range partials {
			dissolveSingle(n, p, n.pseudonode)
		}
	}

	if leadEmpty == 0 && trailEmpty == 0 {
		n.label = labelFull
	} else {
		n.label = labelPartial
	}
	return true, n
}
