package mindmap

// DeepenTicket identifies one in-flight deepen request. Gen is the node's
// generation when the request was issued.
type DeepenTicket struct {
	NodeID string
	Label  string
	Depth  int
	Gen    int
}

// DeepenResult carries a finished deepen request back to the explorer.
type DeepenResult struct {
	Ticket   DeepenTicket
	Children []Node
	Err      error
}

// Effects lists what the caller must do after an explorer operation:
// recenter the viewport on Focus (when set) and run Tickets.
type Effects struct {
	Focus   string
	Tickets []DeepenTicket
}

// Explorer owns a mind-map tree and the tour cursor over it. It is not
// safe for concurrent use: it belongs to the TUI update loop, and deepen
// requests report back through CompleteDeepen.
type Explorer struct {
	root    Node
	hasRoot bool

	gens map[string]int

	tour      []Step
	cursor    int
	offTrack  bool
	autoFocus bool
}

// NewExplorer returns an empty explorer with auto-focus on.
func NewExplorer() *Explorer {
	return &Explorer{gens: map[string]int{}, autoFocus: true}
}

// SetRoot replaces the whole tree and returns tickets prefetching every
// unloaded chapter. Requests in flight for the previous tree become stale.
func (e *Explorer) SetRoot(root Node) Effects {
	root = mapNodes(root, func(n Node) Node {
		n.Loading = false
		return n
	})
	root.Loaded = true
	root.Expanded = true

	// Bumping every generation invalidates tickets of the old tree even when
	// ids repeat.
	for id := range e.gens {
		e.gens[id]++
	}
	e.root = root
	e.hasRoot = true
	e.cursor = 0
	e.offTrack = false
	e.tour = BuildTour(e.root)

	var eff Effects
	for _, ch := range root.Children {
		if t, ok := e.BeginDeepen(ch.ID); ok {
			eff.Tickets = append(eff.Tickets, t)
		}
	}
	return eff
}

// Root returns the current tree.
func (e *Explorer) Root() (Node, bool) {
	return e.root, e.hasRoot
}

// Node returns a node of the current tree.
func (e *Explorer) Node(id string) (Node, bool) {
	if !e.hasRoot {
		return Node{}, false
	}
	return Find(e.root, id)
}

// BeginDeepen marks the node loading and returns a ticket for the request.
// It refuses unknown nodes, nodes at the depth limit, and nodes already
// loading or loaded.
func (e *Explorer) BeginDeepen(id string) (DeepenTicket, bool) {
	n, ok := e.Node(id)
	if !ok || !n.CanExpand() || n.Loading || n.Loaded {
		return DeepenTicket{}, false
	}
	e.gens[id]++
	e.update(id, func(n Node) Node {
		n.Loading = true
		return n
	})
	return DeepenTicket{NodeID: id, Label: n.Label, Depth: n.Depth, Gen: e.gens[id]}, true
}

// CompleteDeepen applies a deepen result if its ticket is still current.
// A failure leaves the node unloaded so BeginDeepen can retry it. When the
// node is the tour target its own unloaded children are prefetched, and a
// deep-phase target is opened.
func (e *Explorer) CompleteDeepen(res DeepenResult) (applied bool, eff Effects) {
	id := res.Ticket.NodeID
	if e.gens[id] != res.Ticket.Gen {
		return false, Effects{}
	}
	n, ok := e.Node(id)
	if !ok || !n.Loading {
		return false, Effects{}
	}

	if res.Err != nil {
		e.update(id, func(n Node) Node {
			n.Loading = false
			n.Loaded = false
			n.Children = nil
			return n
		})
		return true, Effects{}
	}

	children := make([]Node, len(res.Children))
	for i, c := range res.Children {
		c.ID = ChildID(id, i)
		c.Depth = n.Depth + 1
		c.Children = nil
		c.Loaded, c.Loading, c.Expanded, c.DescriptionOpen = false, false, false, false
		children[i] = c
	}
	e.update(id, func(n Node) Node {
		n.Loading = false
		n.Loaded = true
		n.Children = children
		return n
	})

	if cur, ok := e.Current(); ok && cur.NodeID == id {
		if cur.Phase == PhaseDeep {
			e.update(id, func(n Node) Node {
				n.Expanded = true
				return n
			})
		}
		eff.Tickets = e.prefetchChildren(id)
	}
	return true, eff
}

// ToggleExpand opens or closes a node's children. Opening collapses the
// node's siblings, focuses it and prefetches its unloaded children. An
// unloaded node is never opened; when idle, a deepen ticket is returned
// instead.
// Toggling any node other than the tour target puts the tour off-track.
func (e *Explorer) ToggleExpand(id string) Effects {
	n, ok := e.Node(id)
	if !ok || !n.CanExpand() {
		return Effects{}
	}
	if cur, ok := e.Current(); ok && cur.NodeID != id {
		e.offTrack = true
	}

	if !n.Loaded {
		if t, ok := e.BeginDeepen(id); ok {
			return Effects{Tickets: []DeepenTicket{t}}
		}
		return Effects{}
	}
	if n.Expanded {
		e.update(id, func(n Node) Node {
			n.Expanded = false
			return n
		})
		return Effects{}
	}

	e.collapseSiblings(id)
	e.update(id, func(n Node) Node {
		n.Expanded = true
		return n
	})
	return Effects{Focus: id, Tickets: e.prefetchChildren(id)}
}

// ToggleDescription shows or hides a node's description, focusing the node
// when opening.
func (e *Explorer) ToggleDescription(id string) Effects {
	n, ok := e.Node(id)
	if !ok {
		return Effects{}
	}
	e.update(id, func(n Node) Node {
		n.DescriptionOpen = !n.DescriptionOpen
		return n
	})
	if n.DescriptionOpen {
		return Effects{}
	}
	return Effects{Focus: id}
}

// Steps returns the current tour sequence.
func (e *Explorer) Steps() []Step { return e.tour }

// Cursor returns the index of the tracked tour step.
func (e *Explorer) Cursor() int { return e.cursor }

// OffTrack reports whether the user has left the tour by hand.
func (e *Explorer) OffTrack() bool { return e.offTrack }

// AutoFocus reports whether moving the tour collapses siblings.
func (e *Explorer) AutoFocus() bool { return e.autoFocus }

// SetAutoFocus turns sibling collapsing on or off.
func (e *Explorer) SetAutoFocus(on bool) { e.autoFocus = on }

// Current returns the tracked tour step.
func (e *Explorer) Current() (Step, bool) {
	if e.cursor < 0 || e.cursor >= len(e.tour) {
		return Step{}, false
	}
	return e.tour[e.cursor], true
}

// Next advances the tour. While off-track it re-applies the tracked step
// instead, resuming the tour where it was left.
func (e *Explorer) Next() (Effects, bool) {
	if len(e.tour) == 0 {
		return Effects{}, false
	}
	if e.offTrack {
		return e.moveTo(e.cursor)
	}
	if e.cursor >= len(e.tour)-1 {
		return Effects{}, false
	}
	return e.moveTo(e.cursor + 1)
}

// Prev moves the tour one step back.
func (e *Explorer) Prev() (Effects, bool) {
	if len(e.tour) == 0 || e.cursor == 0 {
		return Effects{}, false
	}
	return e.moveTo(e.cursor - 1)
}

// JumpTo moves the tour to step i.
func (e *Explorer) JumpTo(i int) (Effects, bool) {
	if i < 0 || i >= len(e.tour) {
		return Effects{}, false
	}
	return e.moveTo(i)
}

func (e *Explorer) moveTo(i int) (Effects, bool) {
	step := e.tour[i]
	n, ok := e.Node(step.NodeID)
	if !ok || n.Loading {
		return Effects{}, false
	}

	e.cursor = i
	e.offTrack = false

	e.expandAncestors(step.NodeID)
	if e.autoFocus {
		e.collapseLevel(step.NodeID, n.Depth)
	}
	e.update(step.NodeID, func(n Node) Node {
		n.DescriptionOpen = true
		if n.Loaded {
			n.Expanded = step.Phase == PhaseDeep
		}
		return n
	})

	eff := Effects{Focus: step.NodeID}
	if !n.Loaded && step.Phase == PhaseDeep {
		if t, ok := e.BeginDeepen(step.NodeID); ok {
			eff.Tickets = append(eff.Tickets, t)
		}
	}
	eff.Tickets = append(eff.Tickets, e.prefetchChildren(step.NodeID)...)
	return eff, true
}

// prefetchChildren begins deepening every unloaded child of id.
func (e *Explorer) prefetchChildren(id string) []DeepenTicket {
	n, ok := e.Node(id)
	if !ok || !n.Loaded {
		return nil
	}
	var tickets []DeepenTicket
	for _, c := range n.Children {
		if t, ok := e.BeginDeepen(c.ID); ok {
			tickets = append(tickets, t)
		}
	}
	return tickets
}

// collapseSiblings closes the nodes sharing id's parent.
func (e *Explorer) collapseSiblings(id string) {
	parent := ParentID(id)
	if parent == "" {
		return
	}
	e.update(parent, func(p Node) Node {
		children := make([]Node, len(p.Children))
		for i, c := range p.Children {
			if c.ID != id {
				c.Expanded = false
				c.DescriptionOpen = false
			}
			children[i] = c
		}
		p.Children = children
		return p
	})
}

// collapseLevel closes every other node at the target's depth.
func (e *Explorer) collapseLevel(id string, depth int) {
	e.root = mapNodes(e.root, func(n Node) Node {
		if n.Depth == depth && n.ID != id {
			n.Expanded = false
			n.DescriptionOpen = false
		}
		return n
	})
}

// expandAncestors opens the path from the root down to id's parent so the
// target is visible.
func (e *Explorer) expandAncestors(id string) {
	for p := ParentID(id); p != ""; p = ParentID(p) {
		e.update(p, func(n Node) Node {
			if n.Loaded {
				n.Expanded = true
			}
			return n
		})
	}
}

// update applies fn to one node and recomputes the tour, keeping the cursor
// on the step it pointed at.
func (e *Explorer) update(id string, fn func(Node) Node) {
	if !e.hasRoot {
		return
	}
	root, ok := UpdateByID(e.root, id, fn)
	if !ok {
		return
	}
	e.root = root
	e.retour()
}

func (e *Explorer) retour() {
	cur, had := e.Current()
	e.tour = BuildTour(e.root)
	if !had {
		e.cursor = 0
		return
	}
	for i, s := range e.tour {
		if s.NodeID == cur.NodeID && s.Phase == cur.Phase {
			e.cursor = i
			return
		}
	}
	if e.cursor >= len(e.tour) {
		e.cursor = len(e.tour) - 1
	}
	if e.cursor < 0 {
		e.cursor = 0
	}
}
