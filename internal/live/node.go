package live

// Kind discriminates folder nodes from leaf nodes.
type Kind int

const (
	KindFolder Kind = iota
	KindLeaf
)

func (k Kind) String() string {
	if k == KindLeaf {
		return "leaf"
	}
	return "folder"
}

// Node is a folder or a test in the live tree. Node state is owned by the
// Tree; read it from the goroutine that drives the tree or inside Tree.Read.
type Node struct {
	owner    *Tree
	kind     Kind
	name     string
	fullName string
	parent   *Node
	children []*Node
	depth    int

	state    State
	hasState bool

	subs    []subscription
	nextSub int
	pruned  bool
}

type subscription struct {
	id int
	fn func(*Node)
}

func (t *Tree) newFolder(name, fullName string) *Node {
	return &Node{owner: t, kind: KindFolder, name: name, fullName: fullName}
}

func (t *Tree) newLeaf(name, fullName string) *Node {
	return &Node{owner: t, kind: KindLeaf, name: name, fullName: fullName, state: NotRun, hasState: true}
}

func (n *Node) Kind() Kind       { return n.kind }
func (n *Node) IsFolder() bool   { return n.kind == KindFolder }
func (n *Node) IsLeaf() bool     { return n.kind == KindLeaf }
func (n *Node) Name() string     { return n.name }
func (n *Node) FullName() string { return n.fullName }
func (n *Node) Parent() *Node    { return n.parent }
func (n *Node) Depth() int       { return n.depth }

// Pruned reports whether a reconcile removed this node from the tree.
func (n *Node) Pruned() bool { return n.pruned }

// State returns the node's state. For a folder with no leaves below it ok
// is false and the state is meaningless.
func (n *Node) State() (s State, ok bool) {
	return n.state, n.hasState
}

// Children returns folders first, then leaves, in discovery order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Subscribe registers fn to run after any tree operation that changed this
// node's own state. The returned func cancels the subscription. Pruning the
// node releases all its subscriptions.
func (n *Node) Subscribe(fn func(*Node)) (cancel func()) {
	n.owner.mu.Lock()
	defer n.owner.mu.Unlock()
	n.nextSub++
	id := n.nextSub
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	return func() {
		n.owner.mu.Lock()
		defer n.owner.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

func (n *Node) subscribers() []func(*Node) {
	fns := make([]func(*Node), len(n.subs))
	for i, s := range n.subs {
		fns[i] = s.fn
	}
	return fns
}

func (n *Node) release() {
	n.pruned = true
	n.subs = nil
	n.parent = nil
	n.children = nil
}

// recompute derives a folder's state from its direct children.
func (n *Node) recompute() {
	states := make([]State, 0, len(n.children))
	for _, c := range n.children {
		if s, ok := c.State(); ok {
			states = append(states, s)
		}
	}
	n.state, n.hasState = Aggregate(states...)
}

// leaves appends every leaf at or below n to out.
func (n *Node) leaves(out []*Node) []*Node {
	if n.kind == KindLeaf {
		return append(out, n)
	}
	for _, c := range n.children {
		out = c.leaves(out)
	}
	return out
}
