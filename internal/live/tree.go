// Package live keeps a persistent, stateful test tree that follows
// discovery passes and streamed run results.
package live

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"dte/internal/tree"
)

// Result is one leaf state delivered by a run.
type Result struct {
	FullName string
	State    State
}

// Update describes the effect of one tree operation.
type Update struct {
	// Changed lists every node whose own state changed, once each.
	Changed []*Node
	// Added and Pruned are filled by Reconcile.
	Added  []*Node
	Pruned []*Node
	// Structural is true when the shape of the tree changed.
	Structural bool
}

// Empty reports whether the update carries nothing to render.
func (u Update) Empty() bool {
	return len(u.Changed) == 0 && !u.Structural
}

// Listener receives one Update per tree operation that had any effect.
type Listener func(Update)

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used for dropped updates.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// Tree is the live test tree. All mutating methods are serialized.
type Tree struct {
	mu     sync.Mutex
	logger *slog.Logger

	root    *Node
	folders map[string]*Node // by full name
	paths   map[string]*Node // by bare-name path
	leaves  map[string][]*Node

	listeners    []listenerEntry
	nextListener int
}

type listenerEntry struct {
	id int
	fn Listener
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		folders: make(map[string]*Node),
		paths:   make(map[string]*Node),
		leaves:  make(map[string][]*Node),
	}
	t.root = t.newFolder("", "")
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the synthetic root folder.
func (t *Tree) Root() *Node {
	return t.root
}

// Subscribe registers l for every non-empty update. The returned func
// cancels the subscription.
func (t *Tree) Subscribe(l Listener) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextListener++
	id := t.nextListener
	t.listeners = append(t.listeners, listenerEntry{id: id, fn: l})
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, e := range t.listeners {
			if e.id == id {
				t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// Lookup returns the folder with fullName, or else the first leaf with it.
func (t *Tree) Lookup(fullName string) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lookup(fullName)
}

func (t *Tree) lookup(fullName string) (*Node, bool) {
	if fullName == "" {
		return t.root, true
	}
	if n, ok := t.folders[fullName]; ok {
		return n, true
	}
	if ls := t.leaves[fullName]; len(ls) > 0 {
		return ls[0], true
	}
	return nil, false
}

// Leaves returns every leaf registered under fullName. Duplicate
// discoveries of one test yield more than one leaf.
func (t *Tree) Leaves(fullName string) []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Node(nil), t.leaves[fullName]...)
}

// Tests returns the distinct full names of the leaves at or below the node
// with fullName, in tree order.
func (t *Tree) Tests(fullName string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.lookup(fullName)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, leaf := range n.leaves(nil) {
		if !seen[leaf.fullName] {
			seen[leaf.fullName] = true
			names = append(names, leaf.fullName)
		}
	}
	return names
}

// Counts returns how many leaves are in each state.
func (t *Tree) Counts() map[State]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	counts := make(map[State]int)
	for _, leaf := range t.root.leaves(nil) {
		counts[leaf.state]++
	}
	return counts
}

// Read runs fn while no writer can change the tree. Node getters and Walk
// are safe to call inside fn; other Tree methods are not.
func (t *Tree) Read(fn func(root *Node)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.root)
}

// Walk visits every node depth-first, parents first. Returning false skips
// the node's children. Walk takes no lock: call it from the goroutine that
// drives the tree or from inside Read.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var walk func(n *Node)
	walk = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
}

// Reconcile replaces the tree's structure with the one discovered in
// fullNames. Leaves whose full name survives and folders whose bare-name
// path survives are reused with their state and subscribers; the rest are
// pruned.
func (t *Tree) Reconcile(fullNames []string) Update {
	snapshot := tree.CompactChildren(tree.BuildNames(fullNames))

	t.mu.Lock()
	prevFolders, prevLeaves := t.paths, t.leaves
	t.folders = make(map[string]*Node, len(prevFolders))
	t.paths = make(map[string]*Node, len(prevFolders))
	t.leaves = make(map[string][]*Node, len(prevLeaves))

	type before struct {
		state    State
		hasState bool
	}
	old := map[*Node]before{t.root: {t.root.state, t.root.hasState}}
	for _, n := range prevFolders {
		old[n] = before{n.state, n.hasState}
	}

	r := &reconciler{tree: t, prevFolders: prevFolders, prevLeaves: prevLeaves, reused: make(map[*Node]bool)}
	t.root.children = nil
	r.attach(t.root, snapshot)

	var update Update
	update.Added = r.added
	for _, n := range prevFolders {
		if !r.reused[n] {
			update.Pruned = append(update.Pruned, n)
		}
	}
	for _, list := range prevLeaves {
		for _, n := range list {
			if !r.reused[n] {
				update.Pruned = append(update.Pruned, n)
			}
		}
	}
	sort.Slice(update.Pruned, func(i, j int) bool {
		return update.Pruned[i].fullName < update.Pruned[j].fullName
	})
	for _, n := range update.Pruned {
		n.release()
	}

	var recompute func(n *Node)
	recompute = func(n *Node) {
		for _, c := range n.children {
			if c.kind == KindFolder {
				recompute(c)
			}
		}
		n.recompute()
		b, tracked := old[n]
		if !tracked || (n != t.root && !r.reused[n]) {
			return
		}
		if b.state != n.state || b.hasState != n.hasState {
			update.Changed = append(update.Changed, n)
		}
	}
	recompute(t.root)

	update.Structural = len(update.Added) > 0 || len(update.Pruned) > 0 || r.moved
	t.mu.Unlock()

	t.notify(update)
	return update
}

type reconciler struct {
	tree        *Tree
	prevFolders map[string]*Node
	prevLeaves  map[string][]*Node
	reused      map[*Node]bool
	added       []*Node
	moved       bool
}

func (r *reconciler) attach(dst *Node, src *tree.Node) {
	for _, child := range src.Children() {
		n, ok := r.prevFolders[child.Path]
		if ok && !r.reused[n] {
			r.reused[n] = true
			if n.parent != dst || n.name != child.Name || n.fullName != child.FullName {
				r.moved = true
			}
			n.name = child.Name
			n.fullName = child.FullName
			n.children = nil
		} else {
			n = r.tree.newFolder(child.Name, child.FullName)
			r.added = append(r.added, n)
		}
		n.parent = dst
		n.depth = dst.depth + 1
		dst.children = append(dst.children, n)
		r.tree.folders[child.FullName] = n
		r.tree.paths[child.Path] = n
		r.attach(n, child)
	}

	for _, test := range src.Tests {
		n := r.takeLeaf(test.FullName)
		if n == nil {
			n = r.tree.newLeaf(test.Name, test.FullName)
			r.added = append(r.added, n)
		} else {
			if n.parent != dst {
				r.moved = true
			}
			n.name = test.Name
		}
		n.parent = dst
		n.depth = dst.depth + 1
		dst.children = append(dst.children, n)
		r.tree.leaves[test.FullName] = append(r.tree.leaves[test.FullName], n)
	}
}

func (r *reconciler) takeLeaf(fullName string) *Node {
	for _, n := range r.prevLeaves[fullName] {
		if !r.reused[n] {
			r.reused[n] = true
			return n
		}
	}
	return nil
}

// SetLeafState sets the state of every leaf named fullName. Unknown names
// are dropped.
func (t *Tree) SetLeafState(fullName string, state State) Update {
	return t.Apply([]Result{{FullName: fullName, State: state}})
}

// Apply delivers a batch of leaf states. Each affected ancestor is
// recomputed once and each changed node is reported once, however many
// results in the batch touched it.
func (t *Tree) Apply(batch []Result) Update {
	t.mu.Lock()
	targets := make([]target, 0, len(batch))
	for _, res := range batch {
		leaves := t.leaves[res.FullName]
		if len(leaves) == 0 {
			t.logger.Debug("dropping state for unknown test", "test", res.FullName, "state", res.State)
			continue
		}
		for _, leaf := range leaves {
			targets = append(targets, target{leaf, res.State})
		}
	}
	update := t.apply(targets)
	t.mu.Unlock()

	t.notify(update)
	return update
}

// SetAll sets every leaf in the tree to state.
func (t *Tree) SetAll(state State) Update {
	return t.SetSubtree("", state)
}

// SetSubtree sets every leaf at or below the node with fullName to state.
func (t *Tree) SetSubtree(fullName string, state State) Update {
	t.mu.Lock()
	n, ok := t.lookup(fullName)
	if !ok {
		t.mu.Unlock()
		t.logger.Debug("dropping state for unknown node", "node", fullName, "state", state)
		return Update{}
	}
	var leaves []*Node
	if n.kind == KindLeaf {
		leaves = t.leaves[fullName]
	} else {
		leaves = n.leaves(nil)
	}
	targets := make([]target, len(leaves))
	for i, leaf := range leaves {
		targets[i] = target{leaf, state}
	}
	update := t.apply(targets)
	t.mu.Unlock()

	t.notify(update)
	return update
}

type target struct {
	leaf  *Node
	state State
}

func (t *Tree) apply(targets []target) Update {
	original := make(map[*Node]State)
	var order []*Node
	for _, tg := range targets {
		if _, seen := original[tg.leaf]; !seen {
			original[tg.leaf] = tg.leaf.state
			order = append(order, tg.leaf)
		}
		tg.leaf.state = tg.state
	}

	var update Update
	dirty := make(map[*Node]bool)
	var folders []*Node
	for _, leaf := range order {
		if leaf.state == original[leaf] {
			continue
		}
		update.Changed = append(update.Changed, leaf)
		for p := leaf.parent; p != nil && !dirty[p]; p = p.parent {
			dirty[p] = true
			folders = append(folders, p)
		}
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].depth > folders[j].depth
	})
	for _, f := range folders {
		prev, had := f.state, f.hasState
		f.recompute()
		if f.state != prev || f.hasState != had {
			update.Changed = append(update.Changed, f)
		}
	}
	return update
}

func (t *Tree) notify(update Update) {
	if update.Empty() {
		return
	}
	t.mu.Lock()
	listeners := make([]Listener, len(t.listeners))
	for i, e := range t.listeners {
		listeners[i] = e.fn
	}
	var nodeSubs []func()
	for _, n := range update.Changed {
		node := n
		for _, fn := range node.subscribers() {
			fn := fn
			nodeSubs = append(nodeSubs, func() { fn(node) })
		}
	}
	t.mu.Unlock()

	for _, call := range nodeSubs {
		call()
	}
	for _, l := range listeners {
		l(update)
	}
}
