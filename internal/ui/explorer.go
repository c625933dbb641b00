package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"dte/internal/domain"
	"dte/internal/live"
)

// stateTags are the tview color tags used for each state
var stateTags = map[live.State]string{
	live.NotRun:  "white",
	live.Running: "aqua",
	live.Passed:  "green",
	live.Failed:  "red",
	live.Skipped: "yellow",
}

// ExplorerHandlers carry out the work the user asks for. Run, RunAll and
// Discover are called on their own goroutine; Result is called on the UI
// goroutine and must not block.
type ExplorerHandlers struct {
	Run      func(fullNames []string)
	RunAll   func()
	Discover func()
	Result   func(fullName string) (domain.TestResult, bool)
}

// Explorer is an interactive view of a live tree that follows its updates
type Explorer struct {
	tree     *live.Tree
	handlers ExplorerHandlers

	app     *tview.Application
	view    *tview.TreeView
	details *tview.TextView
	header  *tview.TextView
	status  *tview.TextView

	nodes  map[*live.Node]*tview.TreeNode
	counts map[live.State]int
}

// entry is a node's label captured under the tree lock
type entry struct {
	node     *live.Node
	label    string
	children []entry
}

// snapshot is what the UI goroutine needs to render one update
type snapshot struct {
	structural bool
	root       entry
	labels     map[*live.Node]string
	counts     map[live.State]int
}

// NewExplorer creates an Explorer over t
func NewExplorer(t *live.Tree, handlers ExplorerHandlers) *Explorer {
	e := &Explorer{
		tree:     t,
		handlers: handlers,
		app:      tview.NewApplication(),
		nodes:    make(map[*live.Node]*tview.TreeNode),
	}

	e.view = tview.NewTreeView()
	e.view.SetBorder(true).SetTitle(" Tests ")
	e.view.SetSelectedFunc(func(node *tview.TreeNode) {
		node.SetExpanded(!node.IsExpanded())
	})
	e.view.SetChangedFunc(func(node *tview.TreeNode) {
		e.showDetails(node)
	})
	e.view.SetInputCapture(e.handleKey)

	e.details = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)
	e.details.SetBorder(true).SetTitle(" Details ")

	e.header = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	e.status = tview.NewTextView().
		SetDynamicColors(true)

	return e
}

// Run shows the explorer until the user quits
func (e *Explorer) Run() error {
	cancel := e.tree.Subscribe(e.onUpdate)
	defer cancel()

	e.apply(e.capture(live.Update{Structural: true}))

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(e.view, 0, 1, true).
		AddItem(e.details, 0, 1, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(e.header, 1, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(e.status, 1, 0, false)

	if err := e.app.SetRoot(layout, true).SetFocus(e.view).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// SetStatus shows msg in the status line. Safe from any goroutine.
func (e *Explorer) SetStatus(msg string) {
	e.app.QueueUpdateDraw(func() {
		e.status.SetText(tview.Escape(msg))
	})
}

func (e *Explorer) onUpdate(update live.Update) {
	snap := e.capture(update)
	e.app.QueueUpdateDraw(func() {
		e.apply(snap)
	})
}

// capture reads what update needs rendered while writers are held off
func (e *Explorer) capture(update live.Update) snapshot {
	snap := snapshot{structural: update.Structural, counts: e.tree.Counts()}
	e.tree.Read(func(root *live.Node) {
		if snap.structural {
			snap.root = captureNode(root)
			return
		}
		snap.labels = make(map[*live.Node]string, len(update.Changed))
		for _, n := range update.Changed {
			snap.labels[n] = explorerLabel(n)
		}
	})
	return snap
}

func captureNode(n *live.Node) entry {
	en := entry{node: n, label: explorerLabel(n)}
	for _, c := range n.Children() {
		en.children = append(en.children, captureNode(c))
	}
	return en
}

func leavesOf(n *live.Node) []*live.Node {
	if n.IsLeaf() {
		return []*live.Node{n}
	}
	var out []*live.Node
	for _, c := range n.Children() {
		out = append(out, leavesOf(c)...)
	}
	return out
}

// explorerLabel renders a node for the tree view using color tags
func explorerLabel(n *live.Node) string {
	name := n.Name()
	if n.Parent() == nil && n.IsFolder() && !n.Pruned() {
		name = "All tests"
	}
	s, ok := n.State()
	if !ok {
		return tview.Escape(name)
	}
	return fmt.Sprintf("[%s]%s[white] %s", stateTags[s], Glyph(s), tview.Escape(name))
}

// apply renders a snapshot. It runs on the UI goroutine.
func (e *Explorer) apply(snap snapshot) {
	e.counts = snap.counts
	e.updateHeader()

	if !snap.structural {
		for n, label := range snap.labels {
			if tn, ok := e.nodes[n]; ok {
				tn.SetText(label)
			}
		}
		if current := e.view.GetCurrentNode(); current != nil {
			e.showDetails(current)
		}
		return
	}

	var selected *live.Node
	if current := e.view.GetCurrentNode(); current != nil {
		selected, _ = current.GetReference().(*live.Node)
	}

	old := e.nodes
	e.nodes = make(map[*live.Node]*tview.TreeNode, len(old))
	root := e.build(snap.root, old)
	e.view.SetRoot(root)

	current := root
	if tn, ok := e.nodes[selected]; ok && selected != nil {
		current = tn
	}
	e.view.SetCurrentNode(current)
	e.showDetails(current)
}

func (e *Explorer) build(en entry, old map[*live.Node]*tview.TreeNode) *tview.TreeNode {
	tn := tview.NewTreeNode(en.label).
		SetReference(en.node).
		SetSelectable(true)
	if prev, ok := old[en.node]; ok {
		tn.SetExpanded(prev.IsExpanded())
	} else {
		tn.SetExpanded(en.node.Depth() < 2)
	}
	if en.node.IsFolder() {
		tn.SetColor(tcell.ColorDarkCyan)
	}
	e.nodes[en.node] = tn
	for _, c := range en.children {
		tn.AddChild(e.build(c, old))
	}
	return tn
}

func (e *Explorer) updateHeader() {
	e.header.SetText(fmt.Sprintf(
		" [green]%d passed[white] | [red]%d failed[white] | [yellow]%d skipped[white] | [aqua]%d running[white] | %d not run | [yellow]r[white] run selection, [yellow]a[white] run all, [yellow]d[white] discover, [yellow]q[white] quit ",
		e.counts[live.Passed], e.counts[live.Failed], e.counts[live.Skipped], e.counts[live.Running], e.counts[live.NotRun],
	))
}

// selectedTests returns the distinct test names at or below the tree view node
func (e *Explorer) selectedTests(tn *tview.TreeNode) []string {
	n, ok := tn.GetReference().(*live.Node)
	if !ok {
		return nil
	}
	var names []string
	e.tree.Read(func(*live.Node) {
		seen := make(map[string]bool)
		for _, leaf := range leavesOf(n) {
			if !seen[leaf.FullName()] {
				seen[leaf.FullName()] = true
				names = append(names, leaf.FullName())
			}
		}
	})
	return names
}

func (e *Explorer) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		e.app.Stop()
		return nil
	}
	if event.Key() != tcell.KeyRune {
		return event
	}
	switch event.Rune() {
	case 'q':
		e.app.Stop()
	case 'r':
		if current := e.view.GetCurrentNode(); current != nil && e.handlers.Run != nil {
			names := e.selectedTests(current)
			go e.handlers.Run(names)
		}
	case 'a':
		if e.handlers.RunAll != nil {
			go e.handlers.RunAll()
		}
	case 'd':
		if e.handlers.Discover != nil {
			go e.handlers.Discover()
		}
	default:
		return event
	}
	return nil
}

func (e *Explorer) showDetails(tn *tview.TreeNode) {
	n, ok := tn.GetReference().(*live.Node)
	if !ok {
		e.details.SetText("")
		return
	}
	var state live.State
	var hasState bool
	var fullName string
	var leaf bool
	e.tree.Read(func(*live.Node) {
		state, hasState = n.State()
		fullName = n.FullName()
		leaf = n.IsLeaf()
	})

	var b strings.Builder
	title := fullName
	if n == e.tree.Root() {
		title = "All tests"
	}
	fmt.Fprintf(&b, "[cyan]%s[white]\n\n", tview.Escape(title))
	if hasState {
		fmt.Fprintf(&b, "State: [%s]%s %s[white]\n", stateTags[state], Glyph(state), state)
	}
	if leaf && e.handlers.Result != nil {
		if r, ok := e.handlers.Result(fullName); ok {
			if r.Duration > 0 {
				fmt.Fprintf(&b, "Duration: %s\n", r.Duration)
			}
			if r.Project != "" {
				fmt.Fprintf(&b, "Project: %s\n", tview.Escape(r.Project))
			}
			if r.Failure != nil {
				b.WriteString("\n")
				b.WriteString(formatFailureDetails(r))
			}
		}
	}
	e.details.SetText(b.String())
}
