package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"dte/internal/config"
	"dte/internal/domain"
	"dte/internal/live"
	"dte/internal/tree"
)

var (
	folderColor = color.New(color.FgCyan)
	faintColor  = color.New(color.Faint)
)

// stateStyles holds the glyph and color printed for each state
var stateStyles = map[live.State]struct {
	glyph string
	color *color.Color
}{
	live.NotRun:  {"○", color.New(color.FgWhite)},
	live.Running: {"●", color.New(color.FgCyan)},
	live.Passed:  {"✓", color.New(color.FgGreen)},
	live.Failed:  {"✗", color.New(color.FgRed)},
	live.Skipped: {"-", color.New(color.FgYellow)},
}

// Glyph returns the marker printed before a node in the given state
func Glyph(s live.State) string {
	return stateStyles[s].glyph
}

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

// outline is one printed tree line and the lines nested under it
type outline struct {
	text     string
	children []outline
}

// PrintTree prints the live tree below its root with a state glyph per node
func (f *Formatter) PrintTree(t *live.Tree) {
	var items []outline
	var total int
	t.Read(func(root *live.Node) {
		items = liveOutline(root).children
		t.Walk(func(n *live.Node) bool {
			if n.Kind() == live.KindLeaf {
				total++
			}
			return true
		})
	})

	color.New(color.FgGreen).Fprintf(f.out, "Found %d test(s):\n", total)
	f.printOutline(items, "")
}

func liveOutline(n *live.Node) outline {
	o := outline{text: nodeLabel(n)}
	for _, c := range n.Children() {
		o.children = append(o.children, liveOutline(c))
	}
	return o
}

// nodeLabel renders a node's glyph and name
func nodeLabel(n *live.Node) string {
	s, ok := n.State()
	if !ok {
		return folderColor.Sprint(n.Name())
	}
	style := stateStyles[s]
	if n.IsFolder() {
		return style.color.Sprint(style.glyph) + " " + folderColor.Sprint(n.Name())
	}
	return style.color.Sprint(style.glyph + " " + n.Name())
}

func (f *Formatter) printOutline(items []outline, prefix string) {
	for i, item := range items {
		connector, next := "├── ", "│   "
		if i == len(items)-1 {
			connector, next = "└── ", "    "
		}
		fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, item.text)
		f.printOutline(item.children, prefix+next)
	}
}

// PrintFlat prints full test names one per line
func (f *Formatter) PrintFlat(names []string) {
	color.New(color.FgGreen).Fprintf(f.out, "Found %d test(s):\n", len(names))
	for _, name := range names {
		fmt.Fprintln(f.out, name)
	}
}

type row struct {
	label string
	value string
	color *color.Color
}

func (f *Formatter) printTable(title string, rows []row) {
	fmt.Fprintln(f.out)
	folderColor.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	folderColor.Fprintf(f.out, "║%s║\n", center(title, 63))
	folderColor.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, r := range rows {
		if i > 0 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
		fmt.Fprintf(f.out, "│ %-31s │ ", r.label)
		r.color.Fprintf(f.out, "%-27s", r.value)
		fmt.Fprintln(f.out, " │")
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")
}

func center(s string, width int) string {
	pad := width - len([]rune(s))
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

// PrintSummary prints the counts of a finished run
func (f *Formatter) PrintSummary(summary domain.Summary, duration time.Duration, workers int) {
	white := color.New(color.FgWhite)
	f.printTable("Test Execution Statistics", []row{
		{"Total Tests", fmt.Sprint(summary.Total), white},
		{"Passed Tests", fmt.Sprint(summary.Passed), color.New(color.FgGreen)},
		{"Failed Tests", fmt.Sprint(summary.Failed), color.New(color.FgRed)},
		{"Skipped Tests", fmt.Sprint(summary.Skipped), color.New(color.FgYellow)},
		{"Duration", fmt.Sprintf("%.2fs", duration.Seconds()), white},
		{"Workers", fmt.Sprint(workers), white},
	})

	fmt.Fprintln(f.out)
	if summary.Failed == 0 {
		color.New(color.FgGreen).Fprintln(f.out, "✓ All tests passed!")
	} else {
		color.New(color.FgRed).Fprintf(f.out, "✗ %d test(s) failed\n", summary.Failed)
	}
}

// PrintFailures prints the stored run's statistics and its failed tests as a tree
func (f *Formatter) PrintFailures(record *domain.RunRecord) {
	meta := record.Meta
	white := color.New(color.FgWhite)
	f.printTable("Last Test Run", []row{
		{"Projects", fmt.Sprint(meta.Projects), white},
		{"Total Tests", fmt.Sprint(meta.TotalTests), white},
		{"Passed Tests", fmt.Sprint(meta.PassedTests), color.New(color.FgGreen)},
		{"Failed Tests", fmt.Sprint(meta.FailedTests), color.New(color.FgRed)},
		{"Skipped Tests", fmt.Sprint(meta.SkippedTests), color.New(color.FgYellow)},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Timestamp", meta.Timestamp, white},
	})

	fmt.Fprintln(f.out)
	f.PrintFailedTests(record.Failures())
}

// PrintFailedTests prints the failed results as a tree with the first line
// of each failure message
func (f *Formatter) PrintFailedTests(results []domain.TestResult) {
	byName := make(map[string][]domain.TestResult)
	var names []string
	for _, r := range results {
		if r.Outcome != domain.OutcomeFailed {
			continue
		}
		if _, ok := byName[r.FullName]; !ok {
			names = append(names, r.FullName)
		}
		byName[r.FullName] = append(byName[r.FullName], r)
	}
	if len(names) == 0 {
		color.New(color.FgGreen).Fprintln(f.out, "✓ All tests passed!")
		return
	}
	color.New(color.FgRed).Fprintf(f.out, "✗ %d test(s) failed\n\n", len(names))

	root := tree.CompactChildren(tree.BuildNames(names))
	f.printOutline(failureOutline(root, byName).children, "")
}

func failureOutline(n *tree.Node, byName map[string][]domain.TestResult) outline {
	o := outline{text: folderColor.Sprint(n.Name)}
	for _, c := range n.Children() {
		o.children = append(o.children, failureOutline(c, byName))
	}
	red := color.New(color.FgRed)
	for _, test := range n.Tests {
		for _, r := range byName[test.FullName] {
			leaf := outline{text: red.Sprint("✗ " + test.Name)}
			if r.Failure != nil && r.Failure.Message != "" {
				message, _, _ := strings.Cut(r.Failure.Message, "\n")
				leaf.children = append(leaf.children, outline{text: faintColor.Sprint(message)})
			}
			o.children = append(o.children, leaf)
		}
	}
	return o
}
