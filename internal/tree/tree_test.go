package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNames(tests []Test) []string {
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = t.Name
	}
	return names
}

func childNames(n *Node) []string {
	var names []string
	for _, c := range n.Children() {
		names = append(names, c.Name)
	}
	return names
}

func TestBuild_SharedPrefix(t *testing.T) {
	root := BuildNames([]string{"Ns.Fixture.Test1", "Ns.Fixture.Test2"})

	require.Equal(t, 1, root.Len())
	ns, ok := root.Child("Ns")
	require.True(t, ok)
	assert.Equal(t, "Ns", ns.FullName)
	assert.Empty(t, ns.Tests)

	require.Equal(t, 1, ns.Len())
	fixture, ok := ns.Child("Fixture")
	require.True(t, ok)
	assert.Equal(t, "Ns.Fixture", fixture.FullName)
	assert.Equal(t, []string{"Test1", "Test2"}, testNames(fixture.Tests))
	assert.Equal(t, "Ns.Fixture.Test2", fixture.Tests[1].FullName)
}

func TestBuild_Brackets(t *testing.T) {
	root := BuildNames([]string{
		`Ns.Fixture("a.b").Test("x,y")`,
		`Ns.Fixture("a.b").Test("z")`,
	})

	ns, _ := root.Child("Ns")
	fixture, ok := ns.Child("Fixture")
	require.True(t, ok, "folder is keyed by bare name")
	assert.Equal(t, `Ns.Fixture("a.b")`, fixture.FullName)
	assert.Equal(t, []string{`Test("x,y")`, `Test("z")`}, testNames(fixture.Tests))
}

func TestBuild_Duplicates(t *testing.T) {
	root := BuildNames([]string{"A.T", "A.T"})

	a, _ := root.Child("A")
	assert.Equal(t, []string{"T", "T"}, testNames(a.Tests))
}

func TestBuild_NestedClassAndOrder(t *testing.T) {
	root := BuildNames([]string{
		"Ns.Zeta.T",
		"Ns.Outer+Inner.T",
		"Ns.Alpha.T",
		"Ns.Zeta.U",
	})

	ns, _ := root.Child("Ns")
	assert.Equal(t, []string{"Zeta", "Outer", "Alpha"}, childNames(ns))

	outer, _ := ns.Child("Outer")
	inner, ok := outer.Child("Inner")
	require.True(t, ok)
	assert.Equal(t, "Ns.Outer+Inner", inner.FullName)
}

func TestBuild_SingleSegmentAtRoot(t *testing.T) {
	root := BuildNames([]string{"Lonely"})

	assert.Zero(t, root.Len())
	assert.Equal(t, []string{"Lonely"}, testNames(root.Tests))
}

func TestBuild_FullNamesArePrefixed(t *testing.T) {
	root := BuildNames([]string{
		"A.B(1).C.T",
		"A.B(1).D.T(2)",
		"X+Y.Z",
	})

	Walk(root, func(n *Node, _ int) bool {
		for _, c := range n.Children() {
			assert.Truef(t, len(c.FullName) > len(n.FullName), "%q under %q", c.FullName, n.FullName)
			assert.Equal(t, n.FullName, c.FullName[:len(n.FullName)])
		}
		return true
	})
}

func TestCompact_Chain(t *testing.T) {
	root := BuildNames([]string{"A.B.C.T"})

	compacted := Compact(root)
	assert.Equal(t, "A.B.C", compacted.Name)
	assert.Equal(t, "A.B.C", compacted.FullName)
	assert.Equal(t, []string{"T"}, testNames(compacted.Tests))
	assert.Zero(t, compacted.Len())
}

func TestCompact_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"A.B.C.T"},
		{"Ns.Fixture.Test1", "Ns.Fixture.Test2"},
		{"Ns.A.B.T", "Ns.C.D.E.T", "Other.T"},
		{"Root", "A.B.T"},
	}

	for _, names := range inputs {
		once := Compact(BuildNames(names))
		twice := Compact(once)
		assert.Equal(t, once, twice)
		assert.Equal(t, once.String(), twice.String())
	}
}

func TestCompact_Branching(t *testing.T) {
	root := BuildNames([]string{"Ns.A.B.T", "Ns.C.D.E.T", "Ns.C.U"})

	compacted := Compact(root)
	assert.Equal(t, "Ns", compacted.Name)
	assert.Equal(t, []string{"A.B", "C"}, childNames(compacted))

	ab, ok := compacted.Child("A.B")
	require.True(t, ok, "children are re-keyed by merged name")
	assert.Equal(t, "Ns.A.B", ab.FullName)

	c, _ := compacted.Child("C")
	assert.Equal(t, []string{"U"}, testNames(c.Tests))
	assert.Equal(t, []string{"D.E"}, childNames(c))
}

func TestCompact_DoesNotMutateInput(t *testing.T) {
	root := BuildNames([]string{"A.B.C.T", "A.B.D.T"})
	before := root.String()

	_ = Compact(root)
	assert.Equal(t, before, root.String())

	a, _ := root.Child("A")
	assert.Equal(t, "A", a.Name)
}

func TestCompactChildren_KeepsRoot(t *testing.T) {
	root := BuildNames([]string{"A.B.T"})

	compacted := CompactChildren(root)
	assert.Equal(t, "", compacted.Name)
	assert.Equal(t, []string{"A.B"}, childNames(compacted))
}

func TestNode_String(t *testing.T) {
	root := BuildNames([]string{"Ns.F.T1", "Ns.F.T2", "Ns.G"})

	expected := "  Ns/\n    G\n    F/\n      T1\n      T2\n"
	assert.Equal(t, expected, root.String())
}

func allTests(n *Node) []string {
	var names []string
	Walk(n, func(node *Node, _ int) bool {
		for _, t := range node.Tests {
			names = append(names, t.FullName)
		}
		return true
	})
	return names
}

func TestBuild_EmptySegments(t *testing.T) {
	root := BuildNames([]string{".A.T"})

	empty, ok := root.Child("")
	require.True(t, ok, "leading separator yields an empty folder")
	assert.Equal(t, "", empty.FullName)
	assert.Equal(t, ".", empty.Path)
	assert.False(t, empty.IsRoot())

	a, ok := empty.Child("A")
	require.True(t, ok)
	assert.Equal(t, ".A", a.FullName)
	assert.Equal(t, "..A", a.Path)
	assert.Equal(t, []string{".A.T"}, allTests(a))
}

func TestCompact_EmptySegments(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		children []string
	}{
		{"leading separator", []string{".A.T"}, []string{".A"}},
		{"doubled separator", []string{"A..T"}, []string{"A."}},
		{"empty folder beside its namesake", []string{"C.T1", ".C.T2"}, []string{"C", ".C"}},
		{"empty last segment", []string{"C.D(x.y)", ".C."}, []string{"C", ".C"}},
		{"several empty folders", []string{".A.T", ".B.T", "A.T"}, []string{"", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compacted := CompactChildren(BuildNames(tt.names))
			assert.Equal(t, tt.children, childNames(compacted))
			assert.ElementsMatch(t, tt.names, allTests(compacted))

			full := Compact(BuildNames(tt.names))
			assert.ElementsMatch(t, tt.names, allTests(full))
			assert.Equal(t, full, Compact(full))
		})
	}
}

func TestCompact_RootJoinsWithoutSeparator(t *testing.T) {
	compacted := Compact(BuildNames([]string{".A.T"}))
	assert.Equal(t, ".A", compacted.Name)
	assert.Equal(t, ".A", compacted.FullName)
	assert.False(t, compacted.IsRoot())
}
