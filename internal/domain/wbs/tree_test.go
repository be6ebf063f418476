package wbs_test

import (
	"encoding/json"
	"testing"

	"github.com/rpggio/planscope/internal/domain/wbs"
	"github.com/stretchr/testify/require"
)

func coded(codes ...string) []wbs.FlatItem {
	items := make([]wbs.FlatItem, 0, len(codes))
	for _, code := range codes {
		items = append(items, wbs.FlatItem{ID: code, WBSCode: code, Task: "task " + code})
	}
	return items
}

func rootCodes(tree *wbs.Tree) []string {
	codes := make([]string, 0, len(tree.Roots))
	for _, idx := range tree.Roots {
		codes = append(codes, tree.Nodes[idx].WBSCode)
	}
	return codes
}

func childCodes(tree *wbs.Tree, idx int) []string {
	codes := make([]string, 0, len(tree.Nodes[idx].Children))
	for _, child := range tree.Nodes[idx].Children {
		codes = append(codes, tree.Nodes[child].WBSCode)
	}
	return codes
}

func TestBuild_RoundTrip(t *testing.T) {
	tree := wbs.Build(coded("1", "1.1", "1.2", "2"))

	require.Equal(t, []string{"1", "2"}, rootCodes(tree))
	require.Equal(t, []string{"1.1", "1.2"}, childCodes(tree, tree.Roots[0]))
	require.Empty(t, tree.Nodes[tree.Roots[1]].Children)
	require.Equal(t, 4, tree.Len())
}

func TestBuild_SortsNaturally(t *testing.T) {
	tree := wbs.Build(coded("10", "2", "1.10", "1", "1.2", "1.9"))

	require.Equal(t, []string{"1", "2", "10"}, rootCodes(tree))
	require.Equal(t, []string{"1.2", "1.9", "1.10"}, childCodes(tree, tree.Roots[0]))
}

func TestBuild_OrphanBecomesRoot(t *testing.T) {
	tree := wbs.Build(coded("2.1"))

	require.Len(t, tree.Roots, 1)
	root := tree.Nodes[tree.Roots[0]]
	require.Equal(t, "2.1", root.WBSCode)
	require.Equal(t, 2, root.Depth)
	require.Equal(t, -1, root.Parent)
}

func TestBuild_OrphanKeepsDescendants(t *testing.T) {
	tree := wbs.Build(coded("3.1", "3.1.1", "3.1.2"))

	require.Equal(t, []string{"3.1"}, rootCodes(tree))
	require.Equal(t, []string{"3.1.1", "3.1.2"}, childCodes(tree, tree.Roots[0]))
}

func TestBuild_SkippedLevelAttachesToNearestAncestor(t *testing.T) {
	tree := wbs.Build(coded("1", "1.1.1", "1.2"))

	require.Equal(t, []string{"1"}, rootCodes(tree))
	require.Equal(t, []string{"1.1.1", "1.2"}, childCodes(tree, tree.Roots[0]))
	require.Equal(t, 3, tree.Nodes[tree.Nodes[tree.Roots[0]].Children[0]].Depth)
}

func TestBuild_CodeFromTaskName(t *testing.T) {
	tree := wbs.Build([]wbs.FlatItem{
		{ID: "a", Task: "1 Planning"},
		{ID: "b", Task: "1.1 Kickoff"},
		{ID: "c", Task: "1.2. Charter"},
	})

	require.Equal(t, []string{"1"}, rootCodes(tree))
	require.Equal(t, []string{"1.1", "1.2"}, childCodes(tree, tree.Roots[0]))
}

func TestBuild_CodelessItemsAreDepthZeroRoots(t *testing.T) {
	tree := wbs.Build([]wbs.FlatItem{
		{ID: "1", WBSCode: "1", Task: "Phase"},
		{ID: "x", Task: "Unnumbered note"},
		{ID: "2", WBSCode: "1.1", Task: "Step"},
	})

	require.Len(t, tree.Roots, 2)
	var codeless *wbs.Node
	for _, idx := range tree.Roots {
		if tree.Nodes[idx].ID == "x" {
			codeless = &tree.Nodes[idx]
		}
	}
	require.NotNil(t, codeless)
	require.Equal(t, 0, codeless.Depth)
	require.Empty(t, codeless.WBSCode)
}

func TestBuild_DropsItemsWithoutTask(t *testing.T) {
	tree := wbs.Build([]wbs.FlatItem{
		{ID: "1", WBSCode: "1", Task: ""},
		{ID: "2", WBSCode: "1.1", Task: "Child"},
	})

	require.Equal(t, 1, tree.Len())
	require.Equal(t, []string{"1.1"}, rootCodes(tree))
}

func TestBuild_KeepsWhitespaceTask(t *testing.T) {
	tree := wbs.Build([]wbs.FlatItem{
		{ID: "1", WBSCode: "1", Task: "Phase"},
		{ID: "2", WBSCode: "1.1", Task: "   "},
	})

	require.Equal(t, 2, tree.Len())
	require.Equal(t, []string{"1.1"}, childCodes(tree, tree.Roots[0]))
}

func TestBuild_Empty(t *testing.T) {
	tree := wbs.Build(nil)
	require.Equal(t, 0, tree.Len())
	require.Empty(t, tree.Forest())
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	items := coded("2", "1")
	wbs.Build(items)
	require.Equal(t, "2", items[0].WBSCode)
}

func TestDepth(t *testing.T) {
	require.Equal(t, 0, wbs.Depth(""))
	require.Equal(t, 1, wbs.Depth("."))
	require.Equal(t, 1, wbs.Depth("1"))
	require.Equal(t, 1, wbs.Depth("1."))
	require.Equal(t, 2, wbs.Depth("1.2"))
	require.Equal(t, 3, wbs.Depth("1.2.3"))
}

func TestTree_Walk(t *testing.T) {
	tree := wbs.Build(coded("1", "1.1", "1.1.1", "2", "2.1"))

	var visited []string
	tree.Walk(func(_ int, n *wbs.Node) bool {
		visited = append(visited, n.WBSCode)
		return n.WBSCode != "1.1"
	})
	require.Equal(t, []string{"1", "1.1", "2", "2.1"}, visited)
}

func TestTree_Forest(t *testing.T) {
	tree := wbs.Build(coded("1", "1.1", "2"))

	data, err := json.Marshal(tree.Forest())
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"id":"1","wbsCode":"1","task":"task 1","depth":1,"children":[
			{"id":"1.1","wbsCode":"1.1","task":"task 1.1","depth":2,"children":[]}
		]},
		{"id":"2","wbsCode":"2","task":"task 2","depth":1,"children":[]}
	]`, string(data))
}
