package render

import (
	"sort"
	"strings"
)

const (
	treeBranchConnector   = "├── "
	treeLastConnector     = "└── "
	treeBranchPadding     = "│   "
	treeLastPadding       = "    "
	treeRootSuffix        = "/"
	relativePathSeparator = "/"
)

type treeNode struct {
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: map[string]*treeNode{}}
}

// BuildTree renders the connector-style listing of relativePaths rooted at
// projectName. Entries sort lexicographically at every level, directories and
// files intermixed.
func BuildTree(projectName string, relativePaths []string) string {
	rootNode := newTreeNode()
	for _, relativePath := range relativePaths {
		currentNode := rootNode
		for _, segment := range strings.Split(relativePath, relativePathSeparator) {
			if segment == "" {
				continue
			}
			childNode, exists := currentNode.children[segment]
			if !exists {
				childNode = newTreeNode()
				currentNode.children[segment] = childNode
			}
			currentNode = childNode
		}
	}

	treeLines := []string{projectName + treeRootSuffix}
	appendTreeLines(&treeLines, rootNode, "")
	return strings.Join(treeLines, "\n")
}

func appendTreeLines(treeLines *[]string, node *treeNode, prefix string) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for nameIndex, name := range names {
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if nameIndex == len(names)-1 {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		*treeLines = append(*treeLines, prefix+connector+name)
		appendTreeLines(treeLines, node.children[name], childPrefix)
	}
}
