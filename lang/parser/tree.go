package parser

import "github.com/xlab/treeprint"

// Tree renders the node as an indented box-drawing tree.
func (n *Node) Tree(withPositions bool) string {
	root := treeprint.NewWithRoot(n.label(withPositions))
	for _, child := range n.Children {
		child.addTo(root, withPositions)
	}
	return root.String()
}

func (n *Node) addTo(parent treeprint.Tree, withPositions bool) {
	if len(n.Children) == 0 {
		parent.AddNode(n.label(withPositions))
		return
	}
	branch := parent.AddBranch(n.label(withPositions))
	for _, child := range n.Children {
		child.addTo(branch, withPositions)
	}
}
