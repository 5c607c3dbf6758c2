package bptree

import (
	"fmt"
	"io"
)

// Dump writes a hierarchical, human-readable rendering of the tree to w,
// one line per node with box-drawing connectors between siblings.
func (t *Tree[K, V]) Dump(w io.Writer) {
	if t.IsEmpty() && t.root.IsLeaf() {
		if leaf, err := t.leaves.get(t.root.ID()); err == nil && len(leaf.keys) == 0 {
			fmt.Fprintln(w, "(empty tree)")
			return
		}
	}
	t.dumpNode(w, t.root, "", true, true)
}

func (t *Tree[K, V]) dumpNode(w io.Writer, ref NodeRef, prefix string, isLast, isRoot bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}

	if ref.IsLeaf() {
		leaf, err := t.leaves.get(ref.ID())
		if err != nil {
			fmt.Fprintf(w, "%s%s<dangling leaf %d>\n", prefix, connector, ref.ID())
			return
		}
		label := "LEAF"
		if isRoot {
			label = "ROOT LEAF"
		}
		fmt.Fprintf(w, "%s%s%s [", prefix, connector, label)
		for i, key := range leaf.keys {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%v:%v", key, leaf.values[i])
		}
		fmt.Fprintln(w, "]")
		return
	}

	branch, err := t.branches.get(ref.ID())
	if err != nil {
		fmt.Fprintf(w, "%s%s<dangling branch %d>\n", prefix, connector, ref.ID())
		return
	}
	label := "INTERNAL"
	if isRoot {
		label = "ROOT"
	}
	fmt.Fprintf(w, "%s%s%s [", prefix, connector, label)
	for i, key := range branch.keys {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%v", key)
	}
	fmt.Fprintln(w, "]")

	childPrefix := prefix
	if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}
	for i, child := range branch.children {
		t.dumpNode(w, child, childPrefix, i == len(branch.children)-1, false)
	}
}
