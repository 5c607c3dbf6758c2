// Command bptreedemo exercises the main bptree operations against a small
// dataset and prints the resulting tree shape, mirroring the storage
// engine's own demo entrypoint.
package main

import (
	"fmt"
	"os"

	"bptree/bptree"
)

func main() {
	tr, err := bptree.New[int, string](4)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create tree:", err)
		os.Exit(1)
	}

	seed := map[int]string{
		10:  "ten",
		11:  "eleven",
		12:  "twelve",
		120: "one-twenty",
		1:   "one",
		55:  "fifty-five",
	}
	for k, v := range seed {
		tr.Insert(k, v)
	}

	if v, ok := tr.Get(11); ok {
		fmt.Println("11 ->", v)
	}

	fmt.Println("tree shape:")
	tr.Dump(os.Stdout)

	fmt.Println("\nrange [10, 55]:")
	it := tr.Range(bptree.Incl(10), bptree.Incl(55))
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("  %d -> %s\n", k, v)
	}

	tr.Remove(12)
	if err := tr.CheckInvariants(); err != nil {
		fmt.Fprintln(os.Stderr, "invariant check failed:", err)
		os.Exit(1)
	}
	fmt.Println("\nremoved 12, invariants hold, len =", tr.Len())
}
