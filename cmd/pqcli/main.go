// Command pqcli is a fixed-script harness exercising pq.Tree the way
// original_source/pqtest.cc exercises the C++ PQTree: build one tree,
// apply a scripted sequence of reductions, print the tree after each and
// report a final pass/fail.
package main

import (
	"fmt"
	"os"

	"github.com/g-m-twostay/pqtree/pq"
)

type step struct {
	set      []int
	wantFail bool
}

func main() {
	ground := make([]int, 8)
	for i := range ground {
		ground[i] = i + 1 // {1..8}
	}
	tree := pq.New(ground)

	fmt.Println("PQ tree with 8 elements and no reductions")
	fmt.Println(tree.Print())

	script := []step{
		{set: []int{3, 4}},
		{set: []int{3, 4, 6}},
		{set: []int{3, 4, 5}},
		{set: []int{4, 5}},
		{set: []int{2, 6}},
		{set: []int{1, 2}},
		{set: []int{4, 5}},
		{set: []int{3, 5}, wantFail: true},
	}

	pass := true
	for _, s := range script {
		ok, err := tree.Reduce(s.set)
		fmt.Printf("reduce %v: ok=%v err=%v\n", s.set, ok, err)
		fmt.Println(tree.Print())
		if ok == s.wantFail {
			pass = false
			fmt.Printf("FAIL: reduce %v expected ok=%v, got %v\n", s.set, !s.wantFail, ok)
		}
	}

	fmt.Println("contained:", tree.Contained())
	fmt.Println("reductions:", tree.Reductions())

	if pass {
		fmt.Println("PASS")
		os.Exit(0)
	}
	fmt.Println("FAIL")
	os.Exit(1)
}
