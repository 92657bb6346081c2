// Command pqfuzz is the Go equivalent of original_source/fuzztest.cc:
// repeatedly build a tree over a random permutation, reduce by random
// consecutive windows of that permutation, and check every reduction on
// a genuinely consecutive window succeeds.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/g-m-twostay/pqtree/pq"
)

const (
	iterations = 100
	reductions = 20
	treeSize   = 10
)

func fuzzOnce(rng *rand.Rand) bool {
	ground := make([]int, treeSize)
	for i := range ground {
		ground[i] = i
	}
	frontier := rng.Perm(treeSize)

	tree := pq.New(ground)
	fmt.Print("new tree: ")
	for _, v := range frontier {
		fmt.Print(v, " ")
	}
	fmt.Println()

	for j := 0; j < reductions; j++ {
		start := rng.Intn(treeSize - 2)
		size := rng.Intn(10) + 2
		if start+size > treeSize {
			size = treeSize - start
		}

		window := append([]int(nil), frontier[start:start+size]...)
		fmt.Print(window, " ")

		ok, err := tree.Reduce(window)
		if !ok {
			fmt.Println()
			fmt.Println("reduce failed on a genuinely consecutive window:", err)
			return false
		}
		fmt.Println()
		fmt.Println(tree.Print())
	}
	return true
}

func main() {
	rng := rand.New(rand.NewSource(rand.Int63()))
	for i := 0; i < iterations; i++ {
		if !fuzzOnce(rng) {
			fmt.Println("failure")
			os.Exit(1)
		}
	}
	os.Exit(0)
}
