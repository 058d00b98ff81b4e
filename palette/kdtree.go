package palette

import (
	"sort"

	"github.com/bodgit/bitpast/metric"
)

const none = -1

type node struct {
	index int // palette index
	axis  int
	left  int
	right int
}

// Tree is a k-d tree over the colors of a palette. Nodes are stored in a
// single slice and refer to each other by position.
//
// Searches are exact for any distance that is a weighted sum of squared
// component differences and resolve ties to the lowest palette index.
type Tree struct {
	palette Palette
	weights [3]float64
	f       metric.Func
	nodes   []node
	root    int
}

// NewTree builds a tree over p using the per-axis weights w.
func NewTree(p Palette, w [3]float64) *Tree {
	return NewBoundedTree(p, w, nil)
}

// NewBoundedTree builds a tree that ranks colors by f and prunes with the
// per-axis weights w. The weighted sum of squares under w must never exceed
// f for the search to stay exact. A nil f ranks by w.
func NewBoundedTree(p Palette, w [3]float64, f metric.Func) *Tree {
	t := &Tree{
		palette: p,
		weights: w,
		f:       f,
		nodes:   make([]node, 0, len(p)),
		root:    none,
	}

	indices := make([]int, len(p))
	for i := range indices {
		indices[i] = i
	}
	t.root = t.build(indices, 0)

	return t
}

func component(c Color, axis int) uint8 {
	switch axis {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

func (t *Tree) build(indices []int, depth int) int {
	if len(indices) == 0 {
		return none
	}

	axis := depth % 3
	sort.SliceStable(indices, func(i, j int) bool {
		return component(t.palette[indices[i]], axis) < component(t.palette[indices[j]], axis)
	})

	mid := len(indices) / 2
	n := len(t.nodes)
	t.nodes = append(t.nodes, node{
		index: indices[mid],
		axis:  axis,
	})

	left := t.build(indices[:mid], depth+1)
	right := t.build(indices[mid+1:], depth+1)
	t.nodes[n].left, t.nodes[n].right = left, right

	return n
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Nearest implements Matcher.
func (t *Tree) Nearest(r, g, b float64) int {
	best, bestDist := none, 0.0
	t.search(t.root, [3]float64{r, g, b}, &best, &bestDist)
	if best == none {
		return 0
	}
	return best
}

func (t *Tree) distance(c Color, q [3]float64) float64 {
	if t.f != nil {
		return t.f(q[0], q[1], q[2], float64(c.R), float64(c.G), float64(c.B))
	}
	dr := q[0] - float64(c.R)
	dg := q[1] - float64(c.G)
	db := q[2] - float64(c.B)
	return t.weights[0]*dr*dr + t.weights[1]*dg*dg + t.weights[2]*db*db
}

func (t *Tree) search(n int, q [3]float64, best *int, bestDist *float64) {
	if n == none {
		return
	}
	nd := &t.nodes[n]
	c := t.palette[nd.index]

	d := t.distance(c, q)
	if *best == none || d < *bestDist || (d == *bestDist && nd.index < *best) {
		*best, *bestDist = nd.index, d
	}

	diff := q[nd.axis] - float64(component(c, nd.axis))
	near, far := nd.left, nd.right
	if diff >= 0 {
		near, far = nd.right, nd.left
	}

	t.search(near, q, best, bestDist)

	// Equal distances must still be visited to find the lowest index
	if t.weights[nd.axis]*diff*diff <= *bestDist {
		t.search(far, q, best, bestDist)
	}
}
