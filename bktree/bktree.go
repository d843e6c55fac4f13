// Package bktree implements a BK-tree, a metric tree for similarity
// search under a discrete distance function. Radius queries use the
// triangle inequality to prune whole subtrees, so near matches are
// found without comparing the query against every indexed item.
//
// Trees are not safe for concurrent use; callers sharing a tree across
// goroutines must serialize access themselves. The distance function
// must report a stable distance for every indexed item for as long as
// the item stays in the tree.
package bktree

import (
	"errors"
	"reflect"
	"sort"
)

// DistanceFunc computes the distance between two items. It must be
// non-negative and symmetric, return zero exactly for items the tree
// should treat as equal, and satisfy the triangle inequality.
type DistanceFunc[T any] func(a, b T) int

// ErrNilItem is returned when a nil item is offered to a tree.
var ErrNilItem = errors.New("bktree: nil item")

// Result is a single match returned by Search.
type Result[T any] struct {
	Distance int
	Item     T
}

// Tree is a BK-tree over items of type T. The zero value is not
// usable; construct trees with New.
type Tree[T any] struct {
	distance DistanceFunc[T]
	root     *node[T]
	size     int
}

// child links a node to one subtree; key is the distance between the
// node's item and the subtree root's item.
type child[T any] struct {
	key  int
	node *node[T]
}

type node[T any] struct {
	item     T
	children []child[T] // sorted ascending by key, at most one per key
}

// New creates an empty tree using the given distance function.
// It panics if distance is nil.
func New[T any](distance DistanceFunc[T]) *Tree[T] {
	if distance == nil {
		panic("bktree: nil distance function")
	}
	return &Tree[T]{distance: distance}
}

// Size returns the number of items in the tree.
func (t *Tree[T]) Size() int {
	return t.size
}

// Add inserts item into the tree and reports whether the tree grew.
// It returns false when an item at distance zero is already indexed,
// keeping every pair of indexed items at a positive distance. A nil
// item is rejected with ErrNilItem and the tree is left unchanged.
func (t *Tree[T]) Add(item T) (bool, error) {
	if isNil(item) {
		return false, ErrNilItem
	}
	if t.root == nil {
		t.root = &node[T]{item: item}
		t.size++
		return true, nil
	}
	cur := t.root
	for {
		d := t.distance(cur.item, item)
		if d == 0 {
			return false, nil
		}
		next := cur.childAt(d)
		if next == nil {
			cur.attach(d, &node[T]{item: item})
			t.size++
			return true, nil
		}
		cur = next
	}
}

// Search returns every indexed item within radius of query, ordered by
// ascending distance; items at equal distance keep their breadth-first
// discovery order. A nil query or negative radius yields no matches.
func (t *Tree[T]) Search(query T, radius int) []Result[T] {
	var results []Result[T]
	if t.root == nil || radius < 0 || isNil(query) {
		return results
	}
	queue := []*node[T]{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		d := t.distance(n.item, query)
		if d <= radius {
			results = append(results, Result[T]{Distance: d, Item: n.item})
		}
		// Triangle inequality: a child at key k can only hold matches
		// when k is in [d-radius, d+radius].
		lo := d - radius
		hi := d + radius
		for _, c := range n.children {
			if c.key < lo {
				continue
			}
			if c.key > hi {
				break
			}
			queue = append(queue, c.node)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results
}

// Contains reports whether an item at distance zero from item is
// indexed.
func (t *Tree[T]) Contains(item T) bool {
	return len(t.Search(item, 0)) > 0
}

// Remove deletes the indexed item at distance zero from item, if any,
// and reports whether the tree shrank. The removed node's subtree is
// reconstituted in place: the first child in key order takes over as
// the subtree root and the remaining children are re-attached under it
// whole, by distance descent.
func (t *Tree[T]) Remove(item T) bool {
	if t.root == nil || isNil(item) {
		return false
	}
	key := t.distance(t.root.item, item)
	if key == 0 {
		t.root = t.reconstitute(t.root)
		t.size--
		return true
	}
	parent := t.root
	for {
		cur := parent.childAt(key)
		if cur == nil {
			return false
		}
		d := t.distance(cur.item, item)
		if d == 0 {
			if repl := t.reconstitute(parent.detach(key)); repl != nil {
				parent.attach(key, repl)
			}
			t.size--
			return true
		}
		parent = cur
		key = d
	}
}

// ForEach visits every item in breadth-first order, parents before
// descendants, until fn returns false.
func (t *Tree[T]) ForEach(fn func(item T) bool) {
	if t.root == nil {
		return
	}
	queue := []*node[T]{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !fn(n.item) {
			return
		}
		for _, c := range n.children {
			queue = append(queue, c.node)
		}
	}
}

// reconstitute rebuilds the subtree rooted at n without n. The first
// child in key order becomes the replacement root and every other
// child subtree is grafted under it. Returns nil when n is a leaf.
func (t *Tree[T]) reconstitute(n *node[T]) *node[T] {
	if len(n.children) == 0 {
		return nil
	}
	repl := n.children[0].node
	for _, c := range n.children[1:] {
		t.graft(repl, c.node)
	}
	n.children = nil
	return repl
}

// graft descends from root by distance until a free slot takes sub,
// keeping sub's own subtree intact.
func (t *Tree[T]) graft(root, sub *node[T]) {
	cur := root
	for {
		d := t.distance(cur.item, sub.item)
		next := cur.childAt(d)
		if next == nil {
			cur.attach(d, sub)
			return
		}
		cur = next
	}
}

// childAt returns the subtree stored under key, or nil.
func (n *node[T]) childAt(key int) *node[T] {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].key >= key })
	if i < len(n.children) && n.children[i].key == key {
		return n.children[i].node
	}
	return nil
}

// attach stores sub under key; the slot must be free.
func (n *node[T]) attach(key int, sub *node[T]) {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].key >= key })
	n.children = append(n.children, child[T]{})
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child[T]{key: key, node: sub}
}

// detach removes and returns the subtree stored under key, or nil.
func (n *node[T]) detach(key int) *node[T] {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].key >= key })
	if i >= len(n.children) || n.children[i].key != key {
		return nil
	}
	sub := n.children[i].node
	n.children = append(n.children[:i], n.children[i+1:]...)
	return sub
}

// isNil reports whether item boxes a nil reference; value types are
// never nil.
func isNil[T any](item T) bool {
	switch v := reflect.ValueOf(item); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}
