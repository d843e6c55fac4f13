package bktree

import "errors"

var (
	// ErrNoMoreItems is returned by Next once the pass is complete.
	ErrNoMoreItems = errors.New("bktree: no more items")
	// ErrNoCurrentItem is returned by Remove before the first Next and
	// on a second Remove without an intervening Next.
	ErrNoCurrentItem = errors.New("bktree: no current item")
)

// Iterator walks a tree in breadth-first order, parents before
// descendants. An iterator is good for a single pass over the tree as
// it stood at creation; mutating the tree during the pass through
// anything but the iterator's own Remove leaves the pass undefined.
type Iterator[T any] struct {
	tree  *Tree[T]
	queue []*node[T]
	cur   *node[T]
}

// Iterator returns a breadth-first iterator positioned before the
// first item.
func (t *Tree[T]) Iterator() *Iterator[T] {
	it := &Iterator[T]{tree: t}
	if t.root != nil {
		it.queue = append(it.queue, t.root)
	}
	return it
}

// HasNext reports whether Next will yield another item.
func (it *Iterator[T]) HasNext() bool {
	return len(it.queue) > 0
}

// Next yields the next item of the pass, expanding one node of the
// tree per call.
func (it *Iterator[T]) Next() (T, error) {
	if len(it.queue) == 0 {
		var zero T
		return zero, ErrNoMoreItems
	}
	it.cur = it.queue[0]
	it.queue = it.queue[1:]
	for _, c := range it.cur.children {
		it.queue = append(it.queue, c.node)
	}
	return it.cur.item, nil
}

// Remove deletes the item most recently yielded by Next and patches
// the pending queue so every still-unvisited item is seen exactly
// once: the removed node's children, queued by the Next that yielded
// it, are replaced at the head of the queue by the reconstituted
// subtree that takes the node's place in the tree.
func (it *Iterator[T]) Remove() error {
	if it.cur == nil {
		return ErrNoCurrentItem
	}
	if n := len(it.cur.children); n > 0 {
		// The tail of the queue holds exactly the current node's
		// children; its first child roots the reconstituted subtree.
		repl := it.cur.children[0].node
		it.queue = append([]*node[T]{repl}, it.queue[:len(it.queue)-n]...)
	}
	it.tree.Remove(it.cur.item)
	it.cur = nil
	return nil
}
