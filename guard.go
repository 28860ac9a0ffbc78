// Copyright (C) 2025-2026  Nexedi SA and Contributors.
//                          Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// You can also Link and Combine this program with other software covered by
// the terms of any of the Free Software licenses or any of the Open Source
// Initiative approved licenses and Convey the resulting work. Corresponding
// source of such a combination shall include the source code for all other
// software used.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.
// See https://www.nexedi.com/licensing for rationale and options.

package pinlist

// Guard represents the list lock being held and is the only way to observe
// or change link state of a List and its Nodes.
//
// A Guard is obtained via List.Lock / List.LockCtx / List.With and is valid
// until Guard.Unlock. Using a Guard after Unlock panics. A Guard must not be
// passed to another goroutine that would outlive the locked scope.
//
// Traversal is cursor-style:
//
//	for n := g.Front(); n != nil; n = g.Next(n) {
//		...
//	}
//
// Structural operations done through the same guard during such a walk are
// serialized by construction. The only care the caller has to take is the
// same as with std container/list: after removing node n, g.Next(n) is no
// longer meaningful - fetch the successor before removing.
type Guard[T any] struct {
	list *List[T] // nil after Unlock
}

// Unlock releases the list lock.
//
// The guard becomes invalid; any further use of it panics.
func (g *Guard[T]) Unlock() {
	l := g.check()
	g.list = nil
	l.mu.Release(1)
}

// check asserts that the guard is still valid.
func (g *Guard[T]) check() *List[T] {
	l := g.list
	if l == nil {
		panic("pinlist: use of Guard after Unlock")
	}
	return l
}

func (g *Guard[T]) err(op string, e error) error {
	if e == nil {
		return nil
	}
	return &ListError{List: g.list, Op: op, Err: e}
}

// ---- insert ----

// PushFront links unlinked node n at the front of the list.
//
// If n is already linked - into this or any other list - ErrNodeLinked is
// returned and no list is changed.
func (g *Guard[T]) PushFront(n *Node[T]) error {
	return g.insert("push front", n, func(l *List[T]) {
		n.head.InsertAfter(&l.root)
	})
}

// PushBack links unlinked node n at the back of the list.
//
// If n is already linked - into this or any other list - ErrNodeLinked is
// returned and no list is changed.
func (g *Guard[T]) PushBack(n *Node[T]) error {
	return g.insert("push back", n, func(l *List[T]) {
		n.head.InsertBefore(&l.root)
	})
}

// InsertBefore links unlinked node n just before node at.
//
// at must be a member of this list, otherwise ErrNodeNotMember is returned.
// If n is already linked ErrNodeLinked is returned. On error no list is
// changed.
func (g *Guard[T]) InsertBefore(n, at *Node[T]) error {
	if err := g.checkMember("insert before", at); err != nil {
		return err
	}
	return g.insert("insert before", n, func(*List[T]) {
		n.head.InsertBefore(&at.head)
	})
}

// InsertAfter links unlinked node n just after node at.
//
// at must be a member of this list, otherwise ErrNodeNotMember is returned.
// If n is already linked ErrNodeLinked is returned. On error no list is
// changed.
func (g *Guard[T]) InsertAfter(n, at *Node[T]) error {
	if err := g.checkMember("insert after", at); err != nil {
		return err
	}
	return g.insert("insert after", n, func(*List[T]) {
		n.head.InsertAfter(&at.head)
	})
}

// insert links n via link after verifying n is not linked anywhere.
func (g *Guard[T]) insert(op string, n *Node[T], link func(l *List[T])) error {
	l := g.check()
	if n.list.Load() != nil {
		return g.err(op, ErrNodeLinked)
	}
	n.head.Init(n)
	link(l)
	n.list.Store(l)
	l.len++
	return nil
}

// checkMember verifies that n is linked into this list.
func (g *Guard[T]) checkMember(op string, n *Node[T]) error {
	l := g.check()
	if n.list.Load() != l {
		return g.err(op, ErrNodeNotMember)
	}
	return nil
}

// ---- remove ----

// PopFront unlinks and returns the front node.
//
// ok=false is returned if the list is empty.
func (g *Guard[T]) PopFront() (n *Node[T], ok bool) {
	l := g.check()
	n = l.root.Next().Owner()
	if n == nil {
		return nil, false
	}
	g.unlink(n)
	return n, true
}

// PopBack unlinks and returns the back node.
//
// ok=false is returned if the list is empty.
func (g *Guard[T]) PopBack() (n *Node[T], ok bool) {
	l := g.check()
	n = l.root.Prev().Owner()
	if n == nil {
		return nil, false
	}
	g.unlink(n)
	return n, true
}

// Remove unlinks node n from the list.
//
// n must be a member of this list: removing a node that is unlinked, or that
// belongs to a different list, returns ErrNodeNotMember and changes nothing.
func (g *Guard[T]) Remove(n *Node[T]) error {
	if err := g.checkMember("remove", n); err != nil {
		return err
	}
	g.unlink(n)
	return nil
}

// unlink detaches member node n. Caller must have verified membership.
func (g *Guard[T]) unlink(n *Node[T]) {
	n.head.Delete()
	n.list.Store(nil)
	g.list.len--
}

// ---- inspect / traverse ----

// Front returns the front node, or nil if the list is empty.
func (g *Guard[T]) Front() *Node[T] {
	l := g.check()
	return l.root.Next().Owner()
}

// Back returns the back node, or nil if the list is empty.
func (g *Guard[T]) Back() *Node[T] {
	l := g.check()
	return l.root.Prev().Owner()
}

// Next returns the node following n, or nil if n is the back node.
//
// n must be a member of this list.
func (g *Guard[T]) Next(n *Node[T]) *Node[T] {
	g.check()
	return n.head.Next().Owner()
}

// Prev returns the node preceding n, or nil if n is the front node.
//
// n must be a member of this list.
func (g *Guard[T]) Prev(n *Node[T]) *Node[T] {
	g.check()
	return n.head.Prev().Owner()
}

// Len returns the number of nodes currently linked into the list.
func (g *Guard[T]) Len() int {
	return g.check().len
}

// Empty reports whether the list has no linked nodes.
func (g *Guard[T]) Empty() bool {
	return g.check().len == 0
}
