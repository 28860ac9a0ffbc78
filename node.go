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

import (
	"sync/atomic"

	"lab.nexedi.com/kirr/pinlist/internal/ilist"
)

// Node is an element of a List.
//
// A Node carries caller payload in .Value and embeds the link state through
// which it is chained into a list. Node storage is owned by the caller - a
// zero Node embedded into a caller structure is directly usable; NewNode is
// the convenience constructor for standalone nodes.
//
// A Node starts unlinked and belongs to at most one list at a time. All
// linking and unlinking goes through a Guard of the corresponding list, with
// one exception: Node.Close, which relocks the owning list by itself.
//
// A linked Node must not move in memory - its address is referenced by link
// state of its neighbours. This holds as long as the node is handled via
// *Node only; Node must not be copied by value (it embeds link state with
// internal pointers, and go vet reports such copies).
//
// Access to .Value is NOT synchronized by the list.
type Node[T any] struct {
	Value T

	head ilist.Head[*Node[T]] // link state; meaningful only while linked

	// list the node is currently linked into; nil if unlinked.
	// set/cleared under that list's lock; loaded by Close without the lock
	// to know which list to take.
	list atomic.Pointer[List[T]]
}

// NewNode creates a new unlinked Node carrying value v.
func NewNode[T any](v T) *Node[T] {
	return &Node[T]{Value: v}
}

// Close unlinks the node from its list, if it is currently linked.
//
// Close must be called before the storage owning the node goes away - for a
// node in transient storage the usual form is
//
//	n := pinlist.NewNode(v)
//	defer n.Close()
//
// which guarantees the unlink on every exit path from the owning scope.
// Failing to do so would leave neighbour nodes and the list header with
// references to a dead node.
//
// Close on an unlinked node is a no-op; Close is idempotent.
func (n *Node[T]) Close() error {
	for {
		l := n.list.Load()
		if l == nil {
			return nil // already unlinked
		}

		g := l.Lock()
		if n.list.Load() == l {
			g.unlink(n)
			g.Unlock()
			return nil
		}

		// the node was unlinked - and possibly relinked elsewhere - while
		// we were waiting for the lock. Retry wrt the new owner.
		g.Unlock()
	}
}
