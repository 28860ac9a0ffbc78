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

// Package pinlist provides a mutex-guarded intrusive doubly-linked list for
// externally-owned nodes.
//
// Intrusive lists keep link state inside the element's own storage instead of
// in separate allocated list cells (see internal/ilist for the raw primitive
// and for comparison with std container/list). That makes insertion and
// removal O(1) and allocation-free, but it is also what makes intrusive lists
// unsafe in general: every linked node is referenced by the link state of its
// neighbours, so a node whose storage goes away while it is still linked
// leaves the list with dangling references.
//
// Package pinlist turns that raw primitive into a safe protocol:
//
//   - a List embeds a scoped mutex; the only way to observe or change link
//     state is through a Guard obtained by locking the list. Link state of
//     both List and Node is unexported, so no code path can bypass the lock.
//
//   - a Node records which list it currently belongs to. Linking an
//     already-linked node, or removing a node that is not a member of the
//     list being operated on, is detected and reported instead of silently
//     corrupting a chain (see ErrNodeLinked, ErrNodeNotMember).
//
//   - a Node must stay at fixed address while linked. This holds by
//     construction - nodes are only ever handled via *Node pointers and are
//     never copied by the list. Node additionally cannot be copied by value
//     (go vet flags it) since it embeds link state with internal pointers.
//
//   - before the storage owning a linked node goes away, the node has to be
//     detached. Node.Close does that: it relocks the owning list by itself
//     and unlinks. The contract for a caller keeping a node in transient
//     storage is `defer n.Close()` - the deferred call runs on every exit
//     path, mirroring destructor-style cleanup.
//
// The list never owns node storage and never frees anything; nodes live in
// whatever scope created them - a local variable, a struct field, a
// goroutine frame.
//
// Locking is blocking: List.Lock waits for exclusive access and returns a
// Guard; Guard.Unlock releases it. List.With runs a function under the lock
// and releases it on all exit paths including panic. List.LockCtx bounds the
// wait by a context. Locking the same list again while already holding its
// guard deadlocks - the lock is not re-entrant.
//
// The payload a node carries (Node.Value) is caller data: the list
// synchronizes link state only, access to payloads has to be organized by
// the caller.
package pinlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/sync/semaphore"

	"lab.nexedi.com/kirr/go123/xerr"

	"lab.nexedi.com/kirr/pinlist/internal/ilist"
)

// Errors returned by Guard operations that were misused wrt node membership.
var ErrNodeLinked = errors.New("node is already linked")          // linking a node that belongs to a list
var ErrNodeNotMember = errors.New("node is not an element of this list") // node-addressed operation on a non-member

// ListError is returned by Guard operations.
type ListError struct {
	List interface{} // *List[T] the operation was applied to
	Op   string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("pinlist %p: %s: %s", e.List, e.Op, e.Err)
}

func (e *ListError) Cause() error  { return e.Err }
func (e *ListError) Unwrap() error { return e.Err }

// List is a thread-safe intrusive doubly-linked list of Node[T] elements.
//
// Use New to create a List. A List is empty on creation; nodes are linked
// into and unlinked from it through a Guard - see List.Lock.
//
// A List does not own storage of its nodes. On Close a List force-unlinks
// all nodes that are still left linked, so that no node keeps references
// into the list afterwards.
//
// It is safe to use List from multiple goroutines simultaneously.
type List[T any] struct {
	// scoped mutex guarding .root and .len + link state of all member nodes.
	// semaphore with capacity 1, so that lock-wait can also be bounded by
	// a context (see LockCtx).
	mu *semaphore.Weighted

	root ilist.Head[*Node[T]] // sentinel; .root.next is front, .root.prev is back
	len  int                  // number of linked nodes
}

// New creates a new empty List.
func New[T any]() *List[T] {
	l := &List[T]{mu: semaphore.NewWeighted(1)}
	l.root.Init(nil)
	return l
}

// Lock locks the list and returns a Guard through which link state can be
// observed and changed.
//
// Lock blocks until exclusive access to the list is obtained. The caller
// must eventually call Guard.Unlock. Calling Lock again from under an
// active guard of the same list deadlocks.
func (l *List[T]) Lock() *Guard[T] {
	// Acquire with background context cannot fail.
	err := l.mu.Acquire(context.Background(), 1)
	if err != nil {
		panic(err) // must not happen
	}
	return &Guard[T]{list: l}
}

// LockCtx is Lock with the wait bounded by ctx.
//
// If ctx is done before the lock is obtained, LockCtx returns ctx error and
// the list is left untouched.
func (l *List[T]) LockCtx(ctx context.Context) (_ *Guard[T], err error) {
	defer xerr.Contextf(&err, "pinlist %p: lock", l)

	err = l.mu.Acquire(ctx, 1)
	if err != nil {
		return nil, err
	}
	return &Guard[T]{list: l}, nil
}

// With runs f under the list lock.
//
// The lock is released on every exit path from f, including panic.
func (l *List[T]) With(f func(g *Guard[T])) {
	g := l.Lock()
	defer g.Unlock()
	f(g)
}

// Close force-unlinks all nodes that are still linked into the list.
//
// Leftover nodes usually indicate a missing Node.Close on the caller side,
// so Close complains about them. After Close all previously-linked nodes
// are unlinked and reusable; the list itself is empty and remains usable.
func (l *List[T]) Close() error {
	g := l.Lock()
	defer g.Unlock()

	if n := g.Len(); n != 0 {
		glog.Warningf("pinlist %p: close: %d node(s) left linked; force-unlinking", l, n)
	}

	for {
		_, ok := g.PopFront()
		if !ok {
			break
		}
	}
	return nil
}
