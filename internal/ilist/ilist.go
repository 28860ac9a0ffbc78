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

// Package ilist provides unsynchronized intrusive doubly-linked lists.
//
// Go standard library has container/list package which already provides
// double-linked lists. However in that implementation list elements are kept
// separate from data structures they represent. This package provides
// alternative approach where an element embeds necessary list head which is
// sometimes more convenient, for example when one wants to unlink an element
// in O(1) starting from pointer to just its data.
//
// A list is organized as a ring of Heads: every element embeds one Head, and
// the list itself is anchored at a dedicated sentinel Head whose owner is the
// zero value of the owner type. Walking .next from the sentinel visits every
// linked element and comes back to the sentinel.
//
// All operations are O(1) and perform no locking and no allocation - any
// synchronization has to be provided by the user on top of this package.
package ilist

// Head is a list head entry for an element in an intrusive doubly-linked list.
//
// Head is parameterized by the type of the element it is embedded into, so
// that traversal can go from a Head back to its element without unsafe.
//
// Zero Head value is NOT valid - always call Init() to initialize a head
// before using it.
type Head[T any] struct {
	next, prev *Head[T]
	owner      T // element this head is embedded into; zero value for a sentinel
}

func (h *Head[T]) Next() *Head[T] { return h.next }
func (h *Head[T]) Prev() *Head[T] { return h.prev }

// Owner returns the element h is embedded into.
//
// For a sentinel head Owner returns the zero value of T, which conveniently
// terminates `for h := sentinel.Next(); ...; h = h.Next()` style traversals
// when T is a pointer type.
func (h *Head[T]) Owner() T { return h.owner }

// Init initializes a head making it point to itself via .next and .prev .
func (h *Head[T]) Init(owner T) {
	h.next = h
	h.prev = h
	h.owner = owner
}

// Delete deletes h from its list.
//
// After Delete h stays initialized and points to itself again.
func (h *Head[T]) Delete() {
	h.next.prev = h.prev
	h.prev.next = h.next
	h.next = h
	h.prev = h
}

// InsertBefore inserts a to be before b.
//
// a must not be currently on any list.
func (a *Head[T]) InsertBefore(b *Head[T]) {
	a.next = b
	a.prev = b.prev
	b.prev = a
	a.prev.next = a
}

// InsertAfter inserts a to be after b.
//
// a must not be currently on any list.
func (a *Head[T]) InsertAfter(b *Head[T]) {
	a.prev = b
	a.next = b.next
	b.next = a
	a.next.prev = a
}
