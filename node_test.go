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
	"errors"
	"testing"
)

var errTestFailure = errors.New("simulated failure")

func TestNodeClose(t *testing.T) {
	l := New[string]()
	defer l.Close()

	// close of never-linked node is a no-op
	free := NewNode("free")
	if err := free.Close(); err != nil {
		t.Fatal(err)
	}

	a := NewNode("a")
	b := NewNode("b")
	l.With(func(g *Guard[string]) {
		g.PushBack(a)
		g.PushBack(b)
	})

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	checkList(t, l, []string{"b"})

	// idempotent
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	checkList(t, l, []string{"b"})

	// closed node is free to be linked again
	l.With(func(g *Guard[string]) {
		if err := g.PushFront(a); err != nil {
			t.Fatal(err)
		}
	})
	checkList(t, l, []string{"a", "b"})
}

// the deferred-Close contract: a node living in transient scope detaches
// itself on scope exit, whatever the exit path is.
func TestNodeScopedTeardown(t *testing.T) {
	l := New[int]()
	defer l.Close()

	keep := NewNode(1)
	l.With(func(g *Guard[int]) {
		g.PushBack(keep)
	})

	attachEphemeral := func(v int, fail bool) (err error) {
		n := NewNode(v)
		defer n.Close()

		l.With(func(g *Guard[int]) {
			err = g.PushBack(n)
		})
		if err != nil {
			return err
		}

		checkList(t, l, []int{1, v})

		if fail {
			return errTestFailure
		}
		return nil
	}

	// normal exit
	if err := attachEphemeral(2, false); err != nil {
		t.Fatal(err)
	}
	checkList(t, l, []int{1})

	// early error exit
	if err := attachEphemeral(3, true); err != errTestFailure {
		t.Fatalf("got %v  ; want %v", err, errTestFailure)
	}
	checkList(t, l, []int{1})

	// panic exit
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("no panic")
			}
		}()
		n := NewNode(4)
		defer n.Close()
		l.With(func(g *Guard[int]) {
			if err := g.PushBack(n); err != nil {
				t.Fatal(err)
			}
		})
		panic("storage scope aborts")
	}()
	checkList(t, l, []int{1})
}
