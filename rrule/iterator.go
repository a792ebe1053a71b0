package rrule

import (
	"iter"
	"time"

	"github.com/samber/mo"
)

// Iterator is a has-next/take-next view over a fresh Cursor. It is consumed
// once; call Rule.Iterator again to start over.
type Iterator struct {
	cursor  *Cursor
	pending mo.Option[time.Time]
}

// Iterator returns an iterator positioned before the first occurrence.
func (r *Rule) Iterator() *Iterator {
	return &Iterator{cursor: r.Cursor()}
}

// HasNext reports whether another occurrence is available.
func (it *Iterator) HasNext() bool {
	if it.pending.IsPresent() {
		return true
	}
	t, ok := it.cursor.Next()
	if !ok {
		return false
	}
	it.pending = mo.Some(t)
	return true
}

// Next takes the next occurrence. It panics when HasNext would report false.
func (it *Iterator) Next() time.Time {
	if !it.HasNext() {
		panic("rrule: Next called on an exhausted iterator")
	}
	t := it.pending.MustGet()
	it.pending = mo.None[time.Time]()
	return t
}

// All yields every occurrence in order. Every range over the result walks
// its own cursor, so the sequence can be iterated repeatedly.
func (r *Rule) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		drain(r.Cursor(), yield)
	}
}

// From yields every occurrence at or after from.
func (r *Rule) From(from time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		drain(r.CursorAt(from), yield)
	}
}

func drain(c *Cursor, yield func(time.Time) bool) {
	for {
		t, ok := c.Next()
		if !ok || !yield(t) {
			return
		}
	}
}

// Take returns up to n leading occurrences.
func (r *Rule) Take(n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, min(n, 64))
	for t := range r.All() {
		out = append(out, t)
		if len(out) == n {
			break
		}
	}
	return out
}

// Between returns the occurrences t with from <= t <= to.
func (r *Rule) Between(from, to time.Time) []time.Time {
	var out []time.Time
	for t := range r.From(from) {
		if t.After(to) {
			break
		}
		out = append(out, t)
	}
	return out
}
