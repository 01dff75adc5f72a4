// Package roster keeps a variable-length, index-keyed list of entries whose
// size is driven by a count control. Rendering is a projection of the list;
// nothing is ever recovered from rendered output.
package roster

// Roster holds entries 0..Len()-1. Shrinking drops the tail for good, so an
// entry removed and later re-added starts again from the default.
type Roster[T any] struct {
	entries []T
	newItem func(index int) T
}

// New builds a roster of count entries created by newItem.
func New[T any](count int, newItem func(index int) T) *Roster[T] {
	if newItem == nil {
		newItem = func(int) T {
			var zero T
			return zero
		}
	}
	r := &Roster[T]{newItem: newItem}
	r.Resize(count)
	return r
}

// Resize grows or shrinks the roster. Surviving entries keep their values and
// their index.
func (r *Roster[T]) Resize(count int) {
	if count < 0 {
		count = 0
	}
	if count <= len(r.entries) {
		var zero T
		for i := count; i < len(r.entries); i++ {
			r.entries[i] = zero
		}
		r.entries = r.entries[:count]
		return
	}
	for i := len(r.entries); i < count; i++ {
		r.entries = append(r.entries, r.newItem(i))
	}
}

// Len returns the number of entries.
func (r *Roster[T]) Len() int { return len(r.entries) }

// At returns the entry at index.
func (r *Roster[T]) At(index int) (T, bool) {
	if index < 0 || index >= len(r.entries) {
		var zero T
		return zero, false
	}
	return r.entries[index], true
}

// Set replaces the entry at index. It reports false when index is out of
// range.
func (r *Roster[T]) Set(index int, value T) bool {
	if index < 0 || index >= len(r.entries) {
		return false
	}
	r.entries[index] = value
	return true
}

// Update applies fn to the entry at index in place.
func (r *Roster[T]) Update(index int, fn func(*T)) bool {
	if index < 0 || index >= len(r.entries) || fn == nil {
		return false
	}
	fn(&r.entries[index])
	return true
}

// Each visits entries in index order.
func (r *Roster[T]) Each(fn func(index int, value T)) {
	for i, entry := range r.entries {
		fn(i, entry)
	}
}

// Entries returns a copy of the entries.
func (r *Roster[T]) Entries() []T {
	return append([]T(nil), r.entries...)
}
