package hierarchy

import (
	"fmt"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// FoldFunc computes the value of a category from the values of its direct
// children, in child order.
type FoldFunc[V any] func(c models.Category, children []V) (V, error)

// Folder evaluates a FoldFunc depth-first, memoizing every node it visits.
// A Folder is meant to live for a single read; it does not observe later
// changes to the store.
type Folder[V any] struct {
	tree  *Tree
	fn    FoldFunc[V]
	memo  map[string]V
	state map[string]visit
}

type visit uint8

const (
	unvisited visit = iota
	visiting
	done
)

// NewFolder returns a Folder over t.
func NewFolder[V any](t *Tree, fn FoldFunc[V]) *Folder[V] {
	return &Folder[V]{
		tree:  t,
		fn:    fn,
		memo:  make(map[string]V, t.Len()),
		state: make(map[string]visit, t.Len()),
	}
}

// Value returns the folded value of id. Unknown ids yield the zero value.
func (f *Folder[V]) Value(id string) (V, error) {
	var zero V
	c, ok := f.tree.Get(id)
	if !ok {
		return zero, nil
	}

	switch f.state[id] {
	case done:
		return f.memo[id], nil
	case visiting:
		return zero, fmt.Errorf("%w: revisited category %s", ErrCycle, id)
	}

	f.state[id] = visiting
	kids := f.tree.Children(id)
	values := make([]V, 0, len(kids))
	for _, child := range kids {
		v, err := f.Value(child)
		if err != nil {
			return zero, err
		}
		values = append(values, v)
	}

	v, err := f.fn(c, values)
	if err != nil {
		return zero, err
	}
	f.memo[id] = v
	f.state[id] = done
	return v, nil
}

// All folds every category and returns the values keyed by id.
func (f *Folder[V]) All() (map[string]V, error) {
	for _, id := range f.tree.IDs() {
		if _, err := f.Value(id); err != nil {
			return nil, err
		}
	}
	return f.memo, nil
}
