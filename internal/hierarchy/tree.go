// Package hierarchy holds an in-memory, id-indexed view of the category
// forest and evaluates values bottom-up over it.
package hierarchy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// ErrCycle is returned when following parent links never reaches a root.
var ErrCycle = errors.New("hierarchy: cycle detected")

// Tree is an arena of categories with explicit child index lists.
// A category whose parent id is unknown is treated as a root.
type Tree struct {
	nodes    map[string]models.Category
	children map[string][]string
	roots    []string
	order    []string
}

// New indexes categories. Children and roots are ordered by kind, then
// case-insensitive name, then id.
func New(categories []models.Category) *Tree {
	t := &Tree{
		nodes:    make(map[string]models.Category, len(categories)),
		children: make(map[string][]string),
	}
	for _, c := range categories {
		t.nodes[c.ID] = c
	}

	sorted := make([]models.Category, 0, len(categories))
	for _, c := range t.nodes {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	for _, c := range sorted {
		t.order = append(t.order, c.ID)
		if c.ParentID != nil {
			if _, ok := t.nodes[*c.ParentID]; ok {
				t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
				continue
			}
		}
		t.roots = append(t.roots, c.ID)
	}
	return t
}

func less(a, b models.Category) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

// Len returns the number of categories in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns the category with the given id.
func (t *Tree) Get(id string) (models.Category, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// Children returns the direct children of id.
func (t *Tree) Children(id string) []string { return t.children[id] }

// Roots returns the ids of categories without a known parent.
func (t *Tree) Roots() []string { return t.roots }

// IDs returns every id ordered by kind, then name.
func (t *Tree) IDs() []string { return t.order }

// Ancestors returns the parent chain of id, nearest first.
func (t *Tree) Ancestors(id string) ([]string, error) {
	var chain []string
	current, ok := t.nodes[id]
	if !ok {
		return nil, nil
	}
	for steps := 0; current.ParentID != nil; steps++ {
		if steps >= len(t.nodes) {
			return nil, fmt.Errorf("%w: above category %s", ErrCycle, id)
		}
		parent, ok := t.nodes[*current.ParentID]
		if !ok {
			break
		}
		chain = append(chain, parent.ID)
		current = parent
	}
	return chain, nil
}

// Depth returns the number of ancestors of id.
func (t *Tree) Depth(id string) (int, error) {
	chain, err := t.Ancestors(id)
	return len(chain), err
}

// Validate checks that every parent chain terminates.
func (t *Tree) Validate() error {
	for _, id := range t.order {
		if _, err := t.Ancestors(id); err != nil {
			return err
		}
	}
	return nil
}

