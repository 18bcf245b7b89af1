// Package registry keeps track of live popups and the scope that owns each
// one: the global scope or the scope of a single view.
package registry

import (
	"container/list"
	"errors"
	"fmt"
	"strconv"
)

// Registry errors.
var (
	ErrNotFound       = errors.New("no such window")
	ErrNotPopupWindow = errors.New("not a popup window")
	ErrDuplicateID    = errors.New("window id already registered")
)

// FirstID is the lowest window id handed out.
const FirstID = 1000

// Scope identifies the collection a popup belongs to.
type Scope struct {
	view  int
	local bool
}

// Global is the process-wide scope.
var Global = Scope{}

// View returns the scope local to view n.
func View(n int) Scope {
	return Scope{view: n, local: true}
}

// IsGlobal reports whether s is the global scope.
func (s Scope) IsGlobal() bool { return !s.local }

// ViewID returns the view number of a view scope.
func (s Scope) ViewID() int { return s.view }

func (s Scope) String() string {
	if !s.local {
		return "global"
	}
	return "view:" + strconv.Itoa(s.view)
}

type entry[T any] struct {
	id    int
	scope Scope
	value T
}

// Registry maps window ids to popups. Ids come from one counter shared with
// ordinary windows, so a popup id is never reused. Within a scope, popups
// are kept newest first.
type Registry[T any] struct {
	nextID  int
	windows map[int]struct{}
	index   map[int]*list.Element
	lists   map[Scope]*list.List
	views   []Scope // view scopes in the order they were first used
}

// New returns an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		nextID:  FirstID,
		windows: make(map[int]struct{}),
		index:   make(map[int]*list.Element),
		lists:   map[Scope]*list.List{Global: list.New()},
	}
}

// NextID allocates a fresh window id.
func (r *Registry[T]) NextID() int {
	id := r.nextID
	r.nextID++
	return id
}

// ReserveWindow allocates an id for an ordinary, non-popup window.
func (r *Registry[T]) ReserveWindow() int {
	id := r.NextID()
	r.windows[id] = struct{}{}
	return id
}

// ReleaseWindow forgets an ordinary window id.
func (r *Registry[T]) ReleaseWindow(id int) {
	delete(r.windows, id)
}

// Insert adds v under id to scope s.
func (r *Registry[T]) Insert(s Scope, id int, v T) error {
	if _, ok := r.index[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	if _, ok := r.windows[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	l, ok := r.lists[s]
	if !ok {
		l = list.New()
		r.lists[s] = l
		r.views = append(r.views, s)
	}
	r.index[id] = l.PushFront(&entry[T]{id: id, scope: s, value: v})
	return nil
}

// InsertGlobal adds v to the global scope.
func (r *Registry[T]) InsertGlobal(id int, v T) error {
	return r.Insert(Global, id, v)
}

// InsertScoped adds v to the scope of view.
func (r *Registry[T]) InsertScoped(view, id int, v T) error {
	return r.Insert(View(view), id, v)
}

// RemoveByID removes id from whichever scope holds it.
func (r *Registry[T]) RemoveByID(id int) (T, bool) {
	if v, ok := r.RemoveScoped(Global, id); ok {
		return v, true
	}
	for _, s := range r.views {
		if v, ok := r.RemoveScoped(s, id); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// RemoveScoped removes id only when scope s holds it.
func (r *Registry[T]) RemoveScoped(s Scope, id int) (T, bool) {
	var zero T
	elem, ok := r.index[id]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if e.scope != s {
		return zero, false
	}
	r.lists[s].Remove(elem)
	delete(r.index, id)
	return e.value, true
}

// ClearAll removes every popup, draining the global scope before the view
// scopes, and returns them in removal order.
func (r *Registry[T]) ClearAll() []T {
	out := r.Drain(Global)
	for _, s := range r.views {
		out = append(out, r.Drain(s)...)
	}
	return out
}

// Drain removes every popup in scope s, newest first.
func (r *Registry[T]) Drain(s Scope) []T {
	l, ok := r.lists[s]
	if !ok {
		return nil
	}
	out := make([]T, 0, l.Len())
	for elem := l.Front(); elem != nil; elem = l.Front() {
		e := l.Remove(elem).(*entry[T])
		delete(r.index, e.id)
		out = append(out, e.value)
	}
	return out
}

// DropView drains the scope of view and forgets the scope itself, as when
// the view is closed.
func (r *Registry[T]) DropView(view int) []T {
	s := View(view)
	out := r.Drain(s)
	delete(r.lists, s)
	for i, v := range r.views {
		if v == s {
			r.views = append(r.views[:i], r.views[i+1:]...)
			break
		}
	}
	return out
}

// Find returns the popup registered under id. An id that belongs to an
// ordinary window gives ErrNotPopupWindow rather than ErrNotFound.
func (r *Registry[T]) Find(id int) (T, error) {
	var zero T
	if elem, ok := r.index[id]; ok {
		return elem.Value.(*entry[T]).value, nil
	}
	if _, ok := r.windows[id]; ok {
		return zero, fmt.Errorf("window %d: %w", id, ErrNotPopupWindow)
	}
	return zero, fmt.Errorf("window %d: %w", id, ErrNotFound)
}

// ScopeOf returns the scope holding id.
func (r *Registry[T]) ScopeOf(id int) (Scope, bool) {
	elem, ok := r.index[id]
	if !ok {
		return Scope{}, false
	}
	return elem.Value.(*entry[T]).scope, true
}

// Front returns the newest popup in scope s.
func (r *Registry[T]) Front(s Scope) (int, T, bool) {
	var zero T
	l, ok := r.lists[s]
	if !ok || l.Len() == 0 {
		return 0, zero, false
	}
	e := l.Front().Value.(*entry[T])
	return e.id, e.value, true
}

// Each calls fn for every popup in scope s, newest first, until fn returns
// false. fn must not modify the registry.
func (r *Registry[T]) Each(s Scope, fn func(id int, v T) bool) {
	l, ok := r.lists[s]
	if !ok {
		return
	}
	for elem := l.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry[T])
		if !fn(e.id, e.value) {
			return
		}
	}
}

// IDs returns the ids in scope s, newest first.
func (r *Registry[T]) IDs(s Scope) []int {
	var ids []int
	r.Each(s, func(id int, _ T) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Scopes returns the global scope followed by every view scope in first-use
// order.
func (r *Registry[T]) Scopes() []Scope {
	return append([]Scope{Global}, r.views...)
}

// Len returns the number of registered popups.
func (r *Registry[T]) Len() int {
	return len(r.index)
}

// ScopeLen returns the number of popups in scope s.
func (r *Registry[T]) ScopeLen(s Scope) int {
	if l, ok := r.lists[s]; ok {
		return l.Len()
	}
	return 0
}
