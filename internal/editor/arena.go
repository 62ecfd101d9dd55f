package editor

import "github.com/google/uuid"

// arena holds the entries of one repeatable section keyed by a stable id.
// Position lives in order; identity lives in the key, so removing or
// inserting an entry never changes another entry's id.
type arena[T any] struct {
	order []string
	items map[string]T
	id    func(*T) *string
}

func newArena[T any](id func(*T) *string) *arena[T] {
	return &arena[T]{
		items: make(map[string]T),
		id:    id,
	}
}

func newID() string {
	return uuid.NewString()
}

// add appends v under a freshly generated id.
func (a *arena[T]) add(v T) string {
	id := newID()
	*a.id(&v) = id
	a.items[id] = v
	a.order = append(a.order, id)
	return id
}

// adopt appends v keeping its id when it is set and not already taken.
func (a *arena[T]) adopt(v T) string {
	id := *a.id(&v)
	if _, taken := a.items[id]; id == "" || taken {
		return a.add(v)
	}
	a.items[id] = v
	a.order = append(a.order, id)
	return id
}

func (a *arena[T]) get(id string) (T, bool) {
	v, ok := a.items[id]
	return v, ok
}

// update replaces the entry in place. The stored id always wins over v's.
func (a *arena[T]) update(id string, v T) bool {
	if _, ok := a.items[id]; !ok {
		return false
	}
	*a.id(&v) = id
	a.items[id] = v
	return true
}

func (a *arena[T]) remove(id string) bool {
	if _, ok := a.items[id]; !ok {
		return false
	}
	delete(a.items, id)
	for i, key := range a.order {
		if key == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

// duplicate copies the entry under a new id directly after the original.
func (a *arena[T]) duplicate(id string, clone func(T) T) (string, bool) {
	v, ok := a.items[id]
	if !ok {
		return "", false
	}
	if clone != nil {
		v = clone(v)
	}
	newKey := newID()
	*a.id(&v) = newKey
	a.items[newKey] = v

	for i, key := range a.order {
		if key == id {
			a.order = append(a.order[:i+1], append([]string{newKey}, a.order[i+1:]...)...)
			break
		}
	}
	return newKey, true
}

// move places the entry at index, clamped to the section bounds.
func (a *arena[T]) move(id string, index int) bool {
	from := -1
	for i, key := range a.order {
		if key == id {
			from = i
			break
		}
	}
	if from < 0 {
		return false
	}
	rest := append(a.order[:from:from], a.order[from+1:]...)
	if index < 0 {
		index = 0
	}
	if index > len(rest) {
		index = len(rest)
	}
	a.order = append(rest[:index:index], append([]string{id}, rest[index:]...)...)
	return true
}

func (a *arena[T]) ids() []string {
	return append([]string(nil), a.order...)
}

func (a *arena[T]) len() int {
	return len(a.order)
}

// list returns the entries in display order. The result is never nil.
func (a *arena[T]) list() []T {
	out := make([]T, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.items[id])
	}
	return out
}
