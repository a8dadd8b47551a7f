package signalstore

import "slices"

// EntityState is a normalised collection keyed by ID.
type EntityState[E any] struct {
	EntityMap map[string]E `json:"entityMap"`
	IDs       []string     `json:"ids"`
}

// NewEntityState returns an empty collection.
func NewEntityState[E any]() EntityState[E] {
	return EntityState[E]{EntityMap: map[string]E{}, IDs: []string{}}
}

// With returns a copy containing entity under id, appended when new.
func (s EntityState[E]) With(id string, entity E) EntityState[E] {
	out := s.clone()
	if _, exists := out.EntityMap[id]; !exists {
		out.IDs = append(out.IDs, id)
	}
	out.EntityMap[id] = entity
	return out
}

// Without returns a copy with id removed.
func (s EntityState[E]) Without(id string) EntityState[E] {
	out := s.clone()
	if _, exists := out.EntityMap[id]; !exists {
		return out
	}
	delete(out.EntityMap, id)
	out.IDs = slices.DeleteFunc(out.IDs, func(existing string) bool { return existing == id })
	return out
}

// Entities returns the entities in ID order.
func (s EntityState[E]) Entities() []E {
	out := make([]E, 0, len(s.IDs))
	for _, id := range s.IDs {
		out = append(out, s.EntityMap[id])
	}
	return out
}

func (s EntityState[E]) clone() EntityState[E] {
	out := EntityState[E]{
		EntityMap: make(map[string]E, len(s.EntityMap)),
		IDs:       append([]string{}, s.IDs...),
	}
	for id, entity := range s.EntityMap {
		out.EntityMap[id] = entity
	}
	return out
}
