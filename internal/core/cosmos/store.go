package cosmos

import (
	"slices"

	"github.com/zeusync/cosmos/internal/core/models"
)

// Store is a sparse set of one component type keyed by entity slot index.
// Components are heap allocated so pointers handed out stay valid until the
// component is removed.
type Store[T any] struct {
	sparse []int32 // slot index -> dense position + 1
	dense  []*T
	owners []models.EntityID
}

func (s *Store[T]) find(id models.EntityID) *T {
	if int(id.Index) >= len(s.sparse) {
		return nil
	}
	pos := s.sparse[id.Index] - 1
	if pos < 0 || s.owners[pos] != id {
		return nil
	}
	return s.dense[pos]
}

func (s *Store[T]) set(id models.EntityID, value T) *T {
	if p := s.find(id); p != nil {
		*p = value
		return p
	}

	for int(id.Index) >= len(s.sparse) {
		s.sparse = append(s.sparse, 0)
	}

	p := new(T)
	*p = value
	s.dense = append(s.dense, p)
	s.owners = append(s.owners, id)
	s.sparse[id.Index] = int32(len(s.dense))

	return p
}

func (s *Store[T]) remove(id models.EntityID) bool {
	if s.find(id) == nil {
		return false
	}

	pos := s.sparse[id.Index] - 1
	last := int32(len(s.dense) - 1)

	if pos != last {
		s.dense[pos] = s.dense[last]
		s.owners[pos] = s.owners[last]
		s.sparse[s.owners[pos].Index] = pos + 1
	}

	s.dense[last] = nil
	s.dense = s.dense[:last]
	s.owners = s.owners[:last]
	s.sparse[id.Index] = 0

	return true
}

func (s *Store[T]) has(id models.EntityID) bool {
	return s.find(id) != nil
}

func (s *Store[T]) len() int {
	return len(s.dense)
}

// sortedIDs returns the owners ordered by slot index.
// Dense order depends on removal history, so iteration always goes through here.
func (s *Store[T]) sortedIDs() []models.EntityID {
	ids := slices.Clone(s.owners)
	slices.SortFunc(ids, compareIDs)
	return ids
}

func (s *Store[T]) copyEntity(src, dst models.EntityID) {
	if p := s.find(src); p != nil {
		s.set(dst, *p)
	}
}

func (s *Store[T]) clone() Store[T] {
	out := Store[T]{
		sparse: slices.Clone(s.sparse),
		dense:  make([]*T, len(s.dense)),
		owners: slices.Clone(s.owners),
	}
	for i, p := range s.dense {
		v := *p
		out.dense[i] = &v
	}
	return out
}

func (s *Store[T]) clear() {
	*s = Store[T]{}
}

// anyStore erases T for whole-entity operations.
type anyStore interface {
	has(id models.EntityID) bool
	remove(id models.EntityID) bool
	copyEntity(src, dst models.EntityID)
	len() int
}

func compareIDs(a, b models.EntityID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// insertSorted adds id to a sorted list unless it is already there.
func insertSorted(list []models.EntityID, id models.EntityID) []models.EntityID {
	i, found := slices.BinarySearchFunc(list, id, compareIDs)
	if found {
		return list
	}
	return slices.Insert(list, i, id)
}

func removeSorted(list []models.EntityID, id models.EntityID) []models.EntityID {
	i, found := slices.BinarySearchFunc(list, id, compareIDs)
	if !found {
		return list
	}
	return slices.Delete(list, i, i+1)
}
