package cosmos

import (
	"fmt"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/pkg/ensure"
)

// storeOf is the single dispatch point from a component type to its storage.
func storeOf[T any](c *Cosmos) *Store[T] {
	var s any
	switch any((*T)(nil)).(type) {
	case *components.Transform:
		s = &c.transforms
	case *components.RigidBody:
		s = &c.bodies
	case *components.Fixtures:
		s = &c.fixtures
	case *components.MotorJoint:
		s = &c.joints
	case *components.SpecialPhysics:
		s = &c.specialPhysics
	case *components.Item:
		s = &c.items
	case *components.Container:
		s = &c.containers
	case *components.Sentience:
		s = &c.sentience
	case *components.Movement:
		s = &c.movement
	case *components.Flavour:
		s = &c.flavours
	case *components.Remnant:
		s = &c.remnants
	}

	store, ok := s.(*Store[T])
	if !ok {
		panic(fmt.Sprintf("cosmos: %T is not a component", *new(T)))
	}
	return store
}

// Find returns the component of id or nil if the entity is dead or lacks it.
//
// Fields that feed inferred caches (Item.CurrentSlot, Fixtures.OwnerBody)
// must be changed through SetCurrentSlot and SetFixturesOwner.
func Find[T any](c *Cosmos, id models.EntityID) *T {
	if !c.Alive(id) {
		return nil
	}
	return storeOf[T](c).find(id)
}

// Get is Find for components the caller knows are present. It panics otherwise.
func Get[T any](c *Cosmos, id models.EntityID) *T {
	p := Find[T](c, id)
	if p == nil {
		panic(fmt.Sprintf("cosmos: %s has no %T", id, *new(T)))
	}
	return p
}

func Has[T any](c *Cosmos, id models.EntityID) bool {
	return Find[T](c, id) != nil
}

// Add attaches value to id, replacing a component of the same type.
// Inferred caches are updated before Add returns.
func Add[T any](c *Cosmos, id models.EntityID, value T) *T {
	ensure.That(c.Alive(id), "adding component to dead entity")

	store := storeOf[T](c)
	if old := store.find(id); old != nil {
		c.onDetached(id, old)
	}

	p := store.set(id, value)
	c.onAttached(id, p)

	return p
}

// Remove detaches the component of type T from id.
func Remove[T any](c *Cosmos, id models.EntityID) bool {
	if !c.Alive(id) {
		return false
	}

	store := storeOf[T](c)
	old := store.find(id)
	if old == nil {
		return false
	}

	c.onDetached(id, old)
	return store.remove(id)
}

// Each visits every entity carrying T in slot index order.
// fn may add or remove components, including T itself.
func Each[T any](c *Cosmos, fn func(id models.EntityID, value *T)) {
	store := storeOf[T](c)
	for _, id := range store.sortedIDs() {
		if p := store.find(id); p != nil {
			fn(id, p)
		}
	}
}

// Count returns how many entities carry T.
func Count[T any](c *Cosmos) int {
	return storeOf[T](c).len()
}

func (c *Cosmos) onAttached(id models.EntityID, component any) {
	switch v := component.(type) {
	case *components.Item:
		if v.CurrentSlot.IsSet() {
			slot := v.CurrentSlot
			v.CurrentSlot = models.SlotID{}
			c.SetCurrentSlot(id, slot)
		}
	case *components.Fixtures:
		if !v.OwnerBody.IsSet() {
			v.OwnerBody = id
		}
		c.inferred.colliders[v.OwnerBody] = insertSorted(c.inferred.colliders[v.OwnerBody], id)
	}
}

func (c *Cosmos) onDetached(id models.EntityID, component any) {
	switch v := component.(type) {
	case *components.Item:
		c.detachItem(id, v)
		c.solvable.eraseMount(id)
	case *components.Fixtures:
		c.detachFixtures(id, v)
	case *components.Container:
		for fn := range v.Slots {
			slot := models.SlotID{Container: id, Function: models.SlotFunction(fn)}
			for _, item := range c.ItemsInside(slot) {
				c.SetCurrentSlot(item, models.SlotID{})
			}
		}
	}
}

func (c *Cosmos) detachItem(id models.EntityID, item *components.Item) {
	if !item.CurrentSlot.IsSet() {
		return
	}
	c.unlinkFromSlot(id, item.CurrentSlot)
	item.CurrentSlot = models.SlotID{}
}

func (c *Cosmos) detachFixtures(id models.EntityID, fixtures *components.Fixtures) {
	owner := fixtures.OwnerBody
	list := removeSorted(c.inferred.colliders[owner], id)
	if len(list) == 0 {
		delete(c.inferred.colliders, owner)
	} else {
		c.inferred.colliders[owner] = list
	}
}
