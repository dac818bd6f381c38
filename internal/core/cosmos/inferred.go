package cosmos

import (
	"slices"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/pkg/ensure"
)

// inferred holds state derived from components. Every list is kept sorted
// by slot index so reads never depend on map iteration order.
type inferred struct {
	// slot -> items whose Item.CurrentSlot names it
	slots map[models.SlotID][]models.EntityID
	// parent -> children
	children map[models.EntityID][]models.EntityID
	// body -> entities whose Fixtures.OwnerBody names it
	colliders map[models.EntityID][]models.EntityID
	guids     map[models.GUID]models.EntityID
}

func (i *inferred) reset() {
	i.slots = make(map[models.SlotID][]models.EntityID)
	i.children = make(map[models.EntityID][]models.EntityID)
	i.colliders = make(map[models.EntityID][]models.EntityID)
	i.guids = make(map[models.GUID]models.EntityID)
}

// RebuildCaches re-infers every cache from the components.
func (c *Cosmos) RebuildCaches() {
	c.inferred.reset()

	for _, id := range c.Entities() {
		c.inferred.guids[c.guids[id.Index]] = id
	}

	for _, id := range c.items.sortedIDs() {
		item := c.items.find(id)
		if item.CurrentSlot.IsSet() {
			c.inferred.slots[item.CurrentSlot] = append(c.inferred.slots[item.CurrentSlot], id)
		}
	}

	for _, id := range c.fixtures.sortedIDs() {
		owner := c.fixtures.find(id).OwnerBody
		c.inferred.colliders[owner] = append(c.inferred.colliders[owner], id)
	}

	for _, id := range c.parents.sortedIDs() {
		parent := *c.parents.find(id)
		c.inferred.children[parent] = append(c.inferred.children[parent], id)
	}
}

// SetCurrentSlot moves item into slot, keeping the item's back-reference and
// the slot's forward list in agreement. The zero slot places it in the world.
func (c *Cosmos) SetCurrentSlot(id models.EntityID, slot models.SlotID) {
	item := Find[components.Item](c, id)
	ensure.That(item != nil, "setting slot of entity without item", logID(id))
	if item == nil {
		return
	}

	if item.CurrentSlot == slot {
		return
	}

	if item.CurrentSlot.IsSet() {
		c.unlinkFromSlot(id, item.CurrentSlot)
	}

	item.CurrentSlot = slot

	if slot.IsSet() {
		ensure.That(c.Alive(slot.Container), "item placed into slot of dead container", logID(id))
		c.inferred.slots[slot] = insertSorted(c.inferred.slots[slot], id)
	}
}

func (c *Cosmos) unlinkFromSlot(id models.EntityID, slot models.SlotID) {
	list := removeSorted(c.inferred.slots[slot], id)
	if len(list) == 0 {
		delete(c.inferred.slots, slot)
	} else {
		c.inferred.slots[slot] = list
	}
}

// ItemsInside lists the items in slot ordered by slot index.
// The returned slice is a copy.
func (c *Cosmos) ItemsInside(slot models.SlotID) []models.EntityID {
	return slices.Clone(c.inferred.slots[slot])
}

// SetParent links child under parent. The zero parent detaches it.
func (c *Cosmos) SetParent(child, parent models.EntityID) {
	if old := c.parents.find(child); old != nil {
		list := removeSorted(c.inferred.children[*old], child)
		if len(list) == 0 {
			delete(c.inferred.children, *old)
		} else {
			c.inferred.children[*old] = list
		}
		c.parents.remove(child)
	}

	if !parent.IsSet() {
		return
	}

	ensure.That(c.Alive(child) && c.Alive(parent), "linking dead entities", logID(child))
	ensure.That(child != parent, "entity parented to itself", logID(child))

	c.parents.set(child, parent)
	c.inferred.children[parent] = insertSorted(c.inferred.children[parent], child)
}

// Parent returns the hierarchy parent of id, if any.
func (c *Cosmos) Parent(id models.EntityID) (models.EntityID, bool) {
	p := c.parents.find(id)
	if p == nil {
		return models.EntityID{}, false
	}
	return *p, true
}

func (c *Cosmos) Children(id models.EntityID) []models.EntityID {
	return slices.Clone(c.inferred.children[id])
}

// SetFixturesOwner retargets the fixtures of id onto owner with the given offset.
func (c *Cosmos) SetFixturesOwner(id, owner models.EntityID, offset models.Transform) {
	fixtures := Find[components.Fixtures](c, id)
	if fixtures == nil {
		return
	}

	if !owner.IsSet() {
		owner = id
	}

	if fixtures.OwnerBody != owner {
		c.detachFixtures(id, fixtures)
		fixtures.OwnerBody = owner
		c.inferred.colliders[owner] = insertSorted(c.inferred.colliders[owner], id)
	}
	fixtures.Offset = offset
}

// CollidersOf lists the entities whose fixtures are owned by body.
func (c *Cosmos) CollidersOf(body models.EntityID) []models.EntityID {
	return slices.Clone(c.inferred.colliders[body])
}
