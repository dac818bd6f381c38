package cosmos

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/observability/log"
)

func logID(id models.EntityID) log.Field {
	return log.String("entity", id.String())
}

// SlotDef returns the definition of slot if its container is alive and has it enabled.
func (c *Cosmos) SlotDef(slot models.SlotID) (*components.Slot, bool) {
	if !slot.IsSet() {
		return nil, false
	}
	container := Find[components.Container](c, slot.Container)
	if container == nil {
		return nil, false
	}
	return container.Slot(slot.Function)
}

// CurrentSlot returns the slot holding id; the zero slot for world entities.
func (c *Cosmos) CurrentSlot(id models.EntityID) models.SlotID {
	if item := Find[components.Item](c, id); item != nil {
		return item.CurrentSlot
	}
	return models.SlotID{}
}

// SpaceUsed sums the space taken by every item in slot.
func (c *Cosmos) SpaceUsed(slot models.SlotID) int {
	var used int
	for _, id := range c.inferred.slots[slot] {
		used += c.items.find(id).SpaceOccupied()
	}
	return used
}

// OwningCapability walks up the container chain of id and returns its root,
// usually the character carrying it. Entities outside any slot own themselves.
func (c *Cosmos) OwningCapability(id models.EntityID) models.EntityID {
	current := id
	for {
		slot := c.CurrentSlot(current)
		if !slot.IsSet() || !c.Alive(slot.Container) {
			return current
		}
		current = slot.Container
	}
}

// IsInsideOf reports whether id sits in a slot of ancestor, directly or through other items.
func (c *Cosmos) IsInsideOf(id, ancestor models.EntityID) bool {
	current := id
	for {
		slot := c.CurrentSlot(current)
		if !slot.IsSet() {
			return false
		}
		if slot.Container == ancestor {
			return true
		}
		current = slot.Container
	}
}

// SlotPhysicallyConnected reports whether items in slot follow a body, i.e. no
// slot on the way up to the root is a plain deposit.
func (c *Cosmos) SlotPhysicallyConnected(slot models.SlotID) bool {
	for slot.IsSet() {
		def, ok := c.SlotDef(slot)
		if !ok || !def.PhysicallyConnected() {
			return false
		}
		slot = c.CurrentSlot(slot.Container)
	}
	return true
}

// FirstAncestorWithBodyConnection returns the entity whose body carries items
// placed into slot: the container itself unless it is attached as a fixture.
func (c *Cosmos) FirstAncestorWithBodyConnection(slot models.SlotID) models.EntityID {
	current := slot.Container
	for {
		parentSlot := c.CurrentSlot(current)
		def, ok := c.SlotDef(parentSlot)
		if !ok || def.Behaviour != components.ConnectAsFixture {
			return current
		}
		current = parentSlot.Container
	}
}

// AttachmentOffset composes slot offsets from root down to id.
func (c *Cosmos) AttachmentOffset(id, root models.EntityID) models.Transform {
	var offsets []models.Transform

	current := id
	for current != root {
		slot := c.CurrentSlot(current)
		def, ok := c.SlotDef(slot)
		if !ok {
			break
		}
		offsets = append(offsets, def.AttachmentOffset)
		current = slot.Container
	}

	var total models.Transform
	for i := len(offsets) - 1; i >= 0; i-- {
		total = total.Compose(offsets[i])
	}
	return total
}

// ForEachContainedItemRecursive visits every item inside container, slot by
// slot, descending into items that are containers themselves.
func (c *Cosmos) ForEachContainedItemRecursive(container models.EntityID, fn func(item models.EntityID)) {
	if !Has[components.Container](c, container) {
		return
	}
	for function := models.SlotNone + 1; function < models.SlotCount; function++ {
		for _, item := range c.ItemsInside(models.SlotID{Container: container, Function: function}) {
			fn(item)
			c.ForEachContainedItemRecursive(item, fn)
		}
	}
}

// Descendants lists hierarchy children and contained items of id, recursively,
// parents before their descendants.
func (c *Cosmos) Descendants(id models.EntityID) []models.EntityID {
	var out []models.EntityID
	seen := map[models.EntityID]struct{}{id: {}}

	var walk func(models.EntityID)
	visit := func(e models.EntityID) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
		walk(e)
	}
	walk = func(e models.EntityID) {
		for _, child := range c.inferred.children[e] {
			visit(child)
		}
		if Has[components.Container](c, e) {
			for fn := models.SlotNone + 1; fn < models.SlotCount; fn++ {
				for _, item := range c.inferred.slots[models.SlotID{Container: e, Function: fn}] {
					visit(item)
				}
			}
		}
	}
	walk(id)

	return out
}
