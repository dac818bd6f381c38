// Package cosmos owns every entity of the simulated world together with the
// caches inferred from their components.
//
// A Cosmos is not safe for concurrent use. It belongs to whoever drives the
// step pipeline.
package cosmos

import (
	"fmt"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/pkg/ensure"
)

type Cosmos struct {
	versions []uint32
	alive    []bool
	kinds    []models.Kind
	guids    []models.GUID
	free     []uint32 // LIFO

	transforms     Store[components.Transform]
	bodies         Store[components.RigidBody]
	fixtures       Store[components.Fixtures]
	joints         Store[components.MotorJoint]
	specialPhysics Store[components.SpecialPhysics]
	items          Store[components.Item]
	containers     Store[components.Container]
	sentience      Store[components.Sentience]
	movement       Store[components.Movement]
	flavours       Store[components.Flavour]
	remnants       Store[components.Remnant]

	// parents is the source of truth for the hierarchy, children is inferred.
	parents Store[models.EntityID]

	inferred inferred
	common   CommonState
	solvable solvable
}

func New() *Cosmos {
	c := &Cosmos{
		common: DefaultCommonState(),
	}
	c.solvable.reset()
	c.inferred.reset()
	return c
}

func (c *Cosmos) stores() []anyStore {
	return []anyStore{
		&c.transforms,
		&c.bodies,
		&c.fixtures,
		&c.joints,
		&c.specialPhysics,
		&c.items,
		&c.containers,
		&c.sentience,
		&c.movement,
		&c.flavours,
		&c.remnants,
	}
}

// CreateEntity allocates an id and installs the default components of kind.
func (c *Cosmos) CreateEntity(kind models.Kind) models.EntityID {
	ensure.That(kind.Valid(), "creating entity of invalid kind")

	id := c.allocate(kind)
	installArchetype(c, id, kind)
	return id
}

func (c *Cosmos) allocate(kind models.Kind) models.EntityID {
	var index uint32

	if n := len(c.free); n > 0 {
		index = c.free[n-1]
		c.free = c.free[:n-1]
		c.versions[index]++
	} else {
		index = uint32(len(c.versions))
		c.versions = append(c.versions, 1)
		c.alive = append(c.alive, false)
		c.kinds = append(c.kinds, models.KindInvalid)
		c.guids = append(c.guids, models.NoGUID)
	}

	id := models.EntityID{Index: index, Version: c.versions[index]}
	guid := c.solvable.nextGUID
	c.solvable.nextGUID++

	c.alive[index] = true
	c.kinds[index] = kind
	c.guids[index] = guid

	_, taken := c.inferred.guids[guid]
	ensure.That(!taken, "guid issued twice")
	c.inferred.guids[guid] = id

	return id
}

// DeleteEntity destroys id immediately, detaching it from every relation.
// Items still inside its slots are orphaned into the world and its children
// lose their parent. Gameplay code defers deletion through the step instead.
func (c *Cosmos) DeleteEntity(id models.EntityID) bool {
	if !c.Alive(id) {
		return false
	}

	for _, child := range c.inferred.children[id] {
		c.parents.remove(child)
	}
	delete(c.inferred.children, id)
	c.SetParent(id, models.EntityID{})

	if container := c.containers.find(id); container != nil {
		for fn := range container.Slots {
			slot := models.SlotID{Container: id, Function: models.SlotFunction(fn)}
			for _, item := range c.ItemsInside(slot) {
				c.SetCurrentSlot(item, models.SlotID{})
			}
		}
	}

	if item := c.items.find(id); item != nil {
		c.detachItem(id, item)
	}
	if fixtures := c.fixtures.find(id); fixtures != nil {
		c.detachFixtures(id, fixtures)
	}
	for _, attached := range c.inferred.colliders[id] {
		if attached != id {
			c.fixtures.find(attached).OwnerBody = attached
			c.inferred.colliders[attached] = insertSorted(c.inferred.colliders[attached], attached)
		}
	}
	delete(c.inferred.colliders, id)

	for _, store := range c.stores() {
		store.remove(id)
	}

	c.solvable.eraseMount(id)
	delete(c.inferred.guids, c.guids[id.Index])

	c.alive[id.Index] = false
	c.kinds[id.Index] = models.KindInvalid
	c.guids[id.Index] = models.NoGUID
	c.free = append(c.free, id.Index)

	return true
}

// Alive reports whether id refers to the current occupant of its slot.
func (c *Cosmos) Alive(id models.EntityID) bool {
	if !id.IsSet() || int(id.Index) >= len(c.versions) {
		return false
	}
	return c.alive[id.Index] && c.versions[id.Index] == id.Version
}

func (c *Cosmos) Dead(id models.EntityID) bool {
	return !c.Alive(id)
}

func (c *Cosmos) Kind(id models.EntityID) models.Kind {
	if !c.Alive(id) {
		return models.KindInvalid
	}
	return c.kinds[id.Index]
}

func (c *Cosmos) GUID(id models.EntityID) models.GUID {
	if !c.Alive(id) {
		return models.NoGUID
	}
	return c.guids[id.Index]
}

// ByGUID resolves a cross-session identifier to the live id.
func (c *Cosmos) ByGUID(guid models.GUID) (models.EntityID, bool) {
	id, ok := c.inferred.guids[guid]
	return id, ok
}

// Count returns the number of live entities.
func (c *Cosmos) Count() int {
	return len(c.versions) - len(c.free)
}

// Entities returns all live ids ordered by slot index.
func (c *Cosmos) Entities() []models.EntityID {
	out := make([]models.EntityID, 0, c.Count())
	for index, alive := range c.alive {
		if alive {
			out = append(out, models.EntityID{Index: uint32(index), Version: c.versions[index]})
		}
	}
	return out
}

func (c *Cosmos) String() string {
	return fmt.Sprintf("cosmos(entities=%d, timestamp=%d)", c.Count(), c.solvable.timestamp)
}
