package cosmos

import (
	"slices"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/pkg/ensure"
)

// Clone returns a deep copy sharing nothing with c.
func (c *Cosmos) Clone() *Cosmos {
	out := &Cosmos{
		versions: slices.Clone(c.versions),
		alive:    slices.Clone(c.alive),
		kinds:    slices.Clone(c.kinds),
		guids:    slices.Clone(c.guids),
		free:     slices.Clone(c.free),

		transforms:     c.transforms.clone(),
		bodies:         c.bodies.clone(),
		fixtures:       c.fixtures.clone(),
		joints:         c.joints.clone(),
		specialPhysics: c.specialPhysics.clone(),
		items:          c.items.clone(),
		containers:     c.containers.clone(),
		sentience:      c.sentience.clone(),
		movement:       c.movement.clone(),
		flavours:       c.flavours.clone(),
		remnants:       c.remnants.clone(),
		parents:        c.parents.clone(),

		common: c.common,
		solvable: solvable{
			timestamp: c.solvable.timestamp,
			nextGUID:  c.solvable.nextGUID,
			mounts:    slices.Clone(c.solvable.mounts),
		},
	}
	out.RebuildCaches()
	return out
}

// AssignFrom replaces the whole state of c with a copy of other.
func (c *Cosmos) AssignFrom(other *Cosmos) {
	*c = *other.Clone()
}

// CloneEntity copies every component of src onto a fresh entity.
// The copy sits in the world, has no children and gets its own GUID.
func (c *Cosmos) CloneEntity(src models.EntityID) models.EntityID {
	ensure.That(c.Alive(src), "cloning dead entity", logID(src))

	dst := c.allocate(c.kinds[src.Index])
	for _, store := range c.stores() {
		store.copyEntity(src, dst)
	}

	if item := c.items.find(dst); item != nil {
		item.CurrentSlot = models.SlotID{}
	}

	if fixtures := c.fixtures.find(dst); fixtures != nil {
		if fixtures.OwnerBody == src {
			fixtures.OwnerBody = dst
		}
		c.onAttached(dst, fixtures)
	}

	if joint := c.joints.find(dst); joint != nil {
		*joint = components.MotorJoint{}
	}

	return dst
}
