package cosmos

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
)

var ErrInvalidSnapshot = errors.New("invalid cosmos snapshot")

// ComponentMask records which components an EntityRecord carries.
type ComponentMask uint16

const (
	HasTransform ComponentMask = 1 << iota
	HasRigidBody
	HasFixtures
	HasMotorJoint
	HasSpecialPhysics
	HasItem
	HasContainer
	HasSentience
	HasMovement
	HasFlavour
	HasRemnant
)

// EntityRecord is one live entity with all of its components by value.
type EntityRecord struct {
	ID     models.EntityID
	Kind   models.Kind
	GUID   models.GUID
	Parent models.EntityID
	Mask   ComponentMask

	Transform      components.Transform
	RigidBody      components.RigidBody
	Fixtures       components.Fixtures
	MotorJoint     components.MotorJoint
	SpecialPhysics components.SpecialPhysics
	Item           components.Item
	Container      components.Container
	Sentience      components.Sentience
	Movement       components.Movement
	Flavour        components.Flavour
	Remnant        components.Remnant
}

// Snapshot is the complete significant state of a cosmos. It holds slices
// only, so encoding it is deterministic. Inferred caches are not part of it.
type Snapshot struct {
	Versions      []uint32
	Free          []uint32
	Entities      []EntityRecord
	Common        CommonState
	Timestamp     uint64
	NextGUID      models.GUID
	PendingMounts []PendingMount
}

func exportComponent[T any](s *Store[T], id models.EntityID, bit ComponentMask, mask *ComponentMask, dst *T) {
	if p := s.find(id); p != nil {
		*dst = *p
		*mask |= bit
	}
}

func importComponent[T any](s *Store[T], id models.EntityID, bit ComponentMask, mask ComponentMask, value T) {
	if mask&bit != 0 {
		s.set(id, value)
	}
}

// Export captures the state of c.
func (c *Cosmos) Export() *Snapshot {
	s := &Snapshot{
		Versions:      slices.Clone(c.versions),
		Free:          slices.Clone(c.free),
		Entities:      make([]EntityRecord, 0, c.Count()),
		Common:        c.common,
		Timestamp:     c.solvable.timestamp,
		NextGUID:      c.solvable.nextGUID,
		PendingMounts: slices.Clone(c.solvable.mounts),
	}

	for _, id := range c.Entities() {
		r := EntityRecord{
			ID:   id,
			Kind: c.kinds[id.Index],
			GUID: c.guids[id.Index],
		}
		if parent := c.parents.find(id); parent != nil {
			r.Parent = *parent
		}

		exportComponent(&c.transforms, id, HasTransform, &r.Mask, &r.Transform)
		exportComponent(&c.bodies, id, HasRigidBody, &r.Mask, &r.RigidBody)
		exportComponent(&c.fixtures, id, HasFixtures, &r.Mask, &r.Fixtures)
		exportComponent(&c.joints, id, HasMotorJoint, &r.Mask, &r.MotorJoint)
		exportComponent(&c.specialPhysics, id, HasSpecialPhysics, &r.Mask, &r.SpecialPhysics)
		exportComponent(&c.items, id, HasItem, &r.Mask, &r.Item)
		exportComponent(&c.containers, id, HasContainer, &r.Mask, &r.Container)
		exportComponent(&c.sentience, id, HasSentience, &r.Mask, &r.Sentience)
		exportComponent(&c.movement, id, HasMovement, &r.Mask, &r.Movement)
		exportComponent(&c.flavours, id, HasFlavour, &r.Mask, &r.Flavour)
		exportComponent(&c.remnants, id, HasRemnant, &r.Mask, &r.Remnant)

		s.Entities = append(s.Entities, r)
	}

	return s
}

// Import builds a cosmos from s and re-infers its caches.
// A structurally inconsistent snapshot is rejected as a whole.
func Import(s *Snapshot) (*Cosmos, error) {
	c := New()

	n := len(s.Versions)
	c.versions = slices.Clone(s.Versions)
	c.alive = make([]bool, n)
	c.kinds = make([]models.Kind, n)
	c.guids = make([]models.GUID, n)

	seen := make(map[models.GUID]models.EntityID, len(s.Entities))
	for _, r := range s.Entities {
		idx := int(r.ID.Index)
		if idx >= n || s.Versions[idx] != r.ID.Version || !r.ID.IsSet() {
			return nil, fmt.Errorf("%w: stale entity %s", ErrInvalidSnapshot, r.ID)
		}
		if c.alive[idx] {
			return nil, fmt.Errorf("%w: duplicate entity %s", ErrInvalidSnapshot, r.ID)
		}
		if !r.Kind.Valid() {
			return nil, fmt.Errorf("%w: entity %s has invalid kind", ErrInvalidSnapshot, r.ID)
		}
		if r.GUID == models.NoGUID || r.GUID >= s.NextGUID {
			return nil, fmt.Errorf("%w: entity %s has guid %d outside [1, %d)", ErrInvalidSnapshot, r.ID, r.GUID, s.NextGUID)
		}
		if _, taken := seen[r.GUID]; taken {
			return nil, fmt.Errorf("%w: guid %d is shared by %s and %s", ErrInvalidSnapshot, r.GUID, seen[r.GUID], r.ID)
		}
		seen[r.GUID] = r.ID

		c.alive[idx] = true
		c.kinds[idx] = r.Kind
		c.guids[idx] = r.GUID

		importComponent(&c.transforms, r.ID, HasTransform, r.Mask, r.Transform)
		importComponent(&c.bodies, r.ID, HasRigidBody, r.Mask, r.RigidBody)
		importComponent(&c.fixtures, r.ID, HasFixtures, r.Mask, r.Fixtures)
		importComponent(&c.joints, r.ID, HasMotorJoint, r.Mask, r.MotorJoint)
		importComponent(&c.specialPhysics, r.ID, HasSpecialPhysics, r.Mask, r.SpecialPhysics)
		importComponent(&c.items, r.ID, HasItem, r.Mask, r.Item)
		importComponent(&c.containers, r.ID, HasContainer, r.Mask, r.Container)
		importComponent(&c.sentience, r.ID, HasSentience, r.Mask, r.Sentience)
		importComponent(&c.movement, r.ID, HasMovement, r.Mask, r.Movement)
		importComponent(&c.flavours, r.ID, HasFlavour, r.Mask, r.Flavour)
		importComponent(&c.remnants, r.ID, HasRemnant, r.Mask, r.Remnant)

		if r.Parent.IsSet() {
			c.parents.set(r.ID, r.Parent)
		}
	}

	// References are checked once every record is in, so they may point forward.
	for _, r := range s.Entities {
		if r.Parent.IsSet() && !c.Alive(r.Parent) {
			return nil, fmt.Errorf("%w: %s has dead parent %s", ErrInvalidSnapshot, r.ID, r.Parent)
		}
		if r.Mask&HasItem != 0 {
			if slot := r.Item.CurrentSlot; slot.IsSet() && !c.Alive(slot.Container) {
				return nil, fmt.Errorf("%w: %s sits in a slot of dead container %s", ErrInvalidSnapshot, r.ID, slot.Container)
			}
		}
	}

	for _, idx := range s.Free {
		if int(idx) >= n || c.alive[idx] {
			return nil, fmt.Errorf("%w: free list names live slot %d", ErrInvalidSnapshot, idx)
		}
	}
	if len(s.Free)+len(s.Entities) != n {
		return nil, fmt.Errorf("%w: %d slots but %d free and %d alive", ErrInvalidSnapshot, n, len(s.Free), len(s.Entities))
	}

	c.free = slices.Clone(s.Free)
	c.common = s.Common
	c.solvable = solvable{
		timestamp: s.Timestamp,
		nextGUID:  s.NextGUID,
		mounts:    slices.Clone(s.PendingMounts),
	}

	c.RebuildCaches()

	return c, nil
}
