package components

import "github.com/zeusync/cosmos/internal/core/models"

// ItemCategory is a bit set of categories an item belongs to.
// Slots use it as an allow-list.
type ItemCategory uint16

const (
	CategoryGeneral ItemCategory = 1 << iota
	CategoryShoulderWearable
	CategoryBackWearable
	CategoryBeltWearable
	CategoryMagazine
	CategoryShotCharge
	CategoryBarrelAttachment
	CategoryRailAttachment

	// CategoryAny lets a slot accept every item.
	CategoryAny ItemCategory = 0
)

// Accepts reports whether an allow-list admits an item of the given categories.
func (c ItemCategory) Accepts(item ItemCategory) bool {
	if c == CategoryAny {
		return true
	}
	return c&item != 0
}

// MountingState of an item.
type MountingState uint8

const (
	Unmounted MountingState = iota
	Mounted
)

// Item makes an entity transferable between slots.
// CurrentSlot is a back-reference maintained by the cosmos; change it
// through Cosmos.SetCurrentSlot so the slot's forward list agrees.
type Item struct {
	CurrentSlot      models.SlotID
	Charges          int
	Categories       ItemCategory
	SpacePerCharge   int
	Stackable        bool
	IntendedMounting MountingState
	CurrentMounting  MountingState
}

// SpaceOccupied is the capacity the whole stack takes in a slot.
func (i Item) SpaceOccupied() int {
	return i.Charges * i.SpaceUnit()
}

// SpaceUnit is the space a single charge takes.
func (i Item) SpaceUnit() int {
	if i.SpacePerCharge <= 0 {
		return 1
	}
	return i.SpacePerCharge
}

// PhysicalBehaviour describes how a slot attaches its items.
type PhysicalBehaviour uint8

const (
	// Deposit keeps items inside the container without any physical presence.
	Deposit PhysicalBehaviour = iota
	// ConnectAsFixture turns items into passive fixtures of the container body.
	ConnectAsFixture
	// ConnectAsJointedBody keeps the item's own body, pinned by a motor joint.
	ConnectAsJointedBody
)

// Slot describes one slot of a container.
type Slot struct {
	Enabled   bool
	Category  ItemCategory
	Capacity  int
	OnlyOne   bool
	Behaviour PhysicalBehaviour
	// Items need this many milliseconds to mount into the slot.
	// A slot with a non-zero duration is a mounted slot.
	MountingDurationMs float64
	AttachmentOffset   models.Transform

	StartMountingSound    models.SoundID
	FinishMountingSound   models.SoundID
	StartUnmountingSound  models.SoundID
	FinishUnmountingSound models.SoundID
}

// IsMounted reports whether items in the slot count as mounted.
func (s Slot) IsMounted() bool {
	return s.MountingDurationMs > 0
}

// PhysicallyConnected reports whether items in the slot follow the container body.
func (s Slot) PhysicallyConnected() bool {
	return s.Behaviour != Deposit
}

// Container holds a fixed set of slots indexed by function.
type Container struct {
	Slots [models.SlotCount]Slot
}

// Slot returns the slot for fn if the container has it.
func (c *Container) Slot(fn models.SlotFunction) (*Slot, bool) {
	if fn == models.SlotNone || fn >= models.SlotCount {
		return nil, false
	}
	s := &c.Slots[fn]
	if !s.Enabled {
		return nil, false
	}
	return s, true
}
