package models

import "fmt"

// SlotFunction names a slot within a container.
type SlotFunction uint8

const (
	SlotNone SlotFunction = iota
	SlotPrimaryHand
	SlotSecondaryHand
	SlotBack
	SlotShoulder
	SlotBelt
	SlotItemDeposit
	SlotGunChamber
	SlotGunMagazine
	SlotGunMuzzle
	SlotCount
)

func (f SlotFunction) String() string {
	switch f {
	case SlotPrimaryHand:
		return "primary_hand"
	case SlotSecondaryHand:
		return "secondary_hand"
	case SlotBack:
		return "back"
	case SlotShoulder:
		return "shoulder"
	case SlotBelt:
		return "belt"
	case SlotItemDeposit:
		return "item_deposit"
	case SlotGunChamber:
		return "gun_chamber"
	case SlotGunMagazine:
		return "gun_magazine"
	case SlotGunMuzzle:
		return "gun_muzzle"
	default:
		return "none"
	}
}

// IsHand reports whether the function is one of the hand slots.
func (f SlotFunction) IsHand() bool {
	return f == SlotPrimaryHand || f == SlotSecondaryHand
}

// SlotID addresses one slot of one container entity.
// The zero value means "no slot", i.e. the world itself.
type SlotID struct {
	Container EntityID
	Function  SlotFunction
}

// IsSet reports whether the id names a slot rather than the world.
func (s SlotID) IsSet() bool {
	return s.Container.IsSet() && s.Function != SlotNone
}

func (s SlotID) String() string {
	if !s.IsSet() {
		return "slot(world)"
	}
	return fmt.Sprintf("slot(%s/%s)", s.Container, s.Function)
}
