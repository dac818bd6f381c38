// Package inventory moves items between slots and resolves timed mounting.
package inventory

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

// TransferResultType is the outcome of checking a transfer request.
type TransferResultType uint8

const (
	ResultInvalidRequest TransferResultType = iota
	ResultSameSlot
	ResultIncompatibleCategory
	ResultInsufficientSpace
	ResultItemInsideItself
	ResultDeadCapability

	ResultPickup
	ResultTransfer
	ResultDrop
)

func (t TransferResultType) String() string {
	switch t {
	case ResultSameSlot:
		return "same_slot"
	case ResultIncompatibleCategory:
		return "incompatible_category"
	case ResultInsufficientSpace:
		return "insufficient_space"
	case ResultItemInsideItself:
		return "item_inside_itself"
	case ResultDeadCapability:
		return "dead_capability"
	case ResultPickup:
		return "pickup"
	case ResultTransfer:
		return "transfer"
	case ResultDrop:
		return "drop"
	default:
		return "invalid_request"
	}
}

// TransferResult is what a transfer would do if performed now.
type TransferResult struct {
	Type               TransferResultType
	TransferredCharges int
}

func (r TransferResult) Successful() bool {
	return r.Type >= ResultPickup
}

// RequestedCharges resolves the quantity of r against the item's stack.
func RequestedCharges(item *components.Item, r messages.TransferRequest) int {
	if r.Quantity <= 0 || r.Quantity > item.Charges {
		return item.Charges
	}
	return r.Quantity
}

// CanStack reports whether b can absorb the charges of a.
func CanStack(c *cosmos.Cosmos, a, b models.EntityID) bool {
	if a == b {
		return false
	}

	ia, ib := cosmos.Find[components.Item](c, a), cosmos.Find[components.Item](c, b)
	if ia == nil || ib == nil || !ia.Stackable || !ib.Stackable || ia.Categories != ib.Categories {
		return false
	}

	fa, fb := cosmos.Find[components.Flavour](c, a), cosmos.Find[components.Flavour](c, b)
	switch {
	case fa == nil && fb == nil:
		return true
	case fa == nil || fb == nil:
		return false
	default:
		return fa.ID == fb.ID
	}
}

// StackTarget returns the item in slot that item would merge into.
func StackTarget(c *cosmos.Cosmos, item models.EntityID, slot models.SlotID) (models.EntityID, bool) {
	var found models.EntityID
	for _, candidate := range c.ItemsInside(slot) {
		if CanStack(c, item, candidate) {
			found = candidate
		}
	}
	return found, found.IsSet()
}

// QueryTransferResult checks r against the current state without touching it.
func QueryTransferResult(c *cosmos.Cosmos, r messages.TransferRequest) TransferResult {
	item := cosmos.Find[components.Item](c, r.Item)
	if item == nil || item.Charges <= 0 {
		return TransferResult{Type: ResultInvalidRequest}
	}

	requested := RequestedCharges(item, r)
	source := item.CurrentSlot

	if !r.Target.IsSet() {
		if !source.IsSet() {
			return TransferResult{Type: ResultInvalidRequest}
		}
		return TransferResult{Type: ResultDrop, TransferredCharges: requested}
	}

	slot, ok := c.SlotDef(r.Target)
	if !ok {
		return TransferResult{Type: ResultInvalidRequest}
	}
	if r.Target == source {
		return TransferResult{Type: ResultSameSlot}
	}
	if r.Target.Container == r.Item || c.IsInsideOf(r.Target.Container, r.Item) {
		return TransferResult{Type: ResultItemInsideItself}
	}
	if !slot.Category.Accepts(item.Categories) {
		return TransferResult{Type: ResultIncompatibleCategory}
	}

	capability := c.OwningCapability(r.Target.Container)
	if sentience := cosmos.Find[components.Sentience](c, capability); sentience != nil && !sentience.IsAlive() {
		return TransferResult{Type: ResultDeadCapability}
	}

	charges := requested
	_, stacks := StackTarget(c, r.Item, r.Target)

	if slot.OnlyOne {
		if !stacks && len(c.ItemsInside(r.Target)) > 0 {
			return TransferResult{Type: ResultInsufficientSpace}
		}
	}

	if slot.Capacity > 0 {
		free := slot.Capacity - c.SpaceUsed(r.Target)
		fit := free / item.SpaceUnit()
		if fit <= 0 {
			return TransferResult{Type: ResultInsufficientSpace}
		}
		charges = min(charges, fit)
	}

	if source.IsSet() {
		return TransferResult{Type: ResultTransfer, TransferredCharges: charges}
	}
	return TransferResult{Type: ResultPickup, TransferredCharges: charges}
}

// MountingDurationMs is how long moving item to target takes.
// Leaving a mounted slot is faster than entering one and dropping to the
// ground is faster still.
func MountingDurationMs(c *cosmos.Cosmos, item models.EntityID, target models.SlotID) float64 {
	rules := c.Rules()

	if source, ok := c.SlotDef(c.CurrentSlot(item)); ok && source.IsMounted() {
		d := source.MountingDurationMs * rules.UnmountDurationMultiplier
		if !target.IsSet() {
			d *= rules.DropDurationMultiplier
		}
		return d
	}

	if slot, ok := c.SlotDef(target); ok {
		return slot.MountingDurationMs
	}

	return 0
}

// RequiresMounting reports whether r has to go through a pending mount.
func RequiresMounting(c *cosmos.Cosmos, r messages.TransferRequest) bool {
	if r.BypassMounting || r.ForceImmediateMount {
		return false
	}
	return MountingDurationMs(c, r.Item, r.Target) > 0
}
