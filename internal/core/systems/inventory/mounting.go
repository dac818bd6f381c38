package inventory

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

// RequestMount registers r as a pending mount, replacing any request already
// pending for the same item.
func RequestMount(c *cosmos.Cosmos, r messages.TransferRequest) {
	item := cosmos.Get[components.Item](c, r.Item)

	c.SetPendingMount(cosmos.PendingMount{
		Item:             r.Item,
		Target:           r.Target,
		RemainingCharges: RequestedCharges(item, r),
		ImpulseOnDrop:    r.ImpulseOnDrop,
	})
}

type soundKind uint8

const (
	soundStart soundKind = iota
	soundFinish
)

func mountingSound(c *cosmos.Cosmos, m cosmos.PendingMount, kind soundKind) models.SoundID {
	if source, ok := c.SlotDef(c.CurrentSlot(m.Item)); ok && source.IsMounted() {
		if kind == soundStart {
			return source.StartUnmountingSound
		}
		return source.FinishUnmountingSound
	}

	if target, ok := c.SlotDef(m.Target); ok {
		if kind == soundStart {
			return target.StartMountingSound
		}
		return target.FinishMountingSound
	}

	return models.NoSound
}

// mountingProgresses reports whether m may keep advancing: the carrier is
// able to act and moving one charge is still feasible.
func mountingProgresses(c *cosmos.Cosmos, m cosmos.PendingMount) bool {
	capability := c.OwningCapability(m.Item)
	if sentience := cosmos.Find[components.Sentience](c, capability); sentience != nil && !sentience.CanAct() {
		return false
	}

	result := QueryTransferResult(c, messages.TransferRequest{
		Item:           m.Item,
		Target:         m.Target,
		Quantity:       1,
		BypassMounting: true,
	})
	return result.Successful()
}

// SolveMounting advances every pending mount by one step delta, in the order
// the requests were made. Completed, cancelled and exhausted requests are erased.
func SolveMounting(step logic.Step) {
	c := step.Cosmos()

	for _, m := range c.PendingMounts() {
		if solveMount(step, &m) {
			c.ErasePendingMount(m.Item)
		} else {
			c.SetPendingMount(m)
		}
	}
}

func solveMount(step logic.Step, m *cosmos.PendingMount) (erase bool) {
	c := step.Cosmos()

	item := cosmos.Find[components.Item](c, m.Item)
	if item == nil || m.RemainingCharges <= 0 {
		return true
	}

	startSound := mountingSound(c, *m, soundStart)
	stopStartSound := func() {
		if startSound != models.NoSound {
			logic.Post(step, messages.StopSound{Sound: startSound, Subject: m.Item})
		}
	}
	playSound := func(sound models.SoundID) {
		if sound == models.NoSound {
			return
		}
		logic.Post(step, messages.StartSound{
			Sound:    sound,
			Subject:  m.Item,
			Listener: c.OwningCapability(m.Item),
			At:       transformOf(c, m.Item),
		})
	}

	if !mountingProgresses(c, *m) {
		stopStartSound()
		return true
	}

	if m.ProgressMs == 0 {
		playSound(startSound)
	}

	m.ProgressMs += step.DeltaMs()

	if m.ProgressMs < MountingDurationMs(c, m.Item, m.Target) {
		return false
	}

	playSound(mountingSound(c, *m, soundFinish))
	stopStartSound()

	previousCharges := item.Charges
	PerformTransfer(step, messages.TransferRequest{
		Item:           m.Item,
		Target:         m.Target,
		Quantity:       1,
		ImpulseOnDrop:  m.ImpulseOnDrop,
		BypassMounting: true,
	})

	if previousCharges == 1 {
		return true
	}

	m.RemainingCharges--
	m.ProgressMs = 0

	return m.RemainingCharges == 0
}
