package logic

import (
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

// Entropy is the input of one step addressed by live entity ids.
type Entropy struct {
	Intents   []messages.Intent
	Transfers []messages.TransferRequest
}

func (e Entropy) Empty() bool {
	return len(e.Intents) == 0 && len(e.Transfers) == 0
}

type GuidIntent struct {
	Subject models.GUID
	Kind    messages.IntentKind
	Pressed bool
}

type GuidTransfer struct {
	Item                models.GUID
	TargetContainer     models.GUID
	TargetFunction      models.SlotFunction
	Quantity            int
	ImpulseOnDrop       float64
	ForceImmediateMount bool
}

// GuidEntropy is Entropy addressed by GUIDs, the form stored in queues and
// sent over the wire. It is remapped right before a step consumes it.
type GuidEntropy struct {
	Intents   []GuidIntent
	Transfers []GuidTransfer
}

func (g GuidEntropy) Empty() bool {
	return len(g.Intents) == 0 && len(g.Transfers) == 0
}

// MapToIDs resolves every GUID against c. Entries naming entities that no
// longer exist in c are dropped.
func (g GuidEntropy) MapToIDs(c *cosmos.Cosmos) Entropy {
	var out Entropy

	for _, in := range g.Intents {
		subject, ok := c.ByGUID(in.Subject)
		if !ok {
			continue
		}
		out.Intents = append(out.Intents, messages.Intent{Subject: subject, Kind: in.Kind, Pressed: in.Pressed})
	}

	for _, in := range g.Transfers {
		item, ok := c.ByGUID(in.Item)
		if !ok {
			continue
		}

		var target models.SlotID
		if in.TargetContainer != models.NoGUID {
			container, ok := c.ByGUID(in.TargetContainer)
			if !ok {
				continue
			}
			target = models.SlotID{Container: container, Function: in.TargetFunction}
		}

		out.Transfers = append(out.Transfers, messages.TransferRequest{
			Item:                item,
			Target:              target,
			Quantity:            in.Quantity,
			ImpulseOnDrop:       in.ImpulseOnDrop,
			ForceImmediateMount: in.ForceImmediateMount,
		})
	}

	return out
}

// FromIDs is the inverse of MapToIDs.
func FromIDs(c *cosmos.Cosmos, e Entropy) GuidEntropy {
	var out GuidEntropy

	for _, in := range e.Intents {
		guid := c.GUID(in.Subject)
		if guid == models.NoGUID {
			continue
		}
		out.Intents = append(out.Intents, GuidIntent{Subject: guid, Kind: in.Kind, Pressed: in.Pressed})
	}

	for _, in := range e.Transfers {
		guid := c.GUID(in.Item)
		if guid == models.NoGUID {
			continue
		}

		t := GuidTransfer{
			Item:                guid,
			Quantity:            in.Quantity,
			ImpulseOnDrop:       in.ImpulseOnDrop,
			ForceImmediateMount: in.ForceImmediateMount,
		}
		if in.Target.IsSet() {
			t.TargetContainer = c.GUID(in.Target.Container)
			t.TargetFunction = in.Target.Function
			if t.TargetContainer == models.NoGUID {
				continue
			}
		}

		out.Transfers = append(out.Transfers, t)
	}

	return out
}
