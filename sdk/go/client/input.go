package client

import (
	"math"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

// InputSource produces the entropy of the local character once per tick.
// view is the cosmos being presented. character is unset until the server
// has welcomed the client.
type InputSource interface {
	Next(view *cosmos.Cosmos, character models.EntityID) logic.GuidEntropy
}

// Idle never does anything.
type Idle struct{}

func (Idle) Next(*cosmos.Cosmos, models.EntityID) logic.GuidEntropy {
	return logic.GuidEntropy{}
}

var legs = [...]messages.IntentKind{
	messages.IntentMoveUp,
	messages.IntentMoveRight,
	messages.IntentMoveDown,
	messages.IntentMoveLeft,
}

// Wanderer walks a square and picks up the first loose item within reach,
// dropping it again after a while.
type Wanderer struct {
	// Ticks spent walking in one direction.
	Leg int
	// Loose items closer than Reach are picked up.
	Reach float64
	// Ticks an item is held before it is dropped.
	HoldFor int

	tick      int
	leg       int
	walking   bool
	heldSince int
}

func NewWanderer() *Wanderer {
	return &Wanderer{Leg: 60, Reach: 48, HoldFor: 120}
}

func (w *Wanderer) Next(view *cosmos.Cosmos, character models.EntityID) logic.GuidEntropy {
	var out logic.GuidEntropy
	if !character.IsSet() || !view.Alive(character) {
		return out
	}

	if !w.walking || w.tick%max(w.Leg, 1) == 0 {
		if w.walking {
			out.Intents = append(out.Intents, logic.GuidIntent{Kind: legs[w.leg]})
			w.leg = (w.leg + 1) % len(legs)
		}
		out.Intents = append(out.Intents, logic.GuidIntent{Kind: legs[w.leg], Pressed: true})
		w.walking = true
	}

	hand := models.SlotID{Container: character, Function: models.SlotPrimaryHand}
	if held := view.ItemsInside(hand); len(held) > 0 {
		if w.tick-w.heldSince >= w.HoldFor {
			out.Transfers = append(out.Transfers, logic.GuidTransfer{Item: view.GUID(held[0])})
		}
	} else if item, ok := w.nearestLoose(view, character); ok {
		out.Transfers = append(out.Transfers, logic.GuidTransfer{
			Item:            view.GUID(item),
			TargetContainer: view.GUID(character),
			TargetFunction:  models.SlotPrimaryHand,
		})
		w.heldSince = w.tick
	}

	w.tick++
	return out
}

func (w *Wanderer) nearestLoose(view *cosmos.Cosmos, character models.EntityID) (models.EntityID, bool) {
	from := cosmos.Get[components.Transform](view, character).Pos

	var (
		best     models.EntityID
		bestDist = math.Inf(1)
	)
	cosmos.Each(view, func(id models.EntityID, _ *components.Item) {
		if view.CurrentSlot(id).IsSet() {
			return
		}
		dist := models.Distance(from, cosmos.Get[components.Transform](view, id).Pos)
		if dist <= w.Reach && dist < bestDist {
			best, bestDist = id, dist
		}
	})

	return best, best.IsSet()
}
