package cosmos

import "github.com/zeusync/cosmos/internal/core/models"

// Rules are the gameplay constants shared by every system.
type Rules struct {
	// Unmounting takes this fraction of the source slot's mounting duration.
	UnmountDurationMultiplier float64
	// Unmounting straight to the ground is scaled down once more.
	DropDurationMultiplier  float64
	DropCollisionCooldownMs float64
	DropImpulse             float64
	CorpseImpulse           float64
}

// Assets are the shared asset ids systems refer to.
type Assets struct {
	ItemThrowSound models.SoundID
}

// CommonState is the shared state of the cosmos. It changes only through
// ChangeCommon.
type CommonState struct {
	Rules   Rules
	Assets  Assets
	DeltaMs float64
}

func DefaultRules() Rules {
	return Rules{
		UnmountDurationMultiplier: 0.5,
		DropDurationMultiplier:    0.35,
		DropCollisionCooldownMs:   300,
		DropImpulse:               300,
		CorpseImpulse:             55700,
	}
}

func DefaultCommonState() CommonState {
	return CommonState{
		Rules:   DefaultRules(),
		Assets:  Assets{ItemThrowSound: 1},
		DeltaMs: 1000.0 / 60,
	}
}

// ChangerResult tells ChangeCommon what the change invalidated.
type ChangerResult uint8

const (
	KeepCaches ChangerResult = iota
	RebuildCaches
)

// ChangeCommon applies changer to the common state and rebuilds the inferred
// caches if it asks for it. Caches never observe a half-applied change.
func (c *Cosmos) ChangeCommon(changer func(*CommonState) ChangerResult) {
	staged := c.common
	result := changer(&staged)
	c.common = staged

	if result == RebuildCaches {
		c.RebuildCaches()
	}
}

// Common returns a copy of the common state.
func (c *Cosmos) Common() CommonState {
	return c.common
}

// Rules returns the current gameplay constants.
func (c *Cosmos) Rules() Rules {
	return c.common.Rules
}
