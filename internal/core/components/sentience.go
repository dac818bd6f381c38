package components

import (
	"math"

	"github.com/zeusync/cosmos/internal/core/models"
)

// Meter is a bounded value such as health or consciousness.
type Meter struct {
	Enabled bool
	Value   float64
	Maximum float64
}

// DamageResult is the outcome of applying an amount to a meter.
type DamageResult struct {
	Effective               float64
	DroppedToZero           bool
	RatioEffectiveToMaximum float64
}

// CalculateDamageResult computes how much of amount actually applies.
// Positive amounts damage and never take the value below zero, negative
// amounts heal and never take it above the maximum.
func (m Meter) CalculateDamageResult(amount float64) DamageResult {
	var result DamageResult

	if amount > 0 {
		if m.Value > 0 {
			if m.Value <= amount {
				result.DroppedToZero = true
				result.Effective = m.Value
			} else {
				result.Effective = amount
			}
		}
	} else {
		if m.Value-amount > m.Maximum {
			result.Effective = -(m.Maximum - m.Value)
		} else {
			result.Effective = amount
		}
	}

	if m.Maximum > 0 {
		result.RatioEffectiveToMaximum = math.Abs(result.Effective) / m.Maximum
	}

	return result
}

// Ratio of value to maximum.
func (m Meter) Ratio() float64 {
	if m.Maximum <= 0 {
		return 0
	}
	return m.Value / m.Maximum
}

// Sentience is carried by everything that can be damaged or killed.
type Sentience struct {
	Health        Meter
	Consciousness Meter
	Unconscious   bool
}

// IsAlive reports whether the primary meter is above zero.
func (s Sentience) IsAlive() bool {
	return !s.Health.Enabled || s.Health.Value > 0
}

// CanAct reports whether the subject may act on intents.
func (s Sentience) CanAct() bool {
	return s.IsAlive() && !s.Unconscious
}

// MovementFlags is the set of held movement intents.
type MovementFlags uint8

const (
	MoveUp MovementFlags = 1 << iota
	MoveDown
	MoveLeft
	MoveRight
)

// Movement turns held movement intents into velocity.
type Movement struct {
	Flags MovementFlags
	Speed float64
}

// Direction returns the unnormalized direction held by the flags.
func (m Movement) Direction() models.Vec2 {
	var d models.Vec2
	if m.Flags&MoveUp != 0 {
		d.Y -= 1
	}
	if m.Flags&MoveDown != 0 {
		d.Y += 1
	}
	if m.Flags&MoveLeft != 0 {
		d.X -= 1
	}
	if m.Flags&MoveRight != 0 {
		d.X += 1
	}
	return d
}

// Flavour records the archetype of an entity.
type Flavour struct {
	ID models.FlavourID
}

// Remnant marks an entity spawned from the death of another.
type Remnant struct {
	Of models.EntityID
}
