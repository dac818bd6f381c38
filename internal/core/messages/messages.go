// Package messages declares everything systems tell each other within a step.
package messages

import (
	"github.com/zeusync/cosmos/internal/core/models"
)

// IntentKind is a discrete player intent.
type IntentKind uint8

const (
	IntentNone IntentKind = iota
	IntentMoveUp
	IntentMoveDown
	IntentMoveLeft
	IntentMoveRight
)

func (k IntentKind) String() string {
	switch k {
	case IntentMoveUp:
		return "move_up"
	case IntentMoveDown:
		return "move_down"
	case IntentMoveLeft:
		return "move_left"
	case IntentMoveRight:
		return "move_right"
	default:
		return "none"
	}
}

// Intent is a press or release of an intent by Subject.
type Intent struct {
	Subject models.EntityID
	Kind    IntentKind
	Pressed bool
}

// Collision is reported by the physics solver for every touching pair.
type Collision struct {
	Subject  models.EntityID
	Collider models.EntityID
	Point    models.Vec2
	// Relative velocity of the collider at the moment of impact.
	Impact models.Vec2
}

// MeterType names the sentience meter a health event refers to.
type MeterType uint8

const (
	MeterHealth MeterType = iota
	MeterConsciousness
)

// Damage asks the sentience system to change the meters of Subject, health
// first, then consciousness. Negative amounts heal.
type Damage struct {
	Subject        models.EntityID
	Origin         models.EntityID
	Amount         float64
	PointOfImpact  models.Vec2
	ImpactVelocity models.Vec2
}

// SpecialResult is the outcome of a meter dropping to zero.
type SpecialResult uint8

const (
	SpecialNone SpecialResult = iota
	SpecialDeath
	SpecialLossOfConsciousness
)

func (r SpecialResult) String() string {
	switch r {
	case SpecialDeath:
		return "death"
	case SpecialLossOfConsciousness:
		return "loss_of_consciousness"
	default:
		return "none"
	}
}

// HealthEvent reports a damage message that had an effect.
type HealthEvent struct {
	Subject                 models.EntityID
	Meter                   MeterType
	EffectiveAmount         float64
	RatioEffectiveToMaximum float64
	Special                 SpecialResult
	PointOfImpact           models.Vec2
	ImpactVelocity          models.Vec2
	// Corpse spawned by a death, if any.
	SpawnedRemnant models.EntityID
}

// QueueDeletion asks the destroy system to delete Subject with all of its
// descendants at the end of the step.
type QueueDeletion struct {
	Subject models.EntityID
}

// WillSoonBeDeleted is posted for every entity the destroy system is about to delete.
type WillSoonBeDeleted struct {
	Subject models.EntityID
}

// TransferRequest moves Item into Target. The zero Target drops it into the world.
type TransferRequest struct {
	Item   models.EntityID
	Target models.SlotID
	// Quantity of charges to move; zero moves the whole stack.
	Quantity            int
	ImpulseOnDrop       float64
	ForceImmediateMount bool
	// BypassMounting performs the transfer at once even for mounted slots.
	BypassMounting bool
}

// Pickup is posted when an item enters a slot from the world.
type Pickup struct {
	Subject models.EntityID // owning capability of the target slot
	Item    models.EntityID
}

// InterpolationCorrection tells the renderer to snap Subject rather than
// interpolate it from its previous position.
type InterpolationCorrection struct {
	Subject           models.EntityID
	PreviousTransform models.Transform
}

// StartSound spawns a sound effect chasing Subject.
type StartSound struct {
	Sound    models.SoundID
	Subject  models.EntityID
	Listener models.EntityID
	At       models.Transform
}

// StopSound stops the effect Sound chasing Subject.
type StopSound struct {
	Sound   models.SoundID
	Subject models.EntityID
}
