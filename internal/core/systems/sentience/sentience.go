// Package sentience resolves damage into meter changes, deaths and loss of consciousness.
package sentience

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/systems/inventory"
	"github.com/zeusync/cosmos/pkg/ensure"
)

type System struct{}

func (System) Name() string {
	return "sentience"
}

// Run applies every damage message of the step in posting order. Each message
// hits health first and consciousness second; only effective changes produce
// a health event.
func (System) Run(step logic.Step) {
	c := step.Cosmos()

	for _, d := range logic.Queue[messages.Damage](step).Items() {
		s := cosmos.Find[components.Sentience](c, d.Subject)
		if s == nil {
			continue
		}

		event := messages.HealthEvent{
			Subject:        d.Subject,
			PointOfImpact:  d.PointOfImpact,
			ImpactVelocity: d.ImpactVelocity,
		}

		if s.Health.Enabled {
			result := s.Health.CalculateDamageResult(d.Amount)

			e := event
			e.Meter = messages.MeterHealth
			e.EffectiveAmount = result.Effective
			e.RatioEffectiveToMaximum = result.RatioEffectiveToMaximum
			if result.DroppedToZero {
				e.Special = messages.SpecialDeath
			}

			if e.EffectiveAmount != 0 {
				consume(step, e)
			}
		}

		if s.Consciousness.Enabled {
			result := s.Consciousness.CalculateDamageResult(d.Amount)

			e := event
			e.Meter = messages.MeterConsciousness
			e.EffectiveAmount = result.Effective
			e.RatioEffectiveToMaximum = result.RatioEffectiveToMaximum
			if result.DroppedToZero {
				e.Special = messages.SpecialLossOfConsciousness
			}

			if e.EffectiveAmount != 0 {
				consume(step, e)
			}
		}
	}
}

func consume(step logic.Step, h messages.HealthEvent) {
	c := step.Cosmos()
	s := cosmos.Get[components.Sentience](c, h.Subject)

	switch h.Meter {
	case messages.MeterHealth:
		s.Health.Value -= h.EffectiveAmount
		ensure.That(s.Health.Value >= 0 && s.Health.Value <= s.Health.Maximum, "health out of bounds",
			log.String("entity", h.Subject.String()), log.Float64("value", s.Health.Value))
	case messages.MeterConsciousness:
		s.Consciousness.Value -= h.EffectiveAmount
		ensure.That(s.Consciousness.Value >= 0 && s.Consciousness.Value <= s.Consciousness.Maximum, "consciousness out of bounds",
			log.String("entity", h.Subject.String()), log.Float64("value", s.Consciousness.Value))
	}

	switch h.Special {
	case messages.SpecialDeath:
		h.SpawnedRemnant = die(step, h)
	case messages.SpecialLossOfConsciousness:
		s.Unconscious = true
	}

	logic.Post(step, h)
}

// die drops the inventory of the subject and leaves a corpse flying along the impact.
func die(step logic.Step, h messages.HealthEvent) models.EntityID {
	c := step.Cosmos()

	inventory.DropFromAllSlots(step, h.Subject)

	placeOfDeath := *cosmos.Get[components.Transform](c, h.Subject)
	placeOfDeath.Rotation = h.ImpactVelocity.Degrees()

	corpse := c.CreateEntity(models.KindCorpse)
	*cosmos.Get[components.Transform](c, corpse) = placeOfDeath
	cosmos.Get[components.Remnant](c, corpse).Of = h.Subject
	c.SetParent(corpse, h.Subject)

	if flavour := cosmos.Find[components.Flavour](c, h.Subject); flavour != nil {
		cosmos.Add(c, corpse, *flavour)
	}

	if body := cosmos.Find[components.RigidBody](c, h.Subject); body != nil {
		body.Activated = false
		body.Velocity = models.Vec2{}
		body.AngularVelocity = 0
	}

	cosmos.Get[components.RigidBody](c, corpse).ApplyImpulse(
		models.FromDegrees(placeOfDeath.Rotation).Scale(c.Rules().CorpseImpulse),
	)

	step.Log().Debug("entity died",
		log.String("entity", h.Subject.String()),
		log.String("corpse", corpse.String()),
	)

	return corpse
}
