package cosmos

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
)

// installArchetype attaches the default component set of kind.
func installArchetype(c *Cosmos, id models.EntityID, kind models.Kind) {
	Add(c, id, components.Transform{})

	switch kind {
	case models.KindCharacter:
		Add(c, id, components.RigidBody{Activated: true, Mass: 70, LinearDamping: 6.5})
		Add(c, id, components.Fixtures{Activated: true, Radius: 16})
		Add(c, id, components.SpecialPhysics{})
		Add(c, id, characterContainer())
		Add(c, id, components.Sentience{
			Health:        components.Meter{Enabled: true, Value: 100, Maximum: 100},
			Consciousness: components.Meter{Enabled: true, Value: 100, Maximum: 100},
		})
		Add(c, id, components.Movement{Speed: 200})

	case models.KindItem:
		Add(c, id, components.RigidBody{Activated: true, Mass: 1, LinearDamping: 2})
		Add(c, id, components.Fixtures{Activated: true, Radius: 8})
		Add(c, id, components.SpecialPhysics{})
		Add(c, id, components.MotorJoint{})
		Add(c, id, components.Item{Charges: 1, Categories: components.CategoryGeneral, SpacePerCharge: 1})

	case models.KindCorpse:
		Add(c, id, components.RigidBody{Activated: true, Mass: 70, LinearDamping: 6.5})
		Add(c, id, components.Fixtures{Activated: true, Radius: 16})
		Add(c, id, components.Remnant{})

	case models.KindObstacle:
		Add(c, id, components.Fixtures{Activated: true, Radius: 32})
	}
}

func characterContainer() components.Container {
	var container components.Container

	hand := func(y float64) components.Slot {
		return components.Slot{
			Enabled:          true,
			Category:         components.CategoryAny,
			OnlyOne:          true,
			Behaviour:        components.ConnectAsFixture,
			AttachmentOffset: models.Transform{Pos: models.Vec2{X: 20, Y: y}},
		}
	}

	container.Slots[models.SlotPrimaryHand] = hand(10)
	container.Slots[models.SlotSecondaryHand] = hand(-10)
	container.Slots[models.SlotBack] = components.Slot{
		Enabled:            true,
		Category:           components.CategoryBackWearable,
		OnlyOne:            true,
		Behaviour:          components.ConnectAsFixture,
		MountingDurationMs: 500,
		AttachmentOffset:   models.Transform{Pos: models.Vec2{X: -12}},
	}
	container.Slots[models.SlotShoulder] = components.Slot{
		Enabled:            true,
		Category:           components.CategoryShoulderWearable,
		OnlyOne:            true,
		Behaviour:          components.ConnectAsFixture,
		MountingDurationMs: 500,
		AttachmentOffset:   models.Transform{Pos: models.Vec2{X: -4, Y: 8}, Rotation: -90},
	}
	container.Slots[models.SlotBelt] = components.Slot{
		Enabled:            true,
		Category:           components.CategoryBeltWearable,
		OnlyOne:            true,
		Behaviour:          components.ConnectAsFixture,
		MountingDurationMs: 300,
	}

	return container
}
