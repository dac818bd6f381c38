package cosmos

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/models"
)

// Difference names the fields of one component that disagree between two cosmoi.
// Fields is nil when the component exists on one side only.
type Difference struct {
	Entity    models.EntityID
	Component string
	Fields    []string
}

func diffComponent[T any](out []Difference, name string, fields []components.Field[T], a, b *Cosmos, id models.EntityID) []Difference {
	pa, pb := storeOf[T](a).find(id), storeOf[T](b).find(id)
	switch {
	case pa == nil && pb == nil:
		return out
	case pa == nil || pb == nil:
		return append(out, Difference{Entity: id, Component: name})
	}

	if changed := components.DiffFields(fields, pa, pb); len(changed) > 0 {
		out = append(out, Difference{Entity: id, Component: name, Fields: changed})
	}
	return out
}

// Compare lists component level differences between a and b, ordered by entity.
// Used to locate a desync once checksums disagree.
func Compare(a, b *Cosmos) []Difference {
	var out []Difference

	ids := a.Entities()
	for _, id := range b.Entities() {
		if !a.Alive(id) {
			ids = insertSorted(ids, id)
		}
	}

	for _, id := range ids {
		if a.Alive(id) != b.Alive(id) {
			out = append(out, Difference{Entity: id, Component: "entity"})
			continue
		}

		out = diffComponent(out, "transform", components.TransformFields, a, b, id)
		out = diffComponent(out, "rigid_body", components.RigidBodyFields, a, b, id)
		out = diffComponent(out, "fixtures", components.FixturesFields, a, b, id)
		out = diffComponent(out, "motor_joint", components.MotorJointFields, a, b, id)
		out = diffComponent(out, "special_physics", components.SpecialPhysicsFields, a, b, id)
		out = diffComponent(out, "item", components.ItemFields, a, b, id)
		out = diffComponent(out, "container", components.ContainerFields, a, b, id)
		out = diffComponent(out, "sentience", components.SentienceFields, a, b, id)
		out = diffComponent(out, "movement", components.MovementFields, a, b, id)
		out = diffComponent(out, "flavour", components.FlavourFields, a, b, id)
		out = diffComponent(out, "remnant", components.RemnantFields, a, b, id)
	}

	return out
}
