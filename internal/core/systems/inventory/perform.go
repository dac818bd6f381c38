package inventory

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/observability/log"
)

// TransferOutput collects the notifications of a performed transfer.
// Nothing audiovisual happens in Perform itself.
type TransferOutput struct {
	Result TransferResult
	// Moved is the entity now holding the transferred charges: the item
	// itself, a clone split off it, or the stack it merged into.
	Moved       models.EntityID
	Picked      *messages.Pickup
	Corrections []messages.InterpolationCorrection
	// Destroyed is the donor of a whole-stack merge.
	Destroyed models.EntityID
	Dropped   *messages.StartSound
}

// Notify posts the output into the step.
func (o TransferOutput) Notify(step logic.Step) {
	if o.Picked != nil {
		logic.Post(step, *o.Picked)
	}
	for _, correction := range o.Corrections {
		logic.Post(step, correction)
	}
	if o.Destroyed.IsSet() {
		step.DeleteEntity(o.Destroyed)
	}
	if o.Dropped != nil {
		logic.Post(step, *o.Dropped)
	}
}

// PerformTransfer performs r and posts its notifications.
func PerformTransfer(step logic.Step, r messages.TransferRequest) TransferOutput {
	out := Perform(step.Cosmos(), r)
	if !out.Result.Successful() {
		step.Log().Warn("item transfer not successful",
			log.String("item", r.Item.String()),
			log.String("target", r.Target.String()),
			log.String("result", out.Result.Type.String()),
		)
		return out
	}
	out.Notify(step)
	return out
}

// Perform executes r against c. An infeasible request leaves c untouched.
func Perform(c *cosmos.Cosmos, r messages.TransferRequest) TransferOutput {
	var out TransferOutput

	out.Result = QueryTransferResult(c, r)
	if !out.Result.Successful() {
		return out
	}

	moving := r.Item
	charges := out.Result.TransferredCharges
	item := cosmos.Get[components.Item](c, moving)
	source := item.CurrentSlot
	targetExists := out.Result.Type == ResultPickup || out.Result.Type == ResultTransfer
	wholeGrabbed := item.Charges == charges
	initialTransform := transformOf(c, moving)

	var previousContainerTransform models.Transform
	if source.IsSet() {
		previousContainerTransform = transformOf(c, source.Container)
		if wholeGrabbed {
			c.SetCurrentSlot(moving, models.SlotID{})
		}
	}

	if targetExists {
		if stack, ok := StackTarget(c, moving, r.Target); ok {
			if wholeGrabbed {
				// The donor lives until the destroy stage; empty it so no
				// later request in this step can merge it again.
				item.Charges = 0
				out.Destroyed = moving
			} else {
				item.Charges -= charges
			}
			cosmos.Get[components.Item](c, stack).Charges += charges
			out.Moved = stack
			return out
		}
	}

	moved := moving
	if !wholeGrabbed {
		moved = c.CloneEntity(moving)
		item.Charges -= charges
		cosmos.Get[components.Item](c, moved).Charges = charges
	}
	out.Moved = moved

	if targetExists {
		c.SetCurrentSlot(moved, r.Target)
	}

	out.Corrections = append(out.Corrections, updatePhysics(c, moved, initialTransform))
	c.ForEachContainedItemRecursive(moved, func(descendant models.EntityID) {
		out.Corrections = append(out.Corrections, updatePhysics(c, descendant, initialTransform))
	})

	if out.Result.Type == ResultPickup {
		out.Picked = &messages.Pickup{
			Subject: c.OwningCapability(r.Target.Container),
			Item:    moved,
		}
	}

	movedItem := cosmos.Get[components.Item](c, moved)
	if slot, ok := c.SlotDef(r.Target); ok && slot.IsMounted() {
		movedItem.IntendedMounting = components.Mounted
		if r.ForceImmediateMount || r.BypassMounting {
			movedItem.CurrentMounting = components.Mounted
		}
	} else {
		movedItem.IntendedMounting = components.Unmounted
		movedItem.CurrentMounting = components.Unmounted
	}

	if out.Result.Type == ResultDrop {
		drop(c, moved, source.Container, previousContainerTransform, r.ImpulseOnDrop)

		out.Dropped = &messages.StartSound{
			Sound:    c.Common().Assets.ItemThrowSound,
			Subject:  moved,
			Listener: c.OwningCapability(source.Container),
			At:       initialTransform,
		}
	}

	return out
}

func drop(c *cosmos.Cosmos, moved, dropper models.EntityID, dropperTransform models.Transform, impulse float64) {
	if body := cosmos.Find[components.RigidBody](c, moved); body != nil {
		body.Velocity = models.Vec2{}
		body.AngularVelocity = 0

		if impulse > 0 {
			body.ApplyImpulse(models.FromDegrees(dropperTransform.Rotation).Scale(impulse * body.Mass))
		}
		body.ApplyAngularImpulse(1.5 * body.Mass)
	}

	special := cosmos.Find[components.SpecialPhysics](c, moved)
	if special == nil {
		special = cosmos.Add(c, moved, components.SpecialPhysics{})
	}
	special.DroppedCooldownUntilMs = c.ElapsedMs() + c.Rules().DropCollisionCooldownMs
	special.IgnoreCollisionWith = dropper
}

// updatePhysics reattaches the body and fixtures of e after its slot changed.
// Only the root of a physically connected chain keeps an activated body,
// everything attached as a fixture below it becomes part of that body.
func updatePhysics(c *cosmos.Cosmos, e models.EntityID, initial models.Transform) messages.InterpolationCorrection {
	slotID := c.CurrentSlot(e)

	owner := e
	fixturesPersist := true
	bodyPersist := true
	connectBodies := false
	target := initial

	var jointRoot models.EntityID

	var fixturesOffset, jointOffset models.Transform

	if slot, ok := c.SlotDef(slotID); ok {
		fixturesPersist = c.SlotPhysicallyConnected(slotID)

		if fixturesPersist {
			first := c.FirstAncestorWithBodyConnection(slotID)
			fixturesOffset = c.AttachmentOffset(e, first)

			if slot.Behaviour == components.ConnectAsJointedBody {
				connectBodies = true
				jointRoot = first
				jointOffset = fixturesOffset
				target = transformOf(c, first).Compose(jointOffset)
				fixturesOffset = models.Transform{}
			} else {
				bodyPersist = false
				owner = first
			}
		} else {
			bodyPersist = false
		}
	}

	if fixtures := cosmos.Find[components.Fixtures](c, e); fixtures != nil {
		c.SetFixturesOwner(e, owner, fixturesOffset)
		fixtures.Activated = fixturesPersist
	}

	if body := cosmos.Find[components.RigidBody](c, e); body != nil {
		body.Activated = bodyPersist
		if bodyPersist {
			body.Velocity = models.Vec2{}
			body.AngularVelocity = 0
		}
	}

	if bodyPersist {
		setTransform(c, e, target)
	} else if fixturesPersist {
		target = transformOf(c, owner).Compose(fixturesOffset)
		setTransform(c, e, target)
	}

	if joint := cosmos.Find[components.MotorJoint](c, e); joint != nil {
		if connectBodies {
			*joint = components.MotorJoint{
				Activated:     true,
				TargetBodies:  [2]models.EntityID{jointRoot, e},
				LinearOffset:  jointOffset.Pos,
				AngularOffset: jointOffset.Rotation,
			}
		} else {
			joint.Activated = false
		}
	}

	return messages.InterpolationCorrection{Subject: e, PreviousTransform: target}
}

func transformOf(c *cosmos.Cosmos, id models.EntityID) models.Transform {
	if t := cosmos.Find[components.Transform](c, id); t != nil {
		return *t
	}
	return models.Transform{}
}

func setTransform(c *cosmos.Cosmos, id models.EntityID, t models.Transform) {
	if p := cosmos.Find[components.Transform](c, id); p != nil {
		*p = t
	}
}

// DropFromAllSlots drops every item held by subject, slot by slot.
func DropFromAllSlots(step logic.Step, subject models.EntityID) {
	c := step.Cosmos()
	if !cosmos.Has[components.Container](c, subject) {
		return
	}

	impulse := c.Rules().DropImpulse
	for function := models.SlotNone + 1; function < models.SlotCount; function++ {
		for _, item := range c.ItemsInside(models.SlotID{Container: subject, Function: function}) {
			PerformTransfer(step, messages.TransferRequest{
				Item:           item,
				ImpulseOnDrop:  impulse,
				BypassMounting: true,
			})
		}
	}
}
