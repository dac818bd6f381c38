// Package physics holds the contract of the physics collaborator and a
// reference integrator good enough for tests and headless servers.
package physics

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

// Integrator moves bodies with explicit Euler integration and detects
// overlapping circular fixtures. It has no collision response.
type Integrator struct{}

func (Integrator) Solve(step logic.Step) {
	c := step.Cosmos()
	dt := step.DeltaMs() / 1000

	cosmos.Each(c, func(id models.EntityID, body *components.RigidBody) {
		t := cosmos.Find[components.Transform](c, id)
		if !body.Activated || t == nil {
			return
		}

		t.Pos = t.Pos.Add(body.Velocity.Scale(dt))
		t.Rotation += body.AngularVelocity * dt

		damping := 1 / (1 + dt*body.LinearDamping)
		body.Velocity = body.Velocity.Scale(damping)
		body.AngularVelocity *= damping
	})

	cosmos.Each(c, func(id models.EntityID, joint *components.MotorJoint) {
		if !joint.Activated {
			return
		}
		target := cosmos.Find[components.Transform](c, joint.TargetBodies[0])
		t := cosmos.Find[components.Transform](c, id)
		if target == nil || t == nil {
			return
		}
		*t = target.Compose(models.Transform{Pos: joint.LinearOffset, Rotation: joint.AngularOffset})
	})

	cosmos.Each(c, func(id models.EntityID, fixtures *components.Fixtures) {
		if !fixtures.Activated || fixtures.OwnerBody == id {
			return
		}
		owner := cosmos.Find[components.Transform](c, fixtures.OwnerBody)
		t := cosmos.Find[components.Transform](c, id)
		if owner == nil || t == nil {
			return
		}
		*t = owner.Compose(fixtures.Offset)
	})

	detectCollisions(step)
}

type shape struct {
	id     models.EntityID
	owner  models.EntityID
	pos    models.Vec2
	radius float64
}

func detectCollisions(step logic.Step) {
	c := step.Cosmos()
	now := c.ElapsedMs()

	var shapes []shape
	cosmos.Each(c, func(id models.EntityID, fixtures *components.Fixtures) {
		t := cosmos.Find[components.Transform](c, id)
		if !fixtures.Activated || t == nil {
			return
		}
		shapes = append(shapes, shape{id: id, owner: fixtures.OwnerBody, pos: t.Pos, radius: fixtures.Radius})
	})

	for i := range shapes {
		for j := i + 1; j < len(shapes); j++ {
			a, b := shapes[i], shapes[j]
			if a.owner == b.owner {
				continue
			}
			if models.Distance(a.pos, b.pos) >= a.radius+b.radius {
				continue
			}
			if ignores(c, a.owner, b.owner, now) || ignores(c, b.owner, a.owner, now) {
				continue
			}

			logic.Post(step, messages.Collision{
				Subject:  a.id,
				Collider: b.id,
				Point:    a.pos.Add(b.pos).Scale(0.5),
				Impact:   velocityOf(c, b.owner).Sub(velocityOf(c, a.owner)),
			})
		}
	}
}

func ignores(c *cosmos.Cosmos, body, other models.EntityID, nowMs float64) bool {
	special := cosmos.Find[components.SpecialPhysics](c, body)
	return special != nil && special.IgnoresCollisionWith(other, nowMs)
}

func velocityOf(c *cosmos.Cosmos, body models.EntityID) models.Vec2 {
	if b := cosmos.Find[components.RigidBody](c, body); b != nil && b.Activated {
		return b.Velocity
	}
	return models.Vec2{}
}
