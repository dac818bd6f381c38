package components

import "github.com/zeusync/cosmos/internal/core/models"

// Transform is the logical placement of an entity.
type Transform = models.Transform

// RigidBody is the simulated body of an entity. Only the root of a
// physically connected attachment chain keeps an activated body.
type RigidBody struct {
	Activated       bool
	Velocity        models.Vec2
	AngularVelocity float64
	Mass            float64
	LinearDamping   float64
}

// ApplyImpulse changes the velocity by impulse / mass.
func (b *RigidBody) ApplyImpulse(impulse models.Vec2) {
	if b.Mass <= 0 {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Scale(1 / b.Mass))
}

func (b *RigidBody) ApplyAngularImpulse(impulse float64) {
	if b.Mass <= 0 {
		return
	}
	b.AngularVelocity += impulse / b.Mass
}

// Fixtures is the collision shape of an entity, owned by a body that is
// either the entity itself or the first ancestor carrying a body.
type Fixtures struct {
	Activated bool
	OwnerBody models.EntityID
	// Offset from the owner body, set for passive attachments.
	Offset models.Transform
	Radius float64
}

// MotorJoint pins a body to another body at an offset.
type MotorJoint struct {
	Activated        bool
	TargetBodies     [2]models.EntityID
	LinearOffset     models.Vec2
	AngularOffset    float64
	CollideConnected bool
}

// SpecialPhysics holds short-lived collision exceptions.
type SpecialPhysics struct {
	// Until this many elapsed milliseconds, collisions with
	// IgnoreCollisionWith are skipped.
	DroppedCooldownUntilMs float64
	IgnoreCollisionWith    models.EntityID
}

// IgnoresCollisionWith reports whether a collision with other should be suppressed at nowMs.
func (s SpecialPhysics) IgnoresCollisionWith(other models.EntityID, nowMs float64) bool {
	return s.IgnoreCollisionWith == other && nowMs < s.DroppedCooldownUntilMs
}
