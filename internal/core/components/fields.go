package components

// Field names one member of a component and how to read it.
// Field lists are written out by hand instead of derived through reflection,
// so they stay stable across refactors and cost nothing at runtime.
type Field[T any] struct {
	Name string
	Get  func(*T) any
}

// DiffFields returns the names of fields whose values differ between a and b.
func DiffFields[T any](fields []Field[T], a, b *T) []string {
	var out []string
	for _, f := range fields {
		if f.Get(a) != f.Get(b) {
			out = append(out, f.Name)
		}
	}
	return out
}

var TransformFields = []Field[Transform]{
	{"pos", func(t *Transform) any { return t.Pos }},
	{"rotation", func(t *Transform) any { return t.Rotation }},
}

var RigidBodyFields = []Field[RigidBody]{
	{"activated", func(b *RigidBody) any { return b.Activated }},
	{"velocity", func(b *RigidBody) any { return b.Velocity }},
	{"angular_velocity", func(b *RigidBody) any { return b.AngularVelocity }},
	{"mass", func(b *RigidBody) any { return b.Mass }},
	{"linear_damping", func(b *RigidBody) any { return b.LinearDamping }},
}

var FixturesFields = []Field[Fixtures]{
	{"activated", func(f *Fixtures) any { return f.Activated }},
	{"owner_body", func(f *Fixtures) any { return f.OwnerBody }},
	{"offset", func(f *Fixtures) any { return f.Offset }},
	{"radius", func(f *Fixtures) any { return f.Radius }},
}

var MotorJointFields = []Field[MotorJoint]{
	{"activated", func(m *MotorJoint) any { return m.Activated }},
	{"target_bodies", func(m *MotorJoint) any { return m.TargetBodies }},
	{"linear_offset", func(m *MotorJoint) any { return m.LinearOffset }},
	{"angular_offset", func(m *MotorJoint) any { return m.AngularOffset }},
	{"collide_connected", func(m *MotorJoint) any { return m.CollideConnected }},
}

var SpecialPhysicsFields = []Field[SpecialPhysics]{
	{"dropped_cooldown_until_ms", func(s *SpecialPhysics) any { return s.DroppedCooldownUntilMs }},
	{"ignore_collision_with", func(s *SpecialPhysics) any { return s.IgnoreCollisionWith }},
}

var ItemFields = []Field[Item]{
	{"current_slot", func(i *Item) any { return i.CurrentSlot }},
	{"charges", func(i *Item) any { return i.Charges }},
	{"categories", func(i *Item) any { return i.Categories }},
	{"space_per_charge", func(i *Item) any { return i.SpacePerCharge }},
	{"stackable", func(i *Item) any { return i.Stackable }},
	{"intended_mounting", func(i *Item) any { return i.IntendedMounting }},
	{"current_mounting", func(i *Item) any { return i.CurrentMounting }},
}

var ContainerFields = []Field[Container]{
	{"slots", func(c *Container) any { return c.Slots }},
}

var SentienceFields = []Field[Sentience]{
	{"health", func(s *Sentience) any { return s.Health }},
	{"consciousness", func(s *Sentience) any { return s.Consciousness }},
	{"unconscious", func(s *Sentience) any { return s.Unconscious }},
}

var MovementFields = []Field[Movement]{
	{"flags", func(m *Movement) any { return m.Flags }},
	{"speed", func(m *Movement) any { return m.Speed }},
}

var FlavourFields = []Field[Flavour]{
	{"id", func(f *Flavour) any { return f.ID }},
}

var RemnantFields = []Field[Remnant]{
	{"of", func(r *Remnant) any { return r.Of }},
}
