// Package movement turns held movement intents into body velocity.
package movement

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

type System struct{}

func (System) Name() string {
	return "movement"
}

func flagOf(kind messages.IntentKind) components.MovementFlags {
	switch kind {
	case messages.IntentMoveUp:
		return components.MoveUp
	case messages.IntentMoveDown:
		return components.MoveDown
	case messages.IntentMoveLeft:
		return components.MoveLeft
	case messages.IntentMoveRight:
		return components.MoveRight
	default:
		return 0
	}
}

func canAct(c *cosmos.Cosmos, id models.EntityID) bool {
	s := cosmos.Find[components.Sentience](c, id)
	return s == nil || s.CanAct()
}

// Run applies the step's intents to movement flags, then sets the velocity
// of every able subject with an activated body.
func (System) Run(step logic.Step) {
	c := step.Cosmos()

	for _, intent := range logic.Queue[messages.Intent](step).Items() {
		m := cosmos.Find[components.Movement](c, intent.Subject)
		if m == nil || !canAct(c, intent.Subject) {
			continue
		}

		flag := flagOf(intent.Kind)
		if intent.Pressed {
			m.Flags |= flag
		} else {
			m.Flags &^= flag
		}
	}

	cosmos.Each(c, func(id models.EntityID, m *components.Movement) {
		body := cosmos.Find[components.RigidBody](c, id)
		if body == nil || !body.Activated {
			return
		}

		if !canAct(c, id) {
			m.Flags = 0
			return
		}

		direction := m.Direction()
		if direction.IsZero() {
			return
		}
		body.Velocity = direction.Scale(m.Speed / direction.Length())
	})
}
