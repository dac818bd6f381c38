// Package input turns the entropy of a step into messages.
package input

import (
	"github.com/zeusync/cosmos/internal/core/logic"
)

type System struct{}

func (System) Name() string {
	return "input"
}

// Run posts the intents and transfer requests carried by the step entropy,
// in the order the entropy lists them.
func (System) Run(step logic.Step) {
	entropy := step.Entropy()

	for _, intent := range entropy.Intents {
		logic.Post(step, intent)
	}
	for _, transfer := range entropy.Transfers {
		logic.Post(step, transfer)
	}
}
