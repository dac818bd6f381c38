package inventory

import (
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/observability/log"
)

// System resolves the transfer requests of a step, then advances pending mounts.
type System struct{}

func (System) Name() string {
	return "inventory"
}

func (System) Run(step logic.Step) {
	c := step.Cosmos()

	for _, r := range logic.Queue[messages.TransferRequest](step).Items() {
		result := QueryTransferResult(c, r)
		if !result.Successful() {
			step.Log().Warn("item transfer request rejected",
				log.String("item", r.Item.String()),
				log.String("target", r.Target.String()),
				log.String("result", result.Type.String()),
			)
			continue
		}

		if RequiresMounting(c, r) {
			RequestMount(c, r)
			continue
		}

		PerformTransfer(step, r)
	}

	SolveMounting(step)
}
