// Package destroy deletes entities queued for deletion at the end of a step.
package destroy

import (
	"slices"

	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

type System struct{}

func (System) Name() string {
	return "destroy"
}

// Run marks every queued entity with its descendants, then deletes the whole
// batch with descendants before their ancestors.
func (System) Run(step logic.Step) {
	MarkDescendants(step)
	PerformDeletions(step)
}

// MarkDescendants posts WillSoonBeDeleted for every queued entity and
// everything below it. Each entity is marked once.
func MarkDescendants(step logic.Step) {
	c := step.Cosmos()
	marked := make(map[models.EntityID]struct{})

	mark := func(id models.EntityID) {
		if _, ok := marked[id]; ok {
			return
		}
		marked[id] = struct{}{}
		logic.Post(step, messages.WillSoonBeDeleted{Subject: id})
	}

	for _, q := range logic.Queue[messages.QueueDeletion](step).Items() {
		if c.Dead(q.Subject) {
			continue
		}
		mark(q.Subject)
		for _, descendant := range c.Descendants(q.Subject) {
			mark(descendant)
		}
	}
}

// PerformDeletions deletes the marked entities, deepest first, so children
// always go before their parents even when both were queued separately.
func PerformDeletions(step logic.Step) {
	c := step.Cosmos()

	type deletion struct {
		id    models.EntityID
		depth int
	}

	marked := logic.Queue[messages.WillSoonBeDeleted](step).Items()
	order := make([]deletion, 0, len(marked))
	for _, m := range marked {
		order = append(order, deletion{id: m.Subject, depth: depth(step, m.Subject)})
	}

	slices.SortStableFunc(order, func(a, b deletion) int {
		return b.depth - a.depth
	})

	for _, d := range order {
		c.DeleteEntity(d.id)
	}
}

// depth counts the parents and containers above id.
func depth(step logic.Step, id models.EntityID) int {
	c := step.Cosmos()

	var n int
	for n <= c.Count() {
		if parent, ok := c.Parent(id); ok {
			id = parent
		} else if slot := c.CurrentSlot(id); slot.IsSet() {
			id = slot.Container
		} else {
			return n
		}
		n++
	}
	return n
}
