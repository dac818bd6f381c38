package cosmos

import (
	"slices"

	"github.com/zeusync/cosmos/internal/core/models"
)

// PendingMount is an in-flight timed transfer of Item into Target.
type PendingMount struct {
	Item   models.EntityID
	Target models.SlotID
	// ProgressMs accumulates step deltas; zero means no step has advanced it yet.
	ProgressMs float64
	// RemainingCharges still to move, one per completed mount.
	RemainingCharges int
	ImpulseOnDrop    float64
}

// solvable is global state advanced by the step pipeline and part of every snapshot.
type solvable struct {
	timestamp uint64
	nextGUID  models.GUID
	// insertion ordered so mounts always resolve in the same order
	mounts []PendingMount
}

func (s *solvable) reset() {
	s.timestamp = 0
	s.nextGUID = 1
	s.mounts = nil
}

func (s *solvable) mountIndex(item models.EntityID) int {
	return slices.IndexFunc(s.mounts, func(m PendingMount) bool { return m.Item == item })
}

func (s *solvable) eraseMount(item models.EntityID) {
	if i := s.mountIndex(item); i >= 0 {
		s.mounts = slices.Delete(s.mounts, i, i+1)
	}
}

// Timestamp counts the steps this cosmos has advanced.
func (c *Cosmos) Timestamp() uint64 {
	return c.solvable.timestamp
}

// ElapsedMs is the simulated time since the first step.
func (c *Cosmos) ElapsedMs() float64 {
	return float64(c.solvable.timestamp) * c.common.DeltaMs
}

func (c *Cosmos) AdvanceTimestamp() {
	c.solvable.timestamp++
}

// PendingMount returns a copy of the request for item.
func (c *Cosmos) PendingMount(item models.EntityID) (PendingMount, bool) {
	i := c.solvable.mountIndex(item)
	if i < 0 {
		return PendingMount{}, false
	}
	return c.solvable.mounts[i], true
}

// SetPendingMount stores m, replacing a request for the same item in place.
func (c *Cosmos) SetPendingMount(m PendingMount) {
	if i := c.solvable.mountIndex(m.Item); i >= 0 {
		c.solvable.mounts[i] = m
		return
	}
	c.solvable.mounts = append(c.solvable.mounts, m)
}

func (c *Cosmos) ErasePendingMount(item models.EntityID) {
	c.solvable.eraseMount(item)
}

// PendingMounts returns a copy of every request in insertion order.
func (c *Cosmos) PendingMounts() []PendingMount {
	return slices.Clone(c.solvable.mounts)
}
