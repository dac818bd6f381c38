package server

import (
	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/models"
)

// Flavours of the items the default world is populated with.
const (
	FlavourCrate models.FlavourID = iota + 1
	FlavourBackpack
	FlavourAmmo
)

// PopulateWorld lays out the default arena: a ring of obstacles with loose
// items in the middle. It is deterministic.
func PopulateWorld(c *cosmos.Cosmos) {
	for i := range 8 {
		id := c.CreateEntity(models.KindObstacle)
		cosmos.Get[components.Transform](c, id).Pos = models.FromDegrees(float64(i) * 45).Scale(600)
	}

	place := func(flavour models.FlavourID, pos models.Vec2) *components.Item {
		id := c.CreateEntity(models.KindItem)
		cosmos.Get[components.Transform](c, id).Pos = pos
		cosmos.Add(c, id, components.Flavour{ID: flavour})
		return cosmos.Get[components.Item](c, id)
	}

	for i := range 3 {
		place(FlavourCrate, models.Vec2{X: float64(i-1) * 80, Y: -120})
	}

	backpack := place(FlavourBackpack, models.Vec2{Y: 120})
	backpack.Categories |= components.CategoryBackWearable

	for i := range 2 {
		ammo := place(FlavourAmmo, models.Vec2{X: float64(i*2-1) * 160})
		ammo.Charges = 30
		ammo.Stackable = true
	}
}

// SpawnCharacter places a new character on the spawn ring. Spawn points are
// picked by index so a replay spawns the same way.
func SpawnCharacter(c *cosmos.Cosmos, index int) models.EntityID {
	id := c.CreateEntity(models.KindCharacter)
	spawn := models.FromDegrees(float64(index%8)*45 + 22.5).Scale(300)
	*cosmos.Get[components.Transform](c, id) = components.Transform{
		Pos:      spawn,
		Rotation: spawn.Scale(-1).Degrees(),
	}
	return id
}
