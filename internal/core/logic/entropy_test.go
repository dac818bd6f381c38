package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

func TestGuidEntropy_RoundTrip(t *testing.T) {
	c := cosmos.New()
	character := c.CreateEntity(models.KindCharacter)
	item := c.CreateEntity(models.KindItem)

	entropy := Entropy{
		Intents: []messages.Intent{{Subject: character, Kind: messages.IntentMoveLeft, Pressed: true}},
		Transfers: []messages.TransferRequest{
			{Item: item, Target: models.SlotID{Container: character, Function: models.SlotPrimaryHand}},
			{Item: item, Quantity: 2},
		},
	}

	guids := FromIDs(c, entropy)
	require.Len(t, guids.Intents, 1)
	require.Len(t, guids.Transfers, 2)
	assert.Equal(t, c.GUID(character), guids.Intents[0].Subject)
	assert.Equal(t, models.NoGUID, guids.Transfers[1].TargetContainer)

	assert.Equal(t, entropy, guids.MapToIDs(c))
}

// Remapping follows GUIDs, so the same wire entropy resolves to whatever
// id the entity has in the receiving cosmos.
func TestGuidEntropy_MapsAgainstLocalIDs(t *testing.T) {
	server := cosmos.New()
	filler := server.CreateEntity(models.KindObstacle)
	character := server.CreateEntity(models.KindCharacter)
	server.DeleteEntity(filler)

	client, err := cosmos.Import(server.Export())
	require.NoError(t, err)

	wire := FromIDs(server, Entropy{Intents: []messages.Intent{{Subject: character, Kind: messages.IntentMoveUp, Pressed: true}}})
	local := wire.MapToIDs(client)
	require.Len(t, local.Intents, 1)
	assert.Equal(t, character, local.Intents[0].Subject)

	client.DeleteEntity(character)
	assert.True(t, wire.MapToIDs(client).Empty(), "entropy for vanished entities is dropped")
}

func TestStep_DeleteEntityIsDeferred(t *testing.T) {
	c := cosmos.New()
	id := c.CreateEntity(models.KindItem)
	step := NewStep(c, Entropy{}, messages.NewBus())

	step.DeleteEntity(id)

	assert.True(t, c.Alive(id))
	assert.Equal(t, []messages.QueueDeletion{{Subject: id}}, Queue[messages.QueueDeletion](step).Items())
	assert.Equal(t, c.Common().DeltaMs, step.DeltaMs())
}
