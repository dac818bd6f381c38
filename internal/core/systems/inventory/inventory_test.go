package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/systems/destroy"
)

type world struct {
	c   *cosmos.Cosmos
	bus *messages.Bus
}

func newWorld() *world {
	c := cosmos.New()
	c.ChangeCommon(func(common *cosmos.CommonState) cosmos.ChangerResult {
		common.DeltaMs = 10
		return cosmos.KeepCaches
	})
	return &world{c: c, bus: messages.NewBus()}
}

func (w *world) step() logic.Step {
	w.bus.Clear()
	return logic.NewStep(w.c, logic.Entropy{}, w.bus)
}

func (w *world) stack(charges int, flavour models.FlavourID) models.EntityID {
	id := w.c.CreateEntity(models.KindItem)
	item := cosmos.Get[components.Item](w.c, id)
	item.Charges = charges
	item.Stackable = true
	cosmos.Add(w.c, id, components.Flavour{ID: flavour})
	return id
}

func (w *world) backpack(capacity int) (models.EntityID, models.SlotID) {
	id := w.c.CreateEntity(models.KindItem)
	cosmos.Get[components.Item](w.c, id).Categories = components.CategoryBackWearable

	var container components.Container
	container.Slots[models.SlotItemDeposit] = components.Slot{
		Enabled:   true,
		Category:  components.CategoryAny,
		Capacity:  capacity,
		Behaviour: components.Deposit,
	}
	cosmos.Add(w.c, id, container)

	return id, models.SlotID{Container: id, Function: models.SlotItemDeposit}
}

func hand(character models.EntityID) models.SlotID {
	return models.SlotID{Container: character, Function: models.SlotPrimaryHand}
}

func back(character models.EntityID) models.SlotID {
	return models.SlotID{Container: character, Function: models.SlotBack}
}

func TestPerform_Pickup(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)
	item := w.c.CreateEntity(models.KindItem)

	out := PerformTransfer(w.step(), messages.TransferRequest{Item: item, Target: hand(character)})

	require.Equal(t, ResultPickup, out.Result.Type)
	assert.Equal(t, item, out.Moved)
	assert.Equal(t, []models.EntityID{item}, w.c.ItemsInside(hand(character)))

	// attached as a fixture of the character body
	assert.False(t, cosmos.Get[components.RigidBody](w.c, item).Activated)
	assert.Equal(t, character, cosmos.Get[components.Fixtures](w.c, item).OwnerBody)
	assert.Contains(t, w.c.CollidersOf(character), item)

	picked := messages.QueueOf[messages.Pickup](w.bus).Items()
	require.Len(t, picked, 1)
	assert.Equal(t, messages.Pickup{Subject: character, Item: item}, picked[0])
	assert.NotZero(t, messages.QueueOf[messages.InterpolationCorrection](w.bus).Len())
}

func TestPerform_InsufficientCapacityLeavesCosmosUntouched(t *testing.T) {
	w := newWorld()
	_, deposit := w.backpack(10)

	big := w.stack(5, 1)
	cosmos.Get[components.Item](w.c, big).SpacePerCharge = 2
	require.True(t, Perform(w.c, messages.TransferRequest{Item: big, Target: deposit}).Result.Successful())

	cases := map[string]messages.TransferRequest{
		"full slot":           {Item: w.stack(3, 2), Target: deposit},
		"incompatible target": {Item: w.c.CreateEntity(models.KindItem), Target: back(w.c.CreateEntity(models.KindCharacter))},
	}

	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			before := w.c.Clone()

			out := PerformTransfer(w.step(), r)

			assert.False(t, out.Result.Successful())
			assert.Empty(t, cosmos.Compare(before, w.c))
			assert.Zero(t, messages.QueueOf[messages.Pickup](w.bus).Len())
		})
	}
}

func TestPerform_PartialFit(t *testing.T) {
	w := newWorld()
	_, deposit := w.backpack(10)

	require.True(t, Perform(w.c, messages.TransferRequest{Item: w.stack(8, 1), Target: deposit}).Result.Successful())

	other := w.stack(5, 2)
	out := Perform(w.c, messages.TransferRequest{Item: other, Target: deposit})

	require.Equal(t, ResultPickup, out.Result.Type)
	assert.Equal(t, 2, out.Result.TransferredCharges)
	assert.NotEqual(t, other, out.Moved)
	assert.Equal(t, 3, cosmos.Get[components.Item](w.c, other).Charges)
	assert.Equal(t, 2, cosmos.Get[components.Item](w.c, out.Moved).Charges)
	assert.Equal(t, 10, w.c.SpaceUsed(deposit))
}

func TestPerform_StackingMergesIntoOneEntity(t *testing.T) {
	w := newWorld()
	_, deposit := w.backpack(100)

	first := w.stack(3, 7)
	second := w.stack(4, 7)
	require.True(t, Perform(w.c, messages.TransferRequest{Item: first, Target: deposit}).Result.Successful())

	step := w.step()
	out := PerformTransfer(step, messages.TransferRequest{Item: second, Target: deposit})
	destroy.System{}.Run(step)

	require.True(t, out.Result.Successful())
	assert.Equal(t, first, out.Moved)
	assert.Equal(t, second, out.Destroyed)
	assert.False(t, w.c.Alive(second))
	assert.Equal(t, 7, cosmos.Get[components.Item](w.c, first).Charges)
	assert.Equal(t, []models.EntityID{first}, w.c.ItemsInside(deposit))
}

func TestPerform_DropPartOfStack(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)
	item := w.stack(5, 1)
	require.True(t, Perform(w.c, messages.TransferRequest{Item: item, Target: hand(character)}).Result.Successful())

	step := w.step()
	out := PerformTransfer(step, messages.TransferRequest{Item: item, Quantity: 2, ImpulseOnDrop: 100})

	require.Equal(t, ResultDrop, out.Result.Type)
	require.NotEqual(t, item, out.Moved)

	dropped := cosmos.Get[components.Item](w.c, out.Moved)
	assert.Equal(t, 2, dropped.Charges)
	assert.False(t, dropped.CurrentSlot.IsSet())
	assert.Equal(t, 3, cosmos.Get[components.Item](w.c, item).Charges)
	assert.Equal(t, []models.EntityID{item}, w.c.ItemsInside(hand(character)))

	body := cosmos.Get[components.RigidBody](w.c, out.Moved)
	assert.True(t, body.Activated)
	assert.InDelta(t, 100, body.Velocity.Length(), 1e-9)

	special := cosmos.Get[components.SpecialPhysics](w.c, out.Moved)
	assert.Equal(t, character, special.IgnoreCollisionWith)
	assert.Equal(t, w.c.ElapsedMs()+w.c.Rules().DropCollisionCooldownMs, special.DroppedCooldownUntilMs)

	sounds := messages.QueueOf[messages.StartSound](w.bus).Items()
	require.Len(t, sounds, 1)
	assert.Equal(t, character, sounds[0].Listener)
}

func TestQuery_ItemCannotEnterItself(t *testing.T) {
	w := newWorld()
	outer, outerDeposit := w.backpack(10)
	inner, innerDeposit := w.backpack(10)
	require.True(t, Perform(w.c, messages.TransferRequest{Item: inner, Target: outerDeposit}).Result.Successful())

	assert.Equal(t, ResultItemInsideItself, QueryTransferResult(w.c, messages.TransferRequest{Item: outer, Target: innerDeposit}).Type)
	assert.Equal(t, ResultItemInsideItself, QueryTransferResult(w.c, messages.TransferRequest{Item: outer, Target: outerDeposit}).Type)
}

func TestQuery_DeadCapability(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)
	cosmos.Get[components.Sentience](w.c, character).Health.Value = 0

	r := messages.TransferRequest{Item: w.c.CreateEntity(models.KindItem), Target: hand(character)}
	assert.Equal(t, ResultDeadCapability, QueryTransferResult(w.c, r).Type)
}

func TestPerform_NestedAttachmentRecomputesOwners(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)

	gun := w.c.CreateEntity(models.KindItem)
	var container components.Container
	container.Slots[models.SlotGunMuzzle] = components.Slot{
		Enabled:          true,
		Category:         components.CategoryAny,
		OnlyOne:          true,
		Behaviour:        components.ConnectAsFixture,
		AttachmentOffset: models.Transform{Pos: models.Vec2{X: 5}},
	}
	cosmos.Add(w.c, gun, container)

	silencer := w.c.CreateEntity(models.KindItem)
	require.True(t, Perform(w.c, messages.TransferRequest{
		Item:   silencer,
		Target: models.SlotID{Container: gun, Function: models.SlotGunMuzzle},
	}).Result.Successful())
	assert.Equal(t, gun, cosmos.Get[components.Fixtures](w.c, silencer).OwnerBody)

	require.True(t, Perform(w.c, messages.TransferRequest{Item: gun, Target: hand(character)}).Result.Successful())

	assert.Equal(t, character, cosmos.Get[components.Fixtures](w.c, gun).OwnerBody)
	assert.Equal(t, character, cosmos.Get[components.Fixtures](w.c, silencer).OwnerBody)
	assert.False(t, cosmos.Get[components.RigidBody](w.c, silencer).Activated)
	assert.Equal(t, models.Vec2{X: 25, Y: 10}, cosmos.Get[components.Fixtures](w.c, silencer).Offset.Pos)
}

func runUntilMounted(t *testing.T, w *world, r messages.TransferRequest, limit int) int {
	t.Helper()

	for i := 1; i <= limit; i++ {
		step := w.step()
		if i == 1 {
			logic.Post(step, r)
		}
		System{}.Run(step)

		if _, pending := w.c.PendingMount(r.Item); !pending {
			return i
		}
	}
	return -1
}

func TestMounting_CompletesOnTheSameStepEveryRun(t *testing.T) {
	var completions []int

	for range 2 {
		w := newWorld()
		character := w.c.CreateEntity(models.KindCharacter)
		pack, _ := w.backpack(10)

		completed := runUntilMounted(t, w, messages.TransferRequest{Item: pack, Target: back(character)}, 100)
		completions = append(completions, completed)

		assert.Equal(t, back(character), w.c.CurrentSlot(pack))
		assert.Equal(t, components.Mounted, cosmos.Get[components.Item](w.c, pack).CurrentMounting)
	}

	// 500ms slot with a 10ms step
	assert.Equal(t, []int{50, 50}, completions)
}

func TestMounting_Sounds(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)
	container := cosmos.Get[components.Container](w.c, character)
	container.Slots[models.SlotBack].StartMountingSound = 11
	container.Slots[models.SlotBack].FinishMountingSound = 12
	pack, _ := w.backpack(10)

	step := w.step()
	logic.Post(step, messages.TransferRequest{Item: pack, Target: back(character)})
	System{}.Run(step)

	started := messages.QueueOf[messages.StartSound](w.bus).Items()
	require.Len(t, started, 1)
	assert.Equal(t, models.SoundID(11), started[0].Sound)

	mount, ok := w.c.PendingMount(pack)
	require.True(t, ok)
	mount.ProgressMs = 495
	w.c.SetPendingMount(mount)

	System{}.Run(w.step())

	started = messages.QueueOf[messages.StartSound](w.bus).Items()
	require.Len(t, started, 1)
	assert.Equal(t, models.SoundID(12), started[0].Sound)
	assert.Equal(t, []messages.StopSound{{Sound: 11, Subject: pack}}, messages.QueueOf[messages.StopSound](w.bus).Items())
}

func TestMounting_CancelledWhenCarrierDies(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)
	cosmos.Get[components.Container](w.c, character).Slots[models.SlotBack].StartMountingSound = 11
	pack, _ := w.backpack(10)

	step := w.step()
	logic.Post(step, messages.TransferRequest{Item: pack, Target: back(character)})
	System{}.Run(step)
	_, pending := w.c.PendingMount(pack)
	require.True(t, pending)

	cosmos.Get[components.Sentience](w.c, character).Health.Value = 0
	System{}.Run(w.step())

	_, pending = w.c.PendingMount(pack)
	assert.False(t, pending)
	assert.False(t, w.c.CurrentSlot(pack).IsSet())
	assert.Equal(t, []messages.StopSound{{Sound: 11, Subject: pack}}, messages.QueueOf[messages.StopSound](w.bus).Items())
}

func TestMounting_UnmountDurations(t *testing.T) {
	tests := []struct {
		name   string
		target func(character models.EntityID) models.SlotID
		steps  int
	}{
		// 500 * 0.5
		{name: "to hand", target: hand, steps: 25},
		// 500 * 0.5 * 0.35 = 87.5
		{name: "drop", target: func(models.EntityID) models.SlotID { return models.SlotID{} }, steps: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			character := w.c.CreateEntity(models.KindCharacter)
			pack, _ := w.backpack(10)
			require.True(t, Perform(w.c, messages.TransferRequest{Item: pack, Target: back(character), BypassMounting: true}).Result.Successful())

			completed := runUntilMounted(t, w, messages.TransferRequest{Item: pack, Target: tt.target(character)}, 100)

			assert.Equal(t, tt.steps, completed)
			assert.Equal(t, tt.target(character), w.c.CurrentSlot(pack))
		})
	}
}

func TestMounting_MovesOneChargeAtATime(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)
	belt := models.SlotID{Container: character, Function: models.SlotBelt}

	ammo := w.stack(3, 1)
	cosmos.Get[components.Item](w.c, ammo).Categories = components.CategoryBeltWearable

	completed := runUntilMounted(t, w, messages.TransferRequest{Item: ammo, Target: belt, Quantity: 2}, 200)

	// 300ms per charge
	assert.Equal(t, 60, completed)
	inside := w.c.ItemsInside(belt)
	require.Len(t, inside, 1)
	assert.Equal(t, 2, cosmos.Get[components.Item](w.c, inside[0]).Charges)
	assert.Equal(t, 1, cosmos.Get[components.Item](w.c, ammo).Charges)
}

func TestPerform_MergedDonorCannotBeMergedAgain(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)
	secondary := models.SlotID{Container: character, Function: models.SlotSecondaryHand}

	left, right := w.stack(10, 4), w.stack(10, 4)
	require.True(t, Perform(w.c, messages.TransferRequest{Item: left, Target: hand(character)}).Result.Successful())
	require.True(t, Perform(w.c, messages.TransferRequest{Item: right, Target: secondary}).Result.Successful())

	loose := w.stack(30, 4)

	step := w.step()
	logic.Post(step, messages.TransferRequest{Item: loose, Target: hand(character)})
	logic.Post(step, messages.TransferRequest{Item: loose, Target: secondary})
	System{}.Run(step)
	destroy.System{}.Run(step)

	assert.False(t, w.c.Alive(loose))
	assert.Equal(t, 40, cosmos.Get[components.Item](w.c, left).Charges)
	assert.Equal(t, 10, cosmos.Get[components.Item](w.c, right).Charges)

	total := 0
	cosmos.Each(w.c, func(_ models.EntityID, item *components.Item) {
		total += item.Charges
	})
	assert.Equal(t, 50, total)
}

func TestPerform_JointedBodySlot(t *testing.T) {
	w := newWorld()
	character := w.c.CreateEntity(models.KindCharacter)

	gun := w.c.CreateEntity(models.KindItem)
	var container components.Container
	container.Slots[models.SlotGunMagazine] = components.Slot{
		Enabled:          true,
		Category:         components.CategoryAny,
		OnlyOne:          true,
		Behaviour:        components.ConnectAsJointedBody,
		AttachmentOffset: models.Transform{Pos: models.Vec2{X: 5}, Rotation: 90},
	}
	cosmos.Add(w.c, gun, container)
	require.True(t, Perform(w.c, messages.TransferRequest{Item: gun, Target: hand(character)}).Result.Successful())

	magazine := w.c.CreateEntity(models.KindItem)
	cosmos.Get[components.RigidBody](w.c, magazine).Velocity = models.Vec2{X: 40}
	slot := models.SlotID{Container: gun, Function: models.SlotGunMagazine}
	require.True(t, Perform(w.c, messages.TransferRequest{Item: magazine, Target: slot}).Result.Successful())

	// the magazine keeps its own body, pinned to the character carrying the gun
	joint := cosmos.Get[components.MotorJoint](w.c, magazine)
	assert.True(t, joint.Activated)
	assert.Equal(t, [2]models.EntityID{character, magazine}, joint.TargetBodies)
	assert.Equal(t, models.Vec2{X: 25, Y: 10}, joint.LinearOffset)
	assert.Equal(t, 90.0, joint.AngularOffset)

	body := cosmos.Get[components.RigidBody](w.c, magazine)
	assert.True(t, body.Activated)
	assert.True(t, body.Velocity.IsZero())

	fixtures := cosmos.Get[components.Fixtures](w.c, magazine)
	assert.True(t, fixtures.Activated)
	assert.Equal(t, magazine, fixtures.OwnerBody)
	assert.Equal(t, models.Transform{}, fixtures.Offset)

	assert.Equal(t, models.Transform{Pos: models.Vec2{X: 25, Y: 10}, Rotation: 90}, *cosmos.Get[components.Transform](w.c, magazine))

	require.Equal(t, ResultDrop, Perform(w.c, messages.TransferRequest{Item: magazine}).Result.Type)
	assert.False(t, cosmos.Get[components.MotorJoint](w.c, magazine).Activated)
	assert.True(t, cosmos.Get[components.RigidBody](w.c, magazine).Activated)
}
