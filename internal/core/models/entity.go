package models

import "fmt"

// EntityID addresses a slot of the cosmos entity pool.
// Version distinguishes successive occupants of the same slot, so an id that
// outlived its entity keeps resolving to "dead" until the slot is reused by a
// newer version. The zero value never resolves.
type EntityID struct {
	Index   uint32
	Version uint32
}

// IsSet reports whether the id was ever issued by a pool.
func (id EntityID) IsSet() bool {
	return id.Version != 0
}

func (id EntityID) String() string {
	if !id.IsSet() {
		return "entity(unset)"
	}
	return fmt.Sprintf("entity(%d:%d)", id.Index, id.Version)
}

// Less orders ids by slot index, then by version.
func (id EntityID) Less(other EntityID) bool {
	if id.Index != other.Index {
		return id.Index < other.Index
	}
	return id.Version < other.Version
}

// GUID is the cross-session identifier of an entity.
// Wire data refers to entities by GUID; it is remapped to a live EntityID
// right before a step consumes it.
type GUID uint64

// NoGUID is never assigned to an entity.
const NoGUID GUID = 0

// Kind is the closed set of entity flavours the cosmos knows how to spawn.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCharacter
	KindItem
	KindCorpse
	KindObstacle
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindItem:
		return "item"
	case KindCorpse:
		return "corpse"
	case KindObstacle:
		return "obstacle"
	default:
		return "invalid"
	}
}

// Valid reports whether k names a spawnable kind.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// FlavourID identifies the archetype an entity was made from.
// Two stackable items can merge only when their flavours match.
type FlavourID uint32

// SoundID identifies a sound effect asset.
type SoundID uint32

// NoSound is the empty sound asset.
const NoSound SoundID = 0
