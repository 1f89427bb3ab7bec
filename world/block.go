package world

import (
	"github.com/legacymc/combat/cube"
)

// Block is an opaque handle to a block as exposed by the host's block registry.
type Block interface {
	// Name returns the identifier of the block, for example "minecraft:cactus".
	Name() string
	// Solid reports if the block has a collision shape that entities and rays cannot pass through.
	Solid() bool
	// Liquid reports if the block is a liquid.
	Liquid() bool
	// Model returns the collision model of the block.
	Model() BlockModel
}

// BlockModel represents the collision shape of a block.
type BlockModel interface {
	// BBox returns the bounding boxes that make up the collision shape of the block at the position
	// passed, relative to the block position.
	BBox(pos cube.Pos) []cube.BBox
}

// Water reports if the block passed is a water block.
func Water(b Block) bool {
	if b == nil || !b.Liquid() {
		return false
	}
	n := b.Name()
	return n == "minecraft:water" || n == "minecraft:flowing_water"
}

// Lava reports if the block passed is a lava block.
func Lava(b Block) bool {
	if b == nil || !b.Liquid() {
		return false
	}
	n := b.Name()
	return n == "minecraft:lava" || n == "minecraft:flowing_lava"
}

// Fire reports if the block passed sets entities inside of it on fire.
func Fire(b Block) bool {
	if b == nil {
		return false
	}
	n := b.Name()
	return n == "minecraft:fire" || n == "minecraft:soul_fire"
}

// Cactus reports if the block passed is a cactus.
func Cactus(b Block) bool {
	return b != nil && b.Name() == "minecraft:cactus"
}
