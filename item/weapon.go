package item

import "math"

// Enchantment identifiers consulted by the combat core.
const (
	EnchantKnockback  = "minecraft:knockback"
	EnchantPunch      = "minecraft:punch"
	EnchantFlame      = "minecraft:flame"
	EnchantPower      = "minecraft:power"
	EnchantSharpness  = "minecraft:sharpness"
	EnchantFireAspect = "minecraft:fire_aspect"
)

// attackDamage holds the base melee damage dealt by each weapon material. Materials not present deal the
// default fist damage.
var attackDamage = map[string]float64{
	"minecraft:wooden_sword":    4,
	"minecraft:golden_sword":    4,
	"minecraft:stone_sword":     5,
	"minecraft:iron_sword":      6,
	"minecraft:diamond_sword":   7,
	"minecraft:netherite_sword": 8,

	"minecraft:wooden_axe":    3,
	"minecraft:golden_axe":    3,
	"minecraft:stone_axe":     4,
	"minecraft:iron_axe":      5,
	"minecraft:diamond_axe":   6,
	"minecraft:netherite_axe": 7,

	"minecraft:wooden_pickaxe":    2,
	"minecraft:golden_pickaxe":    2,
	"minecraft:stone_pickaxe":     3,
	"minecraft:iron_pickaxe":      4,
	"minecraft:diamond_pickaxe":   5,
	"minecraft:netherite_pickaxe": 6,

	"minecraft:wooden_shovel":    1,
	"minecraft:golden_shovel":    1,
	"minecraft:stone_shovel":     2,
	"minecraft:iron_shovel":      3,
	"minecraft:diamond_shovel":   4,
	"minecraft:netherite_shovel": 5,
}

// fistDamage is the melee damage dealt with an empty hand or a non-weapon item.
const fistDamage = 1.0

// AttackDamage returns the melee damage dealt by the stack passed, including the sharpness bonus.
func (s Stack) AttackDamage() float64 {
	base, ok := attackDamage[s.material]
	if !ok {
		base = fistDamage
	}
	if level := s.Enchantment(EnchantSharpness); level > 0 {
		base += 1.25 * float64(level)
	}
	return base
}

// BowPower returns the draw power of a bow held for the duration passed, in seconds. The result is in the
// range 0 to 1; a power of 1 produces a critical arrow.
func BowPower(holdSeconds float64) float64 {
	if holdSeconds < 0 {
		return 0
	}
	return math.Min(1, (holdSeconds*holdSeconds+2*holdSeconds)/3)
}

// armourPoints holds the defence points of each armour material.
var armourPoints = map[string]float64{
	"minecraft:leather_helmet":   1,
	"minecraft:leather_chestplate": 3,
	"minecraft:leather_leggings": 2,
	"minecraft:leather_boots":    1,

	"minecraft:golden_helmet":     2,
	"minecraft:golden_chestplate": 5,
	"minecraft:golden_leggings":   3,
	"minecraft:golden_boots":      1,

	"minecraft:chainmail_helmet":     2,
	"minecraft:chainmail_chestplate": 5,
	"minecraft:chainmail_leggings":   4,
	"minecraft:chainmail_boots":      1,

	"minecraft:iron_helmet":     2,
	"minecraft:iron_chestplate": 6,
	"minecraft:iron_leggings":   5,
	"minecraft:iron_boots":      2,

	"minecraft:diamond_helmet":     3,
	"minecraft:diamond_chestplate": 8,
	"minecraft:diamond_leggings":   6,
	"minecraft:diamond_boots":      3,

	"minecraft:netherite_helmet":     3,
	"minecraft:netherite_chestplate": 8,
	"minecraft:netherite_leggings":   6,
	"minecraft:netherite_boots":      3,
}

// ArmourPoints returns the defence points granted by the armour stack passed, or 0 for non-armour items.
func (s Stack) ArmourPoints() float64 {
	return armourPoints[s.material]
}

const blockableSuffix = "_sword"

// Blockable reports if the stack may be used to block incoming attacks. Swords are the blocking items of
// legacy combat.
func (s Stack) Blockable() bool {
	if s.Empty() {
		return false
	}
	if len(s.material) < len(blockableSuffix) {
		return false
	}
	return s.material[len(s.material)-len(blockableSuffix):] == blockableSuffix
}
