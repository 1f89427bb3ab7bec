package damage

import (
	"github.com/legacymc/combat/world"
)

// maxArmourPoints caps the defence points that may contribute to the reduction curve.
const maxArmourPoints = 20

// ArmourPoints sums the defence points of the player's worn armour.
func ArmourPoints(p world.Player) float64 {
	var points float64
	for _, piece := range p.Armour() {
		points += piece.ArmourPoints()
	}
	return points
}

// ReduceByArmour applies the standard armour reduction curve: 4% less damage per defence point, capped at
// 20 points. The result never drops below 0.
func ReduceByArmour(amount, points float64) float64 {
	if points > maxArmourPoints {
		points = maxArmourPoints
	}
	if points < 0 {
		points = 0
	}
	reduced := amount * (1 - 0.04*points)
	if reduced < 0 {
		return 0
	}
	return reduced
}
