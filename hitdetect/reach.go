// Package hitdetect implements reach validation, server-side raycasting for modern clients and the
// swing-window tracker of the combat core.
package hitdetect

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/cube/trace"
	"github.com/legacymc/combat/world"
)

// ReachConfig holds the parameters of the reach gate.
type ReachConfig struct {
	// MaxReach is the maximum attack distance. Defaults to 3.
	MaxReach float64
	// ExpansionLimit is the slack granted for hitbox expansion and interpolation error. Defaults to
	// 0.3.
	ExpansionLimit float64
}

// withDefaults fills zero fields with the standard survival reach values.
func (c ReachConfig) withDefaults() ReachConfig {
	if c.MaxReach == 0 {
		c.MaxReach = 3
	}
	if c.ExpansionLimit == 0 {
		c.ExpansionLimit = 0.3
	}
	return c
}

// Valid reports if the victim is within attack reach of the attacker. A cheap horizontal check rejects
// distant victims before the full 3D distance is computed.
func (c ReachConfig) Valid(attacker world.Player, victim world.Entity, eyes world.EyeHeights) bool {
	c = c.withDefaults()
	eye := world.EyePosition(attacker, eyes)
	box := victim.BBox().Translate(victim.Position())

	nearest := box.NearestPoint(eye)
	dx, dz := nearest[0]-eye[0], nearest[2]-eye[2]
	if math.Sqrt(dx*dx+dz*dz) > c.MaxReach+c.ExpansionLimit {
		return false
	}

	effective := eye.Sub(box.Centre()).Len() - c.ExpansionLimit
	if effective < 0 {
		effective = 0
	}
	return effective <= c.MaxReach
}

// primaryHitboxExpansion is the bounding box expansion applied to raycast targets.
const primaryHitboxExpansion = 0.1

// FindTargetFromSwing raycasts from the attacker's eyes along its look direction and returns the
// nearest living entity hit, used to resolve arm swings of modern clients server-side. With
// filterBlocks set, a solid block in front of every entity resolves to no target.
func FindTargetFromSwing(tx world.Tx, attacker world.Player, c ReachConfig, eyes world.EyeHeights, filterBlocks bool) (world.Living, bool) {
	c = c.withDefaults()
	eye := world.EyePosition(attacker, eyes)
	dir := attacker.Rotation().Vec3()
	end := eye.Add(dir.Mul(c.MaxReach + c.ExpansionLimit))

	var blockDist = math.Inf(1)
	if filterBlocks {
		if hit, ok := firstSolidBlockHit(tx, eye, end); ok {
			blockDist = hit.Sub(eye).Len()
		}
	}

	seg := cube.Box(eye[0], eye[1], eye[2], end[0], end[1], end[2]).Grow(1)
	var (
		nearest     world.Living
		nearestDist = math.Inf(1)
	)
	for _, e := range tx.EntitiesWithin(seg) {
		if e.UUID() == attacker.UUID() {
			continue
		}
		living, ok := e.(world.Living)
		if !ok {
			continue
		}
		box := e.BBox().Translate(e.Position()).Grow(primaryHitboxExpansion)
		hit, ok := trace.BBoxIntercept(box, eye, end)
		if !ok {
			continue
		}
		dist := hit.Position().Sub(eye).Len()
		if dist >= blockDist {
			continue
		}
		if Occluded(tx, eye, hit.Position()) {
			continue
		}
		if dist < nearestDist {
			nearest, nearestDist = living, dist
		}
	}
	return nearest, nearest != nil
}

// Occluded reports if a solid block intersects the segment between the two positions passed.
func Occluded(tx world.Tx, from, to mgl64.Vec3) bool {
	occluded := false
	trace.TraverseBlocks(from, to, func(pos cube.Pos) bool {
		b := tx.Block(pos)
		if b == nil || !b.Solid() {
			return true
		}
		offset := pos.Vec3()
		for _, shape := range b.Model().BBox(pos) {
			if _, ok := trace.BBoxIntercept(shape.Translate(offset), from, to); ok {
				occluded = true
				return false
			}
		}
		return true
	})
	return occluded
}

// firstSolidBlockHit returns the position of the first solid block surface the segment passed crosses.
func firstSolidBlockHit(tx world.Tx, from, to mgl64.Vec3) (mgl64.Vec3, bool) {
	var (
		hitPos mgl64.Vec3
		found  bool
	)
	trace.TraverseBlocks(from, to, func(pos cube.Pos) bool {
		b := tx.Block(pos)
		if b == nil || !b.Solid() {
			return true
		}
		offset := pos.Vec3()
		for _, shape := range b.Model().BBox(pos) {
			if hit, ok := trace.BBoxIntercept(shape.Translate(offset), from, to); ok {
				if !found || hit.Position().Sub(from).Len() < hitPos.Sub(from).Len() {
					hitPos, found = hit.Position(), true
				}
			}
		}
		return !found
	})
	return hitPos, found
}
