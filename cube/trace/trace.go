// Package trace implements ray tracing against bounding boxes and the block
// grid, used by projectile collision and server-side hit detection.
package trace

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/legacymc/combat/cube"
)

// Result represents the result of a ray trace collision with a bounding box.
type Result interface {
	// BBox returns the bounding box collided with.
	BBox() cube.BBox
	// Position returns where the ray first collided with the bounding box.
	Position() mgl64.Vec3
	// Face returns the face of the bounding box that was collided on.
	Face() cube.Face
}

// BBoxResult is the result of a basic ray trace collision with a bounding box.
type BBoxResult struct {
	bb   cube.BBox
	pos  mgl64.Vec3
	face cube.Face
}

// BBox ...
func (r BBoxResult) BBox() cube.BBox { return r.bb }

// Position ...
func (r BBoxResult) Position() mgl64.Vec3 { return r.pos }

// Face ...
func (r BBoxResult) Face() cube.Face { return r.face }

// BBoxIntercept performs a ray trace and calculates the point on the BBox's edge nearest to the start
// position that the ray collided with. BBoxIntercept returns a BBoxResult with this point, or false if the
// ray did not collide with the BBox.
func BBoxIntercept(bb cube.BBox, start, end mgl64.Vec3) (result BBoxResult, ok bool) {
	min, max := bb.Min(), bb.Max()

	t1 := (min[0] - start[0]) / (end[0] - start[0])
	t2 := (max[0] - start[0]) / (end[0] - start[0])
	t3 := (min[1] - start[1]) / (end[1] - start[1])
	t4 := (max[1] - start[1]) / (end[1] - start[1])
	t5 := (min[2] - start[2]) / (end[2] - start[2])
	t6 := (max[2] - start[2]) / (end[2] - start[2])

	tMin := math.Max(math.Max(math.Min(t1, t2), math.Min(t3, t4)), math.Min(t5, t6))
	tMax := math.Min(math.Min(math.Max(t1, t2), math.Max(t3, t4)), math.Max(t5, t6))

	// The ray points away from the box, or misses it entirely.
	if tMax < 0 || tMin > tMax || tMin > 1 {
		return BBoxResult{}, false
	}
	t := tMin
	if t < 0 {
		// The start position lies inside the box.
		t = 0
	}
	pos := start.Add(end.Sub(start).Mul(t))

	var face cube.Face
	switch {
	case t == t1:
		face = cube.FaceWest
	case t == t2:
		face = cube.FaceEast
	case t == t3:
		face = cube.FaceDown
	case t == t4:
		face = cube.FaceUp
	case t == t5:
		face = cube.FaceNorth
	case t == t6:
		face = cube.FaceSouth
	}
	return BBoxResult{bb: bb, pos: pos, face: face}, true
}

// TraverseBlocks performs a fast voxel traversal on the line between start and end, calling f for every
// block position passed. Traversal stops early when f returns false.
func TraverseBlocks(start, end mgl64.Vec3, f func(pos cube.Pos) (con bool)) {
	dir := end.Sub(start)
	if dir.Len() < 1e-8 {
		f(cube.PosFromVec3(start))
		return
	}

	b := cube.PosFromVec3(start)
	x, y, z := b[0], b[1], b[2]
	endB := cube.PosFromVec3(end)

	stepX, stepY, stepZ := sign(dir[0]), sign(dir[1]), sign(dir[2])
	tMaxX := boundary(start[0], dir[0])
	tMaxY := boundary(start[1], dir[1])
	tMaxZ := boundary(start[2], dir[2])
	tDeltaX, tDeltaY, tDeltaZ := math.Inf(1), math.Inf(1), math.Inf(1)
	if dir[0] != 0 {
		tDeltaX = math.Abs(1 / dir[0])
	}
	if dir[1] != 0 {
		tDeltaY = math.Abs(1 / dir[1])
	}
	if dir[2] != 0 {
		tDeltaZ = math.Abs(1 / dir[2])
	}

	for {
		if !f(cube.Pos{x, y, z}) {
			return
		}
		if x == endB[0] && y == endB[1] && z == endB[2] {
			return
		}
		switch {
		case tMaxX < tMaxY && tMaxX < tMaxZ:
			if tMaxX > 1 {
				return
			}
			x += stepX
			tMaxX += tDeltaX
		case tMaxY < tMaxZ:
			if tMaxY > 1 {
				return
			}
			y += stepY
			tMaxY += tDeltaY
		default:
			if tMaxZ > 1 {
				return
			}
			z += stepZ
			tMaxZ += tDeltaZ
		}
	}
}

// sign returns the integer step direction for a traversal component.
func sign(v float64) int {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

// boundary returns the smallest positive t such that s+t*ds crosses an integer boundary.
func boundary(s, ds float64) float64 {
	if ds == 0 {
		return math.Inf(1)
	}
	if ds < 0 {
		s, ds = -s, -ds
	}
	s = s - math.Floor(s)
	return (1 - s) / ds
}
