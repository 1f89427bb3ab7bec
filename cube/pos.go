package cube

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pos holds the position of a block. The position is represented of an array with an x, y and z value,
// where the y value is vertical.
type Pos [3]int

// X returns the X coordinate of the block position.
func (p Pos) X() int {
	return p[0]
}

// Y returns the Y coordinate of the block position.
func (p Pos) Y() int {
	return p[1]
}

// Z returns the Z coordinate of the block position.
func (p Pos) Z() int {
	return p[2]
}

// Add adds two block positions together and returns a new one with the combined values.
func (p Pos) Add(pos Pos) Pos {
	return Pos{p[0] + pos[0], p[1] + pos[1], p[2] + pos[2]}
}

// Vec3 returns a vec3 holding the same coordinates as the block position.
func (p Pos) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
}

// Vec3Centre returns a Vec3 holding the coordinates of the block position with 0.5 added on all axes.
func (p Pos) Vec3Centre() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]) + 0.5, float64(p[1]) + 0.5, float64(p[2]) + 0.5}
}

// Side returns the position on the side of this block position, at a specific face.
func (p Pos) Side(face Face) Pos {
	switch face {
	case FaceUp:
		p[1]++
	case FaceDown:
		p[1]--
	case FaceNorth:
		p[2]--
	case FaceSouth:
		p[2]++
	case FaceWest:
		p[0]--
	case FaceEast:
		p[0]++
	}
	return p
}

// PosFromVec3 returns a block position by a Vec3, rounding the values down adequately.
func PosFromVec3(vec3 mgl64.Vec3) Pos {
	return Pos{int(math.Floor(vec3[0])), int(math.Floor(vec3[1])), int(math.Floor(vec3[2]))}
}

// Face represents the face of a block or entity.
type Face int

const (
	// FaceDown represents the bottom face of a block.
	FaceDown Face = iota
	// FaceUp represents the top face of a block.
	FaceUp
	// FaceNorth represents the north face of a block.
	FaceNorth
	// FaceSouth represents the south face of a block.
	FaceSouth
	// FaceWest represents the west face of the block.
	FaceWest
	// FaceEast represents the east face of the block.
	FaceEast
)

// Axis returns the axis the face is facing. FaceEast and FaceWest correspond to the x-axis, FaceNorth and
// FaceSouth to the z-axis and FaceUp and FaceDown to the y-axis.
func (f Face) Axis() Axis {
	switch f {
	case FaceDown, FaceUp:
		return Y
	case FaceEast, FaceWest:
		return X
	default:
		return Z
	}
}

// Opposite returns the opposite face. FaceDown will return FaceUp and vice versa.
func (f Face) Opposite() Face {
	switch f {
	case FaceDown:
		return FaceUp
	case FaceUp:
		return FaceDown
	case FaceNorth:
		return FaceSouth
	case FaceSouth:
		return FaceNorth
	case FaceWest:
		return FaceEast
	default:
		return FaceWest
	}
}

// Axis represents the axis that a block may be directed in. Most blocks do not have an axis, but blocks such
// as logs or pillars do.
type Axis int

const (
	// Y represents the vertical y-axis.
	Y Axis = iota
	// Z represents the horizontal z-axis.
	Z
	// X represents the horizontal x-axis.
	X
)
