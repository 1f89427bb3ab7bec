package cube

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotation describes the rotation of an entity as a yaw and pitch in degrees. Yaw is rotation around the
// vertical axis, pitch the rotation around the horizontal axis.
type Rotation [2]float64

// Yaw returns the yaw of the Rotation, in the range -180 to 180, with 0 being south.
func (r Rotation) Yaw() float64 {
	return r[0]
}

// Pitch returns the pitch of the Rotation, in the range -90 to 90, with negative pitch looking up.
func (r Rotation) Pitch() float64 {
	return r[1]
}

// Vec3 returns the direction vector of the Rotation.
func (r Rotation) Vec3() mgl64.Vec3 {
	yaw, pitch := mgl64.DegToRad(r.Yaw()), mgl64.DegToRad(r.Pitch())
	m := math.Cos(pitch)
	return mgl64.Vec3{
		-m * math.Sin(yaw),
		-math.Sin(pitch),
		m * math.Cos(yaw),
	}
}

// DirectionVec3 returns the horizontal direction vector of the Rotation, with the pitch discarded. The
// vector returned lies in the XZ plane and always has a length of 1, whatever the pitch.
func (r Rotation) DirectionVec3() mgl64.Vec3 {
	yaw := mgl64.DegToRad(r.Yaw())
	return mgl64.Vec3{-math.Sin(yaw), 0, math.Cos(yaw)}
}

// Rot2Vec converts a direction vector to a Rotation. The zero vector produces a zero Rotation.
func Rot2Vec(vec mgl64.Vec3) Rotation {
	if vec.Len() < 1e-10 {
		return Rotation{}
	}
	yaw := math.Atan2(vec[2], vec[0])*(180/math.Pi) - 90
	pitch := -math.Atan2(vec[1], math.Sqrt(vec[0]*vec[0]+vec[2]*vec[2])) * (180 / math.Pi)
	return Rotation{yaw, pitch}
}
