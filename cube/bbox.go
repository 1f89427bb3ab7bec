package cube

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BBox represents an Axis Aligned Bounding Box in a 3D space. It is defined as two Vec3s, of which one is the
// minimum and one is the maximum.
type BBox struct {
	min, max mgl64.Vec3
}

// Box creates a new axis aligned bounding box with the minimum and maximum coordinates provided.
func Box(x0, y0, z0, x1, y1, z1 float64) BBox {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if z0 > z1 {
		z0, z1 = z1, z0
	}
	return BBox{min: mgl64.Vec3{x0, y0, z0}, max: mgl64.Vec3{x1, y1, z1}}
}

// Grow grows the bounding box in all directions by x and returns the new bounding box.
func (box BBox) Grow(x float64) BBox {
	add := mgl64.Vec3{x, x, x}
	return BBox{min: box.min.Sub(add), max: box.max.Add(add)}
}

// Min returns the minimum coordinate of the bounding box.
func (box BBox) Min() mgl64.Vec3 {
	return box.min
}

// Max returns the maximum coordinate of the bounding box.
func (box BBox) Max() mgl64.Vec3 {
	return box.max
}

// Width returns the width of the BBox.
func (box BBox) Width() float64 {
	return box.max[0] - box.min[0]
}

// Length returns the length of the BBox.
func (box BBox) Length() float64 {
	return box.max[2] - box.min[2]
}

// Height returns the height of the BBox.
func (box BBox) Height() float64 {
	return box.max[1] - box.min[1]
}

// Extend expands the BBox on all axes as represented by the Vec3 passed. Negative coordinates result in an
// expansion towards the negative axis, and vice versa for positive coordinates.
func (box BBox) Extend(vec mgl64.Vec3) BBox {
	if vec[0] < 0 {
		box.min[0] += vec[0]
	} else if vec[0] > 0 {
		box.max[0] += vec[0]
	}
	if vec[1] < 0 {
		box.min[1] += vec[1]
	} else if vec[1] > 0 {
		box.max[1] += vec[1]
	}
	if vec[2] < 0 {
		box.min[2] += vec[2]
	} else if vec[2] > 0 {
		box.max[2] += vec[2]
	}
	return box
}

// ExtendTowards extends the bounding box by x in a given direction.
func (box BBox) ExtendTowards(f Face, x float64) BBox {
	switch f {
	case FaceDown:
		box.min[1] -= x
	case FaceUp:
		box.max[1] += x
	case FaceNorth:
		box.min[2] -= x
	case FaceSouth:
		box.max[2] += x
	case FaceWest:
		box.min[0] -= x
	case FaceEast:
		box.max[0] += x
	}
	return box
}

// Translate moves the entire BBox with the Vec3 given. The (minimum and maximum) x, y and z coordinates are
// moved by those in the Vec3 passed.
func (box BBox) Translate(vec mgl64.Vec3) BBox {
	return BBox{min: box.min.Add(vec), max: box.max.Add(vec)}
}

// TranslateTowards moves the entire AABB by x in the direction of a Face passed.
func (box BBox) TranslateTowards(f Face, x float64) BBox {
	switch f {
	case FaceDown:
		return box.Translate(mgl64.Vec3{0, -x, 0})
	case FaceUp:
		return box.Translate(mgl64.Vec3{0, x, 0})
	case FaceNorth:
		return box.Translate(mgl64.Vec3{0, 0, -x})
	case FaceSouth:
		return box.Translate(mgl64.Vec3{0, 0, x})
	case FaceWest:
		return box.Translate(mgl64.Vec3{-x, 0, 0})
	case FaceEast:
		return box.Translate(mgl64.Vec3{x, 0, 0})
	}
	return box
}

// IntersectsWith checks if the BBox intersects with another BBox, returning true if this is the case.
func (box BBox) IntersectsWith(other BBox) bool {
	if other.max[0]-box.min[0] > 1e-5 && box.max[0]-other.min[0] > 1e-5 {
		if other.max[1]-box.min[1] > 1e-5 && box.max[1]-other.min[1] > 1e-5 {
			return other.max[2]-box.min[2] > 1e-5 && box.max[2]-other.min[2] > 1e-5
		}
	}
	return false
}

// Vec3Within checks if a Vec3 is within the BBox passed.
func (box BBox) Vec3Within(vec mgl64.Vec3) bool {
	if vec[0] <= box.min[0] || vec[0] >= box.max[0] {
		return false
	}
	if vec[2] <= box.min[2] || vec[2] >= box.max[2] {
		return false
	}
	return vec[1] > box.min[1] && vec[1] < box.max[1]
}

// Centre returns the centre position of the box: the position exactly between the minimum and maximum.
func (box BBox) Centre() mgl64.Vec3 {
	return box.min.Add(box.max).Mul(0.5)
}

// NearestPoint returns the point inside the box nearest to the Vec3 passed. If the Vec3 lies within the box,
// the Vec3 itself is returned.
func (box BBox) NearestPoint(vec mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if vec[i] < box.min[i] {
			vec[i] = box.min[i]
		} else if vec[i] > box.max[i] {
			vec[i] = box.max[i]
		}
	}
	return vec
}

// XOffset calculates the offset on the X axis between two bounding boxes, returning a delta always smaller
// than or equal to deltaX if deltaX is bigger than 0, or always bigger than or equal to deltaX if it is
// smaller than 0.
func (box BBox) XOffset(nearby BBox, deltaX float64) float64 {
	// Bail out if not within the same Y/Z plane.
	if box.max[1] <= nearby.min[1] || box.min[1] >= nearby.max[1] {
		return deltaX
	} else if box.max[2] <= nearby.min[2] || box.min[2] >= nearby.max[2] {
		return deltaX
	}
	if deltaX > 0 && box.max[0] <= nearby.min[0] {
		difference := nearby.min[0] - box.max[0]
		if difference < deltaX {
			deltaX = difference
		}
	}
	if deltaX < 0 && box.min[0] >= nearby.max[0] {
		difference := nearby.max[0] - box.min[0]
		if difference > deltaX {
			deltaX = difference
		}
	}
	return deltaX
}

// YOffset calculates the offset on the Y axis between two bounding boxes, returning a delta always smaller
// than or equal to deltaY if deltaY is bigger than 0, or always bigger than or equal to deltaY if it is
// smaller than 0.
func (box BBox) YOffset(nearby BBox, deltaY float64) float64 {
	if box.max[0] <= nearby.min[0] || box.min[0] >= nearby.max[0] {
		return deltaY
	} else if box.max[2] <= nearby.min[2] || box.min[2] >= nearby.max[2] {
		return deltaY
	}
	if deltaY > 0 && box.max[1] <= nearby.min[1] {
		difference := nearby.min[1] - box.max[1]
		if difference < deltaY {
			deltaY = difference
		}
	}
	if deltaY < 0 && box.min[1] >= nearby.max[1] {
		difference := nearby.max[1] - box.min[1]
		if difference > deltaY {
			deltaY = difference
		}
	}
	return deltaY
}

// ZOffset calculates the offset on the Z axis between two bounding boxes, returning a delta always smaller
// than or equal to deltaZ if deltaZ is bigger than 0, or always bigger than or equal to deltaZ if it is
// smaller than 0.
func (box BBox) ZOffset(nearby BBox, deltaZ float64) float64 {
	if box.max[0] <= nearby.min[0] || box.min[0] >= nearby.max[0] {
		return deltaZ
	} else if box.max[1] <= nearby.min[1] || box.min[1] >= nearby.max[1] {
		return deltaZ
	}
	if deltaZ > 0 && box.max[2] <= nearby.min[2] {
		difference := nearby.min[2] - box.max[2]
		if difference < deltaZ {
			deltaZ = difference
		}
	}
	if deltaZ < 0 && box.min[2] >= nearby.max[2] {
		difference := nearby.max[2] - box.min[2]
		if difference > deltaZ {
			deltaZ = difference
		}
	}
	return deltaZ
}
