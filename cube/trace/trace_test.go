package trace_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/cube/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBBoxIntercept(t *testing.T) {
	box := cube.Box(0, 0, 0, 1, 1, 1)

	hit, ok := trace.BBoxIntercept(box, mgl64.Vec3{-1, 0.5, 0.5}, mgl64.Vec3{2, 0.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0.5}, hit.Position())
	assert.Equal(t, cube.FaceWest, hit.Face())

	_, ok = trace.BBoxIntercept(box, mgl64.Vec3{-1, 2.5, 0.5}, mgl64.Vec3{2, 2.5, 0.5})
	assert.False(t, ok)

	// A ray pointing away from the box does not hit it.
	_, ok = trace.BBoxIntercept(box, mgl64.Vec3{-1, 0.5, 0.5}, mgl64.Vec3{-3, 0.5, 0.5})
	assert.False(t, ok)

	// A segment ending before the box does not hit it.
	_, ok = trace.BBoxIntercept(box, mgl64.Vec3{-2, 0.5, 0.5}, mgl64.Vec3{-1, 0.5, 0.5})
	assert.False(t, ok)
}

func TestTraverseBlocksStraightLine(t *testing.T) {
	var visited []cube.Pos
	trace.TraverseBlocks(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{3.5, 0.5, 0.5}, func(pos cube.Pos) bool {
		visited = append(visited, pos)
		return true
	})
	assert.Equal(t, []cube.Pos{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}, visited)
}

func TestTraverseBlocksEarlyStop(t *testing.T) {
	count := 0
	trace.TraverseBlocks(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{9.5, 0.5, 0.5}, func(pos cube.Pos) bool {
		count++
		return count < 3
	})
	assert.Equal(t, 3, count)
}

func TestTraverseBlocksDiagonal(t *testing.T) {
	var visited []cube.Pos
	trace.TraverseBlocks(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{2.5, 0.5, 2.5}, func(pos cube.Pos) bool {
		visited = append(visited, pos)
		return true
	})
	assert.Equal(t, cube.Pos{0, 0, 0}, visited[0])
	assert.Equal(t, cube.Pos{2, 0, 2}, visited[len(visited)-1])
	// Voxel traversal steps one axis at a time.
	assert.Len(t, visited, 5)
}
