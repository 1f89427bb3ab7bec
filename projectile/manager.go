package projectile

import (
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/cube/trace"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/knockback"
	"github.com/legacymc/combat/world"
)

const (
	// ShooterCollisionDelayTicks is the grace window during which a projectile cannot collide with its
	// own shooter.
	ShooterCollisionDelayTicks = 2
	// entityHitExpansion is the amount entity bounding boxes are grown by for projectile collision.
	entityHitExpansion = 0.3
	// waterDrag is the extra velocity damping applied inside water blocks.
	waterDrag = 0.6
	// maxStuckTicks removes projectiles that have been stuck in a block for over an hour.
	maxStuckTicks = 72000
)

// Dispatcher dispatches knockback for a damage result produced by a projectile hit. The combat core
// wires this to its central knockback dispatch so the applied/replacement rules live in one place.
type Dispatcher func(tx world.Tx, res damage.Result, kind knockback.Kind)

// Config holds the construction parameters of a Manager.
type Config struct {
	// Log is the logger warnings are reported on. Defaults to slog.Default().
	Log *slog.Logger
	// Clock is the tick clock of the simulation.
	Clock *clock.Clock
	// Pipeline is the damage pipeline projectile hits are dispatched into.
	Pipeline *damage.Pipeline
	// Dispatch dispatches knockback for projectile damage results. May be nil.
	Dispatch Dispatcher
	// Viewer receives spawn/move/remove updates for simulated projectiles. May be nil.
	Viewer world.ProjectileViewer
	// ResetFall resets the fall distance of an entity, used by ender pearl teleports. May be nil.
	ResetFall func(e world.Entity)
	// RotationLerp is the smoothing factor of the per-tick rotation update. Defaults to 0.2.
	RotationLerp float64
}

// New validates the config and returns a Manager.
func (conf Config) New() (*Manager, error) {
	if conf.Clock == nil {
		return nil, errors.New("projectile: manager requires a clock")
	}
	if conf.Pipeline == nil {
		return nil, errors.New("projectile: manager requires a damage pipeline")
	}
	if conf.RotationLerp <= 0 || conf.RotationLerp > 1 {
		conf.RotationLerp = 0.2
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	return &Manager{
		log:          conf.Log,
		clock:        conf.Clock,
		pipeline:     conf.Pipeline,
		dispatch:     conf.Dispatch,
		viewer:       conf.Viewer,
		resetFall:    conf.ResetFall,
		rotationLerp: conf.RotationLerp,
		byID:         make(map[int64]*Projectile),
	}, nil
}

// Manager owns and simulates all projectile entities of the combat core.
type Manager struct {
	log          *slog.Logger
	clock        *clock.Clock
	pipeline     *damage.Pipeline
	dispatch     Dispatcher
	viewer       world.ProjectileViewer
	resetFall    func(e world.Entity)
	rotationLerp float64

	nextID      int64
	projectiles []*Projectile
	byID        map[int64]*Projectile
}

// SpawnOpts holds the parameters of a projectile spawn.
type SpawnOpts struct {
	// Type is the entity type identifier of the projectile.
	Type string
	// Owner is the entity that shot or threw the projectile, or nil.
	Owner world.Entity
	// Position and Velocity are the spawn position and initial velocity in blocks per second.
	Position, Velocity mgl64.Vec3
	// OriginItem is the item the projectile was spawned from, carrying tag overrides into the cascade.
	OriginItem item.Stack
	// BBox is the bounding box of the projectile, relative to its position.
	BBox cube.BBox
	// Gravity and Drag are the per-tick physics constants of the projectile.
	Gravity, Drag float64
	// NoClip disables block collision.
	NoClip bool
	// PiercingLevel is the number of entities the projectile may pass through.
	PiercingLevel int
	// Behaviour implements the subtype reactions of the projectile.
	Behaviour Behaviour
}

// Spawn creates a projectile and registers it for simulation.
func (m *Manager) Spawn(opts SpawnOpts) *Projectile {
	m.nextID++
	p := &Projectile{
		m:             m,
		id:            m.nextID,
		uid:           uuid.New(),
		typ:           opts.Type,
		spawnPos:      opts.Position,
		pos:           opts.Position,
		prevPos:       opts.Position,
		vel:           opts.Velocity,
		rot:           cube.Rot2Vec(opts.Velocity),
		bbox:          opts.BBox,
		gravity:       opts.Gravity,
		drag:          opts.Drag,
		noClip:        opts.NoClip,
		piercingLevel: opts.PiercingLevel,
		originItem:    opts.OriginItem,
		behaviour:     opts.Behaviour,
	}
	if opts.Owner != nil {
		p.owner = opts.Owner.UUID()
	}
	if opts.PiercingLevel > 0 {
		p.pierced = make(map[uuid.UUID]struct{}, opts.PiercingLevel)
	}
	m.projectiles = append(m.projectiles, p)
	m.byID[p.id] = p
	if m.viewer != nil {
		m.viewer.ViewProjectileSpawn(p.id, p.typ, p.pos, p.vel)
	}
	return p
}

// Remove schedules the projectile for removal. The actual removal is deferred one tick so final
// callbacks can still observe it.
func (m *Manager) Remove(p *Projectile) {
	if p.removed {
		return
	}
	p.removed = true
	m.clock.Schedule(1, func() {
		m.purge(p)
	})
}

// purge removes a projectile from the manager immediately.
func (m *Manager) purge(p *Projectile) {
	delete(m.byID, p.id)
	for i, other := range m.projectiles {
		if other == p {
			m.projectiles = append(m.projectiles[:i], m.projectiles[i+1:]...)
			break
		}
	}
	if m.viewer != nil {
		m.viewer.ViewProjectileRemove(p.id)
	}
}

// ByID returns the projectile with the runtime ID passed.
func (m *Manager) ByID(id int64) (*Projectile, bool) {
	p, ok := m.byID[id]
	return p, ok
}

// OwnedBy returns the projectiles owned by the entity passed, of the type passed. An empty type matches
// all projectiles.
func (m *Manager) OwnedBy(owner uuid.UUID, typ string) []*Projectile {
	var out []*Projectile
	for _, p := range m.projectiles {
		if p.removed || p.owner != owner {
			continue
		}
		if typ != "" && p.typ != typ {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Tick advances every projectile by one simulation tick. Projectiles are processed in spawn order; a
// failure simulating one projectile aborts that projectile's tick only.
func (m *Manager) Tick(tx world.Tx) {
	active := m.projectiles
	for _, p := range active {
		if p.removed {
			continue
		}
		m.movementTick(tx, p)
	}
}

// preTicker is implemented by behaviours that need work before physics, such as the fishing bobber's
// hooked state and auto-retract. Returning true skips physics for the tick.
type preTicker interface {
	PreTick(p *Projectile, tx world.Tx) (skip bool)
}

// movementTick performs one physics tick on the projectile.
func (m *Manager) movementTick(tx world.Tx, p *Projectile) {
	p.age++

	if p.stuck {
		p.stuckTicks++
		if p.stuckTicks > maxStuckTicks {
			m.Remove(p)
			return
		}
		if !m.shouldUnstuck(tx, p) {
			return
		}
		p.stuck = false
		p.noGravity = false
		p.stuckTicks = 0
		p.behaviour.OnUnstuck(p, tx)
	}

	if world.IsInVoid(tx, p.pos) {
		m.Remove(p)
		return
	}

	if t, ok := p.behaviour.(preTicker); ok {
		if t.PreTick(p, tx) || p.removed {
			return
		}
	}

	step := p.vel.Mul(1.0 / clock.TicksPerSecond)
	res := m.simulate(tx, p, step)

	p.prevPos = p.pos
	if victim, ok := m.entityCollision(tx, p, p.pos, res.pos); ok {
		if p.behaviour.OnHit(p, tx, victim) {
			m.Remove(p)
			return
		}
	}
	if p.removed {
		return
	}

	p.pos = res.pos
	p.onGround = res.onGround

	if (res.collX || res.collY || res.collZ) && !p.stuck {
		cell := m.collisionCell(p, step, res)
		if p.behaviour.OnStuck(p, tx, cell) {
			p.stuck = true
			p.stuckPos = cell
			p.stuckDir = collisionDirection(step, res)
			p.vel = mgl64.Vec3{}
			p.noGravity = true
			return
		}
		if p.removed {
			return
		}
		if res.collX {
			p.vel[0] = 0
		}
		if res.collY {
			p.vel[1] = 0
		}
		if res.collZ {
			p.vel[2] = 0
		}
	}

	inWater := false
	if b := tx.Block(cube.PosFromVec3(p.pos)); world.Water(b) {
		inWater = true
	}
	hDrag, vDrag := 1-p.drag, 1-p.drag
	if inWater {
		hDrag *= waterDrag
		vDrag *= waterDrag
	}
	p.vel[0] *= hDrag
	p.vel[2] *= hDrag
	p.vel[1] *= vDrag
	if !p.noGravity {
		p.vel[1] -= p.gravity * clock.TicksPerSecond
	}

	if p.vel.Len() > 1e-6 {
		p.rot = lerpRotation(p.rot, cube.Rot2Vec(p.vel), m.rotationLerp)
	}

	// Stuck projectiles suppress position sync to avoid client-side jitter.
	if m.viewer != nil && !p.stuck {
		m.viewer.ViewProjectileMove(p.id, p.pos, p.rot)
	}
}

// physicsResult is the outcome of one swept movement step.
type physicsResult struct {
	pos                 mgl64.Vec3
	collX, collY, collZ bool
	onGround            bool
}

// blockBoxPool caches scratch slices used while collecting collision boxes around a projectile. The
// collider path runs every tick for every projectile, so eliminating these temporary allocations
// reduces GC churn during volleys.
var blockBoxPool = sync.Pool{
	New: func() any {
		return make([]cube.BBox, 0, 16)
	},
}

// simulate performs swept-AABB movement of the projectile against block shapes, moving axis by axis.
func (m *Manager) simulate(tx world.Tx, p *Projectile, step mgl64.Vec3) physicsResult {
	if p.noClip {
		return physicsResult{pos: p.pos.Add(step)}
	}
	box := p.bbox.Translate(p.pos)
	blocks := blockBoxesAround(tx, box.Extend(step))

	deltaX, deltaY, deltaZ := step[0], step[1], step[2]
	if !mgl64.FloatEqualThreshold(deltaY, 0, 1e-8) {
		for _, blockBox := range blocks {
			deltaY = box.YOffset(blockBox, deltaY)
		}
		box = box.Translate(mgl64.Vec3{0, deltaY})
	}
	if !mgl64.FloatEqualThreshold(deltaX, 0, 1e-8) {
		for _, blockBox := range blocks {
			deltaX = box.XOffset(blockBox, deltaX)
		}
		box = box.Translate(mgl64.Vec3{deltaX})
	}
	if !mgl64.FloatEqualThreshold(deltaZ, 0, 1e-8) {
		for _, blockBox := range blocks {
			deltaZ = box.ZOffset(blockBox, deltaZ)
		}
	}
	blockBoxPool.Put(blocks[:0])

	res := physicsResult{
		pos:   p.pos.Add(mgl64.Vec3{deltaX, deltaY, deltaZ}),
		collX: !mgl64.FloatEqual(deltaX, step[0]),
		collY: !mgl64.FloatEqual(deltaY, step[1]),
		collZ: !mgl64.FloatEqual(deltaZ, step[2]),
	}
	res.onGround = res.collY && step[1] < 0
	return res
}

// blockBoxesAround collects the collision boxes of all blocks the box passed may sweep through.
// Unloaded chunks contribute no boxes, so a projectile entering one passes through for that tick
// without corrupting any other state.
func blockBoxesAround(tx world.Tx, box cube.BBox) []cube.BBox {
	grown := box.Grow(0.25)
	min, max := grown.Min(), grown.Max()
	minX, minY, minZ := int(math.Floor(min[0])), int(math.Floor(min[1])), int(math.Floor(min[2]))
	maxX, maxY, maxZ := int(math.Ceil(max[0])), int(math.Ceil(max[1])), int(math.Ceil(max[2]))

	boxes := blockBoxPool.Get().([]cube.BBox)[:0]
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				pos := cube.Pos{x, y, z}
				b := tx.Block(pos)
				if b == nil || !b.Solid() {
					continue
				}
				offset := pos.Vec3()
				for _, shape := range b.Model().BBox(pos) {
					boxes = append(boxes, shape.Translate(offset))
				}
			}
		}
	}
	return boxes
}

// entityCollision ray-intersects the expanded bounding boxes of eligible entities along the movement
// segment and returns the nearest hit.
func (m *Manager) entityCollision(tx world.Tx, p *Projectile, start, end mgl64.Vec3) (world.Living, bool) {
	if start.ApproxEqual(end) {
		return nil, false
	}
	seg := cube.Box(start[0], start[1], start[2], end[0], end[1], end[2]).Grow(1)

	var (
		nearest     world.Living
		nearestDist = math.Inf(1)
	)
	for _, e := range tx.EntitiesWithin(seg) {
		if e.UUID() == p.uid {
			continue
		}
		if p.age <= ShooterCollisionDelayTicks && e.UUID() == p.owner {
			continue
		}
		if _, ok := p.pierced[e.UUID()]; ok {
			continue
		}
		living, ok := e.(world.Living)
		if !ok {
			continue
		}
		if !p.behaviour.CanHit(p, e) {
			continue
		}
		box := e.BBox().Translate(e.Position()).Grow(entityHitExpansion)
		hit, ok := trace.BBoxIntercept(box, start, end)
		if !ok {
			continue
		}
		dist := hit.Position().Sub(start).Len()
		if dist < nearestDist {
			nearest, nearestDist = living, dist
		}
	}
	return nearest, nearest != nil
}

// collisionCell returns the block position the projectile collided with, probing just past the face
// of its box along the collided axes.
func (m *Manager) collisionCell(p *Projectile, step mgl64.Vec3, res physicsResult) cube.Pos {
	box := p.bbox.Translate(p.pos)
	probe := box.Centre()
	if res.collX {
		probe[0] += math.Copysign(box.Width()/2+0.05, step[0])
	}
	if res.collY {
		probe[1] += math.Copysign(box.Height()/2+0.05, step[1])
	}
	if res.collZ {
		probe[2] += math.Copysign(box.Length()/2+0.05, step[2])
	}
	return cube.PosFromVec3(probe)
}

// collisionDirection returns the signs of the attempted motion on the collided axes.
func collisionDirection(step mgl64.Vec3, res physicsResult) mgl64.Vec3 {
	var dir mgl64.Vec3
	if res.collX {
		dir[0] = math.Copysign(1, step[0])
	}
	if res.collY {
		dir[1] = math.Copysign(1, step[1])
	}
	if res.collZ {
		dir[2] = math.Copysign(1, step[2])
	}
	return dir
}

// shouldUnstuck reports if the block a stuck projectile rests against no longer intersects its probe
// box, for example because it was broken.
func (m *Manager) shouldUnstuck(tx world.Tx, p *Projectile) bool {
	b := tx.Block(p.stuckPos)
	if b == nil {
		// Chunk unloaded; leave the projectile stuck rather than guessing.
		return false
	}
	if !b.Solid() {
		return true
	}
	probe := p.bbox.Translate(p.pos).Grow(0.06)
	offset := p.stuckPos.Vec3()
	for _, shape := range b.Model().BBox(p.stuckPos) {
		if shape.Translate(offset).IntersectsWith(probe) {
			return false
		}
	}
	return true
}

// lerpRotation interpolates between two rotations along the shortest angular path.
func lerpRotation(from, to cube.Rotation, factor float64) cube.Rotation {
	return cube.Rotation{
		from.Yaw() + angleDiff(from.Yaw(), to.Yaw())*factor,
		from.Pitch() + (to.Pitch()-from.Pitch())*factor,
	}
}

// angleDiff returns the smallest signed difference between two angles in degrees.
func angleDiff(from, to float64) float64 {
	diff := math.Mod(to-from+540, 360) - 180
	return diff
}
