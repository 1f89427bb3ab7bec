// Package testutil provides in-memory world doubles shared by the combat core tests.
package testutil

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/world"
)

// Entity is a scriptable world.Player implementation.
type Entity struct {
	ID      uuid.UUID
	RID     int64
	Type    string
	NameV   string
	Pos     mgl64.Vec3
	Vel     mgl64.Vec3
	Rot     cube.Rotation
	Ground  bool
	Box     cube.BBox
	HealthV float64
	MaxV    float64
	Water   bool

	Mode     world.GameMode
	LatencyV time.Duration
	Held     item.Stack
	OffHand  item.Stack
	ArmourV  [4]item.Stack
	Sneak    bool
	Sprint   bool
}

var nextRID int64

// NewPlayer returns a player double with a full-size hitbox at the position passed.
func NewPlayer(name string, pos mgl64.Vec3) *Entity {
	nextRID++
	return &Entity{
		ID:      uuid.New(),
		RID:     nextRID,
		Type:    "minecraft:player",
		NameV:   name,
		Pos:     pos,
		Box:     cube.Box(-0.3, 0, -0.3, 0.3, 1.8, 0.3),
		HealthV: 20,
		MaxV:    20,
		Ground:  true,
	}
}

func (e *Entity) UUID() uuid.UUID            { return e.ID }
func (e *Entity) RuntimeID() int64           { return e.RID }
func (e *Entity) EntityType() string         { return e.Type }
func (e *Entity) Position() mgl64.Vec3       { return e.Pos }
func (e *Entity) Velocity() mgl64.Vec3       { return e.Vel }
func (e *Entity) Rotation() cube.Rotation    { return e.Rot }
func (e *Entity) OnGround() bool             { return e.Ground }
func (e *Entity) BBox() cube.BBox            { return e.Box }
func (e *Entity) Health() float64            { return e.HealthV }
func (e *Entity) MaxHealth() float64         { return e.MaxV }
func (e *Entity) InWater() bool              { return e.Water }
func (e *Entity) Name() string               { return e.NameV }
func (e *Entity) GameMode() world.GameMode   { return e.Mode }
func (e *Entity) Latency() time.Duration     { return e.LatencyV }
func (e *Entity) HeldItem() item.Stack       { return e.Held }
func (e *Entity) OffHandItem() item.Stack    { return e.OffHand }
func (e *Entity) Armour() [4]item.Stack      { return e.ArmourV }
func (e *Entity) Sneaking() bool             { return e.Sneak }
func (e *Entity) Sprinting() bool            { return e.Sprint }

// Mob is a scriptable world.Living implementation that is not a player.
type Mob struct {
	ID      uuid.UUID
	RID     int64
	Type    string
	Pos     mgl64.Vec3
	Vel     mgl64.Vec3
	Rot     cube.Rotation
	Ground  bool
	Box     cube.BBox
	HealthV float64
	MaxV    float64
	Water   bool
}

// NewMob returns a living non-player double at the position passed.
func NewMob(typ string, pos mgl64.Vec3) *Mob {
	nextRID++
	return &Mob{
		ID:      uuid.New(),
		RID:     nextRID,
		Type:    typ,
		Pos:     pos,
		Box:     cube.Box(-0.3, 0, -0.3, 0.3, 1.8, 0.3),
		HealthV: 20,
		MaxV:    20,
		Ground:  true,
	}
}

func (m *Mob) UUID() uuid.UUID         { return m.ID }
func (m *Mob) RuntimeID() int64        { return m.RID }
func (m *Mob) EntityType() string      { return m.Type }
func (m *Mob) Position() mgl64.Vec3    { return m.Pos }
func (m *Mob) Velocity() mgl64.Vec3    { return m.Vel }
func (m *Mob) Rotation() cube.Rotation { return m.Rot }
func (m *Mob) OnGround() bool          { return m.Ground }
func (m *Mob) BBox() cube.BBox         { return m.Box }
func (m *Mob) Health() float64         { return m.HealthV }
func (m *Mob) MaxHealth() float64      { return m.MaxV }
func (m *Mob) InWater() bool           { return m.Water }

// Block is a scriptable world.Block implementation with a full cube model by default.
type Block struct {
	NameV   string
	SolidV  bool
	LiquidV bool
	Boxes   []cube.BBox
}

func (b Block) Name() string            { return b.NameV }
func (b Block) Solid() bool             { return b.SolidV }
func (b Block) Liquid() bool            { return b.LiquidV }
func (b Block) Model() world.BlockModel { return b }

// BBox implements world.BlockModel.
func (b Block) BBox(cube.Pos) []cube.BBox {
	if b.Boxes != nil {
		return b.Boxes
	}
	if !b.SolidV {
		return nil
	}
	return []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}
}

// Stone returns a full solid block.
func Stone() Block {
	return Block{NameV: "minecraft:stone", SolidV: true}
}

// Water returns a water block.
func Water() Block {
	return Block{NameV: "minecraft:water", LiquidV: true}
}

// CactusBlock returns a cactus block with its slightly inset model.
func CactusBlock() Block {
	return Block{NameV: "minecraft:cactus", SolidV: true, Boxes: []cube.BBox{cube.Box(0.0625, 0, 0.0625, 0.9375, 1, 0.9375)}}
}

// FireBlock returns a fire block.
func FireBlock() Block {
	return Block{NameV: "minecraft:fire"}
}

// Tx is an in-memory world.Tx recording every mutation the combat core performs.
type Tx struct {
	Blocks  map[cube.Pos]world.Block
	Ents    []world.Entity
	MinY    int
	MaxY    int
	Removed map[uuid.UUID]bool

	VelocitySets   map[uuid.UUID]mgl64.Vec3
	VelocityEvents []uuid.UUID
	Hurts         []uuid.UUID
	SilentUpdates []uuid.UUID
	FireTicks     map[uuid.UUID]int
	Teleports     map[uuid.UUID]mgl64.Vec3
	Sounds        []string
	Particles     []string
	Statuses      map[int64]byte
	Equipment     []uuid.UUID
}

// NewTx returns an empty transaction double with a standard world range.
func NewTx(entities ...world.Entity) *Tx {
	return &Tx{
		Blocks:       map[cube.Pos]world.Block{},
		Ents:         entities,
		MinY:         -64,
		MaxY:         320,
		Removed:      map[uuid.UUID]bool{},
		VelocitySets: map[uuid.UUID]mgl64.Vec3{},
		FireTicks:    map[uuid.UUID]int{},
		Teleports:    map[uuid.UUID]mgl64.Vec3{},
		Statuses:     map[int64]byte{},
	}
}

// Add registers additional entities with the transaction.
func (tx *Tx) Add(entities ...world.Entity) {
	tx.Ents = append(tx.Ents, entities...)
}

func (tx *Tx) Block(pos cube.Pos) world.Block {
	b, ok := tx.Blocks[pos]
	if !ok {
		return Block{NameV: "minecraft:air"}
	}
	return b
}

func (tx *Tx) EntitiesWithin(box cube.BBox) []world.Entity {
	var out []world.Entity
	for _, e := range tx.Ents {
		if tx.Removed[e.UUID()] {
			continue
		}
		if e.BBox().Translate(e.Position()).IntersectsWith(box) {
			out = append(out, e)
		}
	}
	return out
}

func (tx *Tx) Entity(id uuid.UUID) (world.Entity, bool) {
	if tx.Removed[id] {
		return nil, false
	}
	for _, e := range tx.Ents {
		if e.UUID() == id {
			return e, true
		}
	}
	return nil, false
}

func (tx *Tx) Range() [2]int {
	return [2]int{tx.MinY, tx.MaxY}
}

func (tx *Tx) SetVelocity(e world.Entity, vel mgl64.Vec3) {
	tx.VelocitySets[e.UUID()] = vel
	tx.VelocityEvents = append(tx.VelocityEvents, e.UUID())
	if ent, ok := e.(*Entity); ok {
		ent.Vel = vel
	}
}

func (tx *Tx) SetHealth(l world.Living, health float64) {
	tx.Hurts = append(tx.Hurts, l.UUID())
	if ent, ok := l.(*Entity); ok {
		ent.HealthV = health
	}
}

func (tx *Tx) SetHealthSilent(l world.Living, health float64) {
	tx.SilentUpdates = append(tx.SilentUpdates, l.UUID())
	if ent, ok := l.(*Entity); ok {
		ent.HealthV = health
	}
}

func (tx *Tx) SetOnFire(e world.Entity, ticks int) {
	tx.FireTicks[e.UUID()] = ticks
}

func (tx *Tx) OnFireTicks(e world.Entity) int {
	return tx.FireTicks[e.UUID()]
}

func (tx *Tx) Teleport(e world.Entity, pos mgl64.Vec3) {
	tx.Teleports[e.UUID()] = pos
	if ent, ok := e.(*Entity); ok {
		ent.Pos = pos
	}
}

func (tx *Tx) PlaySound(pos mgl64.Vec3, sound string) {
	tx.Sounds = append(tx.Sounds, sound)
}

func (tx *Tx) AddParticle(pos mgl64.Vec3, particle string) {
	tx.Particles = append(tx.Particles, particle)
}

func (tx *Tx) TriggerStatus(e world.Entity, status byte) {
	tx.Statuses[e.RuntimeID()] = status
}

func (tx *Tx) SendActionBar(p world.Player, message string) {}

func (tx *Tx) SendEquipmentUpdate(p world.Player) {
	tx.Equipment = append(tx.Equipment, p.UUID())
}

// FloorAt fills a solid floor of stone at the Y level passed, spanning the square radius passed around
// the origin.
func (tx *Tx) FloorAt(y, radius int) {
	for x := -radius; x <= radius; x++ {
		for z := -radius; z <= radius; z++ {
			tx.Blocks[cube.Pos{x, y, z}] = Stone()
		}
	}
}
