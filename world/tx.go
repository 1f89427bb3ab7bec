package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/cube"
)

// Tx is the transaction handle the host passes into every combat core entry point. All world reads and
// entity mutations performed by the core go through it. A Tx is only valid for the duration of the call it
// was passed to and must only be used on the tick goroutine.
type Tx interface {
	// Block returns the block at the position passed. Hosts return nil for positions in unloaded chunks;
	// the core treats nil as air and skips the operation that needed it.
	Block(pos cube.Pos) Block
	// EntitiesWithin returns all entities whose bounding box intersects the box passed.
	EntitiesWithin(box cube.BBox) []Entity
	// Entity looks up an entity by its UUID. The second return value is false if the entity has been
	// removed from the world.
	Entity(id uuid.UUID) (Entity, bool)
	// Range returns the minimum and maximum Y coordinates of the world.
	Range() [2]int

	// SetVelocity sets the velocity of the entity passed and synchronises it to viewers.
	SetVelocity(e Entity, vel mgl64.Vec3)
	// SetHealth sets the health of the living entity passed, emitting the hurt animation and camera tilt
	// to viewers if the health decreased.
	SetHealth(l Living, health float64)
	// SetHealthSilent sets the health of the living entity passed without emitting the hurt animation or
	// camera tilt. Hosts implement this with a metadata-only update for legacy clients and the max-health
	// clamp trick for modern clients.
	SetHealthSilent(l Living, health float64)
	// SetOnFire sets the remaining fire ticks of the entity passed. Zero extinguishes it.
	SetOnFire(e Entity, ticks int)
	// OnFireTicks returns the remaining fire ticks of the entity passed.
	OnFireTicks(e Entity) int
	// Teleport moves the entity to the position passed without interpolation.
	Teleport(e Entity, pos mgl64.Vec3)

	// PlaySound plays a sound by identifier at the position passed.
	PlaySound(pos mgl64.Vec3, sound string)
	// AddParticle spawns a particle effect by identifier at the position passed.
	AddParticle(pos mgl64.Vec3, particle string)
	// TriggerStatus sends an entity status byte for the entity passed to all viewers.
	TriggerStatus(e Entity, status byte)
	// SendActionBar displays an action bar message to the player passed.
	SendActionBar(p Player, message string)
	// SendEquipmentUpdate re-sends the equipment of the player to viewers, used when blocking swaps the
	// visual off-hand item.
	SendEquipmentUpdate(p Player)
}

// ProjectileViewer receives view updates for projectiles simulated by the combat core. The host translates
// these into spawn/move/despawn packets for its clients.
type ProjectileViewer interface {
	// ViewProjectileSpawn is called when a projectile entity starts existing.
	ViewProjectileSpawn(id int64, typ string, pos, vel mgl64.Vec3)
	// ViewProjectileMove is called when a projectile moved during a tick.
	ViewProjectileMove(id int64, pos mgl64.Vec3, rot cube.Rotation)
	// ViewProjectileRemove is called when a projectile is removed from the world.
	ViewProjectileRemove(id int64)
}

// IsInVoid reports if the position passed is below the void boundary of the world.
func IsInVoid(tx Tx, pos mgl64.Vec3) bool {
	return pos[1] < float64(tx.Range()[0])-8
}

// SolidAt reports if the block at the position passed is solid. Unloaded chunks report false.
func SolidAt(tx Tx, pos cube.Pos) bool {
	b := tx.Block(pos)
	return b != nil && b.Solid()
}
