package game

import (
	"towerdefense-vs/internal/grid"
	"towerdefense-vs/internal/models"
)

// Enemy walks the waypoint path of a lane until it dies or reaches the end.
type Enemy struct {
	ID         string
	Type       string
	X, Y       float64
	HP         float64
	MaxHP      float64
	BaseSpeed  float64
	Speed      float64 // effective speed after slows
	Armor      float64
	Flying     bool
	Radius     float64
	GoldReward int
	Alive      bool
	ReachedEnd bool
	Effects    StatusEffects

	waypoints  []grid.Point
	waypointIx int

	rewardCollected bool
	lifeCounted     bool
}

// NewEnemy places an enemy of the given spec on the first waypoint.
func NewEnemy(id string, spec models.EnemySpec, waypoints []grid.Point) *Enemy {
	e := &Enemy{
		ID:         id,
		Type:       spec.ID,
		HP:         spec.HP,
		MaxHP:      spec.HP,
		BaseSpeed:  spec.Speed,
		Speed:      spec.Speed,
		Armor:      spec.Armor,
		Flying:     spec.Flying,
		Radius:     spec.Radius,
		GoldReward: spec.GoldReward,
		Alive:      true,
		waypoints:  waypoints,
	}
	if len(waypoints) > 0 {
		e.X, e.Y = waypoints[0].X, waypoints[0].Y
	} else {
		e.ReachedEnd = true
	}
	return e
}

// Active reports whether the enemy is still on the field: alive and not through the exit.
func (e *Enemy) Active() bool {
	return e.Alive && !e.ReachedEnd
}

// Update ages status effects, applies burn damage and moves toward the current waypoint.
func (e *Enemy) Update(dt float64) {
	if !e.Active() {
		return
	}

	factor, burn := e.Effects.Tick(dt)
	e.Speed = e.BaseSpeed * factor
	if burn > 0 {
		ApplyDamage(e, burn)
		if !e.Alive {
			return
		}
	}

	if e.waypointIx >= len(e.waypoints) {
		e.ReachedEnd = true
		return
	}

	target := e.waypoints[e.waypointIx]
	dist := distance(e.X, e.Y, target.X, target.Y)
	step := e.Speed * dt
	if dist <= step {
		e.X, e.Y = target.X, target.Y
		e.waypointIx++
		if e.waypointIx >= len(e.waypoints) {
			e.ReachedEnd = true
		}
		return
	}
	e.X += (target.X - e.X) / dist * step
	e.Y += (target.Y - e.Y) / dist * step
}

// TakeDamage applies a hit reduced by armor.
func (e *Enemy) TakeDamage(damage float64) {
	ApplyDamage(e, CalculateDamage(damage, e.Armor))
}

func (e *Enemy) ApplySlow(factor, duration float64) {
	e.Effects.ApplySlow(factor, duration)
}

func (e *Enemy) ApplyBurn(dps, duration float64) {
	e.Effects.ApplyBurn(dps, duration)
}

// Progress is the fraction of waypoints already passed; towers use it to pick targets.
func (e *Enemy) Progress() float64 {
	if e.waypointIx == 0 || len(e.waypoints) == 0 {
		return 0
	}
	return float64(e.waypointIx) / float64(len(e.waypoints))
}

// WaypointIndex is the index of the waypoint the enemy is heading to.
func (e *Enemy) WaypointIndex() int {
	return e.waypointIx
}

func (e *Enemy) Snapshot() models.EnemySnapshot {
	return models.EnemySnapshot{
		ID:      e.ID,
		Type:    e.Type,
		X:       round1(e.X),
		Y:       round1(e.Y),
		HP:      round1(e.HP),
		MaxHP:   e.MaxHP,
		Flying:  e.Flying,
		Effects: e.Effects.Kinds(),
	}
}
