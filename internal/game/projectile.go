package game

import "towerdefense-vs/internal/models"

// Projectile homes in on one enemy and resolves its payload on impact.
type Projectile struct {
	X, Y      float64
	Target    *Enemy
	Damage    float64
	Speed     float64
	AOERadius float64
	DOTDamage float64
	DOTTime   float64
	SlowBy    float64
	SlowTime  float64
	TowerType string
	Alive     bool
}

// NewProjectile launches a projectile from a tower at its target with the tower's current stats.
func NewProjectile(t *Tower, target *Enemy) *Projectile {
	spec := t.Spec()
	return &Projectile{
		X:         t.X,
		Y:         t.Y,
		Target:    target,
		Damage:    t.Damage,
		Speed:     t.ProjectileSpeed,
		AOERadius: spec.AOERadius,
		DOTDamage: spec.DOTDamage,
		DOTTime:   spec.DOTDuration,
		SlowBy:    spec.SlowFactor,
		SlowTime:  spec.SlowDuration,
		TowerType: t.Type,
		Alive:     true,
	}
}

// Update moves toward where the target is now and hits when close enough.
// A target that died or left the lane takes the projectile with it.
func (p *Projectile) Update(dt float64, enemies []*Enemy) {
	if !p.Alive {
		return
	}
	if !p.Target.Active() {
		p.Alive = false
		return
	}

	dist := distance(p.X, p.Y, p.Target.X, p.Target.Y)
	step := p.Speed * dt
	if dist < step+p.Target.Radius {
		p.hit(enemies)
		return
	}
	p.X += (p.Target.X - p.X) / dist * step
	p.Y += (p.Target.Y - p.Y) / dist * step
}

func (p *Projectile) hit(enemies []*Enemy) {
	p.Alive = false

	if p.AOERadius <= 0 {
		p.Target.TakeDamage(p.Damage)
		p.applyPayload(p.Target)
		return
	}

	cx, cy := p.Target.X, p.Target.Y
	for _, e := range enemies {
		if !e.Active() {
			continue
		}
		if distance(cx, cy, e.X, e.Y) <= p.AOERadius {
			e.TakeDamage(p.Damage)
			p.applyPayload(e)
		}
	}
}

func (p *Projectile) applyPayload(e *Enemy) {
	if p.DOTDamage > 0 && p.DOTTime > 0 {
		e.ApplyBurn(p.DOTDamage, p.DOTTime)
	}
	if p.SlowBy > 0 && p.SlowTime > 0 {
		e.ApplySlow(p.SlowBy, p.SlowTime)
	}
}

func (p *Projectile) Snapshot() models.ProjectileSnapshot {
	return models.ProjectileSnapshot{
		X:         round1(p.X),
		Y:         round1(p.Y),
		TowerType: p.TowerType,
		AOERadius: p.AOERadius,
	}
}
