package game

import (
	"math"

	"towerdefense-vs/internal/models"
)

// Tower is a placed defensive structure. Its stats grow with each upgrade.
type Tower struct {
	ID              string
	Type            string
	Col, Row        int
	X, Y            float64
	Level           int
	Damage          float64
	Range           float64
	FireRate        float64
	ProjectileSpeed float64
	TotalInvested   int
	TargetID        string

	spec       models.TowerSpec
	maxLevel   int
	refundRate float64
	cooldown   float64
}

// NewTower builds a level-1 tower centered on pixel (x, y).
func NewTower(id string, spec models.TowerSpec, col, row int, x, y float64, settings models.Settings) *Tower {
	return &Tower{
		ID:              id,
		Type:            spec.ID,
		Col:             col,
		Row:             row,
		X:               x,
		Y:               y,
		Level:           1,
		Damage:          spec.Damage,
		Range:           spec.Range,
		FireRate:        spec.FireRate,
		ProjectileSpeed: spec.ProjectileSpeed,
		TotalInvested:   spec.Cost,
		spec:            spec,
		maxLevel:        settings.MaxTowerLevel,
		refundRate:      settings.SellRefundRate,
	}
}

// Update counts down the cooldown, retargets and fires at most one projectile.
func (t *Tower) Update(dt float64, enemies []*Enemy) []*Projectile {
	t.cooldown -= dt

	target := t.FindTarget(enemies)
	if target == nil {
		t.TargetID = ""
		return nil
	}
	t.TargetID = target.ID
	if t.cooldown > 0 {
		return nil
	}

	if t.FireRate > 0 {
		t.cooldown = 1 / t.FireRate
	} else {
		t.cooldown = math.Inf(1)
	}
	return []*Projectile{NewProjectile(t, target)}
}

// FindTarget returns the in-range enemy furthest along the path. Ties keep the
// first enemy encountered, so the result depends only on slice order.
func (t *Tower) FindTarget(enemies []*Enemy) *Enemy {
	var best *Enemy
	bestProgress := -1.0
	for _, e := range enemies {
		if !e.Active() {
			continue
		}
		if e.Flying && !t.spec.CanHitFlying {
			continue
		}
		if distance(t.X, t.Y, e.X, e.Y) > t.Range {
			continue
		}
		if p := e.Progress(); p > bestProgress {
			best = e
			bestProgress = p
		}
	}
	return best
}

func (t *Tower) CanUpgrade() bool {
	return t.Level < t.maxLevel
}

// UpgradeCost grows with the current level.
func (t *Tower) UpgradeCost() int {
	return t.spec.UpgradeCost * t.Level
}

// Upgrade raises the level by one and records the paid cost. Gold is checked by the caller.
func (t *Tower) Upgrade() bool {
	if !t.CanUpgrade() {
		return false
	}
	cost := t.UpgradeCost()
	t.Level++
	t.Damage += t.spec.UpgradeDamageBonus
	t.Range += t.spec.UpgradeRangeBonus
	t.TotalInvested += cost
	return true
}

// SellValue is the refund for selling the tower.
func (t *Tower) SellValue() int {
	return int(math.Floor(float64(t.TotalInvested) * t.refundRate))
}

func (t *Tower) Spec() models.TowerSpec {
	return t.spec
}

func (t *Tower) Snapshot() models.TowerSnapshot {
	return models.TowerSnapshot{
		ID:     t.ID,
		Type:   t.Type,
		Col:    t.Col,
		Row:    t.Row,
		PixelX: t.X,
		PixelY: t.Y,
		Level:  t.Level,
		Damage: t.Damage,
		Range:  t.Range,
		Letter: t.spec.Letter,
	}
}
