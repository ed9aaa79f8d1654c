package game

import "math"

// CalculateDamage returns the damage left after flat armor reduction. It never goes negative.
func CalculateDamage(attack, armor float64) float64 {
	dmg := attack - armor
	if dmg < 0 {
		dmg = 0
	}
	return dmg
}

// ApplyDamage reduces an enemy's HP, flooring at zero and marking it dead there.
func ApplyDamage(e *Enemy, amount float64) {
	e.HP -= amount
	if e.HP <= 0 {
		e.HP = 0
		e.Alive = false
	}
}

func distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(bx-ax, by-ay)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
