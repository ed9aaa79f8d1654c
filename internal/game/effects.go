package game

// MaxBurnStacks is the number of burns an enemy can carry at once.
const MaxBurnStacks = 3

// Slow multiplies movement speed by Factor until Remaining runs out.
type Slow struct {
	Factor    float64
	Remaining float64
}

// Burn deals DPS damage per second until Remaining runs out.
type Burn struct {
	DPS       float64
	Remaining float64
}

// StatusEffects owns an enemy's timed effects and their stacking rules:
// a single slow slot that a new slow overwrites, and up to MaxBurnStacks burns
// where an extra burn refreshes the oldest one.
type StatusEffects struct {
	slow  *Slow
	burns []Burn // oldest first
}

// ApplySlow replaces any active slow with the new factor and duration.
func (s *StatusEffects) ApplySlow(factor, duration float64) {
	s.slow = &Slow{Factor: factor, Remaining: duration}
}

// ApplyBurn adds a burn, or refreshes the oldest one when all slots are taken.
func (s *StatusEffects) ApplyBurn(dps, duration float64) {
	if len(s.burns) < MaxBurnStacks {
		s.burns = append(s.burns, Burn{DPS: dps, Remaining: duration})
		return
	}
	s.burns[0] = Burn{DPS: dps, Remaining: duration}
}

// Tick ages every effect by dt, drops expired ones and returns the speed multiplier of the
// surviving slow (1 when none) and the burn damage dealt during this step.
func (s *StatusEffects) Tick(dt float64) (speedFactor, burnDamage float64) {
	speedFactor = 1
	if s.slow != nil {
		s.slow.Remaining -= dt
		if s.slow.Remaining > 0 {
			speedFactor = s.slow.Factor
		} else {
			s.slow = nil
		}
	}

	kept := s.burns[:0]
	for _, b := range s.burns {
		b.Remaining -= dt
		if b.Remaining > 0 {
			burnDamage += b.DPS * dt
			kept = append(kept, b)
		}
	}
	s.burns = kept
	return speedFactor, burnDamage
}

// Slow returns the active slow, if any.
func (s *StatusEffects) Slow() (Slow, bool) {
	if s.slow == nil {
		return Slow{}, false
	}
	return *s.slow, true
}

// Burns returns a copy of the active burns, oldest first.
func (s *StatusEffects) Burns() []Burn {
	return append([]Burn(nil), s.burns...)
}

// Kinds lists the active effect kinds for snapshots.
func (s *StatusEffects) Kinds() []string {
	kinds := make([]string, 0, 1+len(s.burns))
	if s.slow != nil {
		kinds = append(kinds, "slow")
	}
	for range s.burns {
		kinds = append(kinds, "burn")
	}
	return kinds
}
