package game

import "towerdefense-vs/internal/models"

// SpawnGroup is the runtime state of one wave group.
type SpawnGroup struct {
	EnemyType string
	Remaining int
	Interval  float64
	Timer     float64
}

// WaveSpawner releases the enemies of one wave on per-group timers.
type WaveSpawner struct {
	waves  [][]models.WaveGroup
	groups []*SpawnGroup
	spawn  func(enemyType string) *Enemy
}

// NewWaveSpawner builds a spawner over a wave table. spawn creates one enemy of a type.
func NewWaveSpawner(waves [][]models.WaveGroup, spawn func(enemyType string) *Enemy) *WaveSpawner {
	return &WaveSpawner{waves: waves, spawn: spawn}
}

// WaveCount is the number of waves in the table.
func (s *WaveSpawner) WaveCount() int {
	return len(s.waves)
}

// StartWave loads the groups of a wave. Out-of-range waves are ignored.
func (s *WaveSpawner) StartWave(index int) {
	if index < 0 || index >= len(s.waves) {
		return
	}
	s.groups = s.groups[:0]
	for _, g := range s.waves[index] {
		s.groups = append(s.groups, &SpawnGroup{
			EnemyType: g.EnemyType,
			Remaining: g.Count,
			Interval:  g.Interval,
		})
	}
}

// Update advances every unfinished group and returns the enemies due this step.
// A large dt can release several enemies from one group.
func (s *WaveSpawner) Update(dt float64) []*Enemy {
	var spawned []*Enemy
	for _, g := range s.groups {
		if g.Remaining <= 0 {
			continue
		}
		g.Timer += dt
		for g.Remaining > 0 && g.Timer >= g.Interval {
			g.Timer -= g.Interval
			g.Remaining--
			if e := s.spawn(g.EnemyType); e != nil {
				spawned = append(spawned, e)
			}
		}
	}
	return spawned
}

// Done reports whether every group has released all of its enemies.
func (s *WaveSpawner) Done() bool {
	for _, g := range s.groups {
		if g.Remaining > 0 {
			return false
		}
	}
	return true
}

// Groups exposes the current group state, mainly for tests and debugging.
func (s *WaveSpawner) Groups() []SpawnGroup {
	out := make([]SpawnGroup, len(s.groups))
	for i, g := range s.groups {
		out[i] = *g
	}
	return out
}
