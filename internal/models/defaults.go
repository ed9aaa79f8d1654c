package models

// DefaultGameConfig returns the stock rules: four towers, four enemies and fifteen waves.
// Each call returns a fresh value, so callers may tweak it freely.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Settings: Settings{
			TileSize:               40,
			StartingGold:           200,
			StartingLives:          20,
			GoldPerSecond:          1,
			WaveClearBonusBase:     20,
			WaveClearBonusPerWave:  5,
			BetweenWaveTime:        10,
			MaxTowerLevel:          3,
			SellRefundRate:         0.6,
			NotificationDuration:   3,
			TickRate:               30,
			StateBroadcastInterval: 3,
		},
		Towers: map[string]TowerSpec{
			"archer": {
				ID: "archer", Name: "Archer Tower", Cost: 50,
				Damage: 10, Range: 120, FireRate: 1.5, ProjectileSpeed: 400,
				CanHitFlying: true,
				UpgradeCost:  40, UpgradeDamageBonus: 5, UpgradeRangeBonus: 10,
				Letter: "A",
			},
			"wizard": {
				ID: "wizard", Name: "Wizard Tower", Cost: 100,
				Damage: 25, Range: 140, FireRate: 0.8, ProjectileSpeed: 300,
				CanHitFlying: true, AOERadius: 60,
				UpgradeCost: 70, UpgradeDamageBonus: 10, UpgradeRangeBonus: 10,
				Letter: "W",
			},
			"fire": {
				ID: "fire", Name: "Fire Tower", Cost: 80,
				Damage: 8, Range: 100, FireRate: 1.0, ProjectileSpeed: 320,
				DOTDamage: 10, DOTDuration: 3,
				UpgradeCost: 60, UpgradeDamageBonus: 4, UpgradeRangeBonus: 8,
				Letter: "F",
			},
			"ice": {
				ID: "ice", Name: "Ice Tower", Cost: 70,
				Damage: 5, Range: 110, FireRate: 1.0, ProjectileSpeed: 350,
				CanHitFlying: true, SlowFactor: 0.5, SlowDuration: 2,
				UpgradeCost: 50, UpgradeDamageBonus: 3, UpgradeRangeBonus: 10,
				Letter: "I",
			},
		},
		Enemies: map[string]EnemySpec{
			"goblin":      {ID: "goblin", Name: "Goblin", HP: 50, Speed: 80, Armor: 0, GoldReward: 5, SendCost: 20, SendCount: 3, Radius: 10},
			"orc":         {ID: "orc", Name: "Orc", HP: 150, Speed: 55, Armor: 3, GoldReward: 12, SendCost: 50, SendCount: 2, Radius: 13},
			"dark_knight": {ID: "dark_knight", Name: "Dark Knight", HP: 300, Speed: 45, Armor: 8, GoldReward: 25, SendCost: 100, SendCount: 1, Radius: 14},
			"dragon":      {ID: "dragon", Name: "Dragon", HP: 800, Speed: 40, Armor: 5, GoldReward: 80, SendCost: 250, SendCount: 1, Flying: true, Radius: 18},
		},
		Waves: [][]WaveGroup{
			{{"goblin", 5, 1.0}},
			{{"goblin", 8, 0.8}},
			{{"goblin", 5, 0.8}, {"orc", 2, 1.5}},
			{{"goblin", 8, 0.6}, {"orc", 4, 1.2}},
			{{"orc", 5, 1.0}, {"dark_knight", 2, 2.0}},
			{{"goblin", 10, 0.5}, {"dark_knight", 3, 1.5}},
			{{"orc", 6, 0.8}, {"dark_knight", 4, 1.2}},
			{{"goblin", 20, 0.3}, {"orc", 3, 1.0}},
			{{"dark_knight", 8, 1.0}, {"orc", 5, 0.8}},
			{{"orc", 6, 0.8}, {"dark_knight", 4, 1.0}, {"dragon", 1, 3.0}},
			{{"goblin", 15, 0.3}, {"dark_knight", 5, 1.0}, {"dragon", 1, 3.0}},
			{{"orc", 8, 0.6}, {"dark_knight", 6, 0.8}, {"dragon", 2, 2.5}},
			{{"dark_knight", 8, 0.8}, {"dragon", 3, 2.0}},
			{{"goblin", 20, 0.2}, {"orc", 10, 0.5}, {"dark_knight", 6, 0.8}, {"dragon", 2, 2.0}},
			{{"dark_knight", 10, 0.5}, {"dragon", 5, 1.5}},
		},
		TowerOrder: []string{"archer", "wizard", "fire", "ice"},
		EnemyOrder: []string{"goblin", "orc", "dark_knight", "dragon"},
	}
}
