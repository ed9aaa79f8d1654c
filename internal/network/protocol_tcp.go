package network

import (
	"bytes"
	"encoding/json"
	"fmt"

	"towerdefense-vs/internal/models"
)

// Message types as they appear in the envelope's "type" field.
const (
	// Client to server
	MsgTypePlaceTower   = "PLACE_TOWER"
	MsgTypeSellTower    = "SELL_TOWER"
	MsgTypeUpgradeTower = "UPGRADE_TOWER"
	MsgTypeSendEnemy    = "SEND_ENEMY"
	MsgTypeReady        = "READY"
	MsgTypeDisconnect   = "DISCONNECT"

	// Server to client
	MsgTypeWelcome     = "WELCOME"
	MsgTypePlayerCount = "PLAYER_COUNT"
	MsgTypeGameStart   = "GAME_START"
	MsgTypeGameState   = "GAME_STATE"
	MsgTypeGameOver    = "GAME_OVER"
)

// Message is the closed set of protocol messages. Only types in this package implement it.
type Message interface {
	MessageType() string
	isMessage()
}

// --- Client to Server (C2S) Messages ---

// PlaceTower asks to build a tower on the sender's lane.
type PlaceTower struct {
	TowerType string `json:"tower_type"`
	Col       int    `json:"col"`
	Row       int    `json:"row"`
}

// SellTower asks to sell one of the sender's towers.
type SellTower struct {
	TowerID string `json:"tower_id"`
}

// UpgradeTower asks to upgrade one of the sender's towers.
type UpgradeTower struct {
	TowerID string `json:"tower_id"`
}

// SendEnemy pays to drop enemies onto the opponent's lane.
type SendEnemy struct {
	EnemyType string `json:"enemy_type"`
	Count     int    `json:"count"`
}

type Ready struct{}

type Disconnect struct{}

// --- Server to Client (S2C) Messages ---

// Welcome is the first message on a new connection.
type Welcome struct {
	PlayerID  int            `json:"player_id"`
	MapData   models.MapData `json:"map_data"`
	MapDigest string         `json:"map_digest,omitempty"`
}

type PlayerCount struct {
	Count int `json:"count"`
}

type GameStart struct {
	MatchID string `json:"match_id,omitempty"`
}

// GameState carries both lanes from the receiving player's point of view.
type GameState struct {
	YourState     models.LaneSnapshot `json:"your_state"`
	OpponentState models.LaneSnapshot `json:"opponent_state"`
}

// GameOver ends the match. Winner is a player id, 0 for a draw.
type GameOver struct {
	Winner int `json:"winner"`
}

func (PlaceTower) MessageType() string   { return MsgTypePlaceTower }
func (SellTower) MessageType() string    { return MsgTypeSellTower }
func (UpgradeTower) MessageType() string { return MsgTypeUpgradeTower }
func (SendEnemy) MessageType() string    { return MsgTypeSendEnemy }
func (Ready) MessageType() string        { return MsgTypeReady }
func (Disconnect) MessageType() string   { return MsgTypeDisconnect }
func (Welcome) MessageType() string      { return MsgTypeWelcome }
func (PlayerCount) MessageType() string  { return MsgTypePlayerCount }
func (GameStart) MessageType() string    { return MsgTypeGameStart }
func (GameState) MessageType() string    { return MsgTypeGameState }
func (GameOver) MessageType() string     { return MsgTypeGameOver }

func (PlaceTower) isMessage()   {}
func (SellTower) isMessage()    {}
func (UpgradeTower) isMessage() {}
func (SendEnemy) isMessage()    {}
func (Ready) isMessage()        {}
func (Disconnect) isMessage()   {}
func (Welcome) isMessage()      {}
func (PlayerCount) isMessage()  {}
func (GameStart) isMessage()    {}
func (GameState) isMessage()    {}
func (GameOver) isMessage()     {}

// decodeData builds the message named by msgType from its data object.
// A missing or null data object decodes as {}.
func decodeData(msgType string, data json.RawMessage) (Message, error) {
	switch msgType {
	case MsgTypePlaceTower:
		return decodeInto[PlaceTower](data)
	case MsgTypeSellTower:
		return decodeInto[SellTower](data)
	case MsgTypeUpgradeTower:
		return decodeInto[UpgradeTower](data)
	case MsgTypeSendEnemy:
		return decodeInto[SendEnemy](data)
	case MsgTypeReady:
		return Ready{}, nil
	case MsgTypeDisconnect:
		return Disconnect{}, nil
	case MsgTypeWelcome:
		return decodeInto[Welcome](data)
	case MsgTypePlayerCount:
		return decodeInto[PlayerCount](data)
	case MsgTypeGameStart:
		return decodeInto[GameStart](data)
	case MsgTypeGameState:
		return decodeInto[GameState](data)
	case MsgTypeGameOver:
		return decodeInto[GameOver](data)
	}
	return nil, fmt.Errorf("unknown message type %q", msgType)
}

func decodeInto[T Message](data json.RawMessage) (Message, error) {
	var m T
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
