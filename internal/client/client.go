package client

import (
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"towerdefense-vs/internal/network"
)

const (
	DefaultServerAddress = "127.0.0.1:5555"
	DefaultDialTimeout   = 5 * time.Second

	incomingBuffer = 1024
)

// Client is the player's connection to a GameServer. A background goroutine
// decodes server frames into a channel that the render loop drains once per frame.
type Client struct {
	conn     net.Conn
	incoming chan network.Message
	closed   chan struct{}
	done     chan struct{}

	connected atomic.Bool
	playerID  atomic.Int64
	writeMu   sync.Mutex
	closeOnce sync.Once

	expectedDigest string
}

// Dial connects to a server and starts receiving.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialWithMap(addr, timeout, "")
}

// DialWithMap is Dial plus a check of the server's map digest against the local one.
func DialWithMap(addr string, timeout time.Duration, localDigest string) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	log.Printf("[Client] Connected to %s", addr)
	return newClient(conn, localDigest), nil
}

func newClient(conn net.Conn, expectedDigest string) *Client {
	c := &Client{
		conn:           conn,
		incoming:       make(chan network.Message, incomingBuffer),
		closed:         make(chan struct{}),
		done:           make(chan struct{}),
		expectedDigest: expectedDigest,
	}
	c.connected.Store(true)
	go c.receiveLoop()
	return c
}

// Messages drains everything received so far without blocking.
func (c *Client) Messages() []network.Message {
	var msgs []network.Message
	for {
		select {
		case m := <-c.incoming:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

// Connected is false once the server closed the connection, a send failed or
// Disconnect was called.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// PlayerID is the id assigned by WELCOME, 0 before it arrives.
func (c *Client) PlayerID() int {
	return int(c.playerID.Load())
}

// Done is closed when the receive goroutine has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) SendPlaceTower(towerType string, col, row int) {
	c.send(network.PlaceTower{TowerType: towerType, Col: col, Row: row})
}

func (c *Client) SendSellTower(towerID string) {
	c.send(network.SellTower{TowerID: towerID})
}

func (c *Client) SendUpgradeTower(towerID string) {
	c.send(network.UpgradeTower{TowerID: towerID})
}

func (c *Client) SendEnemy(enemyType string, count int) {
	c.send(network.SendEnemy{EnemyType: enemyType, Count: count})
}

func (c *Client) SendReady() {
	c.send(network.Ready{})
}

// Disconnect tells the server we are leaving and closes the connection.
func (c *Client) Disconnect() {
	if c.connected.Load() {
		c.send(network.Disconnect{})
	}
	c.close()
}

// send writes one frame. A failed write marks the client disconnected; callers never see the error.
func (c *Client) send(msg network.Message) {
	if !c.connected.Load() {
		return
	}
	c.writeMu.Lock()
	err := network.WriteMessage(c.conn, msg)
	c.writeMu.Unlock()
	if err != nil {
		log.Printf("[Client] Error sending %s: %v", msg.MessageType(), err)
		c.connected.Store(false)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		close(c.closed)
		c.conn.Close()
	})
}
