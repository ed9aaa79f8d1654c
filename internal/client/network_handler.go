package client

import (
	"errors"
	"io"
	"log"
	"net"

	"towerdefense-vs/internal/network"
)

// receiveLoop decodes server frames until the connection ends and queues them
// for the render loop. WELCOME is inspected on the way through to record the
// player id and compare the server's map with ours.
func (c *Client) receiveLoop() {
	defer close(c.done)
	defer c.connected.Store(false)

	err := network.ReadMessages(c.conn, func(msg network.Message) bool {
		if w, ok := msg.(network.Welcome); ok {
			c.handleWelcome(w)
		}
		select {
		case c.incoming <- msg:
			return true
		case <-c.closed:
			return false
		}
	})

	switch {
	case err == nil, errors.Is(err, net.ErrClosed):
		log.Println("[Client] Receiver stopped")
	case errors.Is(err, io.EOF):
		log.Println("[Client] Server closed the connection")
	default:
		log.Printf("[Client] Error reading from server: %v", err)
	}
}

func (c *Client) handleWelcome(w network.Welcome) {
	c.playerID.Store(int64(w.PlayerID))
	log.Printf("[Client] Joined as player %d", w.PlayerID)
	if c.expectedDigest != "" && w.MapDigest != "" && w.MapDigest != c.expectedDigest {
		log.Printf("[Client] Warning: server map digest %s differs from local map %s, using the server's map", w.MapDigest, c.expectedDigest)
	}
}
