// Package xair talks OSC over UDP to a Behringer X-Air mixer. One
// request/reply pair per parameter, plus a subscription stream of
// unsolicited updates kept alive with periodic /xremote renewals.
package xair

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	DefaultPort = 10024

	// remoteRenewal must stay under the mixer's 10s subscription expiry.
	remoteRenewal = 8 * time.Second

	requestTimeout = 3 * time.Second
)

type Client struct {
	conn    *net.UDPConn
	mu      sync.Mutex
	pending map[string]chan Message
	updates chan Message
	done    chan struct{}
}

// Dial connects to the mixer. addr may omit the port.
func Dial(addr string) (*Client, error) {
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, DefaultPort)
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:    conn,
		pending: make(map[string]chan Message),
		updates: make(chan Message, 64),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// Updates delivers unsolicited parameter changes (subscription traffic).
// Slow consumers drop messages rather than block the read loop.
func (c *Client) Updates() <-chan Message {
	return c.updates
}

func (c *Client) readLoop() {
	buf := make([]byte, 65536)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return
		}
		msg, err := Decode(buf[:n])
		if err != nil {
			continue
		}

		c.mu.Lock()
		ch, waiting := c.pending[msg.Addr]
		if waiting {
			delete(c.pending, msg.Addr)
		}
		c.mu.Unlock()

		if waiting {
			ch <- msg
			continue
		}
		select {
		case c.updates <- msg:
		default:
		}
	}
}

func (c *Client) send(msg Message) error {
	_, err := c.conn.Write(msg.Encode())
	return err
}

// Set writes a parameter. Fire and forget, like the console surfaces do.
func (c *Client) Set(addr string, args ...any) error {
	return c.send(Message{Addr: addr, Args: args})
}

// Get reads a parameter: an argument-less message to an address makes
// the mixer echo the address with its current value.
func (c *Client) Get(ctx context.Context, addr string) (Message, error) {
	ch := make(chan Message, 1)
	c.mu.Lock()
	c.pending[addr] = ch
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		delete(c.pending, addr)
		c.mu.Unlock()
	}

	if err := c.send(Message{Addr: addr}); err != nil {
		cleanup()
		return Message{}, err
	}

	select {
	case msg := <-ch:
		return msg, nil
	case <-time.After(requestTimeout):
		cleanup()
		return Message{}, fmt.Errorf("xair: %s: timeout", addr)
	case <-ctx.Done():
		cleanup()
		return Message{}, ctx.Err()
	}
}

// Subscribe keeps the mixer's update stream alive until ctx is
// cancelled. Updates arrive on Updates().
func (c *Client) Subscribe(ctx context.Context) {
	ticker := time.NewTicker(remoteRenewal)
	defer ticker.Stop()

	c.send(Message{Addr: "/xremote"})
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.send(Message{Addr: "/xremote"})
		}
	}
}

// Float returns the message's first argument as a float64 when it is a
// numeric OSC value.
func (m Message) Float() (float64, bool) {
	if len(m.Args) == 0 {
		return 0, false
	}
	switch v := m.Args[0].(type) {
	case float32:
		return float64(v), true
	case int32:
		return float64(v), true
	}
	return 0, false
}
