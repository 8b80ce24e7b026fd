package xair

import (
	"net"
	"sync"
)

// MockServer is a loopback UDP X-Air for tests: it answers argument-less
// messages with the stored value and pushes sets back out to every peer
// that has sent /xremote.
type MockServer struct {
	conn *net.UDPConn
	mu   sync.Mutex

	Values      map[string][]any
	subscribers map[string]*net.UDPAddr
}

func NewMockServer() (*MockServer, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, err
	}
	m := &MockServer{
		conn:        conn,
		Values:      map[string][]any{},
		subscribers: map[string]*net.UDPAddr{},
	}
	go m.serve()
	return m, nil
}

func (m *MockServer) Addr() string {
	return m.conn.LocalAddr().String()
}

func (m *MockServer) Close() error {
	return m.conn.Close()
}

// Value returns the first stored argument for addr, if any.
func (m *MockServer) Value(addr string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args, ok := m.Values[addr]
	if !ok || len(args) == 0 {
		return nil, false
	}
	return args[0], true
}

// Push sends an unsolicited update to all subscribers, as the mixer does
// when a parameter changes from another surface.
func (m *MockServer) Push(addr string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Values[addr] = args
	data := Message{Addr: addr, Args: args}.Encode()
	for _, peer := range m.subscribers {
		m.conn.WriteToUDP(data, peer)
	}
}

func (m *MockServer) serve() {
	buf := make([]byte, 65536)
	for {
		n, peer, err := m.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		msg, err := Decode(buf[:n])
		if err != nil {
			continue
		}
		m.handle(msg, peer)
	}
}

func (m *MockServer) handle(msg Message, peer *net.UDPAddr) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case msg.Addr == "/xremote":
		m.subscribers[peer.String()] = peer
	case len(msg.Args) == 0:
		reply := Message{Addr: msg.Addr, Args: m.Values[msg.Addr]}
		m.conn.WriteToUDP(reply.Encode(), peer)
	default:
		m.Values[msg.Addr] = msg.Args
		data := msg.Encode()
		for key, sub := range m.subscribers {
			if key == peer.String() {
				continue
			}
			m.conn.WriteToUDP(data, sub)
		}
	}
}
