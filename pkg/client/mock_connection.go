package client

import (
	"fmt"
	"log"
	"sync"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// MockConnection is a test implementation of ConnectionInterface
type MockConnection struct {
	mu sync.RWMutex

	// State
	connected  bool
	address    string
	connectErr error
	sendErr    error

	// Channels for communication
	incoming    chan *protocol.Frame
	errors      chan error
	stateChange chan StateUpdate

	// Sent commands for verification
	SentFrames   [][]byte
	SentCommands []protocol.Command
}

// NewMockConnection creates a new mock connection
func NewMockConnection(address string) *MockConnection {
	return &MockConnection{
		address:     address,
		incoming:    make(chan *protocol.Frame, 100),
		errors:      make(chan error, 10),
		stateChange: make(chan StateUpdate, 10),
	}
}

// Connect simulates connecting to the gateway
func (m *MockConnection) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

// Disconnect simulates disconnecting from the gateway
func (m *MockConnection) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

// Close closes the mock connection
func (m *MockConnection) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	close(m.incoming)
	close(m.errors)
	close(m.stateChange)
}

// IsConnected returns the connection status
func (m *MockConnection) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// GetAddress returns the mock address
func (m *MockConnection) GetAddress() string {
	return m.address
}

// Send records a raw frame for verification
func (m *MockConnection) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	if !m.connected {
		return ErrNotConnected
	}
	m.SentFrames = append(m.SentFrames, data)
	return nil
}

// SendCommand records a command for verification
func (m *MockConnection) SendCommand(cmd protocol.Command) error {
	m.mu.Lock()
	sendErr := m.sendErr
	connected := m.connected
	m.mu.Unlock()

	if sendErr != nil {
		return sendErr
	}
	if !connected {
		return ErrNotConnected
	}

	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.SentCommands = append(m.SentCommands, cmd)
	m.SentFrames = append(m.SentFrames, data)
	m.mu.Unlock()
	return nil
}

// Incoming returns the incoming frame channel
func (m *MockConnection) Incoming() <-chan *protocol.Frame {
	return m.incoming
}

// Errors returns the error channel
func (m *MockConnection) Errors() <-chan error {
	return m.errors
}

// StateChanges returns the state change channel
func (m *MockConnection) StateChanges() <-chan StateUpdate {
	return m.stateChange
}

// GetBytesSent returns 0 for mock
func (m *MockConnection) GetBytesSent() uint64 { return 0 }

// GetBytesReceived returns 0 for mock
func (m *MockConnection) GetBytesReceived() uint64 { return 0 }

// SetLogger is a no-op for mock
func (m *MockConnection) SetLogger(logger *log.Logger) {}

// Test helpers

// SetConnectError sets an error to return from Connect()
func (m *MockConnection) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

// SetSendError sets an error to return from Send()/SendCommand()
func (m *MockConnection) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SimulateIncomingFrame sends a frame to the incoming channel
func (m *MockConnection) SimulateIncomingFrame(frame *protocol.Frame) {
	m.incoming <- frame
}

// SimulateStateChange sends a state change to the stateChange channel
func (m *MockConnection) SimulateStateChange(update StateUpdate) {
	m.stateChange <- update
}

// LastSentCommand returns the most recent command, or an error if none
func (m *MockConnection) LastSentCommand() (protocol.Command, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.SentCommands) == 0 {
		return nil, fmt.Errorf("no commands sent")
	}
	return m.SentCommands[len(m.SentCommands)-1], nil
}

// SentCommandCount returns the number of commands sent
func (m *MockConnection) SentCommandCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentCommands)
}
