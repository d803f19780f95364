package client

import (
	"log"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// ConnectionInterface defines the interface for the gateway connection.
// This allows for mocking in tests while the real Connection implements all
// these methods.
type ConnectionInterface interface {
	// Connection management
	Connect() error
	Disconnect()
	Close()
	IsConnected() bool
	GetAddress() string

	// Command sending
	Send(data []byte) error
	SendCommand(cmd protocol.Command) error

	// Channels for receiving data
	Incoming() <-chan *protocol.Frame
	Errors() <-chan error
	StateChanges() <-chan StateUpdate

	// Traffic statistics
	GetBytesSent() uint64
	GetBytesReceived() uint64

	// Logging
	SetLogger(logger *log.Logger)
}

// CredentialStore is the durable key-value home of the link credential.
// Injected into the connection (silent resume) and the auth machine
// (persist on success, clear on logout), and faked in tests.
type CredentialStore interface {
	// Credential returns the saved apiId/apiHash pair, ok=false when absent.
	Credential() (apiID, apiHash string, ok bool)
	SetCredential(apiID, apiHash string) error
	ClearCredential() error
}
