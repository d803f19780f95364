package client

import (
	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// AuthMachine drives the multi-step account-linking handshake. Step
// transitions are triggered only by inbound frames; the outbound command
// methods just validate, remember, and send.
type AuthMachine struct {
	session *Session
	creds   CredentialStore

	// send is wired by the dispatcher, the single outbound path.
	send func(cmd protocol.Command) error

	// Credential offered via Init, persisted only once the gateway
	// answers authorized.
	pendingAPIID   string
	pendingAPIHash string
}

func NewAuthMachine(session *Session, creds CredentialStore) *AuthMachine {
	return &AuthMachine{session: session, creds: creds}
}

func (a *AuthMachine) setSender(send func(cmd protocol.Command) error) {
	a.send = send
}

// --- Outbound commands, one per handshake step ---

// Init submits the API credential pair (credentials step).
func (a *AuthMachine) Init(apiID, apiHash string) error {
	if a.session.ConnState() != StateConnected {
		return ErrNotConnected
	}
	a.pendingAPIID = apiID
	a.pendingAPIHash = apiHash
	return a.send(protocol.InitCommand{APIID: apiID, APIHash: apiHash})
}

// SendCode requests a one-time code (phone step).
func (a *AuthMachine) SendCode(phoneNumber string) error {
	if a.session.ConnState() != StateConnected {
		return ErrNotConnected
	}
	return a.send(protocol.SendCodeCommand{PhoneNumber: phoneNumber})
}

// VerifyCode submits the one-time code; password is set only for the
// two-factor sub-case.
func (a *AuthMachine) VerifyCode(code, password string) error {
	if a.session.ConnState() != StateConnected {
		return ErrNotConnected
	}
	return a.send(protocol.VerifyCodeCommand{Code: code, Password: password})
}

// --- Inbound frame handlers, called by the dispatcher ---

func (a *AuthMachine) handleAuthorized(user protocol.User) {
	a.session.setUser(&user)
	a.session.setAuthStep(StepAuthorized)
	a.session.setAuthError("")
	a.session.setResuming(false)

	// Persist the credential that earned this authorization so the next
	// start can resume silently. A resumed session already has it stored.
	if _, _, ok := a.creds.Credential(); !ok && a.pendingAPIID != "" {
		a.creds.SetCredential(a.pendingAPIID, a.pendingAPIHash)
	}
}

func (a *AuthMachine) handleNeedAuth() {
	a.session.setAuthStep(StepPhone)
	a.session.setResuming(false)
}

func (a *AuthMachine) handleNoSession() {
	// A noSession answer to a silent resume means the stored credential
	// no longer names a live gateway session; drop it.
	if a.session.Resuming() {
		a.creds.ClearCredential()
	}
	a.session.setAuthStep(StepCredentials)
	a.session.setResuming(false)
}

func (a *AuthMachine) handleCodeSent() {
	a.session.setAuthStep(StepCode)
}

func (a *AuthMachine) handleNeed2FA() {
	a.session.setAuthStep(StepTwoFactor)
}

func (a *AuthMachine) handleError(message string) {
	// The step is left unchanged: the user retries in place.
	a.session.setAuthError(message)
	a.session.setResuming(false)
}

// Reset returns the machine to the credentials step and forgets the
// persisted credential. Used on explicit logout or disconnect.
func (a *AuthMachine) Reset() {
	a.pendingAPIID = ""
	a.pendingAPIHash = ""
	a.creds.ClearCredential()
	a.session.setUser(nil)
	a.session.setAuthStep(StepCredentials)
	a.session.setResuming(false)
	a.session.ClearErrors()
}
