package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

func newTestAuth(t *testing.T) (*AuthMachine, *Session, *MockCredentialStore, *[]protocol.Command) {
	t.Helper()
	session := NewSession()
	creds := NewMockCredentialStore()
	auth := NewAuthMachine(session, creds)

	sent := &[]protocol.Command{}
	auth.setSender(func(cmd protocol.Command) error {
		*sent = append(*sent, cmd)
		return nil
	})
	return auth, session, creds, sent
}

func TestAuthLinkingHandshake(t *testing.T) {
	auth, session, creds, sent := newTestAuth(t)
	session.setConnState(StateConnected)

	// Fresh client: gateway says it needs credentials first, then a phone.
	require.Equal(t, StepCredentials, session.AuthStep())

	err := auth.Init("12345", "abcdef")
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Equal(t, protocol.InitCommand{APIID: "12345", APIHash: "abcdef"}, (*sent)[0])

	auth.handleNeedAuth()
	assert.Equal(t, StepPhone, session.AuthStep())

	err = auth.SendCode("+15551234567")
	require.NoError(t, err)
	require.Len(t, *sent, 2)

	auth.handleCodeSent()
	assert.Equal(t, StepCode, session.AuthStep())

	err = auth.VerifyCode("13377", "")
	require.NoError(t, err)
	require.Len(t, *sent, 3)

	auth.handleAuthorized(protocol.User{ID: "u1", FirstName: "Ada"})
	assert.Equal(t, StepAuthorized, session.AuthStep())
	require.NotNil(t, session.User())
	assert.Equal(t, "u1", session.User().ID)

	// The credential that earned the authorization is now persisted.
	apiID, apiHash, ok := creds.Credential()
	require.True(t, ok)
	assert.Equal(t, "12345", apiID)
	assert.Equal(t, "abcdef", apiHash)
}

func TestAuthTwoFactorBranch(t *testing.T) {
	auth, session, _, _ := newTestAuth(t)
	session.setConnState(StateConnected)

	auth.handleCodeSent()
	require.Equal(t, StepCode, session.AuthStep())

	// The code alone was not enough; the account has a password.
	auth.handleNeed2FA()
	assert.Equal(t, StepTwoFactor, session.AuthStep())

	require.NoError(t, auth.VerifyCode("13377", "hunter2"))
	auth.handleAuthorized(protocol.User{ID: "u1"})
	assert.Equal(t, StepAuthorized, session.AuthStep())
}

func TestAuthStepSurvivesError(t *testing.T) {
	auth, session, _, _ := newTestAuth(t)
	session.setConnState(StateConnected)

	auth.handleCodeSent()
	auth.handleError("PHONE_CODE_INVALID")

	// The user retries in place, the step does not regress.
	assert.Equal(t, StepCode, session.AuthStep())
	assert.Equal(t, "PHONE_CODE_INVALID", session.AuthError())
}

func TestAuthOutboundRequiresConnection(t *testing.T) {
	auth, _, _, sent := newTestAuth(t)

	assert.ErrorIs(t, auth.Init("1", "x"), ErrNotConnected)
	assert.ErrorIs(t, auth.SendCode("+1555"), ErrNotConnected)
	assert.ErrorIs(t, auth.VerifyCode("1", ""), ErrNotConnected)
	assert.Empty(t, *sent)
}

func TestAuthResumeFailureClearsCredential(t *testing.T) {
	auth, session, creds, _ := newTestAuth(t)
	creds.SetCredential("12345", "abcdef")
	session.setConnState(StateConnected)
	session.setResuming(true)

	// The gateway no longer knows the session behind the stored credential.
	auth.handleNoSession()

	assert.Equal(t, StepCredentials, session.AuthStep())
	assert.False(t, session.Resuming())
	_, _, ok := creds.Credential()
	assert.False(t, ok, "stale credential should be dropped")
}

func TestAuthResumeSuccessKeepsCredential(t *testing.T) {
	auth, session, creds, _ := newTestAuth(t)
	creds.SetCredential("12345", "abcdef")
	session.setConnState(StateConnected)
	session.setResuming(true)

	auth.handleAuthorized(protocol.User{ID: "u1"})

	assert.Equal(t, StepAuthorized, session.AuthStep())
	assert.False(t, session.Resuming())
	_, _, ok := creds.Credential()
	assert.True(t, ok)
	// Already stored, not re-persisted.
	assert.Equal(t, 1, creds.SetCalls)
}

func TestAuthReset(t *testing.T) {
	auth, session, creds, _ := newTestAuth(t)
	session.setConnState(StateConnected)

	require.NoError(t, auth.Init("12345", "abcdef"))
	auth.handleAuthorized(protocol.User{ID: "u1"})
	require.Equal(t, StepAuthorized, session.AuthStep())

	auth.Reset()

	assert.Equal(t, StepCredentials, session.AuthStep())
	assert.Nil(t, session.User())
	_, _, ok := creds.Credential()
	assert.False(t, ok)
}
