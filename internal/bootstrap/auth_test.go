package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesaflow/ongeza-ui-api/config"
)

func TestBuildAuthProvider_MockMode(t *testing.T) {
	provider, err := BuildAuthProvider(config.AuthConfig{
		Mode: config.AuthModeMock,
		DevAuth: config.DevAuthConfig{
			UserID: "dev-operator",
			Email:  "operator@example.com",
			Groups: []string{"platform-operators"},
		},
	}, testLogger())

	require.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestBuildAuthProvider_OAuthWithoutDiscoveryURL(t *testing.T) {
	provider, err := BuildAuthProvider(config.AuthConfig{
		Mode: config.AuthModeOAuth,
	}, testLogger())

	require.NoError(t, err)
	assert.Nil(t, provider, "SSO stays off until a discovery URL is configured")
}

func TestBuildAuthProvider_UnknownMode(t *testing.T) {
	_, err := BuildAuthProvider(config.AuthConfig{Mode: "saml"}, testLogger())
	assert.Error(t, err)
}
