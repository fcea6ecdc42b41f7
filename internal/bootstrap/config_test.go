package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesaflow/ongeza-ui-api/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateServiceConfig(t *testing.T) {
	tests := []struct {
		name     string
		services string
		wantErr  bool
	}{
		{name: "defaults", services: "http,notifier", wantErr: false},
		{name: "http only", services: "http", wantErr: false},
		{name: "unknown service", services: "http,batch", wantErr: true},
		{name: "empty", services: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.AppConfig{Services: tc.services}
			err := ValidateServiceConfig(cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateServiceConfig_NilConfig(t *testing.T) {
	assert.Error(t, ValidateServiceConfig(nil))
}

func TestEnabledServiceNames(t *testing.T) {
	cfg := &config.AppConfig{Services: "http,notifier"}
	names := EnabledServiceNames(cfg)
	require.Len(t, names, 2)
	assert.ElementsMatch(t, []string{"http", "notifier"}, names)
}
