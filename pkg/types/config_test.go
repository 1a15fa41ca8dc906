package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"sqlite", Config{Backend: BackendSQLite, DataDir: "/tmp"}, nil},
		{"empty backend", Config{}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "postgres"}, ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), tt.wantErr)
		})
	}
}

func TestProjectSettingsDefaults(t *testing.T) {
	var s ProjectSettings
	assert.Equal(t, NullPresentation, s.ValidationOptions().NullPresentation)
	assert.Equal(t, "en", s.Locale())

	s = DefaultProjectSettings()
	s.DefaultLocale = "de"
	assert.Equal(t, "de", s.Locale())
}
