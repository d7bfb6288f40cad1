package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"Static", SourceStatic, true},
		{"Database", SourceDatabase, true},
		{"Remote", SourceRemote, true},
		{"Empty", "", false},
		{"Unknown", "vault", false},
		{"CaseSensitive", "Static", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Source: tt.source}
			assert.Equal(t, tt.want, cfg.IsValidSource())
		})
	}
}
