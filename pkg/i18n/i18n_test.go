package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		langs []string
		key   string
		want  string
	}{
		{name: "english", langs: []string{"en"}, key: ParseConfigError, want: "Error parsing the security scan config"},
		{name: "german", langs: []string{"de"}, key: CreateDefaultError, want: "Fehler beim Anlegen der Standard-Sicherheitsscan-Konfiguration"},
		{name: "unknown language falls back to english", langs: []string{"fr"}, key: SaveConfigError, want: "Error saving the security scan config"},
		{name: "missing key", langs: []string{"en"}, key: "cis.scan.unknown", want: "cis.scan.unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.langs...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.T(tt.key))
		})
	}
}
