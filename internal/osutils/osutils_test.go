package osutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "https://10.0.0.2:4443/settings"}},
		{"darwin", "open", []string{"https://10.0.0.2:4443/settings"}},
		{"linux", "xdg-open", []string{"https://10.0.0.2:4443/settings"}},
		{"freebsd", "xdg-open", []string{"https://10.0.0.2:4443/settings"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openCommand(tt.goos, "https://10.0.0.2:4443/settings")
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}
