package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Ice Lounge", "ice-lounge"},
		{"punctuation collapses", "Ice Lounge!!", "ice-lounge"},
		{"leading and trailing symbols", "  ~Gaming Hub~  ", "gaming-hub"},
		{"consecutive separators", "a -- b", "a-b"},
		{"digits kept", "Server 2024", "server-2024"},
		{"already clean", "myguild", "myguild"},
		{"uppercase", "MYGUILD", "myguild"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
		{"unicode stripped", "Café ☕ Corner", "caf-corner"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Make(tc.in))
		})
	}
}
