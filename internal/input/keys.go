package input

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// keyNames maps the names clients send (browser KeyboardEvent.key values,
// lower-cased, plus common short forms) to injector key names.
var keyNames = map[string]string{
	"enter":     "enter",
	"return":    "enter",
	"backspace": "backspace",
	"tab":       "tab",
	"escape":    "esc",
	"esc":       "esc",
	"delete":    "delete",
	"del":       "delete",
	"insert":    "insert",
	"home":      "home",
	"end":       "end",
	"pageup":    "pageup",
	"pgup":      "pageup",
	"pagedown":  "pagedown",
	"pgdn":      "pagedown",
	"space":     "space",
	"spacebar":  "space",
	"capslock":  "capslock",

	// Arrows
	"up":         "up",
	"down":       "down",
	"left":       "left",
	"right":      "right",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",

	// Modifiers
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"win":     "cmd",
	"meta":    "cmd",
	"super":   "cmd",
	"os":      "cmd",
	"cmd":     "cmd",
	"command": "cmd",

	"printscreen": "printscreen",
	"prtsc":       "printscreen",
	"menu":        "menu",
	"contextmenu": "menu",

	// Media
	"volumeup":           "audio_vol_up",
	"audiovolumeup":      "audio_vol_up",
	"volumedown":         "audio_vol_down",
	"audiovolumedown":    "audio_vol_down",
	"volumemute":         "audio_mute",
	"audiovolumemute":    "audio_mute",
	"mute":               "audio_mute",
	"playpause":          "audio_play",
	"mediaplaypause":     "audio_play",
	"stop":               "audio_stop",
	"mediastop":          "audio_stop",
	"nexttrack":          "audio_next",
	"medianexttrack":     "audio_next",
	"prevtrack":          "audio_prev",
	"mediatrackprevious": "audio_prev",
}

func init() {
	for i := 1; i <= 24; i++ {
		name := fmt.Sprintf("f%d", i)
		keyNames[name] = name
	}
}

// isSingleChar reports whether key is exactly one character
func isSingleChar(key string) bool {
	return utf8.RuneCountInString(key) == 1
}

// resolveKey maps a client key token to an injector key name. Single
// characters pass through lower-cased; longer tokens must be known names.
func resolveKey(key string) (string, error) {
	lower := strings.ToLower(key)
	if isSingleChar(lower) {
		return lower, nil
	}
	if name, ok := keyNames[lower]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}
