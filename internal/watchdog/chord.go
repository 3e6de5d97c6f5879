package watchdog

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// keyAliases folds the spellings accepted in hotkey strings onto the names
// reported by the platform hooks.
var keyAliases = map[string]string{
	"CONTROL": "CTRL",
	"OPTION":  "ALT",
	"WIN":     "CMD",
	"META":    "CMD",
	"SUPER":   "CMD",
	"COMMAND": "CMD",
	"ESCAPE":  "ESC",
	"RETURN":  "ENTER",
}

func normalizeKey(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}

// ChordMatcher tracks which host keys are held and fires callbacks when a
// registered combination is fully down.
type ChordMatcher struct {
	mu           sync.RWMutex
	chords       []*chord
	currentState map[string]bool
	logger       zerolog.Logger
}

type chord struct {
	parts    []string // e.g. ["CTRL", "ALT", "SHIFT", "D"]
	original string
	callback func()
}

// NewChordMatcher creates an empty matcher
func NewChordMatcher(logger zerolog.Logger) *ChordMatcher {
	return &ChordMatcher{
		currentState: make(map[string]bool),
		logger:       logger,
	}
}

// Register registers a combination such as "Ctrl+Alt+Shift+D". An empty
// string registers nothing.
func (m *ChordMatcher) Register(combo string, callback func()) {
	if strings.TrimSpace(combo) == "" {
		return
	}

	parts := strings.Split(combo, "+")
	for i, p := range parts {
		parts[i] = normalizeKey(p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.chords = append(m.chords, &chord{
		parts:    parts,
		original: combo,
		callback: callback,
	})
}

// Clear removes all registered combinations
func (m *ChordMatcher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chords = nil
}

// UpdateState records a key transition and checks for matches. Auto-repeat
// of a held key does not fire a combination again.
func (m *ChordMatcher) UpdateState(key string, isDown bool) {
	key = normalizeKey(key)

	m.mu.Lock()
	wasDown := m.currentState[key]
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}
	m.mu.Unlock()

	if isDown && !wasDown {
		m.checkMatches()
	}
}

func (m *ChordMatcher) checkMatches() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.chords {
		match := true
		for _, part := range c.parts {
			if !m.currentState[part] {
				match = false
				break
			}
		}

		if match {
			m.logger.Info().Str("hotkey", c.original).Msg("Hotkey triggered")
			go c.callback()
		}
	}
}
