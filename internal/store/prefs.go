package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
)

const prefsFile = "prefs.json"

const (
	DefaultLanguage     = "en"
	DefaultTheme        = "dark"
	DefaultPrimaryColor = "#3b82f6"
)

// Prefs are the persisted UI preferences. They survive sign-out: they
// belong to the installation, not the session.
type Prefs struct {
	Language     string `json:"language"`
	Theme        string `json:"theme"`
	PrimaryColor string `json:"primary_color"`
}

// PrefStore keeps preferences in memory and writes them through to a
// JSON file on every change.
type PrefStore struct {
	mu       sync.Mutex
	stateDir string
	log      *logger.Logger
	prefs    Prefs
}

// NewPrefStore loads persisted preferences, falling back to defaults
// when the file is absent or unreadable.
func NewPrefStore(stateDir string, log *logger.Logger) *PrefStore {
	s := &PrefStore{
		stateDir: stateDir,
		log:      log,
		prefs: Prefs{
			Language:     DefaultLanguage,
			Theme:        DefaultTheme,
			PrimaryColor: DefaultPrimaryColor,
		},
	}
	s.restore()
	return s
}

func (s *PrefStore) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *PrefStore) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lang == "" || lang == s.prefs.Language {
		return
	}
	s.prefs.Language = lang
	s.persistLocked()
}

func (s *PrefStore) SetTheme(theme, primaryColor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if theme != "" {
		s.prefs.Theme = theme
	}
	if primaryColor != "" {
		s.prefs.PrimaryColor = primaryColor
	}
	s.persistLocked()
}

func (s *PrefStore) restore() {
	data, err := os.ReadFile(filepath.Join(s.stateDir, prefsFile))
	if err != nil {
		return
	}

	var saved Prefs
	if err := json.Unmarshal(data, &saved); err != nil {
		s.log.Warnw("cannot parse preference file, using defaults", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if saved.Language != "" {
		s.prefs.Language = saved.Language
	}
	if saved.Theme != "" {
		s.prefs.Theme = saved.Theme
	}
	if saved.PrimaryColor != "" {
		s.prefs.PrimaryColor = saved.PrimaryColor
	}
}

func (s *PrefStore) persistLocked() {
	if err := os.MkdirAll(s.stateDir, 0o700); err != nil {
		s.log.Warnw("cannot create state dir", "dir", s.stateDir, "error", err)
		return
	}
	data, _ := json.MarshalIndent(s.prefs, "", "  ")
	if err := os.WriteFile(filepath.Join(s.stateDir, prefsFile), data, 0o600); err != nil {
		s.log.Warnw("cannot persist preferences", "error", err)
	}
}
