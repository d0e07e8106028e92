package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
)

func TestPrefStoreDefaults(t *testing.T) {
	s := NewPrefStore(t.TempDir(), logger.Nop())
	p := s.Prefs()
	require.Equal(t, DefaultLanguage, p.Language)
	require.Equal(t, DefaultTheme, p.Theme)
	require.Equal(t, DefaultPrimaryColor, p.PrimaryColor)
}

func TestPrefStoreWritesThroughAndRestores(t *testing.T) {
	dir := t.TempDir()

	s := NewPrefStore(dir, logger.Nop())
	s.SetLanguage("vi")
	s.SetTheme("light", "#16a34a")

	restored := NewPrefStore(dir, logger.Nop())
	p := restored.Prefs()
	require.Equal(t, "vi", p.Language)
	require.Equal(t, "light", p.Theme)
	require.Equal(t, "#16a34a", p.PrimaryColor)
}

func TestPrefStorePartialThemeChange(t *testing.T) {
	s := NewPrefStore(t.TempDir(), logger.Nop())
	s.SetTheme("", "#ef4444")

	p := s.Prefs()
	require.Equal(t, DefaultTheme, p.Theme, "empty theme keeps the current value")
	require.Equal(t, "#ef4444", p.PrimaryColor)
}

func TestPrefStoreIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, prefsFile), []byte("{not json"), 0o600))

	s := NewPrefStore(dir, logger.Nop())
	require.Equal(t, DefaultLanguage, s.Prefs().Language)
}
