// Package settings holds the user-facing split configuration and the
// process-level runtime configuration.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"gopkg.in/yaml.v3"
)

// File is the on-disk split configuration
type File struct {
	// Category names a preset applied when it changes. Empty means none.
	Category    string          `yaml:"category"`
	Splits      map[string]bool `yaml:"splits"`
	BossAliases []BossAlias     `yaml:"boss_aliases"`
}

// BossAlias renames one boss instance. Some bosses appear twice with the
// same kind; the instance whose total health equals TotalHealth is tracked
// under Alias instead of its kind name.
type BossAlias struct {
	Kind        string  `yaml:"kind"`
	TotalHealth float32 `yaml:"total_health"`
	Alias       string  `yaml:"alias"`
}

func ParseFile(r io.Reader) (File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse settings: %w", err)
	}
	return f, nil
}

// Current is the effective configuration for one tick
type Current struct {
	Category    string
	Splits      map[string]bool
	BossAliases []BossAlias
}

// Enabled reports whether the split setting key is on. Unknown keys are off.
func (c *Current) Enabled(key string) bool {
	return c.Splits[key]
}

// Source re-reads the settings file when it changes on disk. Effective
// splits are the defaults, then the active category's preset, then the
// entries written in the file.
type Source struct {
	path        string
	defaults    map[string]bool
	presets     map[string][]string
	aliases     []BossAlias
	modTime     time.Time
	size        int64
	loaded      bool
	missing     bool
	current     *Current
	lastApplied string
	log         *logger.Logger
}

// NewSource creates a Source; aliases are used when the file names none
func NewSource(path string, defaults map[string]bool, presets map[string][]string, aliases []BossAlias) *Source {
	s := &Source{
		path:     path,
		defaults: maps.Clone(defaults),
		presets:  presets,
		aliases:  aliases,
		log:      logger.NewLogger(coloransi.Color(coloransi.White, coloransi.ColorPurple, "settings")),
	}
	s.current = s.build(File{})
	return s
}

// Current returns the configuration from the last successful Reload
func (s *Source) Current() *Current {
	return s.current
}

// Keys returns every known split setting
func (s *Source) Keys() []string {
	return slices.Sorted(maps.Keys(s.defaults))
}

// Reload re-reads the file if its size or mtime changed. A missing file
// means defaults. On a parse error the previous configuration stays in
// effect. categoryChanged is true when a different preset became active.
func (s *Source) Reload() (categoryChanged bool, err error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if s.missing {
			return false, nil
		}
		if s.loaded {
			s.log.Infoln("Settings file", s.path, "removed, using defaults")
		}
		s.missing = true
		s.loaded = false
		return s.apply(File{}), nil
	}
	if err != nil {
		return false, fmt.Errorf("stat settings: %w", err)
	}

	s.missing = false
	if s.loaded && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return false, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return false, fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()

	file, err := ParseFile(f)
	// A broken file is not parsed again until it changes
	s.modTime = info.ModTime()
	s.size = info.Size()
	s.loaded = true
	if err != nil {
		s.log.Warn("Keeping previous settings:", err)
		return false, fmt.Errorf("%s: %w", s.path, err)
	}

	s.log.Infoln("Loaded settings from", s.path)
	return s.apply(file), nil
}

func (s *Source) apply(file File) bool {
	s.current = s.build(file)
	if s.current.Category == s.lastApplied {
		return false
	}
	s.lastApplied = s.current.Category
	s.log.Infoln("Category is now", fmt.Sprintf("%q", s.current.Category))
	return true
}

func (s *Source) build(file File) *Current {
	splits := maps.Clone(s.defaults)
	if splits == nil {
		splits = map[string]bool{}
	}
	for _, key := range s.presets[file.Category] {
		splits[key] = true
	}
	maps.Copy(splits, file.Splits)

	aliases := file.BossAliases
	if len(aliases) == 0 {
		aliases = s.aliases
	}

	return &Current{
		Category:    file.Category,
		Splits:      splits,
		BossAliases: aliases,
	}
}
