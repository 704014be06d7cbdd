package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// MaxLevel is the number of maze levels the game ships with.
const MaxLevel = 4

//go:embed levels.yaml
var defaultLevelsYAML []byte

// ErrUnknownLevel is returned by LevelCatalog.Lookup for levels outside 1..MaxLevel.
var ErrUnknownLevel = errors.New("unknown level")

// LevelConfig holds the static parameters for one maze level.
type LevelConfig struct {
	Level          int    `yaml:"level" json:"level"`
	Cols           int    `yaml:"cols" json:"cols"`
	Rows           int    `yaml:"rows" json:"rows"`
	Difficulty     string `yaml:"difficulty" json:"difficulty"`
	WallBreakLimit int    `yaml:"wall_break_limit" json:"wall_break_limit"`
	TimeLimit      int    `yaml:"time_limit" json:"time_limit"` // seconds
}

// DifficultyLabel is the display form of the difficulty ("easy" -> "Easy").
func (l LevelConfig) DifficultyLabel() string {
	return cases.Title(language.English).String(l.Difficulty)
}

// LevelCatalog is the validated, immutable level table. Index 0 is level 1.
type LevelCatalog struct {
	levels [MaxLevel]LevelConfig
}

type levelsFile struct {
	Levels []LevelConfig `yaml:"levels"`
}

// DefaultLevelCatalog parses the embedded level table. The embedded file is
// covered by tests, so a failure here is a build defect.
func DefaultLevelCatalog() *LevelCatalog {
	cat, err := ParseLevelCatalog(defaultLevelsYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded levels.yaml is invalid: %v", err))
	}
	return cat
}

// LoadLevelCatalog reads the level table from path, or returns the embedded
// default when path is empty.
func LoadLevelCatalog(path string) (*LevelCatalog, error) {
	if path == "" {
		return ParseLevelCatalog(defaultLevelsYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels file %s: %w", path, err)
	}
	return ParseLevelCatalog(data)
}

// ParseLevelCatalog decodes and validates a YAML level table.
func ParseLevelCatalog(data []byte) (*LevelCatalog, error) {
	var f levelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse levels: %w", err)
	}
	if len(f.Levels) != MaxLevel {
		return nil, fmt.Errorf("expected %d levels, got %d", MaxLevel, len(f.Levels))
	}

	var cat LevelCatalog
	seen := make(map[int]bool, MaxLevel)
	for _, l := range f.Levels {
		if l.Level < 1 || l.Level > MaxLevel {
			return nil, fmt.Errorf("level %d out of range 1..%d", l.Level, MaxLevel)
		}
		if seen[l.Level] {
			return nil, fmt.Errorf("level %d defined twice", l.Level)
		}
		seen[l.Level] = true
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("level %d: %w", l.Level, err)
		}
		cat.levels[l.Level-1] = l
	}
	return &cat, nil
}

func (l LevelConfig) validate() error {
	switch {
	case l.Cols <= 0 || l.Rows <= 0:
		return fmt.Errorf("dimensions must be positive (got %dx%d)", l.Cols, l.Rows)
	case l.Difficulty == "":
		return errors.New("difficulty is required")
	case l.WallBreakLimit < 0:
		return errors.New("wall_break_limit must not be negative")
	case l.TimeLimit <= 0:
		return errors.New("time_limit must be positive")
	}
	return nil
}

// Lookup returns the config for a level number.
func (c *LevelCatalog) Lookup(level int) (LevelConfig, error) {
	if !c.Has(level) {
		return LevelConfig{}, fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	return c.levels[level-1], nil
}

func (c *LevelCatalog) Has(level int) bool {
	return level >= 1 && level <= MaxLevel
}

// Total is the number of levels in the catalog.
func (c *LevelCatalog) Total() int {
	return MaxLevel
}

// All returns the levels in order.
func (c *LevelCatalog) All() []LevelConfig {
	out := make([]LevelConfig, MaxLevel)
	copy(out, c.levels[:])
	return out
}
