// Package config loads user settings from a YAML file with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/timekeeper/internal/domain"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user config and data directories.
const AppName = "TimeKeeper"

const (
	settingsFile = "settings.yaml"
	dbFile       = "timekeeper.db"
)

// Settings are the user preferences. Durations are written as Go duration
// strings ("8h", "40h").
type Settings struct {
	DateFormat        string        `yaml:"date_format"`
	TimeFormat        string        `yaml:"time_format"`
	StartOfWeek       string        `yaml:"start_of_week"`
	DailyGoal         time.Duration `yaml:"daily_goal"`
	WeeklyGoal        time.Duration `yaml:"weekly_goal"`
	OpenSessionPolicy string        `yaml:"open_session_policy"`
	DBPath            string        `yaml:"db_path,omitempty"`
	LogLevel          string        `yaml:"log_level"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		DateFormat:        time.DateOnly,
		TimeFormat:        "15:04",
		StartOfWeek:       "monday",
		DailyGoal:         8 * time.Hour,
		WeeklyGoal:        40 * time.Hour,
		OpenSessionPolicy: string(domain.PolicyReject),
		LogLevel:          "off",
	}
}

var (
	validWeekStarts = []string{"monday", "sunday"}
	validLogLevels  = []string{"off", "debug", "info", "warn", "error"}
)

// Keys lists the settable keys in file order.
var Keys = []string{
	"date_format", "time_format", "start_of_week", "daily_goal",
	"weekly_goal", "open_session_policy", "db_path", "log_level",
}

// Dir returns the per-user config directory. TIMEKEEPER_CONFIG_DIR overrides it.
func Dir() (string, error) {
	if v := os.Getenv("TIMEKEEPER_CONFIG_DIR"); v != "" {
		return v, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// DataDir returns the per-user data directory: $XDG_DATA_HOME when set,
// ~/.local/share on other Unix systems, and the platform application
// directory on macOS and Windows.
func DataDir() (string, error) {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, AppName), nil
	}
	base, err := dataHome(runtime.GOOS)
	if err != nil {
		return "", fmt.Errorf("finding data directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

func dataHome(goos string) (string, error) {
	switch goos {
	case "windows", "darwin", "ios", "plan9":
		return os.UserConfigDir()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// DefaultPath is the settings file inside Dir.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// Load reads settings from path, falling back to defaults when the file does
// not exist, then applies TIMEKEEPER_* environment overrides and validates
// the result.
func Load(path string) (Settings, error) {
	s, err := ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ReadFile reads settings from path without environment overrides. Keys
// missing from the file keep their defaults; unknown keys are an error.
func ReadFile(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path, creating the directory if needed.
func (s Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func (s *Settings) applyEnv() error {
	var problems []string
	setString := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	setDuration := func(env string, dst *time.Duration) {
		v := os.Getenv(env)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid %s %q: %v", env, v, err))
			return
		}
		*dst = d
	}

	setString("TIMEKEEPER_DB", &s.DBPath)
	setString("TIMEKEEPER_DATE_FORMAT", &s.DateFormat)
	setString("TIMEKEEPER_TIME_FORMAT", &s.TimeFormat)
	setString("TIMEKEEPER_START_OF_WEEK", &s.StartOfWeek)
	setString("TIMEKEEPER_OPEN_SESSION_POLICY", &s.OpenSessionPolicy)
	setString("TIMEKEEPER_LOG_LEVEL", &s.LogLevel)
	setDuration("TIMEKEEPER_DAILY_GOAL", &s.DailyGoal)
	setDuration("TIMEKEEPER_WEEKLY_GOAL", &s.WeeklyGoal)

	if len(problems) > 0 {
		return fmt.Errorf("environment overrides:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Validate reports every invalid value at once.
func (s Settings) Validate() error {
	var problems []string

	if s.DateFormat == "" {
		problems = append(problems, "date_format cannot be empty")
	}
	if s.TimeFormat == "" {
		problems = append(problems, "time_format cannot be empty")
	}
	if !slices.Contains(validWeekStarts, strings.ToLower(s.StartOfWeek)) {
		problems = append(problems, fmt.Sprintf("invalid start_of_week %q: must be one of %v", s.StartOfWeek, validWeekStarts))
	}
	if s.DailyGoal < 0 {
		problems = append(problems, fmt.Sprintf("invalid daily_goal %v: must not be negative", s.DailyGoal))
	}
	if s.WeeklyGoal < 0 {
		problems = append(problems, fmt.Sprintf("invalid weekly_goal %v: must not be negative", s.WeeklyGoal))
	}
	if _, err := domain.ParseOpenSessionPolicy(s.OpenSessionPolicy); err != nil {
		problems = append(problems, fmt.Sprintf("invalid open_session_policy: %v", err))
	}
	if !slices.Contains(validLogLevels, strings.ToLower(s.LogLevel)) {
		problems = append(problems, fmt.Sprintf("invalid log_level %q: must be one of %v", s.LogLevel, validLogLevels))
	}

	if len(problems) > 0 {
		return fmt.Errorf("settings validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Set assigns value to the named key. The result is not validated.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "date_format":
		s.DateFormat = value
	case "time_format":
		s.TimeFormat = value
	case "start_of_week":
		s.StartOfWeek = strings.ToLower(value)
	case "daily_goal", "weekly_goal":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if key == "daily_goal" {
			s.DailyGoal = d
		} else {
			s.WeeklyGoal = d
		}
	case "open_session_policy":
		s.OpenSessionPolicy = value
	case "db_path":
		s.DBPath = value
	case "log_level":
		s.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns the display value of the named key.
func (s Settings) Get(key string) (string, error) {
	switch key {
	case "date_format":
		return s.DateFormat, nil
	case "time_format":
		return s.TimeFormat, nil
	case "start_of_week":
		return s.StartOfWeek, nil
	case "daily_goal":
		return s.DailyGoal.String(), nil
	case "weekly_goal":
		return s.WeeklyGoal.String(), nil
	case "open_session_policy":
		return s.OpenSessionPolicy, nil
	case "db_path":
		return s.DBPath, nil
	case "log_level":
		return s.LogLevel, nil
	}
	return "", fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
}

// WeekStart converts StartOfWeek. Validated settings only hold Monday or Sunday.
func (s Settings) WeekStart() time.Weekday {
	if strings.EqualFold(s.StartOfWeek, "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// Policy converts OpenSessionPolicy, falling back to reject.
func (s Settings) Policy() domain.OpenSessionPolicy {
	p, err := domain.ParseOpenSessionPolicy(s.OpenSessionPolicy)
	if err != nil {
		return domain.PolicyReject
	}
	return p
}

// SlogLevel returns the log level and whether logging is enabled at all.
func (s Settings) SlogLevel() (slog.Level, bool) {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// ResolveDBPath returns DBPath, or the default database file in DataDir.
func (s Settings) ResolveDBPath() (string, error) {
	if s.DBPath != "" {
		return s.DBPath, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFile), nil
}
