// Package config derives the widget configuration from host-provided
// attributes, the config file, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"

	"github.com/adetunwase/pomodoro/internal/timeutil"
)

// Built-in defaults, used whenever an attribute or config value is absent or
// malformed.
const (
	DefaultFocus             = 25 * time.Minute
	DefaultShortBreak        = 5 * time.Minute
	DefaultLongBreak         = 15 * time.Minute
	DefaultWellness          = 30 * time.Second
	DefaultLongBreakInterval = 3
)

const Version = "v0.3.1"

// Timer holds the durations for one course-scoped timer. It is derived once
// at startup and immutable afterwards.
type Timer struct {
	CourseID          int
	Wellness          time.Duration
	Focus             time.Duration
	ShortBreak        time.Duration
	LongBreak         time.Duration
	LongBreakInterval int
}

// Recorder configures the session recorder client.
type Recorder struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Serve configures the session recorder service.
type Serve struct {
	Addr       string `mapstructure:"addr"`
	DBPath     string `mapstructure:"db_path"`
	UserHeader string `mapstructure:"user_header"`
}

// App is the full application configuration.
type App struct {
	Timer    Timer
	Recorder Recorder
	Serve    Serve
	Notify   bool
}

var (
	configDir      = "pomodoro"
	configFileName = "config.yml"
	dbFileName     = "pomodoro.db"
	logFileName    = "pomodoro.log"
	stateDirName   = "state"

	configFilePath string
	dbFilePath     string
	logFilePath    string
	stateDirPath   string
)

func ConfigFilePath() string {
	return configFilePath
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

// StateDirPath is the directory holding the shared timer state. Every widget
// instance of the same user reads and writes the same directory.
func StateDirPath() string {
	return stateDirPath
}

// InitializePaths computes the config, data, and log paths. It must be
// called once at program startup, before Load.
func InitializePaths() {
	pomoEnv := strings.TrimSpace(os.Getenv("POMODORO_ENV"))
	if pomoEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", pomoEnv)
		dbFileName = fmt.Sprintf("pomodoro_%s.db", pomoEnv)
		logFileName = fmt.Sprintf("pomodoro_%s.log", pomoEnv)
		stateDirName = fmt.Sprintf("state_%s", pomoEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	stateDirPath = filepath.Join(dataDir, stateDirName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}

// Attribute names recognised by FromAttributes. They mirror the data
// attributes the host page sets on the timer display element.
const (
	AttrWellnessSec       = "wellness-sec"
	AttrFocusSec          = "focus-sec"
	AttrFocusMin          = "focus-min"
	AttrDuration          = "duration"
	AttrShortBreakSec     = "shortbreak-sec"
	AttrShortBreakMin     = "shortbreak-min"
	AttrLongBreakSec      = "longbreak-sec"
	AttrLongBreakMin      = "longbreak-min"
	AttrLongBreakInterval = "longbreak-interval"
)

const unset = -1 << 31

// FromAttributes derives a Timer from host-provided attributes. For each
// duration the precedence is: explicit seconds, then explicit minutes, then
// the minutes part of a combined "MM:SS" duration string, then the built-in
// default. Malformed values fall back to the next source; this never fails.
func FromAttributes(courseID int, attrs map[string]string) *Timer {
	t := &Timer{
		CourseID: courseID,
		Wellness: time.Duration(
			timeutil.ParseInt(attrs[AttrWellnessSec], 30),
		) * time.Second,
		LongBreakInterval: timeutil.ParseInt(
			attrs[AttrLongBreakInterval],
			DefaultLongBreakInterval,
		),
	}

	if sec := timeutil.ParseInt(attrs[AttrFocusSec], unset); sec != unset {
		t.Focus = time.Duration(sec) * time.Second
	} else if m := timeutil.ParseInt(attrs[AttrFocusMin], unset); m != unset {
		t.Focus = time.Duration(m) * time.Minute
	} else {
		t.Focus = time.Duration(durationMinutes(attrs[AttrDuration], 25)) * time.Minute
	}

	if sec := timeutil.ParseInt(attrs[AttrShortBreakSec], unset); sec != unset {
		t.ShortBreak = time.Duration(sec) * time.Second
	} else {
		m := timeutil.ParseInt(attrs[AttrShortBreakMin], 5)
		t.ShortBreak = time.Duration(m) * time.Minute
	}

	if sec := timeutil.ParseInt(attrs[AttrLongBreakSec], unset); sec != unset {
		t.LongBreak = time.Duration(sec) * time.Second
	} else {
		m := timeutil.ParseInt(attrs[AttrLongBreakMin], 15)
		t.LongBreak = time.Duration(m) * time.Minute
	}

	return t
}

// durationMinutes extracts the minutes part of a combined "MM:SS" duration
// string. The seconds part is ignored, matching how the host page encodes a
// whole-minute focus duration.
func durationMinutes(dur string, def int) int {
	if dur == "" {
		return def
	}

	mm, _, _ := strings.Cut(dur, ":")

	return timeutil.ParseInt(mm, def)
}
