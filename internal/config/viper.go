package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Mapping between config values and their Viper keys.
const (
	keyFocusDuration      = "focus.duration"
	keyShortBreakDuration = "short_break.duration"
	keyLongBreakDuration  = "long_break.duration"
	keyWellnessDuration   = "wellness.duration"
	keyLongBreakInterval  = "settings.long_break_interval"
	keyNotify             = "settings.notify"
	keyRecorderBaseURL    = "recorder.base_url"
	keyRecorderTimeout    = "recorder.timeout"
	keyServeAddr          = "serve.addr"
	keyServeDBPath        = "serve.db_path"
	keyServeUserHeader    = "serve.user_header"
)

// Load reads the config file at configPath, writing one with defaults first
// if it does not exist yet, and returns the resulting App configuration.
func Load(configPath string) (*App, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file failed: %w", err)
		}

		if err := v.WriteConfig(); err != nil {
			return nil, fmt.Errorf("writing default config failed: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyFocusDuration, DefaultFocus.String())
	v.SetDefault(keyShortBreakDuration, DefaultShortBreak.String())
	v.SetDefault(keyLongBreakDuration, DefaultLongBreak.String())
	v.SetDefault(keyWellnessDuration, DefaultWellness.String())
	v.SetDefault(keyLongBreakInterval, DefaultLongBreakInterval)
	v.SetDefault(keyNotify, true)
	v.SetDefault(keyRecorderBaseURL, "http://localhost:7180")
	v.SetDefault(keyRecorderTimeout, "10s")
	v.SetDefault(keyServeAddr, ":7180")
	v.SetDefault(keyServeDBPath, "")
	v.SetDefault(keyServeUserHeader, "X-Pomodoro-User")
}

func fromViper(v *viper.Viper) *App {
	app := &App{
		Timer: Timer{
			Focus:             duration(v.GetString(keyFocusDuration), DefaultFocus),
			ShortBreak:        duration(v.GetString(keyShortBreakDuration), DefaultShortBreak),
			LongBreak:         duration(v.GetString(keyLongBreakDuration), DefaultLongBreak),
			Wellness:          duration(v.GetString(keyWellnessDuration), DefaultWellness),
			LongBreakInterval: v.GetInt(keyLongBreakInterval),
		},
		Recorder: Recorder{
			BaseURL: v.GetString(keyRecorderBaseURL),
			Timeout: duration(v.GetString(keyRecorderTimeout), 10*time.Second),
		},
		Serve: Serve{
			Addr:       v.GetString(keyServeAddr),
			DBPath:     v.GetString(keyServeDBPath),
			UserHeader: v.GetString(keyServeUserHeader),
		},
		Notify: v.GetBool(keyNotify),
	}

	if app.Timer.LongBreakInterval < 1 {
		app.Timer.LongBreakInterval = DefaultLongBreakInterval
	}

	if app.Serve.DBPath == "" {
		app.Serve.DBPath = DBFilePath()
	}

	return app
}

// duration parses a duration string, treating a bare number as minutes.
func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d
	}

	d, err = time.ParseDuration(s + "m")
	if err == nil {
		return d
	}

	return def
}
