// Package app assembles the command-line interface around the timer and
// the session recorder service.
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/adetunwase/pomodoro/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the pomodoro app instance.
func Get() *cli.App {
	pomodoroApp := &cli.App{
		Name: "pomodoro",
		Usage: `
		Pomodoro is a focus timer for the command-line with a wellness check
		before each focus period and short and long breaks after it. Every
		running instance of the same course stays in sync with its siblings,
		and completed focus periods are reported to a session recorder
		service.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the session recorder service",
				Action: serveAction,
				Flags: []cli.Flag{
					addrFlag,
				},
			},
			{
				Name:   "status",
				Usage:  "Print the status of the timer",
				Action: statusAction,
				Flags: []cli.Flag{
					courseFlag,
				},
			},
		},
		Flags: []cli.Flag{
			courseFlag,
			workFlag,
			shortBreakFlag,
			longBreakFlag,
			longBreakIntervalFlag,
			wellnessFlag,
			userFlag,
			disableNotificationFlag,
			noColorFlag,
		},
		Action: runAction,
		Before: beforeAction,
	}

	return pomodoroApp
}
