package app

import "github.com/urfave/cli/v2"

var (
	courseFlag = &cli.IntFlag{
		Name:    "course",
		Aliases: []string{"c"},
		Usage:   "Scope the timer to a course. 0 uses the shared global scope",
	}

	workFlag = &cli.StringFlag{
		Name:    "work",
		Aliases: []string{"w"},
		Usage:   "Focus duration in minutes (default: 25)",
	}

	shortBreakFlag = &cli.StringFlag{
		Name:    "short-break",
		Aliases: []string{"s"},
		Usage:   "Short break duration in minutes (default: 5)",
	}

	longBreakFlag = &cli.StringFlag{
		Name:    "long-break",
		Aliases: []string{"l"},
		Usage:   "Long break duration in minutes (default: 15)",
	}

	longBreakIntervalFlag = &cli.UintFlag{
		Name:    "long-break-interval",
		Aliases: []string{"int"},
		Usage:   "The number of focus periods before a long break (default: 3)",
	}

	wellnessFlag = &cli.StringFlag{
		Name:  "wellness",
		Usage: "Wellness check duration in seconds (default: 30)",
	}

	userFlag = &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Identity reported to the session recorder. Defaults to the OS username",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification and sound cues that accompany each phase change",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address for the session recorder service to listen on (default: :7180)",
	}
)
