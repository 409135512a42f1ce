package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/adetunwase/pomodoro/broadcast"
	"github.com/adetunwase/pomodoro/internal/config"
	"github.com/adetunwase/pomodoro/internal/logutil"
	"github.com/adetunwase/pomodoro/internal/scope"
	"github.com/adetunwase/pomodoro/internal/sound"
	"github.com/adetunwase/pomodoro/internal/ui"
	"github.com/adetunwase/pomodoro/recorder"
	"github.com/adetunwase/pomodoro/store"
	"github.com/adetunwase/pomodoro/timer"
)

const (
	envNoColor         = "NO_COLOR"
	envPomodoroNoColor = "POMODORO_NO_COLOR"
	envPomodoroDebug   = "POMODORO_DEBUG"
)

const shutdownTimeout = 5 * time.Second

// timerConfig derives the timer durations for this run. Flags take
// precedence over the config file; the flags are fed through the same
// attribute parsing the embedded widget uses so malformed values degrade
// to defaults instead of failing.
func timerConfig(ctx *cli.Context, base config.Timer) *config.Timer {
	attrs := make(map[string]string)

	if ctx.IsSet("work") {
		attrs[config.AttrFocusMin] = ctx.String("work")
	}

	if ctx.IsSet("short-break") {
		attrs[config.AttrShortBreakMin] = ctx.String("short-break")
	}

	if ctx.IsSet("long-break") {
		attrs[config.AttrLongBreakMin] = ctx.String("long-break")
	}

	if ctx.IsSet("wellness") {
		attrs[config.AttrWellnessSec] = ctx.String("wellness")
	}

	if ctx.IsSet("long-break-interval") {
		attrs[config.AttrLongBreakInterval] = fmt.Sprintf(
			"%d",
			ctx.Uint("long-break-interval"),
		)
	}

	t := config.FromAttributes(ctx.Int("course"), attrs)

	if !ctx.IsSet("work") {
		t.Focus = base.Focus
	}

	if !ctx.IsSet("short-break") {
		t.ShortBreak = base.ShortBreak
	}

	if !ctx.IsSet("long-break") {
		t.LongBreak = base.LongBreak
	}

	if !ctx.IsSet("wellness") {
		t.Wellness = base.Wellness
	}

	if !ctx.IsSet("long-break-interval") {
		t.LongBreakInterval = base.LongBreakInterval
	}

	return t
}

// userID resolves the identity reported to the session recorder.
func userID(ctx *cli.Context) string {
	if id := ctx.String("user"); id != "" {
		return id
	}

	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}

	return "anonymous"
}

// lineDisplay prints each update on its own line, for surfaces that change
// rarely such as the session indicator.
type lineDisplay struct {
	label string
}

func (d lineDisplay) SetText(text string) {
	pterm.Printfln("%s %s", d.label, text)
}

func printControls() {
	pterm.Println()
	pterm.Println("Controls:")
	pterm.Println("  p  start, pause, or resume the timer")
	pterm.Println("  s  skip the wellness check")
	pterm.Println("  d  dismiss the break prompt")
	pterm.Println("  x  stop and reset the timer")
	pterm.Println("  q  quit (the countdown keeps running for siblings)")
	pterm.Println()
}

// runAction starts an interactive timer instance in the terminal.
func runAction(ctx *cli.Context) error {
	cfg, err := config.Load(config.ConfigFilePath())
	if err != nil {
		return err
	}

	timerCfg := timerConfig(ctx, cfg.Timer)

	if err := os.MkdirAll(config.StateDirPath(), 0o755); err != nil {
		return err
	}

	kv, err := store.New(config.StateDirPath())
	if err != nil {
		return err
	}

	keys := scope.For(timerCfg.CourseID)

	transport, err := broadcast.NewStorageTransport(kv, keys.Msg)
	if err != nil {
		return err
	}

	rec := recorder.NewClient(
		cfg.Recorder.BaseURL,
		cfg.Serve.UserHeader,
		userID(ctx),
		recorder.WithTimeout(cfg.Recorder.Timeout),
	)

	session := timer.New(timer.Params{
		Config:    timerCfg,
		State:     store.NewState(kv, keys),
		Transport: transport,
		Recorder:  rec,
		Handles: timer.Handles{
			Display:           ui.NewTermDisplay("Focus"),
			WellnessDialog:    ui.NewTermDialog("Wellness check", "Sit up straight, relax your shoulders, and take a deep breath"),
			WellnessCountdown: ui.NewTermDisplay("Wellness"),
			BreakDialog:       ui.NewTermDialog("Break", "Step away from the screen for a moment"),
			BreakCountdown:    ui.NewTermDisplay("Break"),
			Slots:             lineDisplay{label: ui.Green("Sessions:")},
			IntervalLabel:     lineDisplay{label: ui.Green("Focus periods per long break:")},
		},
		Cue: sound.Cue{
			Enabled: cfg.Notify && !ctx.Bool("disable-notification"),
		},
	})

	defer session.Close()

	session.Init()
	printControls()

	sigCtx, stop := signal.NotifyContext(
		ctx.Context,
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	input := make(chan string)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case input <- scanner.Text():
			case <-sigCtx.Done():
				return
			}
		}

		close(input)
	}()

	for {
		select {
		case <-sigCtx.Done():
			pterm.Println()
			return nil
		case line, ok := <-input:
			if !ok {
				return nil
			}

			switch line {
			case "p":
				session.StartPause()
			case "s":
				session.SkipWellness()
			case "d":
				session.DismissBreak()
			case "x":
				session.StopReset()
			case "q":
				return nil
			case "":
			default:
				printControls()
			}
		}
	}
}

// serveAction runs the session recorder service until interrupted.
func serveAction(ctx *cli.Context) error {
	cfg, err := config.Load(config.ConfigFilePath())
	if err != nil {
		return err
	}

	if ctx.IsSet("addr") {
		cfg.Serve.Addr = ctx.String("addr")
	}

	st, err := recorder.NewStore(cfg.Serve.DBPath)
	if err != nil {
		return err
	}

	defer st.Close()

	svc := recorder.NewService(st, cfg.Serve.UserHeader)

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(
		ctx.Context,
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		slog.Info(
			"session recorder listening",
			slog.String("addr", cfg.Serve.Addr),
		)

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// statusAction prints the status of the persisted countdown for a course.
func statusAction(ctx *cli.Context) error {
	kv, err := store.New(config.StateDirPath())
	if err != nil {
		return err
	}

	state := store.NewState(kv, scope.For(ctx.Int("course")))

	line, ok := timer.Status(state)
	if !ok {
		pterm.Println("No timer is running for this course")
		return nil
	}

	pterm.Println(line)

	return nil
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	config.InitializePaths()

	_, debug := os.LookupEnv(envPomodoroDebug)
	logutil.Init(config.LogFilePath(), debug)

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envPomodoroNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
