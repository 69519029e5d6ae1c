package main

import (
	"codeberg.org/miketth/nskbd/pkg/hotkey"
	"codeberg.org/miketth/nskbd/pkg/hyprland"
	"codeberg.org/miketth/nskbd/pkg/layoutstore"
	jsonstore "codeberg.org/miketth/nskbd/pkg/layoutstore/json"
	"codeberg.org/miketth/nskbd/pkg/layoutstore/sqlite"
	"codeberg.org/miketth/nskbd/pkg/nskbd"
	"codeberg.org/miketth/nskbd/pkg/x11"
	"codeberg.org/miketth/nskbd/pkg/xkblayouts"
	"codeberg.org/miketth/nskbd/pkg/xkbstate"
	"context"
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

var errAddFailed = errors.New("failed to add current window")

func main() {
	err := newRootCmd().Execute()
	switch {
	case errors.Is(err, errAddFailed):
		os.Exit(1)
	case err != nil:
		log.Fatalf("error: %+v", err)
	}
}

type options struct {
	add            bool
	debug          bool
	configPath     string
	logPath        string
	store          string
	dbPath         string
	backend        string
	xkblayoutState string
	layoutFormat   string
	hyprKeyboard   string
	evdevXmlPath   string
	keyboards      []string
	interval       time.Duration
	timeout        time.Duration
	reloadInterval time.Duration
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "nskbd",
		Short: "Switch the keyboard layout to match the focused window",
		Args:  cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.Bool("add", false, "map the focused window to the current layout and exit")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("config", "", "path to config.json (default $XDG_CONFIG_HOME/nskbd/config.json)")
	flags.String("log-file", "", "path to the log file (default $XDG_STATE_HOME/nskbd/nskbd.log)")
	flags.String("store", "json", "config storage: json or sqlite")
	flags.String("db", "", "path to the sqlite database (default $XDG_CONFIG_HOME/nskbd/layouts.db)")
	flags.String("backend", "x11", "window and layout backend: x11 or hyprland")
	flags.String("xkblayout-state", "", "path to xkblayout-state (default: next to this binary, then $PATH)")
	flags.String("layout-format", string(xkbstate.FormatSymbol), "how to read the layout from xkblayout-state: symbol or index")
	flags.String("hyprland-keyboard", "", "hyprland keyboard device name (default: main keyboard)")
	flags.String("evdev-xml-path", xkblayouts.DefaultRegistryPath, "path to evdev.xml")
	flags.StringSlice("keyboard-device", nil, "evdev device for the add_window hotkey, repeatable (default: autodetect)")
	flags.Duration("interval", nskbd.DefaultPollInterval, "poll interval")
	flags.Duration("timeout", time.Second, "timeout for each external tool call")
	flags.Duration("reload-interval", layoutstore.DefaultReloadInterval, "how often to check the config for changes")

	v.SetEnvPrefix("NSKBD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	return cmd
}

func loadOptions(v *viper.Viper) (options, error) {
	opts := options{
		add:            v.GetBool("add"),
		debug:          v.GetBool("debug"),
		configPath:     v.GetString("config"),
		logPath:        v.GetString("log-file"),
		store:          v.GetString("store"),
		dbPath:         v.GetString("db"),
		backend:        v.GetString("backend"),
		xkblayoutState: v.GetString("xkblayout-state"),
		layoutFormat:   v.GetString("layout-format"),
		hyprKeyboard:   v.GetString("hyprland-keyboard"),
		evdevXmlPath:   v.GetString("evdev-xml-path"),
		keyboards:      v.GetStringSlice("keyboard-device"),
		interval:       v.GetDuration("interval"),
		timeout:        v.GetDuration("timeout"),
		reloadInterval: v.GetDuration("reload-interval"),
	}

	var err error
	if opts.configPath == "" {
		opts.configPath, err = xdg.ConfigFile("nskbd/config.json")
		if err != nil {
			return options{}, fmt.Errorf("get config path: %w", err)
		}
	}
	if opts.logPath == "" {
		opts.logPath, err = xdg.StateFile("nskbd/nskbd.log")
		if err != nil {
			return options{}, fmt.Errorf("get log path: %w", err)
		}
	}
	if opts.dbPath == "" && opts.store == "sqlite" {
		opts.dbPath, err = xdg.ConfigFile("nskbd/layouts.db")
		if err != nil {
			return options{}, fmt.Errorf("get db path: %w", err)
		}
	}

	return opts, nil
}

func run(ctx context.Context, out io.Writer, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := newLogger(opts.logPath, opts.debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	backend, closeBackend, err := openBackend(opts, log)
	if err != nil {
		return fmt.Errorf("open layout store: %w", err)
	}
	defer closeBackend()

	store := layoutstore.NewStore(backend, log, opts.reloadInterval)

	windows, layouts, err := newSources(opts, log)
	if err != nil {
		return err
	}

	sw := nskbd.NewSwitcher(windows, layouts, store, log, opts.interval)

	if opts.add {
		return addWindow(ctx, out, sw)
	}

	return serve(ctx, out, sw, store, opts, log)
}

func addWindow(ctx context.Context, out io.Writer, sw *nskbd.Switcher) error {
	fmt.Fprintln(out, "Adding current window...")

	entry, err := sw.AddCurrentWindow(ctx)
	if err != nil {
		fmt.Fprintln(out, "Failed! Check logs for details.")
		return errAddFailed
	}

	fmt.Fprintf(out, "Added: %s -> %d\n", entry.Window, entry.Layout)
	fmt.Fprintln(out, "Success! Window added to config.")
	return nil
}

func serve(
	ctx context.Context,
	out io.Writer,
	sw *nskbd.Switcher,
	store *layoutstore.Store,
	opts options,
	log *zap.SugaredLogger,
) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(out, "Keyboard layout switcher started (Ctrl+C to stop)")
	fmt.Fprintf(out, "Logging to: %s\n", opts.logPath)

	// read before the loop starts, the loop owns the store afterwards
	hotkeyCfg := store.Current()

	errChan := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		err := sw.Run(ctx)
		if err != nil {
			errChan <- fmt.Errorf("run switcher: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		listenHotkey(ctx, hotkeyCfg, opts.keyboards, sw, log)
	}()

	err := <-errChan
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(out, "\nStopped by user")
		stop()
		wg.Wait()
		return nil
	case err != nil:
		stop()
		wg.Wait()
		return err
	}

	return nil
}

// listenHotkey runs the add_window hotkey listener if one is configured.
// It never fails the service; problems only disable the hotkey.
func listenHotkey(
	ctx context.Context,
	cfg nskbd.Configuration,
	devices []string,
	sw *nskbd.Switcher,
	log *zap.SugaredLogger,
) {
	spec := cfg.Hotkeys[nskbd.HotkeyAddWindow]
	if spec == "" {
		return
	}

	combo, err := hotkey.ParseCombo(spec)
	if err != nil {
		log.Warnw("invalid hotkey, hotkey disabled", "hotkey", spec, "error", err)
		return
	}

	if len(devices) == 0 {
		devices, err = hotkey.FindKeyboards()
		if err != nil {
			log.Warnw("cannot list keyboards, hotkey disabled", "error", err)
			return
		}
	}

	err = hotkey.NewListener(combo, devices, sw.RequestAddWindow, log).Listen(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warnw("hotkey listener stopped, hotkey disabled", "error", err)
	}
}

func openBackend(opts options, log *zap.SugaredLogger) (layoutstore.Backend, func(), error) {
	switch opts.store {
	case "json", "":
		return jsonstore.NewLayoutStore(opts.configPath), func() {}, nil
	case "sqlite":
		store, err := sqlite.NewLayoutStore(opts.dbPath, log)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown store %q", opts.store)
}

func newSources(opts options, log *zap.SugaredLogger) (nskbd.WindowSource, nskbd.LayoutSource, error) {
	switch opts.backend {
	case "x11", "":
		format, err := xkbstate.ParseFormat(opts.layoutFormat)
		if err != nil {
			return nil, nil, err
		}
		return x11.NewInspector(opts.timeout), xkbstate.NewController(opts.xkblayoutState, format, opts.timeout), nil
	case "hyprland":
		var registry hyprland.LayoutRegistry
		parsed, err := xkblayouts.ParseRegistryFile(opts.evdevXmlPath)
		if err != nil {
			log.Warnw("cannot parse layout registry, matching keymap names as is", "path", opts.evdevXmlPath, "error", err)
		} else {
			registry = parsed
		}
		hyprctl := hyprland.NewHyprctl(opts.hyprKeyboard, registry, opts.timeout)
		return hyprctl, hyprctl, nil
	}

	return nil, nil, fmt.Errorf("unknown backend %q", opts.backend)
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Following the focused window")

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(path string, debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{path}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	loggerConfig.DisableStacktrace = true
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
