// ClickForge - configurable auto-clicker with pattern record and replay.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"clickforge/internal/api"
	"clickforge/internal/capture"
	"clickforge/internal/config"
	"clickforge/internal/engine"
	"clickforge/internal/hotkey"
	"clickforge/internal/injector"
	"clickforge/internal/metrics"
	"clickforge/internal/storage"
	"clickforge/internal/tray"
)

var (
	version = "1.0.0"

	serve        = flag.Bool("serve", false, "Run the engine with API, tray and hotkeys")
	cps          = flag.Float64("cps", 0, "Override clicks per second for this run")
	listen       = flag.String("listen", "", "API listen address (overrides configured port)")
	showVer      = flag.Bool("version", false, "Show version")
	listPatterns = flag.Bool("list-patterns", false, "List stored patterns")
	playPattern  = flag.String("play", "", "Play a stored pattern once and exit")
	configPath   = flag.String("config", "", "Settings file path (defaults to the platform config dir)")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("clickforge version %s\n", version)
		return
	}

	logger := newLogger()
	defer logger.Sync()
	log := logger.Sugar()

	cfgMgr, err := newConfigManager()
	if err != nil {
		log.Fatalw("config init failed", "err", err)
	}
	if err := cfgMgr.Load(); err != nil {
		log.Warnw("config load failed, using defaults", "err", err)
	}

	store := storage.NewStore(cfgMgr.PatternDir())

	if *listPatterns {
		runListPatterns(log, store)
		return
	}
	if *playPattern != "" {
		runPlayOnce(log, store, *playPattern)
		return
	}

	// -serve and the bare invocation both run the service.
	runService(log, cfgMgr, store)
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func newConfigManager() (*config.Manager, error) {
	if *configPath != "" {
		return config.NewManagerAt(*configPath), nil
	}
	return config.NewManager()
}

func runListPatterns(log *zap.SugaredLogger, store *storage.Store) {
	names, err := store.List()
	if err != nil {
		log.Fatalw("list patterns failed", "err", err)
	}
	if len(names) == 0 {
		fmt.Println("No stored patterns.")
		return
	}
	for _, name := range names {
		pattern, err := store.Load(name)
		if err != nil {
			fmt.Printf("%s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%s  steps=%d  duration=%dms  looping=%v\n",
			name, len(pattern.ClickPoints), pattern.TotalDurationMs(), pattern.Looping)
	}
}

// runPlayOnce replays one stored pattern to completion and exits.
// Ctrl+C aborts mid-pattern.
func runPlayOnce(log *zap.SugaredLogger, store *storage.Store, name string) {
	pattern, err := store.Load(name)
	if err != nil {
		log.Fatalw("load pattern failed", "name", name, "err", err)
	}

	idle := make(chan struct{}, 1)
	listeners := engine.NewListeners()
	listeners.Add(playbackWaiter{idle: idle})

	player := engine.NewPlayer(engine.PlayerOptions{
		Logger:    log,
		Listeners: listeners,
	})
	if !player.Play(pattern, false) {
		log.Fatalw("playback rejected", "name", name)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-idle:
	case <-sigCh:
		log.Info("interrupted, stopping playback")
		player.Stop()
	}
}

// playbackWaiter signals when the player returns to idle.
type playbackWaiter struct {
	idle chan struct{}
}

func (playbackWaiter) OnClickPerformed()       {}
func (playbackWaiter) OnProgress(cur, tot int) {}
func (w playbackWaiter) OnStateChanged(s engine.State) {
	if s == engine.StateIdle {
		select {
		case w.idle <- struct{}{}:
		default:
		}
	}
}

func runService(log *zap.SugaredLogger, cfgMgr *config.Manager, store *storage.Store) {
	log.Infow("clickforge starting", "version", version)

	if *cps > 0 {
		cfgMgr.Update(func(c *config.Config) { c.Click.CPS = *cps })
	}

	guard := engine.NewGuard()
	listeners := engine.NewListeners()
	monitor := metrics.NewMonitor()
	gauge := metrics.NewResourceGauge(time.Second)
	defer gauge.Close()

	scheduler := engine.NewScheduler(engine.SchedulerOptions{
		Monitor:   monitor,
		Gauge:     gauge,
		Logger:    log,
		Guard:     guard,
		Listeners: listeners,
		Position:  injector.CursorPosition,
	})
	player := engine.NewPlayer(engine.PlayerOptions{
		Logger:    log,
		Guard:     guard,
		Listeners: listeners,
	})

	capBackend, err := capture.NewSystem()
	if err != nil {
		log.Warnw("pointer capture unavailable, recording disabled", "err", err)
	}
	recorder := engine.NewRecorder(engine.RecorderOptions{
		Capture:   capBackend,
		Logger:    log,
		Listeners: listeners,
	})

	// Settings watcher: edits on disk take effect without a restart.
	watcher, err := config.Watch(cfgMgr, log)
	if err != nil {
		log.Warnw("settings watch unavailable", "err", err)
	} else {
		defer watcher.Close()
	}

	// Control API.
	cfg := cfgMgr.Get()
	var server *api.Server
	if cfg.General.APIEnabled {
		server = api.NewServer(api.ServerOptions{
			Config:    cfgMgr,
			Scheduler: scheduler,
			Player:    player,
			Recorder:  recorder,
			Store:     store,
			Logger:    log,
		})
		listeners.Add(server.Hub())

		addr := *listen
		if addr == "" {
			addr = fmt.Sprintf("127.0.0.1:%d", cfg.General.APIPort)
		}
		go func() {
			if err := server.Start(addr); err != nil {
				log.Errorw("api server stopped", "err", err)
			}
		}()
	}

	// Global hotkeys.
	toggleClicker := func() {
		if scheduler.State() == engine.StateStopped {
			scheduler.Start(cfgMgr.Get().Click)
		} else {
			scheduler.Stop()
		}
	}
	toggleRecording := func() {
		if recorder.State() == engine.StateRecording {
			pattern := recorder.StopRecording()
			if pattern.Empty() {
				return
			}
			if err := store.Save(pattern); err != nil {
				log.Warnw("save recorded pattern failed", "name", pattern.Name, "err", err)
			}
		} else {
			name := fmt.Sprintf("recording-%s", time.Now().Format("20060102-150405"))
			recorder.StartRecording(name)
		}
	}

	hkMgr := hotkey.NewManager(log)
	registerHotkeys := func(cfg config.Config) {
		hkMgr.Clear()
		hkMgr.Register(cfg.General.ToggleHotkey, toggleClicker)
		hkMgr.Register(cfg.General.RecordHotkey, toggleRecording)
	}
	registerHotkeys(cfg)
	cfgMgr.SetOnChanged(registerHotkeys)
	if err := hkMgr.Start(); err != nil {
		log.Warnw("global hotkeys unavailable", "err", err)
	}

	// Tray.
	t := tray.New("ClickForge auto-clicker", log)
	statusItem := t.AddMenuItem("Status: STOPPED", nil)
	t.AddSeparator()
	t.AddMenuItem("Start/Stop Clicker", toggleClicker)
	t.AddMenuItem("Start/Stop Recording", toggleRecording)
	t.AddSeparator()
	t.AddMenuItem("Quit", func() { t.Stop() })
	listeners.Add(trayStatus{tray: t, item: statusItem})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		t.Stop()
	}()

	log.Infow("clickforge running", "api", cfg.General.APIEnabled,
		"toggle_hotkey", cfg.General.ToggleHotkey, "record_hotkey", cfg.General.RecordHotkey)
	t.Run()

	// Tray loop exited: stop everything before returning.
	scheduler.Stop()
	player.Stop()
	if recorder.State() == engine.StateRecording {
		recorder.StopRecording()
	}
	hkMgr.Stop()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warnw("api shutdown failed", "err", err)
		}
	}
	log.Info("clickforge stopped")
}

// trayStatus mirrors engine state transitions into the tray menu.
type trayStatus struct {
	tray *tray.Tray
	item int
}

func (t trayStatus) OnClickPerformed()       {}
func (t trayStatus) OnProgress(cur, tot int) {}
func (t trayStatus) OnStateChanged(s engine.State) {
	t.tray.SetItemTitle(t.item, "Status: "+string(s))
}
