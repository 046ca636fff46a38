package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/longview/internal/config"
	"github.com/dshills/longview/internal/engine"
	"github.com/dshills/longview/internal/engine/codec"
	"github.com/dshills/longview/internal/engine/session"
	"github.com/dshills/longview/internal/event"
	"github.com/dshills/longview/internal/follow"
	"github.com/dshills/longview/internal/tui"
)

// Application coordinates the engine, the event bus and the pager view.
type Application struct {
	opts    Options
	cfg     config.Config
	logger  *Logger
	metrics *Metrics
	bus     *event.Bus
	session *session.Session

	view     *tui.View
	follower *follow.Follower
	logFile  *os.File

	subs         []*event.Subscription
	shutdownOnce sync.Once
}

// New creates the application: config, logger, bus and session are
// wired here; the screen arrives later via SetScreen.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.ChunkSize > 0 {
		cfg.ChunkSize = opts.ChunkSize
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		opts:    opts,
		cfg:     cfg,
		metrics: NewMetrics(),
		bus:     event.NewBus(),
	}

	var out io.Writer = io.Discard
	if opts.LogPath != "" {
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		app.logFile = f
		out = f
	}
	app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.LogLevel),
		Output: out,
		Prefix: "longview",
	})

	app.session = session.New(
		session.WithBus(app.bus),
		session.WithCompressionLevel(codec.ParseLevel(cfg.Compression)),
		session.WithViewportLines(app.viewportLines),
	)

	app.bus.Start()
	return app, nil
}

// SetScreen builds the pager view on the given screen and subscribes
// it to engine notifications.
func (app *Application) SetScreen(screen tcell.Screen) error {
	if screen == nil {
		return fmt.Errorf("screen must not be nil")
	}

	app.view = tui.NewView(screen,
		app.currentSource,
		tui.WithStatus(app.status),
		tui.WithStatusStyle(app.cfg.Theme.StatusFg, app.cfg.Theme.StatusBg),
		tui.WithDrawHook(app.metrics.RecordDraw),
	)

	refresh := func(event.Event) { app.view.Refresh() }
	for _, pattern := range []event.Topic{
		event.TopicDocumentAppended,
		event.TopicSessionActivated,
		event.TopicSessionDeactivated,
		event.TopicSessionCleared,
	} {
		sub, err := app.bus.SubscribeFunc(pattern, refresh)
		if err != nil {
			return err
		}
		app.subs = append(app.subs, sub)
	}
	sub, err := app.bus.SubscribeFunc(event.TopicWindowLoaded, func(e event.Event) {
		app.metrics.RecordReload()
		app.view.Refresh()
	})
	if err != nil {
		return err
	}
	app.subs = append(app.subs, sub)

	return nil
}

// Run loads the document in the background and drives the view's
// event loop until the user quits.
func (app *Application) Run() error {
	if app.view == nil {
		return fmt.Errorf("no screen set")
	}

	loadFrom, err := app.openDocument()
	if err != nil {
		return err
	}
	go app.loadDocument(loadFrom)

	app.logger.Info("starting pager: file=%s chunked=%v", app.opts.File, app.session.Active())
	return app.view.Run()
}

// Shutdown releases everything. Safe to call more than once and on
// every exit path.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		if app.follower != nil {
			app.follower.Stop()
		}
		for _, sub := range app.subs {
			app.bus.Unsubscribe(sub)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = app.bus.Stop(ctx)

		app.session.Deactivate()

		snap := app.metrics.Snapshot()
		app.logger.Info("shutdown: draws=%d resolves=%d reloads=%d appended=%d lines",
			snap.DrawCount, snap.ResolveCount, snap.ReloadCount, snap.AppendLines)
		if app.logFile != nil {
			app.logFile.Close()
		}
	})
}

// Session exposes the lifecycle for tests and tooling.
func (app *Application) Session() *session.Session {
	return app.session
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// currentSource returns the line-source variant the lifecycle has
// selected, with resolve timing recorded around it.
func (app *Application) currentSource() engine.LineSource {
	return &timedSource{src: app.session.Source(), metrics: app.metrics}
}

// viewportLines reports the pager's content-row count for the
// activation guard.
func (app *Application) viewportLines() int {
	if app.view == nil {
		return 0
	}
	return app.view.Viewport().Height()
}

// status assembles the status line state.
func (app *Application) status() tui.Status {
	return tui.Status{
		FileName:        filepath.Base(app.opts.File),
		Chunked:         app.session.Active(),
		Chunks:          app.session.ChunkCount(),
		CompressedBytes: app.session.CompressedSize(),
		Pending:         app.session.Pending(),
		Follow:          app.follower != nil,
	}
}

// timedSource wraps a line source to record resolve latency.
type timedSource struct {
	src     engine.LineSource
	metrics *Metrics
}

func (t *timedSource) Resolve(start, size int) []string {
	began := time.Now()
	out := t.src.Resolve(start, size)
	t.metrics.RecordResolve(time.Since(began))
	return out
}

func (t *timedSource) LineCount() int { return t.src.LineCount() }
func (t *timedSource) ReadOnly() bool { return t.src.ReadOnly() }
