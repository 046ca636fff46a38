package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dshills/longview/internal/follow"
)

// loadBatch is how many lines are ingested per append while streaming
// a document in. Each batch becomes at most a few chunk writes, and
// the view stays responsive between batches.
const loadBatch = 10000

// maxLineBytes bounds a single line while scanning.
const maxLineBytes = 16 << 20

// openDocument decides the storage mode for the configured file and
// activates the chunked session when the document is large. It
// returns the size prefix of the file the background load covers.
func (app *Application) openDocument() (int64, error) {
	if app.opts.File == "" {
		return 0, nil
	}

	info, err := os.Stat(app.opts.File)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", app.opts.File, err)
	}

	chunked := app.opts.Chunked || info.Size() >= app.cfg.ChunkedThreshold
	if chunked {
		if err := app.session.Activate(app.cfg.ChunkSize); err != nil {
			return 0, err
		}
		app.logger.WithSession(app.session.ID()).Info(
			"chunked session: size=%d chunkSize=%d", info.Size(), app.cfg.ChunkSize)
	}

	return info.Size(), nil
}

// loadDocument streams the first prefix bytes of the file into the
// active line source, then starts follow mode if requested. It runs on
// a background goroutine; the view repaints on the append events the
// ingest publishes.
func (app *Application) loadDocument(prefix int64) {
	log := app.logger.WithComponent("loader")

	var partial []byte
	if app.opts.File != "" && prefix > 0 {
		began := time.Now()
		lines, held, err := app.streamFile(prefix, app.opts.Follow)
		if err != nil {
			log.Error("load failed: %v", err)
			return
		}
		partial = held
		log.Info("loaded %d lines in %v", lines, time.Since(began))
	}

	if app.opts.Follow && app.opts.File != "" {
		app.startFollow(prefix, partial)
	}
}

// streamFile reads up to prefix bytes of the file line by line,
// appending in batches. It returns the number of lines ingested and,
// when holdPartial is set and the prefix does not end in a newline,
// the unterminated trailing line withheld from the load; the follower
// completes it once its newline arrives.
func (app *Application) streamFile(prefix int64, holdPartial bool) (int, []byte, error) {
	file, err := os.Open(app.opts.File)
	if err != nil {
		return 0, nil, err
	}
	defer file.Close()

	if holdPartial {
		holdPartial = !endsWithNewline(file, prefix)
	}

	// Stop at the size observed at open time even while a writer keeps
	// appending; follow mode picks up from there.
	scanner := bufio.NewScanner(io.LimitReader(file, prefix))
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	total := 0
	batch := make([]string, 0, loadBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := app.appendLoaded(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	// One line of lookahead: the last line scanned is only appended
	// once a successor proves it was complete.
	var held string
	haveHeld := false
	for scanner.Scan() {
		if haveHeld {
			batch = append(batch, held)
			if len(batch) >= loadBatch {
				if err := flush(); err != nil {
					return total, nil, err
				}
			}
		}
		held = scanner.Text()
		haveHeld = true
	}
	if err := scanner.Err(); err != nil {
		return total, nil, err
	}

	var partial []byte
	if haveHeld {
		if holdPartial {
			partial = []byte(held)
		} else {
			batch = append(batch, held)
		}
	}
	if err := flush(); err != nil {
		return total, partial, err
	}
	return total, partial, nil
}

// endsWithNewline reports whether the byte just before prefix is a
// line terminator. A read failure counts as terminated, which keeps
// the previous whole-line behavior.
func endsWithNewline(file *os.File, prefix int64) bool {
	if prefix <= 0 {
		return true
	}
	var b [1]byte
	if _, err := file.ReadAt(b[:], prefix-1); err != nil {
		return true
	}
	return b[0] == '\n'
}

// appendLoaded routes a batch to whichever source is active.
func (app *Application) appendLoaded(lines []string) error {
	began := time.Now()
	defer func() {
		app.metrics.RecordAppend(len(lines), time.Since(began))
	}()

	if app.session.Active() {
		return app.session.AppendLines(lines)
	}
	app.session.Normal().Append(lines)
	if app.view != nil {
		app.view.Refresh()
	}
	return nil
}

// startFollow begins tailing the file past the loaded prefix. An
// unterminated trailing line withheld by the load is seeded into the
// follower so its continuation joins it.
func (app *Application) startFollow(offset int64, partial []byte) {
	log := app.logger.WithComponent("follow")

	f, err := follow.New(app.opts.File, followTarget{app: app},
		follow.WithStartOffset(offset),
		follow.WithPartial(partial),
		follow.WithDebounce(app.cfg.FollowDebounce()),
		follow.WithErrorHandler(func(err error) {
			log.Warn("follow: %v", err)
		}),
	)
	if err != nil {
		log.Error("follow setup failed: %v", err)
		return
	}
	if err := f.Start(); err != nil {
		log.Error("follow start failed: %v", err)
		return
	}
	app.follower = f
	if app.view != nil {
		app.view.Refresh()
	}
	log.Info("following %s from offset %d", app.opts.File, offset)
}

// followTarget adapts the application to the follower's appender.
type followTarget struct {
	app *Application
}

func (ft followTarget) AppendLines(lines []string) error {
	return ft.app.appendLoaded(lines)
}

