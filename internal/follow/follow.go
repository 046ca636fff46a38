// Package follow tails a file, feeding newly written lines into the
// chunked session the way a viewer in follow mode would.
package follow

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Errors returned by follower operations.
var (
	ErrAlreadyStarted = errors.New("follower already started")
	ErrFollowerClosed = errors.New("follower closed")
)

// Appender receives complete new lines as they appear in the file.
type Appender interface {
	AppendLines(lines []string) error
}

// Follower watches one file and appends every complete line written
// past the point it started from. A trailing partial line is held
// until its newline arrives. Rapid writes are debounced so bursts
// ingest as one append.
type Follower struct {
	mu       sync.Mutex
	path     string
	appender Appender
	debounce time.Duration
	onError  func(error)

	watcher *fsnotify.Watcher
	offset  int64
	partial []byte

	started bool
	closed  bool
	closeCh chan struct{}
	doneWg  sync.WaitGroup
}

// New creates a follower for path. The current end of file becomes the
// starting offset: only lines written afterwards are appended.
func New(path string, appender Appender, opts ...Option) (*Follower, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	f := &Follower{
		path:     absPath,
		appender: appender,
		debounce: 100 * time.Millisecond,
		offset:   info.Size(),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Start begins watching. It returns once the watch is installed; line
// delivery happens on a background goroutine until Stop.
func (f *Follower) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFollowerClosed
	}
	if f.started {
		return ErrAlreadyStarted
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory rather than the file so log rotation and
	// recreation keep working.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		w.Close()
		return err
	}

	f.watcher = w
	f.started = true
	f.doneWg.Add(1)
	go f.loop()
	return nil
}

// Stop stops watching and waits for the delivery goroutine to exit.
// It is safe to call more than once.
func (f *Follower) Stop() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.closeCh)
	f.mu.Unlock()

	f.doneWg.Wait()
	if f.watcher != nil {
		f.watcher.Close()
	}
}

// loop waits for write events, debounces them, and drains new lines.
func (f *Follower) loop() {
	defer f.doneWg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-f.closeCh:
			if timer != nil {
				timer.Stop()
			}
			// Final drain so lines written just before Stop land.
			f.drain()
			return

		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != f.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(f.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			f.drain()

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.reportError(err)
		}
	}
}

// drain reads everything past the current offset and appends the
// complete lines found.
func (f *Follower) drain() {
	file, err := os.Open(f.path)
	if err != nil {
		f.reportError(err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		f.reportError(err)
		return
	}
	if info.Size() < f.offset {
		// Truncated or rotated: start over from the top.
		f.offset = 0
		f.partial = nil
	}
	if info.Size() == f.offset {
		return
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		f.reportError(err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		f.reportError(err)
		return
	}
	f.offset += int64(len(data))

	buf := append(f.partial, data...)
	var lines []string
	for {
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, string(buf[:idx]))
		buf = buf[idx+1:]
	}
	f.partial = append([]byte(nil), buf...)

	if len(lines) == 0 {
		return
	}
	if err := f.appender.AppendLines(lines); err != nil {
		f.reportError(err)
	}
}

// reportError forwards an error to the configured handler.
func (f *Follower) reportError(err error) {
	if f.onError != nil {
		f.onError(err)
	}
}
