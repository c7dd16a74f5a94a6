// Package logtail follows the uploader log and fans appended lines out to
// subscribers such as the /logs event stream.
package logtail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tenxer/handnav/internal/logging"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// Header is written when the log file does not exist yet.
const Header = "Log started...\n"

// Tailer watches one file and publishes every complete appended line.
// Slow subscribers lose lines instead of blocking the watcher.
type Tailer struct {
	path   string
	buffer int
	log    *logging.Logger

	mu      sync.Mutex
	subs    map[int]chan string
	nextID  int
	dropped int
	stopped bool

	offset  int64
	partial []byte

	ready     chan struct{}
	readyOnce sync.Once
}

// New returns a tailer for path. Nothing is watched until Run.
func New(path string) *Tailer {
	return &Tailer{
		path:   filepath.Clean(path),
		buffer: DefaultBuffer,
		log:    logging.Global().WithPrefix("logtail"),
		subs:   make(map[int]chan string),
		ready:  make(chan struct{}),
	}
}

// Path returns the watched file.
func (t *Tailer) Path() string { return t.path }

// Ready is closed once Run is watching.
func (t *Tailer) Ready() <-chan struct{} { return t.ready }

// Subscribe registers a receiver. The returned func is idempotent and
// closes the channel. After Run has returned the channel comes back
// already closed.
func (t *Tailer) Subscribe() (<-chan string, func()) {
	ch := make(chan string, t.buffer)

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := t.nextID
	t.nextID++
	t.subs[id] = ch
	n := len(t.subs)
	t.mu.Unlock()

	t.log.Debug("log client connected", logging.Count(n))

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if c, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(c)
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (t *Tailer) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Dropped reports lines discarded for full subscriber channels.
func (t *Tailer) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Run watches the file until ctx is done. All subscriber channels are
// closed on return.
func (t *Tailer) Run(ctx context.Context) error {
	defer t.closeAll()

	if err := ensureFile(t.path); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	// The directory is watched so the file can be recreated.
	if err := w.Add(filepath.Dir(t.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(t.path), err)
	}
	t.readyOnce.Do(func() { close(t.ready) })
	t.log.Info("tailing log", logging.Path(t.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != t.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if err := t.poll(); err != nil {
					t.log.Warn("read log failed", logging.Error(err))
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			t.log.Warn("watcher error", logging.Error(err))
		}
	}
}

// poll reads everything past the last offset.
func (t *Tailer) poll() error {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.offset, t.partial = 0, nil
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size < t.offset {
		t.log.Debug("log truncated", logging.Count(int(size)))
		t.offset, t.partial = 0, nil
	}
	if size == t.offset {
		return nil
	}

	chunk := make([]byte, size-t.offset)
	n, err := f.ReadAt(chunk, t.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	t.offset += int64(n)

	data := append(t.partial, chunk[:n]...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		t.publish(strings.TrimRight(string(data[:i]), "\r"))
		data = data[i+1:]
	}
	t.partial = append([]byte(nil), data...)
	return nil
}

func (t *Tailer) publish(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- line:
		default:
			t.dropped++
		}
	}
}

func (t *Tailer) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
}

func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Header), 0o644)
}
