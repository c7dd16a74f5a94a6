package protocol

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/tenxer/handnav/internal/logging"
)

const maxLineSize = 4 * 1024 * 1024

// ServeStdio reads newline-delimited requests from in and writes one
// response line per request to out. It returns nil on EOF and ctx.Err()
// on cancellation. The reader goroutine exits once in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	log := s.log.WithPrefix("stdio")
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	w := bufio.NewWriter(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			wg.Wait()
			if err != nil {
				log.Warn("stdin read failed", logging.Error(err))
			}
			return err
		case line := <-lines:
			resp := s.HandleJSON(ctx, line)
			if resp == nil {
				continue
			}
			if _, err := w.Write(append(resp, '\n')); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}
