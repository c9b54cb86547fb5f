package plugin

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/kataras/figma-variables/pkg/exporter"
)

const maxMessageSize = 4 << 20

// ServeStream runs a single session over newline-delimited JSON: requests
// are read from r, messages are written to w. The session is activated
// first, then requests are handled one at a time until r is exhausted or
// ctx is done. Failed requests are logged and do not end the session.
//
// When ctx ends while a read is pending, ServeStream returns ctx.Err()
// without waiting for r; the pending read is abandoned.
func ServeStream(ctx context.Context, open exporter.Opener, r io.Reader, w io.Writer, logger Logger) error {
	logger = orNop(logger)

	var mu sync.Mutex
	enc := json.NewEncoder(w)
	post := PosterFunc(func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(msg)
	})

	p := New(open, post, logger)
	if err := p.OnActivate(ctx); err != nil {
		return fmt.Errorf("activate: %w", err)
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go readLines(ctx, r, lines, readErr)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return err
				}
				return nil
			}

			if err := p.HandleMessage(ctx, line); err != nil {
				logger.Errorf("Request failed: %v", err)
			}
		}
	}
}

// readLines sends every non-empty line of r to lines and closes it. Exactly
// one value is sent on errc before lines is closed.
func readLines(ctx context.Context, r io.Reader, lines chan<- []byte, errc chan<- error) {
	defer close(lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}

		select {
		case lines <- bytes.Clone(scanner.Bytes()):
		case <-ctx.Done():
			errc <- ctx.Err()
			return
		}
	}

	if err := scanner.Err(); err != nil {
		errc <- fmt.Errorf("read requests: %w", err)
		return
	}
	errc <- nil
}
