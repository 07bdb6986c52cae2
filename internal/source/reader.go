package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
)

// readerFrameBuffer bounds how far the pump may run ahead of the consumer.
const readerFrameBuffer = 64

// Reader pumps newline-delimited frames from an io.ReadCloser, typically the
// radar's serial device file or stdin.
type Reader struct {
	rc     io.ReadCloser
	frames chan string

	mu     sync.Mutex
	err    error
	closed bool
}

// NewReader starts pumping frames from the provided stream.
// The stream is owned by the returned source and released by Close.
func NewReader(ctx context.Context, rc io.ReadCloser) *Reader {
	r := &Reader{
		rc:     rc,
		frames: make(chan string, readerFrameBuffer),
	}

	go r.pump(ctx)

	return r
}

// OpenDevice opens the serial device file at the given path for reading.
// The caller is expected to have configured the line discipline and baud
// rate externally (raspi-config or stty), as the sensor ships at 115200 8N1.
func OpenDevice(ctx context.Context, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open radar device: %w", err)
	}

	logger.InfoKV(ctx, "Connected to radar sensor", "device", path)

	return NewReader(ctx, f), nil
}

// pump reads lines until the stream ends, the source is closed, or the
// context is canceled, then closes the frame channel.
func (r *Reader) pump(ctx context.Context) {
	defer close(r.frames)

	scanner := bufio.NewScanner(r.rc)
	for scanner.Scan() {
		select {
		case r.frames <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && !r.isClosed() {
		// fs.ErrClosed surfaces when Close raced the final read.
		if !errors.Is(err, fs.ErrClosed) {
			r.setErr(fmt.Errorf("read radar stream: %w", err))
		}
	}
}

// Frames returns the channel of raw frame lines.
func (r *Reader) Frames() <-chan string {
	return r.frames
}

// Err reports the failure that ended the feed, if any.
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

// Close releases the underlying stream, which also unblocks the pump.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}

	r.closed = true
	r.mu.Unlock()

	return r.rc.Close()
}

func (r *Reader) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}
