package source

// Source yields raw frames from a radar feed.
//
// Frames returns a channel that delivers one raw line per reading and is
// closed when the feed ends or the source is closed. Consumers select on it
// together with their tick timer, so a silent sensor never stalls ticking.
type Source interface {
	// Frames returns the channel of raw frame lines.
	Frames() <-chan string
	// Err reports the failure that ended the feed, if any.
	// It must only be consulted after the Frames channel is closed.
	Err() error
	// Close releases the underlying feed. It is safe to call more than once.
	Close() error
}

// Script is an in-memory source that replays a fixed frame sequence.
// It backs tests and the offline replay tool.
type Script struct {
	frames chan string
}

// NewScript creates a source that yields the provided lines in order and
// then ends cleanly.
func NewScript(lines ...string) *Script {
	frames := make(chan string, len(lines))
	for _, line := range lines {
		frames <- line
	}

	close(frames)

	return &Script{frames: frames}
}

// Frames returns the channel of scripted lines.
func (s *Script) Frames() <-chan string {
	return s.frames
}

// Err always reports nil; a script cannot fail.
func (s *Script) Err() error {
	return nil
}

// Close is a no-op for scripted frames.
func (s *Script) Close() error {
	return nil
}
