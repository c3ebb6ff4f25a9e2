package intake

import (
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorderCollectsBlob(t *testing.T) {
	var r Recorder

	assert.NoError(t, r.Start(io.NopCloser(strings.NewReader("chunk-1chunk-2"))))
	assert.True(t, r.Recording())

	// Starting again while running is rejected.
	assert.Error(t, r.Start(io.NopCloser(strings.NewReader("other"))))

	blob, err := r.Stop()
	assert.NoError(t, err)
	assert.Equal(t, "chunk-1chunk-2", string(blob))
	assert.False(t, r.Recording())
	assert.Equal(t, 0, r.Elapsed())
}

func TestRecorderStopWhenIdle(t *testing.T) {
	var r Recorder
	_, err := r.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestRecorderStopClosesSource(t *testing.T) {
	pr, pw := io.Pipe()

	var r Recorder
	assert.NoError(t, r.Start(pr))

	_, err := pw.Write([]byte("live-audio"))
	assert.NoError(t, err)
	// Give the drain goroutine a moment to pick the chunk up.
	time.Sleep(20 * time.Millisecond)

	blob, err := r.Stop()
	assert.NoError(t, err)
	assert.Equal(t, "live-audio", string(blob))

	// The read side was closed by Stop, so the writer now fails.
	_, err = pw.Write([]byte("more"))
	assert.Error(t, err)
}

// socketSource behaves like a network-backed stream: it yields one chunk,
// then blocks until Close and fails further reads with net.ErrClosed.
type socketSource struct {
	data   string
	sent   bool
	closed chan struct{}
	once   sync.Once
}

func newSocketSource(data string) *socketSource {
	return &socketSource{data: data, closed: make(chan struct{})}
}

func (s *socketSource) Read(p []byte) (int, error) {
	if !s.sent {
		s.sent = true
		return copy(p, s.data), nil
	}
	<-s.closed
	return 0, net.ErrClosed
}

func (s *socketSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func TestRecorderStopTreatsClosedSourceAsClean(t *testing.T) {
	var r Recorder
	assert.NoError(t, r.Start(newSocketSource("stream-audio")))

	// Let the drain goroutine pick up the chunk before stopping.
	time.Sleep(20 * time.Millisecond)

	blob, err := r.Stop()
	assert.NoError(t, err)
	assert.Equal(t, "stream-audio", string(blob))
}

func TestRecorderRestartAfterStop(t *testing.T) {
	var r Recorder

	assert.NoError(t, r.Start(io.NopCloser(strings.NewReader("first"))))
	_, err := r.Stop()
	assert.NoError(t, err)

	assert.NoError(t, r.Start(io.NopCloser(strings.NewReader("second"))))
	blob, err := r.Stop()
	assert.NoError(t, err)
	assert.Equal(t, "second", string(blob))
}
