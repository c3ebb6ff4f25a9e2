package intake

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net"
	"sync"
	"time"
)

var ErrNotRecording = errors.New("recorder is not running")

// Recorder accumulates audio chunks from a live source into a single blob.
// An elapsed counter ticks once per second while recording and is stopped and
// cleared on every stop path. The source is closed on stop regardless of
// outcome.
type Recorder struct {
	mu      sync.Mutex
	src     io.ReadCloser
	buf     bytes.Buffer
	running bool
	elapsed int
	stopped chan struct{}
	done    sync.WaitGroup
	readErr error

	// OnTick, if set, observes each elapsed second (UI timer display).
	OnTick func(seconds int)
}

// Start begins draining src. Only one recording may run at a time.
func (r *Recorder) Start(src io.ReadCloser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("recording already in progress")
	}

	r.src = src
	r.buf.Reset()
	r.running = true
	r.elapsed = 0
	r.readErr = nil
	r.stopped = make(chan struct{})

	r.done.Add(2)
	go r.drain(src)
	go r.tick(r.stopped)
	return nil
}

func (r *Recorder) drain(src io.Reader) {
	defer r.done.Done()
	chunk := make([]byte, 32*1024)
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			r.mu.Lock()
			r.buf.Write(chunk[:n])
			r.mu.Unlock()
		}
		if err != nil {
			if !benignReadEnd(err) {
				r.mu.Lock()
				r.readErr = err
				r.mu.Unlock()
			}
			return
		}
	}
}

// benignReadEnd reports whether a read error just means the source ended or
// was closed by Stop, as opposed to a real capture failure. Network and file
// backed sources report their own closed sentinels.
func benignReadEnd(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, fs.ErrClosed)
}

func (r *Recorder) tick(stopped <-chan struct{}) {
	defer r.done.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stopped:
			return
		case <-ticker.C:
			r.mu.Lock()
			r.elapsed++
			seconds := r.elapsed
			onTick := r.OnTick
			r.mu.Unlock()
			if onTick != nil {
				onTick(seconds)
			}
		}
	}
}

// Elapsed reports the running timer; it reads 0 when not recording.
func (r *Recorder) Elapsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop ends the recording and returns the accumulated blob. The source is
// closed and the elapsed counter cleared even when the read side failed.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	r.running = false
	src := r.src
	r.src = nil
	close(r.stopped)
	r.mu.Unlock()

	closeErr := src.Close()
	r.done.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.elapsed = 0
	blob := make([]byte, r.buf.Len())
	copy(blob, r.buf.Bytes())
	r.buf.Reset()

	if r.readErr != nil {
		return blob, r.readErr
	}
	if closeErr != nil {
		return blob, closeErr
	}
	return blob, nil
}
