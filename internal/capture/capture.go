// Package capture records the active canvas as a numbered PNG sequence.
//
// Capture is best effort: frames are read back on the render thread and
// handed to an encoder goroutine through a bounded queue. When the queue is
// full the frame is dropped and counted, so rendering never waits on disk.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"shadergrid/internal/gpu"
	"shadergrid/internal/preview"
)

// Settings control one capture session.
type Settings struct {
	Dir string
	FPS int
	// Duration in seconds; used when AutoStop is set.
	Duration float64
	AutoStop bool
}

// Stats summarize a finished session.
type Stats struct {
	Dir     string
	Frames  int
	Dropped int
	Err     error
}

func (s Stats) String() string {
	msg := fmt.Sprintf("%d frames written to %s, %d dropped", s.Frames, s.Dir, s.Dropped)
	if s.Err != nil {
		msg += fmt.Sprintf(" (error: %v)", s.Err)
	}
	return msg
}

type frame struct {
	seq int
	img *image.RGBA
}

// Recorder is a preview.FrameObserver that writes frames while active.
// Start, Stop and FrameRendered run on the render thread.
type Recorder struct {
	settings  Settings
	now       func() time.Time
	queueSize int
	encode    func(io.Writer, image.Image) error
	onFinish  func(Stats)

	active   bool
	dir      string
	started  time.Time
	lastShot time.Time
	seq      int
	queue    chan frame
	done     chan struct{}

	written atomic.Int64
	dropped atomic.Int64

	mu   sync.Mutex
	err  error
	last Stats
}

var _ preview.FrameObserver = (*Recorder)(nil)

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithQueueSize sets how many frames may wait for the encoder.
func WithQueueSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithOnFinish is called from the encoder goroutine once a session's queue
// has drained.
func WithOnFinish(fn func(Stats)) Option {
	return func(r *Recorder) { r.onFinish = fn }
}

// NewRecorder returns an idle recorder.
func NewRecorder(settings Settings, opts ...Option) *Recorder {
	r := &Recorder{
		settings:  settings,
		now:       time.Now,
		queueSize: 8,
		encode:    png.Encode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Active reports whether a session is running.
func (r *Recorder) Active() bool { return r.active }

// Configure replaces the settings used by the next session.
func (r *Recorder) Configure(settings Settings) { r.settings = settings }

// Start opens a new session directory under Settings.Dir.
func (r *Recorder) Start() error {
	if r.active {
		return errors.New("capture already running")
	}
	if r.settings.FPS <= 0 {
		return fmt.Errorf("capture fps must be positive, got %d", r.settings.FPS)
	}
	r.Wait()

	now := r.now()
	dir, err := sessionDir(r.settings.Dir, now)
	if err != nil {
		return err
	}

	r.active = true
	r.dir = dir
	r.started = now
	r.lastShot = time.Time{}
	r.seq = 0
	r.written.Store(0)
	r.dropped.Store(0)
	r.mu.Lock()
	r.err = nil
	r.mu.Unlock()

	r.queue = make(chan frame, r.queueSize)
	r.done = make(chan struct{})
	go r.encodeLoop(r.queue, r.done, dir)

	log.Printf("capture started: %s at %d fps", dir, r.settings.FPS)
	return nil
}

func sessionDir(base string, now time.Time) (string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}
	name := now.Format("capture-20060102-150405")
	dir := filepath.Join(base, name)
	for i := 2; ; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create capture dir: %w", err)
		}
		dir = filepath.Join(base, fmt.Sprintf("%s-%d", name, i))
	}
}

// Stop ends the session. Queued frames are still written; use Wait to block
// until they are.
func (r *Recorder) Stop() {
	if !r.active {
		return
	}
	r.active = false
	close(r.queue)
	r.queue = nil
}

// Toggle starts an idle recorder or stops a running one.
func (r *Recorder) Toggle() error {
	if r.active {
		r.Stop()
		return nil
	}
	return r.Start()
}

// Wait blocks until the last session's encoder has finished and returns
// its stats. It returns immediately when no session was started.
func (r *Recorder) Wait() Stats {
	if r.done == nil {
		return Stats{}
	}
	if r.active {
		r.Stop()
	}
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// FrameRendered reads back the active canvas when a frame is due.
func (r *Recorder) FrameRendered(ctx gpu.Context, _ preview.Telemetry) {
	if !r.active {
		return
	}
	now := r.now()
	if r.settings.AutoStop && now.Sub(r.started).Seconds() >= r.settings.Duration {
		r.Stop()
		return
	}
	interval := time.Second / time.Duration(r.settings.FPS)
	if !r.lastShot.IsZero() && now.Sub(r.lastShot) < interval {
		return
	}
	r.lastShot = now

	width, height := ctx.FramebufferSize()
	img, err := ctx.ReadPixels(image.Rect(0, 0, width, height))
	if err != nil {
		r.dropped.Add(1)
		r.setErr(err)
		return
	}
	select {
	case r.queue <- frame{seq: r.seq, img: img}:
	default:
		r.dropped.Add(1)
	}
	r.seq++
}

func (r *Recorder) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

func (r *Recorder) encodeLoop(queue <-chan frame, done chan<- struct{}, dir string) {
	defer close(done)
	for f := range queue {
		if err := r.writeFrame(dir, f); err != nil {
			r.dropped.Add(1)
			r.setErr(err)
			continue
		}
		r.written.Add(1)
	}

	r.mu.Lock()
	stats := Stats{
		Dir:     dir,
		Frames:  int(r.written.Load()),
		Dropped: int(r.dropped.Load()),
		Err:     r.err,
	}
	r.last = stats
	r.mu.Unlock()

	log.Printf("capture finished: %s", stats)
	if r.onFinish != nil {
		r.onFinish(stats)
	}
}

func (r *Recorder) writeFrame(dir string, f frame) error {
	path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", f.seq))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := r.encode(file, f.img); err != nil {
		file.Close()
		return fmt.Errorf("encode frame %d: %w", f.seq, err)
	}
	return file.Close()
}
