// Package decoder implements the blocking audio-decode worker: a
// single goroutine pinned to its own OS thread that owns the current
// playback and guarantees at most one active decode at any time.
//
// The production audio backend (a real PCM device driver) is outside
// this repository's scope; Sink and Source are external collaborators
// described only by their interface, backed in tests by the in-memory
// implementations in sink_memory.go.
package decoder

import (
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Command is a request sent to the decoder worker. External stop is not
// exposed: a new Play preempts whatever is currently playing.
type Command interface{ isCommand() }

// Play starts (or preempts into) playback of the track at Path.
type Play struct{ Path string }

// Pause suspends the current playback without dropping packets.
type Pause struct{}

// Resume returns a paused playback to normal cadence.
type Resume struct{}

func (Play) isCommand()   {}
func (Pause) isCommand()  {}
func (Resume) isCommand() {}

// Update is an observation the worker emits about the current playback.
type Update interface{ isUpdate() }

// Progress reports the current playback position, derived from the
// packet timestamp the decode loop last processed.
type Progress struct {
	Path     string
	Position time.Duration
	Total    time.Duration
}

// Finished reports a playback ending, whether by natural end-of-stream
// or by a fatal I/O error. From a consumer's point of view both look
// like "this track stopped producing audio"; auto-advance treats them
// the same.
type Finished struct {
	Path string
	Err  error // nil on clean end-of-stream
}

func (Progress) isUpdate() {}
func (Finished) isUpdate() {}

// ErrResetRequired signals a stream format change mid-playback; the
// decode loop restarts track selection with the first supported track
// instead of treating this as fatal.
var ErrResetRequired = errors.New("decoder: stream reset required")

// Sink consumes decoded PCM frames. Production code backs this with the
// host's audio output device; tests back it with an in-memory recorder.
type Sink interface {
	// Open sizes the sink's internal buffer to the decoded stream's
	// channel count and sample rate, called once on a track's first packet.
	Open(channels, sampleRate int) error
	// Write pushes one packet's worth of decoded samples.
	Write(samples []byte) error
	// Flush discards any buffered-but-unwritten audio, used when a new
	// Play preempts the current track.
	Flush() error
	Close() error
}

// Packet is one demuxed, decoded unit of audio read from a Source.
type Packet struct {
	Samples    []byte
	Timestamp  time.Duration // position within the track, via the stream's time base
	Channels   int
	SampleRate int
}

// Source yields decoded packets for one track. NextPacket returns io.EOF
// at natural end-of-stream and ErrResetRequired on a stream format change.
type Source interface {
	Total() time.Duration
	NextPacket() (Packet, error)
	Close() error
}

// OpenSourceFunc opens a Source for a track path. Swappable in tests.
type OpenSourceFunc func(path string) (Source, error)

// pauseTick is how often the paused loop polls for a command while
// holding the decode position steady, yielding the thread between
// checks instead of busy-spinning.
const pauseTick = 20 * time.Millisecond

// Worker is the decoder: a command-driven state machine running on a
// dedicated OS thread via runtime.LockOSThread.
type Worker struct {
	commands chan Command
	updates  chan Update

	openSource OpenSourceFunc
	sink       Sink

	mu            sync.Mutex
	activeControl chan Command
}

// New constructs a Worker. openSource is the Source factory; production
// wiring supplies one backed by a real decode library, tests supply a
// fake. sink is the audio output the decode loop writes to.
func New(openSource OpenSourceFunc, sink Sink) *Worker {
	return &Worker{
		commands:   make(chan Command, 8),
		updates:    make(chan Update, 64),
		openSource: openSource,
		sink:       sink,
	}
}

// Commands returns the channel external callers send PlayerCommands on.
func (w *Worker) Commands() chan<- Command { return w.commands }

// Updates returns the channel the progress bridge consumes from.
func (w *Worker) Updates() <-chan Update { return w.updates }

// Run pins the calling goroutine to its OS thread and drives the
// decoder's main command loop until stop is closed. Call it in its own
// goroutine from main: `go worker.Run(stop)`.
func (w *Worker) Run(stop <-chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var (
		trackStop chan struct{}
		trackDone chan struct{}
	)

	preempt := func() {
		if trackStop == nil {
			return
		}
		close(trackStop)
		<-trackDone
		trackStop, trackDone = nil, nil
	}

	for {
		select {
		case <-stop:
			preempt()
			return
		case cmd := <-w.commands:
			switch c := cmd.(type) {
			case Play:
				preempt()
				trackStop = make(chan struct{})
				trackDone = make(chan struct{})
				go w.playTrack(c.Path, trackStop, trackDone)
			case Pause, Resume:
				// Pause/Resume are forwarded to the active track's own
				// loop via a side channel stashed on the worker; with no
				// active track they're simply dropped. The player facade
				// never sends Resume when it knows the decoder is Idle.
				w.forwardControl(cmd)
			}
		}
	}
}

// forwardControl relays a Pause/Resume onto the active track's control
// channel (swapped in by playTrack); with no active track it's a no-op.
func (w *Worker) forwardControl(cmd Command) {
	w.mu.Lock()
	ctl := w.activeControl
	w.mu.Unlock()
	if ctl == nil {
		return
	}
	select {
	case ctl <- cmd:
	default:
		// Active track's control channel is momentarily full (a Pause
		// immediately followed by a Resume): drop rather than block the
		// worker loop. A missed control toggle only delays a pause/resume
		// edge by one packet-read cycle.
	}
}

func (w *Worker) playTrack(path string, stop <-chan struct{}, done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)

	control := make(chan Command, 2)
	w.mu.Lock()
	w.activeControl = control
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		if w.activeControl == control {
			w.activeControl = nil
		}
		w.mu.Unlock()
	}()

	src, err := w.openSource(path)
	if err != nil {
		slog.Warn("decoder: failed to open source", "path", path, "error", err)
		w.emit(Finished{Path: path, Err: err})
		return
	}
	// src is reassigned on ErrResetRequired; the deferred close must see
	// whichever source is current at exit, not the first one opened.
	defer func() { src.Close() }()

	total := src.Total()
	opened := false
	paused := false
	ticker := time.NewTicker(pauseTick)
	defer ticker.Stop()

	finish := func(err error) {
		w.emit(Finished{Path: path, Err: err})
	}
	// preempted ends a track stopped by a new Play: buffered audio is
	// discarded first. A natural end leaves the sink's contents alone.
	preempted := func() {
		_ = w.sink.Flush()
		finish(nil)
	}

	for {
		select {
		case <-stop:
			preempted()
			return
		case cmd := <-control:
			switch cmd.(type) {
			case Pause:
				paused = true
			case Resume:
				paused = false
			}
			continue
		default:
		}

		if paused {
			select {
			case <-stop:
				preempted()
				return
			case cmd := <-control:
				switch cmd.(type) {
				case Pause:
					paused = true
				case Resume:
					paused = false
				}
			case <-ticker.C:
			}
			continue
		}

		pkt, err := src.NextPacket()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				finish(nil) // natural end, non-fatal
			case errors.Is(err, ErrResetRequired):
				// Restart track selection: re-open the same source from
				// scratch, matching "restarts track selection with the
				// first supported track."
				src.Close()
				src, err = w.openSource(path)
				if err != nil {
					finish(err)
					return
				}
				opened = false
				continue
			default:
				slog.Warn("decoder: decode error, skipping packet", "path", path, "error", err)
				continue
			}
			return
		}

		if !opened {
			if err := w.sink.Open(pkt.Channels, pkt.SampleRate); err != nil {
				finish(err)
				return
			}
			opened = true
		}

		if err := w.sink.Write(pkt.Samples); err != nil {
			slog.Warn("decoder: sink write failed, ending track", "path", path, "error", err)
			finish(err)
			return
		}

		w.emit(Progress{Path: path, Position: pkt.Timestamp, Total: total})
	}
}

func (w *Worker) emit(u Update) {
	select {
	case w.updates <- u:
	default:
		// The progress bridge keeps up in practice (it only forwards);
		// a full buffer means updates are arriving faster than anything
		// downstream can matter, so the oldest is worth dropping rather
		// than blocking the decode loop.
		select {
		case <-w.updates:
		default:
		}
		w.updates <- u
	}
}
