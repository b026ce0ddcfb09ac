// Package record captures microphone audio into memory with PortAudio.
package record

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"

	"speechcli/internal/audio"
	"speechcli/internal/errorsx"
	"speechcli/internal/logging"
)

const framesPerBuffer = 1024

// Recorder opens capture streams on the default input device.
type Recorder struct {
	sampleRate int
	channels   int
	log        zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Open initializes PortAudio and checks that an input device exists.
func Open(sampleRate, channels int) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("portaudio init failed: %w", err), errorsx.ReasonAudioDevice)
	}
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		_ = portaudio.Terminate()
		return nil, errorsx.Wrap(fmt.Errorf("no default input device: %w", err), errorsx.ReasonAudioDevice)
	}
	if dev.MaxInputChannels < channels {
		_ = portaudio.Terminate()
		return nil, errorsx.Errorf(errorsx.ReasonAudioDevice,
			"input device %q supports %d channels, %d requested", dev.Name, dev.MaxInputChannels, channels)
	}
	r := &Recorder{sampleRate: sampleRate, channels: channels, log: logging.WithComponent("record")}
	r.log.Info().Str("device", dev.Name).Int("rate", sampleRate).Int("channels", channels).Msg("audio input ready")
	return r, nil
}

// Begin starts a capture stream. The returned Capture must be ended or
// closed on every path.
func (r *Recorder) Begin(ctx context.Context) (*Capture, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, errorsx.Errorf(errorsx.ReasonAudioDevice, "recorder closed")
	}

	in := make([]int16, framesPerBuffer*r.channels)
	stream, err := portaudio.OpenDefaultStream(r.channels, 0, float64(r.sampleRate), framesPerBuffer, in)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("open stream failed: %w", err), errorsx.ReasonAudioDevice)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, errorsx.Wrap(fmt.Errorf("start stream failed: %w", err), errorsx.ReasonAudioDevice)
	}

	c := &Capture{
		stream:     stream,
		in:         in,
		sampleRate: r.sampleRate,
		channels:   r.channels,
		started:    time.Now(),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        r.log,
	}
	go c.readLoop()
	r.log.Debug().Msg("recording started")
	return c, nil
}

// Close terminates PortAudio.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return portaudio.Terminate()
}

// Capture is one open input stream accumulating samples.
type Capture struct {
	stream     *portaudio.Stream
	in         []int16
	sampleRate int
	channels   int
	started    time.Time
	log        zerolog.Logger

	stop chan struct{}
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	samples []int16
	readErr error
}

func (c *Capture) readLoop() {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		if err := c.stream.Read(); err != nil {
			// Overflow is recoverable; anything else ends the capture.
			if err == portaudio.InputOverflowed {
				c.log.Debug().Err(err).Msg("input overflowed")
				continue
			}
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
		c.samples = append(c.samples, c.in...)
		c.mu.Unlock()
	}
}

// release stops the read loop and frees the stream exactly once.
func (c *Capture) release() error {
	var err error
	c.once.Do(func() {
		close(c.stop)
		<-c.done
		if stopErr := c.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := c.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}

// End stops the stream and returns everything captured. A capture released
// before the first read returns an empty buffer, not an error.
func (c *Capture) End() (*audio.Buffer, error) {
	if err := c.release(); err != nil {
		c.log.Warn().Err(err).Msg("stream release failed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	buf := &audio.Buffer{Samples: c.samples, SampleRate: c.sampleRate, Channels: c.channels}
	c.samples = nil

	if c.readErr != nil && buf.Empty() {
		return buf, errorsx.Wrap(fmt.Errorf("stream read failed: %w", c.readErr), errorsx.ReasonAudioDevice)
	}
	if c.readErr != nil {
		c.log.Warn().Err(c.readErr).Msg("stream read failed; keeping captured audio")
	}
	if buf.Empty() {
		c.log.Warn().Msg("no audio frames captured")
	} else {
		c.log.Info().Dur("elapsed", time.Since(c.started)).Int("frames", buf.Frames()).Dur("audio", buf.Duration()).Msg("recording stopped")
	}
	return buf, nil
}

// Close releases the stream and discards captured audio.
func (c *Capture) Close() error {
	err := c.release()
	c.mu.Lock()
	c.samples = nil
	c.mu.Unlock()
	return err
}
