package term

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"
)

const sampleRate = beep.SampleRate(44100)

// Chimes plays short tones on hits and misses. A nil or disabled Chimes is silent.
type Chimes struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	enabled bool
}

// NewChimes opens the speaker. Without an audio device it returns a silent
// Chimes and logs the reason.
func NewChimes() *Chimes {
	c := &Chimes{mixer: &beep.Mixer{}}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		log.Debug().Err(err).Msg("audio unavailable, chimes off")
		return c
	}
	speaker.Play(c.mixer)
	c.enabled = true
	return c
}

// Hit plays a rising two-note chime.
func (c *Chimes) Hit() {
	c.play(beep.Seq(
		beep.Take(sampleRate.N(90*time.Millisecond), newTone(sampleRate, 880)),
		beep.Take(sampleRate.N(140*time.Millisecond), newTone(sampleRate, 1320)),
	))
}

// Miss plays a short low tone.
func (c *Chimes) Miss() {
	c.play(beep.Take(sampleRate.N(150*time.Millisecond), newTone(sampleRate, 196)))
}

func (c *Chimes) play(s beep.Streamer) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Close silences and releases the speaker.
func (c *Chimes) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	speaker.Clear()
	speaker.Close()
	c.enabled = false
}

// tone is a sine wave with a short fade-in to avoid clicks.
type tone struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func newTone(sr beep.SampleRate, freq float64) *tone {
	return &tone{sr: sr, freq: freq}
}

func (g *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		env := math.Min(t/0.01, 1.0)
		v := 0.2 * env * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *tone) Err() error { return nil }
