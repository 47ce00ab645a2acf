package tone

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// Note is one buzzer tone.
type Note struct {
	Freq     physic.Frequency
	Duration time.Duration
}

// Sequences used by the scanner.
var (
	StartupChime = []Note{
		{523 * physic.Hertz, 300 * time.Millisecond},
		{659 * physic.Hertz, 300 * time.Millisecond},
		{784 * physic.Hertz, 300 * time.Millisecond},
		{1047 * physic.Hertz, 300 * time.Millisecond},
	}
	ScanConfirm = []Note{
		{3000 * physic.Hertz, 100 * time.Millisecond},
		{4000 * physic.Hertz, 100 * time.Millisecond},
	}
)

// Beeper plays notes without blocking the caller.
type Beeper interface {
	Play(n Note)
	PlaySequence(notes []Note)
}

// pwmPin is the slice of gpio.PinOut the player needs; tests fake it.
type pwmPin interface {
	PWM(duty gpio.Duty, freq physic.Frequency) error
	Halt() error
}

// Player drives a passive buzzer over PWM. Notes are queued and played by
// one goroutine so UI feedback never stalls the loops that request it.
type Player struct {
	pin   pwmPin
	queue chan Note
	log   *zap.SugaredLogger
}

// NewPlayer claims the buzzer GPIO. Run must be started for sound to come
// out.
func NewPlayer(pinNum int, log *zap.SugaredLogger) (*Player, error) {
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", pinNum))
	if pin == nil {
		return nil, fmt.Errorf("buzzer pin GPIO%d not found", pinNum)
	}
	return newPlayer(pin, log), nil
}

func newPlayer(pin pwmPin, log *zap.SugaredLogger) *Player {
	return &Player{
		pin:   pin,
		queue: make(chan Note, 32),
		log:   log,
	}
}

func (p *Player) Play(n Note) {
	select {
	case p.queue <- n:
	default:
		// Never block scanning on a full tone queue.
	}
}

func (p *Player) PlaySequence(notes []Note) {
	for _, n := range notes {
		p.Play(n)
	}
}

// Run plays queued notes until ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	defer func() {
		if err := p.pin.Halt(); err != nil {
			p.log.Debugw("Halting buzzer", "error", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-p.queue:
			if err := p.pin.PWM(gpio.DutyHalf, n.Freq); err != nil {
				p.log.Warnw("Buzzer PWM failed", "freq", n.Freq, "error", err)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(n.Duration):
			}
			if err := p.pin.Halt(); err != nil {
				p.log.Warnw("Buzzer halt failed", "error", err)
			}
		}
	}
}

// Silent is a Beeper that swallows everything, for tests and dev machines.
type Silent struct{}

func (Silent) Play(Note)           {}
func (Silent) PlaySequence([]Note) {}
