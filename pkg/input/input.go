package input

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/optiscan/optiscan/pkg/config"
)

// EventKind enumerates operator inputs.
type EventKind int

const (
	// EncoderStep carries Delta, +1 clockwise or -1 counter-clockwise.
	EncoderStep EventKind = iota
	// ButtonPress is a short press of the encoder button.
	ButtonPress
	// ButtonLongPress fires once the encoder button has been held past
	// the hold time, while it is still down.
	ButtonLongPress
	// TriggerDown and TriggerUp bracket the scan trigger.
	TriggerDown
	TriggerUp
)

func (k EventKind) String() string {
	switch k {
	case EncoderStep:
		return "encoder-step"
	case ButtonPress:
		return "button-press"
	case ButtonLongPress:
		return "button-long-press"
	case TriggerDown:
		return "trigger-down"
	case TriggerUp:
		return "trigger-up"
	}
	return "unknown"
}

// Event is one operator input.
type Event struct {
	Kind  EventKind
	Delta int
}

// Pin is the slice of gpio.PinIO the controller needs, so tests can inject
// fake pins. WaitForEdge returning false on an infinite timeout means the
// pin was halted and the reader should stop.
type Pin interface {
	WaitForEdge(timeout time.Duration) bool
	Read() gpio.Level
}

// Controller turns GPIO edges into a single stream of input events.
type Controller struct {
	encA, encB Pin
	button     Pin
	trigger    Pin

	bounce time.Duration
	hold   time.Duration

	events chan Event
	log    *zap.SugaredLogger

	halt func()
}

// New claims the encoder, encoder button and trigger GPIOs per the config.
func New(enc config.Encoder, trig config.Trigger, log *zap.SugaredLogger) (*Controller, error) {
	pull := gpio.PullUp
	if enc.Button.PullUp != nil && !*enc.Button.PullUp {
		pull = gpio.PullDown
	}

	pinA, err := claim(enc.PinA, gpio.PullUp)
	if err != nil {
		return nil, err
	}
	pinB, err := claim(enc.PinB, gpio.PullUp)
	if err != nil {
		return nil, err
	}
	pinBtn, err := claim(enc.Button.Pin, pull)
	if err != nil {
		return nil, err
	}
	trigPull := gpio.PullUp
	if trig.PullUp != nil && !*trig.PullUp {
		trigPull = gpio.PullDown
	}
	pinTrig, err := claim(trig.Pin, trigPull)
	if err != nil {
		return nil, err
	}

	c := newController(pinA, pinB, pinBtn, pinTrig, enc.Button.BounceTime.Std(), enc.Button.HoldTime.Std(), log)
	c.halt = func() {
		for _, p := range []gpio.PinIO{pinA, pinB, pinBtn, pinTrig} {
			_ = p.Halt()
		}
	}
	return c, nil
}

func claim(pinNum int, pull gpio.Pull) (gpio.PinIO, error) {
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", pinNum))
	if pin == nil {
		return nil, fmt.Errorf("input pin GPIO%d not found", pinNum)
	}
	if err := pin.In(pull, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("configuring GPIO%d as input: %w", pinNum, err)
	}
	return pin, nil
}

func newController(encA, encB, button, trigger Pin, bounce, hold time.Duration, log *zap.SugaredLogger) *Controller {
	return &Controller{
		encA:    encA,
		encB:    encB,
		button:  button,
		trigger: trigger,
		bounce:  bounce,
		hold:    hold,
		events:  make(chan Event, 16),
		log:     log,
	}
}

// Events returns the stream of operator inputs.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Run starts the pin readers and blocks until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	go c.runEncoder(ctx)
	go c.runButton(ctx)
	go c.runTrigger(ctx)
	<-ctx.Done()
	if c.halt != nil {
		c.halt()
	}
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Debugw("Input event dropped, queue full", "kind", ev.Kind)
	}
}

// runEncoder decodes quadrature on the A edge: the level of B at A's
// falling edge gives the direction.
func (c *Controller) runEncoder(ctx context.Context) {
	for ctx.Err() == nil {
		if !c.encA.WaitForEdge(-1) {
			return
		}
		if c.encA.Read() != gpio.Low {
			continue
		}
		delta := -1
		if c.encB.Read() == gpio.High {
			delta = 1
		}
		c.emit(Event{Kind: EncoderStep, Delta: delta})
	}
}

func (c *Controller) runButton(ctx context.Context) {
	pressed := false
	longFired := false
	for ctx.Err() == nil {
		timeout := time.Duration(-1)
		if pressed && !longFired {
			timeout = c.hold
		}
		if !c.button.WaitForEdge(timeout) {
			if timeout < 0 {
				return
			}
			// Hold time expired with the button still down.
			longFired = true
			c.emit(Event{Kind: ButtonLongPress})
			continue
		}
		if c.bounce > 0 {
			time.Sleep(c.bounce)
		}
		down := c.button.Read() == gpio.Low
		switch {
		case down && !pressed:
			pressed = true
			longFired = false
		case !down && pressed:
			pressed = false
			if !longFired {
				c.emit(Event{Kind: ButtonPress})
			}
		}
	}
}

func (c *Controller) runTrigger(ctx context.Context) {
	down := false
	for ctx.Err() == nil {
		if !c.trigger.WaitForEdge(-1) {
			return
		}
		if c.bounce > 0 {
			time.Sleep(c.bounce)
		}
		now := c.trigger.Read() == gpio.Low
		if now == down {
			continue
		}
		down = now
		if down {
			c.emit(Event{Kind: TriggerDown})
		} else {
			c.emit(Event{Kind: TriggerUp})
		}
	}
}
