package ui

import (
	"sync"

	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/decode"
	"github.com/optiscan/optiscan/pkg/input"
)

// targetStep is how many display pixels one encoder detent moves the
// reticle edge while adjusting.
const targetStep = 5

// targetBounds keeps the reticle between a sixth and five sixths of the
// available dimension, so it never collapses or swallows the viewfinder.
func targetBounds(dim int) (lo, hi int) {
	return dim / 6, dim * 5 / 6
}

// Controller owns the scanner state machine: trigger and encoder events
// move between idle, scanning, target adjustment and the settings menu.
type Controller struct {
	mu   sync.Mutex
	st   State
	menu *Menu
	geom decode.Geometry

	// onGeometry fires on every target geometry change, so the reticle
	// size is persisted as the encoder turns.
	onGeometry func(decode.Geometry)
	log        *zap.SugaredLogger
}

// NewController starts in Idle with the given reticle geometry.
func NewController(geom decode.Geometry, menu *Menu, onGeometry func(decode.Geometry), log *zap.SugaredLogger) *Controller {
	return &Controller{
		st:         Idle,
		menu:       menu,
		geom:       geom,
		onGeometry: onGeometry,
		log:        log,
	}
}

// State returns the current mode.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// Geometry returns the current reticle geometry.
func (c *Controller) Geometry() decode.Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geom
}

// SetTarget replaces the reticle size, clamped to the viewfinder.
func (c *Controller) SetTarget(w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loW, hiW := targetBounds(c.geom.DisplayW)
	loH, hiH := targetBounds(c.geom.DisplayH - c.geom.Toolbar)
	c.geom.TargetW = clamp(w, loW, hiW)
	c.geom.TargetH = clamp(h, loH, hiH)
}

// Handle applies one input event to the state machine.
func (c *Controller) Handle(ev input.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case input.TriggerDown:
		switch c.st {
		case Idle:
			c.transition(Scanning)
		case Settings:
			c.menu.Close()
			c.transition(Idle)
		}
	case input.TriggerUp:
		if c.st == Scanning {
			c.transition(Idle)
		}
	case input.ButtonPress:
		switch c.st {
		case Idle:
			c.transition(TargetWidth)
		case TargetWidth:
			c.transition(TargetHeight)
		case TargetHeight:
			c.transition(Idle)
			c.persist()
		case Settings:
			if c.menu.Press() {
				c.transition(Idle)
			}
		}
	case input.ButtonLongPress:
		switch c.st {
		case Idle:
			c.menu.Open()
			c.transition(Settings)
		case Settings:
			if c.menu.Back() {
				c.transition(Idle)
			}
		}
	case input.EncoderStep:
		switch c.st {
		case TargetWidth:
			lo, hi := targetBounds(c.geom.DisplayW)
			c.geom.TargetW = clamp(c.geom.TargetW+ev.Delta*targetStep, lo, hi)
			c.persist()
		case TargetHeight:
			lo, hi := targetBounds(c.geom.DisplayH - c.geom.Toolbar)
			c.geom.TargetH = clamp(c.geom.TargetH+ev.Delta*targetStep, lo, hi)
			c.persist()
		case Settings:
			c.menu.Step(ev.Delta)
		}
	}
}

func (c *Controller) persist() {
	if c.onGeometry != nil {
		c.onGeometry(c.geom)
	}
}

func (c *Controller) transition(to State) {
	if c.st == to {
		return
	}
	c.log.Debugw("State change", "from", c.st.Label(), "to", to.Label())
	c.st = to
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
