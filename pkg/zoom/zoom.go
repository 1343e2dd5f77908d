// Package zoom implements the treemap's two-state zoom behavior.
//
// A [Controller] owns one view of a [layout.Layout]. In the [Normal] state
// every tile sits where the layout put it. Activating the zoom selects the
// tiles matching the controller's [Predicate], computes their bounding box,
// and stretches that box over the whole canvas: every tile, not only the
// matching ones, is remapped through the same pair of linear scales. Label
// and value opacities flip at the same time, so labels that are hidden in
// the overview appear in the zoomed view and the rest fade out.
//
// # State Machine
//
//	NORMAL --Activate / Toggle / Click(eligible)--> ZOOMED
//	ZOOMED --Deactivate / Toggle / Click(any)-----> NORMAL
//
// Activating while zoomed and deactivating while normal are no-ops, as is
// clicking a tile that does not match the predicate. When no tile matches
// the predicate, activation is aborted without changing anything.
//
// # Animation
//
// State changes are not instantaneous. Each one starts a [Transition] from
// the frame currently on screen to the new target, so a change made while
// another transition is running picks up from wherever the tiles are. Read
// the current picture with [Controller.Frame].
//
// A Controller is not safe for concurrent use. Callers serialize access,
// for example from a UI event loop or behind a mutex.
//
// [layout.Layout]: github.com/matzehuels/ghgmap/pkg/layout.Layout
package zoom

import (
	"fmt"
	"time"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/layout"
)

// State is the zoom state of a view.
type State int

const (
	Normal State = iota
	Zoomed
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Zoomed:
		return "zoomed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal":
		*s = Normal
	case "zoomed":
		*s = Zoomed
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown zoom state %q", string(b))
	}
	return nil
}

// Button labels for the toggle control.
const (
	LabelZoom = "Zoom"
	LabelBack = "Back"
)

// DefaultDuration is the length of a zoom transition.
const DefaultDuration = 750 * time.Millisecond

// Option configures a Controller.
type Option func(*Controller)

// WithDuration sets the transition duration. Zero makes changes instant.
func WithDuration(d time.Duration) Option {
	return func(c *Controller) { c.duration = max(0, d) }
}

// WithEasing sets the easing curve of transitions.
func WithEasing(e Easing) Option {
	return func(c *Controller) {
		if e != nil {
			c.ease = e
		}
	}
}

// WithClock replaces time.Now as the controller's time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLabelRules sets which labels and values are shown only while zoomed.
// Tiles matching names have their label hidden in the overview and shown
// when zoomed; all other labels do the opposite. values does the same for
// the value line.
func WithLabelRules(names, values Predicate) Option {
	return func(c *Controller) {
		if names != nil {
			c.zoomOnlyLabel = names
		}
		if values != nil {
			c.zoomOnlyValue = values
		}
	}
}

// OnTransition registers a callback invoked after every state change.
func OnTransition(fn func(from, to State)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// Controller holds the zoom state of one treemap view.
type Controller struct {
	layout    *layout.Layout
	predicate Predicate

	zoomOnlyLabel Predicate
	zoomOnlyValue Predicate
	duration      time.Duration
	ease          Easing
	now           func() time.Time
	onTransition  func(from, to State)

	state   State
	mapping *Mapping
	box     layout.Rect
	base    []TileFrame
	trans   *Transition
}

// New returns a controller in the Normal state. predicate decides which
// tiles are eligible for click-to-zoom and which tiles the zoom frames.
func New(l *layout.Layout, predicate Predicate, opts ...Option) *Controller {
	if predicate == nil {
		predicate = None
	}
	c := &Controller{
		layout:        l,
		predicate:     predicate,
		zoomOnlyLabel: None,
		zoomOnlyValue: None,
		duration:      DefaultDuration,
		ease:          CubicInOut,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.base = c.frameFor(Normal, nil)
	return c
}

// Layout returns the layout the controller animates.
func (c *Controller) Layout() *layout.Layout { return c.layout }

// State returns the current state. During a transition it is the state the
// transition is heading to.
func (c *Controller) State() State { return c.state }

// ButtonLabel returns the label of the toggle control for the current
// state.
func (c *Controller) ButtonLabel() string {
	if c.state == Zoomed {
		return LabelBack
	}
	return LabelZoom
}

// Eligible reports whether clicking the tile would activate the zoom.
func (c *Controller) Eligible(t layout.Tile) bool { return c.predicate(t) }

// Targets returns the tiles the zoom frames, in layout order.
func (c *Controller) Targets() []layout.Tile { return Filter(c.layout, c.predicate) }

// Mapping returns the active mapping while zoomed.
func (c *Controller) Mapping() (Mapping, layout.Rect, bool) {
	if c.mapping == nil {
		return Mapping{}, layout.Rect{}, false
	}
	return *c.mapping, c.box, true
}

// Preview returns the frame Activate would animate to, without changing
// state. It reports false when no tile matches the predicate.
func (c *Controller) Preview() (Frame, bool) {
	m, _, ok := c.plan()
	if !ok {
		return Frame{}, false
	}
	return Frame{State: Zoomed, Tiles: c.frameFor(Zoomed, &m)}, true
}

// Activate zooms onto the tiles matching the predicate. It reports whether
// the state changed; it does nothing when already zoomed or when no tile
// matches.
func (c *Controller) Activate() bool {
	if c.state == Zoomed {
		return false
	}
	m, box, ok := c.plan()
	if !ok {
		return false
	}
	c.mapping, c.box = &m, box
	c.transition(Zoomed, c.frameFor(Zoomed, &m))
	return true
}

// Deactivate returns every tile to its layout position. It reports whether
// the state changed.
func (c *Controller) Deactivate() bool {
	if c.state == Normal {
		return false
	}
	c.mapping, c.box = nil, layout.Rect{}
	c.transition(Normal, c.base)
	return true
}

// Toggle performs the toggle-button action: deactivate when zoomed,
// activate otherwise.
func (c *Controller) Toggle() bool {
	if c.state == Zoomed {
		return c.Deactivate()
	}
	return c.Activate()
}

// Click handles a click on the tile with the given ID. While zoomed any
// click resets the view; while normal only eligible tiles activate it.
func (c *Controller) Click(id string) (bool, error) {
	t, ok := c.layout.Lookup(id)
	if !ok {
		return false, errors.New(errors.ErrCodeNotFound, "no tile %q", id)
	}
	if c.state == Zoomed {
		return c.Deactivate(), nil
	}
	if !c.predicate(t) {
		return false, nil
	}
	return c.Activate(), nil
}

// Animating reports whether a transition is still running.
func (c *Controller) Animating() bool {
	return c.trans != nil && !c.trans.Done(c.now())
}

// Frame returns the tiles as they should be drawn now.
func (c *Controller) Frame() Frame {
	return Frame{State: c.state, Tiles: c.current(c.now())}
}

// FinalFrame returns the frame the current transition ends on.
func (c *Controller) FinalFrame() Frame {
	if c.trans != nil {
		return Frame{State: c.state, Tiles: c.trans.To}
	}
	return Frame{State: c.state, Tiles: c.base}
}

func (c *Controller) current(now time.Time) []TileFrame {
	if c.trans == nil {
		return c.base
	}
	return c.trans.At(now)
}

func (c *Controller) transition(to State, target []TileFrame) {
	now := c.now()
	from := c.state
	c.trans = &Transition{
		From:     c.current(now),
		To:       target,
		Start:    now,
		Duration: c.duration,
		Ease:     c.ease,
	}
	c.state = to
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

func (c *Controller) plan() (Mapping, layout.Rect, bool) {
	box, ok := BoundingBox(c.Targets())
	if !ok {
		return Mapping{}, layout.Rect{}, false
	}
	return NewMapping(box, c.layout.Width, c.layout.Height), box, true
}

func (c *Controller) frameFor(s State, m *Mapping) []TileFrame {
	out := make([]TileFrame, len(c.layout.Tiles))
	for i, t := range c.layout.Tiles {
		r := t.Rect
		if m != nil {
			r = m.Apply(r)
		}
		out[i] = TileFrame{
			ID:           t.ID,
			Rect:         r,
			LabelOpacity: opacity(c.zoomOnlyLabel(t), s),
			ValueOpacity: opacity(c.zoomOnlyValue(t), s),
		}
	}
	return out
}

// opacity returns 1 for zoom-only content while zoomed and for all other
// content while normal.
func opacity(zoomOnly bool, s State) float64 {
	if zoomOnly == (s == Zoomed) {
		return 1
	}
	return 0
}
