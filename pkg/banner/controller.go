package banner

import (
	"sync"
	"sync/atomic"
	"time"
)

// FrameInterval is the default frame period of TimerScheduler.
const FrameInterval = 16 * time.Millisecond

// Scheduler runs fn on the next frame.
type Scheduler interface {
	RequestFrame(fn func())
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(fn func())

// RequestFrame calls the underlying function.
func (f SchedulerFunc) RequestFrame(fn func()) { f(fn) }

// TimerScheduler runs frames on timer goroutines after Interval.
type TimerScheduler struct {
	Interval time.Duration
}

// RequestFrame schedules fn.
func (t TimerScheduler) RequestFrame(fn func()) {
	interval := t.Interval
	if interval <= 0 {
		interval = FrameInterval
	}
	time.AfterFunc(interval, fn)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithScheduler overrides the frame scheduler.
func WithScheduler(s Scheduler) ControllerOption {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithMode sets the banner mode.
func WithMode(mode Mode) ControllerOption {
	return func(c *Controller) { c.mode = mode }
}

// Controller recomputes the banner state on viewport changes. However many
// events arrive, at most one recomputation is pending at a time; it reads the
// offset when it runs, not when it was requested.
type Controller struct {
	cfg       Config
	mode      Mode
	scheduler Scheduler
	offset    func() float64
	apply     func(State)

	ticking atomic.Bool
	frames  atomic.Int64
	pending sync.WaitGroup
}

// NewController builds a controller that reads the scroll offset from offset
// and hands every computed state to apply.
func NewController(cfg Config, offset func() float64, apply func(State), opts ...ControllerOption) *Controller {
	c := &Controller{
		cfg:       cfg.Normalize(),
		mode:      ModeDynamic,
		scheduler: TimerScheduler{},
		offset:    offset,
		apply:     apply,
	}
	if c.offset == nil {
		c.offset = func() float64 { return 0 }
	}
	if c.apply == nil {
		c.apply = func(State) {}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Start applies the initial state. Static half mode is applied once and never
// recomputed.
func (c *Controller) Start() State {
	var state State
	if c.mode == ModeStaticHalf {
		state = Static(c.cfg)
	} else {
		state = Compute(c.cfg, c.offset())
	}
	c.apply(state)
	return state
}

// OnViewportChange is called for every scroll or resize event. It reports
// whether a new frame was requested.
func (c *Controller) OnViewportChange() bool {
	if c.mode == ModeStaticHalf {
		return false
	}
	if !c.ticking.CompareAndSwap(false, true) {
		return false
	}
	c.pending.Add(1)
	c.scheduler.RequestFrame(c.render)
	return true
}

func (c *Controller) render() {
	defer c.pending.Done()
	state := Compute(c.cfg, c.offset())
	c.frames.Add(1)
	c.apply(state)
	c.ticking.Store(false)
}

// Frames returns how many recomputations ran.
func (c *Controller) Frames() int64 { return c.frames.Load() }

// Wait blocks until every requested frame has run.
func (c *Controller) Wait() { c.pending.Wait() }
