// Package banner computes the size and state classes of the site banner from
// a vertical scroll offset.
package banner

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how the banner reacts to scrolling.
type Mode string

const (
	ModeDynamic    Mode = "dynamic"
	ModeStaticHalf Mode = "static-half"
)

// ParseMode maps a data attribute value to a Mode. Anything unknown is
// dynamic.
func ParseMode(raw string) Mode {
	if Mode(strings.TrimSpace(raw)) == ModeStaticHalf {
		return ModeStaticHalf
	}
	return ModeDynamic
}

// State classes toggled on the banner element.
const (
	ClassCondensed = "is-condensed"
	ClassUseHalf   = "use-half"
)

// CSS custom properties written on the document root.
const (
	VarCurrentHeight = "--banner-current-height"
	VarMaxHeight     = "--banner-max-height"
	VarMinHeight     = "--banner-min-height"
)

// Config holds the tuning knobs of the banner.
type Config struct {
	MaxHeightPx       float64 `json:"maxHeightPx" yaml:"max_height_px" mapstructure:"max_height_px"`
	MinScale          float64 `json:"minScale" yaml:"min_scale" mapstructure:"min_scale"`
	StaticHalfScale   float64 `json:"staticHalfScale" yaml:"static_half_scale" mapstructure:"static_half_scale"`
	ShrinkDistancePx  float64 `json:"shrinkDistancePx" yaml:"shrink_distance_px" mapstructure:"shrink_distance_px"`
	SwitchAtProgress  float64 `json:"switchAtProgress" yaml:"switch_at_progress" mapstructure:"switch_at_progress"`
	CondenseThreshold float64 `json:"condenseThreshold" yaml:"condense_threshold" mapstructure:"condense_threshold"`
}

// DefaultConfig returns the shipped tuning.
func DefaultConfig() Config {
	return Config{
		MaxHeightPx:       300,
		MinScale:          0.5,
		StaticHalfScale:   0.5,
		ShrinkDistancePx:  280,
		SwitchAtProgress:  1,
		CondenseThreshold: 0.08,
	}
}

// Normalize clamps the knobs into their valid ranges: scales to [0.05, 1],
// the switch point and condense threshold to [0, 1], and the shrink distance
// to at least one pixel.
func (c Config) Normalize() Config {
	c.MinScale = clamp(c.MinScale, 0.05, 1)
	c.StaticHalfScale = clamp(c.StaticHalfScale, 0.05, 1)
	c.SwitchAtProgress = clamp(c.SwitchAtProgress, 0, 1)
	c.CondenseThreshold = clamp(c.CondenseThreshold, 0, 1)
	c.ShrinkDistancePx = math.Max(1, c.ShrinkDistancePx)
	if c.MaxHeightPx < 0 || math.IsNaN(c.MaxHeightPx) {
		c.MaxHeightPx = 0
	}
	return c
}

// MinHeight is the fully condensed height.
func (c Config) MinHeight() int {
	c = c.Normalize()
	return round(c.MaxHeightPx * c.MinScale)
}

// StaticHalfHeight is the pinned height of static half mode.
func (c Config) StaticHalfHeight() int {
	c = c.Normalize()
	return round(c.MaxHeightPx * c.StaticHalfScale)
}

// State is the computed banner presentation.
type State struct {
	Progress      float64 `json:"progress"`
	CurrentHeight int     `json:"currentHeight"`
	MaxHeight     int     `json:"maxHeight"`
	MinHeight     int     `json:"minHeight"`
	Condensed     bool    `json:"condensed"`
	UseHalf       bool    `json:"useHalf"`
}

// Compute derives the banner state for a scroll offset. Negative offsets count
// as zero.
func Compute(cfg Config, scrollY float64) State {
	cfg = cfg.Normalize()
	if math.IsNaN(scrollY) {
		scrollY = 0
	}
	progress := clamp(scrollY/cfg.ShrinkDistancePx, 0, 1)
	scale := 1 - (1-cfg.MinScale)*progress
	return State{
		Progress:      progress,
		CurrentHeight: round(cfg.MaxHeightPx * scale),
		MaxHeight:     round(cfg.MaxHeightPx),
		MinHeight:     round(cfg.MaxHeightPx * cfg.MinScale),
		Condensed:     progress > cfg.CondenseThreshold,
		UseHalf:       progress >= cfg.SwitchAtProgress,
	}
}

// Static returns the pinned state of static half mode.
func Static(cfg Config) State {
	cfg = cfg.Normalize()
	half := round(cfg.MaxHeightPx * cfg.StaticHalfScale)
	return State{
		Progress:      1,
		CurrentHeight: half,
		MaxHeight:     round(cfg.MaxHeightPx),
		MinHeight:     half,
		Condensed:     true,
		UseHalf:       true,
	}
}

// ForMode dispatches to Compute or Static.
func ForMode(cfg Config, mode Mode, scrollY float64) State {
	if mode == ModeStaticHalf {
		return Static(cfg)
	}
	return Compute(cfg, scrollY)
}

// CSSVars returns the custom properties for s.
func (s State) CSSVars() map[string]string {
	return map[string]string{
		VarCurrentHeight: px(s.CurrentHeight),
		VarMaxHeight:     px(s.MaxHeight),
		VarMinHeight:     px(s.MinHeight),
	}
}

// Classes returns the state classes that are on, in a stable order.
func (s State) Classes() []string {
	var classes []string
	if s.Condensed {
		classes = append(classes, ClassCondensed)
	}
	if s.UseHalf {
		classes = append(classes, ClassUseHalf)
	}
	return classes
}

// Style renders the custom properties as an inline style declaration.
func (s State) Style() string {
	return fmt.Sprintf("%s: %s; %s: %s; %s: %s;",
		VarCurrentHeight, px(s.CurrentHeight),
		VarMaxHeight, px(s.MaxHeight),
		VarMinHeight, px(s.MinHeight),
	)
}

func px(v int) string { return fmt.Sprintf("%dpx", v) }

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

// round matches the half-up rounding the banner heights were tuned with.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
