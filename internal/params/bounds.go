package params

import (
	"math"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/table"
)

// SliderPolicy decides the upper bound of a parameter's slider.
type SliderPolicy string

const (
	// PolicyScaled sets the maximum to Factor times the current reading.
	PolicyScaled SliderPolicy = "scaled"
	// PolicyFixed always uses Max.
	PolicyFixed SliderPolicy = "fixed"

	DefaultFactor = 1.5
	DefaultMax    = 100000
)

// IsValid returns whether the policy is known
func (p SliderPolicy) IsValid() bool {
	return p == PolicyScaled || p == PolicyFixed
}

// SliderConfig carries the configured bound policy.
type SliderConfig struct {
	Policy SliderPolicy
	Factor float64
	Max    int
}

func DefaultSliderConfig() SliderConfig {
	return SliderConfig{
		Policy: PolicyScaled,
		Factor: DefaultFactor,
		Max:    DefaultMax,
	}
}

func (c SliderConfig) Validate() error {
	errFactory := errors.New()
	if !c.Policy.IsValid() {
		return errFactory.WithData(errors.ErrInvalidConfig, "slider_policy "+string(c.Policy))
	}
	if c.Factor <= 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "slider_factor must be greater than 1")
	}
	if c.Max <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "slider_max must be positive")
	}

	return nil
}

// Bounds is the range and starting point offered for a parameter.
type Bounds struct {
	Min     int
	Max     int
	Default int
	// Estimated is set when the dump had no reading for the parameter and
	// the bounds are a guess.
	Estimated bool
}

// BoundsFor derives slider bounds for p from the latest snapshot.
func BoundsFor(p Param, snap *table.Snapshot, cfg SliderConfig) Bounds {
	b := Bounds{Max: cfg.Max, Estimated: true}
	if snap == nil {
		return b
	}

	rec, ok := snap.Lookup(p.Metric)
	if !ok || !rec.Valid() || math.IsInf(rec.Value, 0) || rec.Value < 0 {
		return b
	}

	b.Estimated = false
	b.Default = int(math.Round(rec.Value))
	if cfg.Policy == PolicyScaled {
		b.Max = int(math.Ceil(rec.Value * cfg.Factor))
	}
	if b.Max < b.Default {
		b.Max = b.Default
	}
	if b.Max == 0 {
		b.Max = cfg.Max
	}

	return b
}

// Clamp limits v to the bounds.
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}

	return v
}
