package srs

// Config holds the tunable parameters of the review algorithm.
// A Config is immutable for the duration of one calculation; use
// Merge to derive an updated copy between calculations.
type Config struct {
	// Initial ease for new cards
	BaseEase int
	// Percent multiplier applied to the interval on a Hard review
	IntervalChangeHard int
	// Percent multiplier applied to the interval on an Easy review
	EasyBonus int
	// Enables the ±5% randomized interval jitter
	EnableLoadBalancer bool
	// Hard cap on any computed interval, in days
	MaxIntervalDays int
	// Percent weight given to a linked card's ease when seeding initial ease
	MaxLinkContribution int
	// Ease never falls below this value once set
	EaseFloor int
}

// DefaultConfig returns the default algorithm configuration
func DefaultConfig() Config {
	return Config{
		BaseEase:            250,
		IntervalChangeHard:  50,
		EasyBonus:           130,
		EnableLoadBalancer:  true,
		MaxIntervalDays:     36525,
		MaxLinkContribution: 50,
		EaseFloor:           130,
	}
}

// Overrides carries optional replacement values for individual Config
// fields. Nil fields leave the corresponding Config value untouched.
type Overrides struct {
	BaseEase            *int
	IntervalChangeHard  *int
	EasyBonus           *int
	EnableLoadBalancer  *bool
	MaxIntervalDays     *int
	MaxLinkContribution *int
	EaseFloor           *int
}

// Merge returns a copy of the config with any set overrides applied.
// Unspecified fields retain their current value.
func (c Config) Merge(o Overrides) Config {
	if o.BaseEase != nil {
		c.BaseEase = *o.BaseEase
	}
	if o.IntervalChangeHard != nil {
		c.IntervalChangeHard = *o.IntervalChangeHard
	}
	if o.EasyBonus != nil {
		c.EasyBonus = *o.EasyBonus
	}
	if o.EnableLoadBalancer != nil {
		c.EnableLoadBalancer = *o.EnableLoadBalancer
	}
	if o.MaxIntervalDays != nil {
		c.MaxIntervalDays = *o.MaxIntervalDays
	}
	if o.MaxLinkContribution != nil {
		c.MaxLinkContribution = *o.MaxLinkContribution
	}
	if o.EaseFloor != nil {
		c.EaseFloor = *o.EaseFloor
	}
	return c
}
