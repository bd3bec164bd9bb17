package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 250, cfg.BaseEase)
	assert.Equal(t, 50, cfg.IntervalChangeHard)
	assert.Equal(t, 130, cfg.EasyBonus)
	assert.True(t, cfg.EnableLoadBalancer)
	assert.Equal(t, 36525, cfg.MaxIntervalDays)
	assert.Equal(t, 50, cfg.MaxLinkContribution)
	assert.Equal(t, 130, cfg.EaseFloor)
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()

	// Empty overrides change nothing
	assert.Equal(t, base, base.Merge(Overrides{}))

	ease := 300
	balancer := false
	merged := base.Merge(Overrides{BaseEase: &ease, EnableLoadBalancer: &balancer})

	assert.Equal(t, 300, merged.BaseEase)
	assert.False(t, merged.EnableLoadBalancer)
	// Everything else keeps its prior value
	assert.Equal(t, base.EasyBonus, merged.EasyBonus)
	assert.Equal(t, base.MaxIntervalDays, merged.MaxIntervalDays)

	// Merge is copy-on-write: the receiver is untouched
	assert.Equal(t, 250, base.BaseEase)
}
