package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackSelectsPrimaryAboveAllThresholds(t *testing.T) {
	f := NewFallbackThreshold([]int16{-90, -100, -110})
	assert.Equal(t, 4, f.LevelCount())
	assert.Equal(t, 0, f.SelectLevel(-50))
}

func TestFallbackSelectsDeepestLevelBelowAllThresholds(t *testing.T) {
	f := NewFallbackThreshold([]int16{-90, -100, -110})
	assert.Equal(t, 3, f.SelectLevel(-120))
}

func TestFallbackSelectsIntermediateLevel(t *testing.T) {
	f := NewFallbackThreshold([]int16{-90, -100, -110})
	assert.Equal(t, 1, f.SelectLevel(-95))
	assert.Equal(t, 2, f.SelectLevel(-105))
}

func TestFallbackNoThresholdsAlwaysPrimary(t *testing.T) {
	f := NewFallbackThreshold(nil)
	assert.Equal(t, 1, f.LevelCount())
	assert.Equal(t, 0, f.SelectLevel(-200))
}
