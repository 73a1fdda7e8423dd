package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pose struct{ x, y, theta float64 }

func extract(s interface{}) (float64, float64, float64) {
	p := s.(pose)
	return p.x, p.y, p.theta
}

func TestAppendRejectsNonPositiveDuration(t *testing.T) {
	p := NewPathControl(pose{0, 0, 0})
	err := p.Append("ctl", pose{1, 0, 0}, 0, nil)
	assert.ErrorIs(t, err, ErrNonPositiveDuration)
}

func TestAppendAccumulatesSegments(t *testing.T) {
	p := NewPathControl(pose{0, 0, 0})
	assert.NoError(t, p.Append("ctl1", pose{1, 0, 0}, 1, []interface{}{pose{1, 0, 0}}))
	assert.NoError(t, p.Append("ctl2", pose{2, 0, 0}, 1, []interface{}{pose{2, 0, 0}}))

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 2.0, p.TotalDuration())
}

func TestInterpolateSingleState(t *testing.T) {
	p := NewPathControl(pose{1, 2, 0.5})
	samples := Interpolate(p, extract, 0.1)
	assert.Len(t, samples, 1)
	assert.Equal(t, 1.0, samples[0].X)
}

func TestInterpolateUsesPropagatedSubsteps(t *testing.T) {
	p := NewPathControl(pose{0, 0, 0})
	substeps := []interface{}{pose{5, 0, 0}, pose{10, 0, 0}}
	assert.NoError(t, p.Append("ctl", pose{10, 0, 0}, 1, substeps))

	samples := Interpolate(p, extract, 0.5)
	assert.Equal(t, 0.0, samples[0].Time)
	assert.InDelta(t, 5.0, samples[1].X, 1e-9)
	assert.Equal(t, 1.0, samples[len(samples)-1].Time)
	assert.InDelta(t, 10.0, samples[len(samples)-1].X, 1e-9)
}

func TestInterpolateFallsBackToSegmentEndWithNoSubsteps(t *testing.T) {
	p := NewPathControl(pose{0, 0, 0})
	assert.NoError(t, p.Append("ctl", pose{10, 0, 0}, 1, nil))

	samples := Interpolate(p, extract, 0.5)
	assert.InDelta(t, 10.0, samples[1].X, 1e-9)
}

func TestInterpolateIncludesFinalTimeExactly(t *testing.T) {
	p := NewPathControl(pose{0, 0, 0})
	substeps := []interface{}{pose{1, 0, 0}}
	assert.NoError(t, p.Append("ctl", pose{1, 0, 0}, 0.3, substeps))

	samples := Interpolate(p, extract, 0.2)
	last := samples[len(samples)-1]
	assert.InDelta(t, 0.3, last.Time, 1e-9)
}
