package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRoster())

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ByStatus[StatusActive])
	assert.Equal(t, 1, s.ByStatus[StatusMaintenance])
	assert.Equal(t, 0, s.ByStatus[StatusInactive])
	assert.Equal(t, 1, s.ByType[TypeClinic])
	assert.Equal(t, 650, s.TotalBeds)
	assert.Equal(t, 2, s.WithAdmin)
	assert.InDelta(t, 0.5, s.AdminCoverage, 1e-9)
	assert.InDelta(t, 0.5, s.ActiveRatio, 1e-9)
	assert.InDelta(t, 162.5, s.AverageBeds, 1e-9)
}

func TestSummarize_EmptyRosterHasZeroRatios(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.AdminCoverage)
	assert.Zero(t, s.ActiveRatio)
	assert.Zero(t, s.AverageRating)
	assert.Zero(t, s.AverageBeds)
	assert.Len(t, s.ByStatus, 4)
	assert.Len(t, s.ByType, 6)
}
