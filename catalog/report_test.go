package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportCounters(t *testing.T) {
	r := NewReport()
	r.AddCollision(CollisionEvent{Name: "Option", Resolution: ResolutionOverride})
	r.AddCollision(CollisionEvent{Name: "Quote", Resolution: ResolutionSuffix})
	r.AddCollision(CollisionEvent{Name: "Instrument", Resolution: ResolutionMixed})

	assert.Equal(t, 3, r.TotalCollisions)
	assert.Equal(t, 2, r.ResolvedByOverride)
	assert.Equal(t, 2, r.ResolvedBySuffix)
	assert.Len(t, r.GetByResolution(ResolutionSuffix), 1)

	_, ok := r.Collision("Quote")
	assert.True(t, ok)
	_, ok = r.Collision("Order")
	assert.False(t, ok)
}

func TestReportWarnings(t *testing.T) {
	r := NewReport()
	r.Warn("GetAccount", SeverityInfo, "value matches no alternative")
	r.Warn("GetAccount", SeverityWarning, "no type for query parameter color")

	assert.Len(t, r.WarningsAtLeast(SeverityInfo), 2)
	got := r.WarningsAtLeast(SeverityWarning)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "no type for query parameter color", got[0].Message)
	}
	assert.Empty(t, r.WarningsAtLeast(SeverityError))
}
