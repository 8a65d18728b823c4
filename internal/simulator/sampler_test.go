package simulator

import (
	"testing"

	"wisefido-radar-sim/internal/geometry"
	"wisefido-radar-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bedLayout() models.RoomLayout {
	boundary := models.Boundary{LeftH: 300, RightH: 300, FrontV: 200, RearV: 200}
	return models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar, Mode: models.ModeCeiling, Boundary: &boundary},
		{ID: "bed-1", Type: models.ObjectBed, Position: models.Point{X: 0, Y: 0}, Width: 200, Length: 100},
	}}
}

func newTestClassifier(t *testing.T, layout models.RoomLayout) *geometry.Classifier {
	t.Helper()
	c, err := geometry.NewClassifier(layout)
	require.NoError(t, err)
	return c
}

func TestPositionSampler_BedTargeted(t *testing.T) {
	c := newTestClassifier(t, bedLayout())
	cfg := DefaultSamplerConfig()
	cfg.BedProbability = 1
	sampler := NewPositionSampler(c, cfg, NewRand(42))

	for i := 0; i < 1000; i++ {
		p, err := sampler.Sample()
		require.NoError(t, err)
		assert.True(t, c.IsInBedArea(p), "sample %d at %+v not in bed", i, p)
	}
}

func TestPositionSampler_RotatedBed(t *testing.T) {
	layout := bedLayout()
	layout.Objects[0].Position = models.Point{X: 50, Y: -30}
	layout.Objects[0].Rotation = 30
	layout.Objects[1].Position = models.Point{X: 120, Y: 40}
	layout.Objects[1].Rotation = 75
	c := newTestClassifier(t, layout)

	cfg := DefaultSamplerConfig()
	cfg.BedProbability = 1
	sampler := NewPositionSampler(c, cfg, NewRand(7))

	for i := 0; i < 500; i++ {
		p, err := sampler.Sample()
		require.NoError(t, err)
		assert.True(t, c.IsInBedArea(p))
	}
}

func TestPositionSampler_BoundaryAvoidsForbidden(t *testing.T) {
	layout := bedLayout()
	layout.Objects = append(layout.Objects, models.RoomObject{
		ID: "wardrobe", Type: models.ObjectObstacle, Position: models.Point{X: 150, Y: 100}, Width: 120, Length: 120,
	})
	c := newTestClassifier(t, layout)

	cfg := DefaultSamplerConfig()
	cfg.BedProbability = 0
	sampler := NewPositionSampler(c, cfg, NewRand(3))

	for i := 0; i < 1000; i++ {
		p, err := sampler.Sample()
		require.NoError(t, err)
		assert.False(t, c.IsInForbiddenArea(p))
		assert.True(t, c.InBoundary(p))
		assert.LessOrEqual(t, p.H, 280.0)
		assert.GreaterOrEqual(t, p.H, -280.0)
		assert.LessOrEqual(t, p.V, 180.0)
		assert.GreaterOrEqual(t, p.V, -180.0)
	}
}

func TestPositionSampler_WallMode(t *testing.T) {
	layout := models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar, Mode: models.ModeWall},
	}}
	c := newTestClassifier(t, layout)
	sampler := NewPositionSampler(c, DefaultSamplerConfig(), NewRand(11))

	for i := 0; i < 500; i++ {
		p, err := sampler.Sample()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.V, 20.0)
		assert.LessOrEqual(t, p.V, 380.0)
	}
}

func TestPositionSampler_NoBedFallsBackToBoundary(t *testing.T) {
	layout := models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar},
	}}
	c := newTestClassifier(t, layout)
	cfg := DefaultSamplerConfig()
	cfg.BedProbability = 1
	sampler := NewPositionSampler(c, cfg, NewRand(5))

	p, err := sampler.Sample()
	require.NoError(t, err)
	assert.True(t, c.InBoundary(p))
}

func TestPositionSampler_Exhausted(t *testing.T) {
	layout := models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar},
		{ID: "blocker", Type: models.ObjectObstacle, Width: 1000, Length: 1000},
	}}
	c := newTestClassifier(t, layout)
	sampler := NewPositionSampler(c, DefaultSamplerConfig(), NewRand(1))

	_, err := sampler.Sample()
	assert.ErrorIs(t, err, ErrSamplingExhausted)
}
