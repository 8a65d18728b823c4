package geometry

import (
	"math"
	"testing"

	"wisefido-radar-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() models.RoomLayout {
	boundary := models.Boundary{LeftH: 300, RightH: 300, FrontV: 200, RearV: 200}
	return models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar, Mode: models.ModeCeiling, Boundary: &boundary},
		{ID: "bed-1", Type: models.ObjectBed, Position: models.Point{X: 0, Y: 0}, Width: 200, Length: 100},
		{ID: "desk-1", Type: models.ObjectObstacle, Position: models.Point{X: 200, Y: 150}, Width: 60, Length: 40},
		{ID: "door-1", Type: models.ObjectDoor, Position: models.Point{X: -250, Y: 0}, Width: 20, Length: 80},
		{ID: "plant", Type: models.ObjectOther, Position: models.Point{X: -100, Y: -150}, Width: 30, Length: 30},
	}}
}

func TestNewClassifier_RequiresRadar(t *testing.T) {
	_, err := NewClassifier(models.RoomLayout{Objects: []models.RoomObject{
		{ID: "bed-1", Type: models.ObjectBed, Width: 200, Length: 100},
	}})
	assert.ErrorIs(t, err, models.ErrRadarNotFound)

	_, err = NewClassifier(models.RoomLayout{Objects: []models.RoomObject{
		{ID: "r1", Type: models.ObjectRadar},
		{ID: "r2", Type: models.ObjectRadar},
	}})
	assert.ErrorIs(t, err, models.ErrMultipleRadars)
}

func TestClassifier_BedArea(t *testing.T) {
	c, err := NewClassifier(testLayout())
	require.NoError(t, err)
	require.Len(t, c.Beds(), 1)

	assert.True(t, c.IsInBedArea(models.RadarPoint{H: 0, V: 0}))
	assert.True(t, c.IsInBedArea(models.RadarPoint{H: 100, V: 50}))
	assert.False(t, c.IsInBedArea(models.RadarPoint{H: 101, V: 0}))
	assert.False(t, c.IsInBedArea(models.RadarPoint{H: 0, V: 51}))
	assert.Equal(t, 1, c.AreaID(models.RadarPoint{H: 10, V: 10}))
	assert.Equal(t, 0, c.AreaID(models.RadarPoint{H: 200, V: 10}))
}

func TestClassifier_ForbiddenArea(t *testing.T) {
	c, err := NewClassifier(testLayout())
	require.NoError(t, err)

	// 画布 (200,150) 在雷达坐标系中为 (-200,150)
	assert.True(t, c.IsInForbiddenArea(models.RadarPoint{H: -200, V: 150}))
	assert.True(t, c.IsInForbiddenArea(models.RadarPoint{H: 250, V: 30}))
	assert.False(t, c.IsInForbiddenArea(models.RadarPoint{H: 100, V: -150}))
	assert.Equal(t, AreaForbidden, c.AreaOf(models.RadarPoint{H: -200, V: 150}))
	assert.Equal(t, AreaBed, c.AreaOf(models.RadarPoint{H: 0, V: 0}))
	assert.Equal(t, AreaFloor, c.AreaOf(models.RadarPoint{H: 150, V: 150}))
}

func TestClassifier_RotatedBed(t *testing.T) {
	layout := models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar},
		{ID: "bed-1", Type: models.ObjectMonitoredBed, Width: 200, Length: 100, Rotation: 90},
	}}
	c, err := NewClassifier(layout)
	require.NoError(t, err)

	// 旋转 90 度后长边沿 V 方向
	assert.True(t, c.IsInBedArea(models.RadarPoint{H: 0, V: 90}))
	assert.False(t, c.IsInBedArea(models.RadarPoint{H: 90, V: 0}))
}

func TestClassifier_RelativeRotation(t *testing.T) {
	layout := models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar, Rotation: 90},
		{ID: "bed-1", Type: models.ObjectBed, Width: 200, Length: 100, Rotation: 30},
	}}
	c, err := NewClassifier(layout)
	require.NoError(t, err)
	assert.Equal(t, 60.0, c.Beds()[0].Rotation)
}

func TestClassifier_DiagonalBedMatchesRender(t *testing.T) {
	layout := models.RoomLayout{Objects: []models.RoomObject{
		{ID: "radar-1", Type: models.ObjectRadar},
		{ID: "bed-1", Type: models.ObjectBed, Width: 200, Length: 20, Rotation: 45},
	}}
	c, err := NewClassifier(layout)
	require.NoError(t, err)
	pose := c.Pose()

	// 长边沿画布 (1,1) 方向
	onBed := ToRadarFrame(models.Point{X: 49.5, Y: 49.5}, pose)
	mirrored := ToRadarFrame(models.Point{X: 49.5, Y: -49.5}, pose)
	assert.True(t, c.IsInBedArea(onBed))
	assert.False(t, c.IsInBedArea(mirrored))
}

func TestClassifier_ZonesAgreeWithRenderRectangles(t *testing.T) {
	for _, radarRot := range []float64{0, 30, 135, 270} {
		for _, bedRot := range []float64{0, 20, 45, 110, 300} {
			bed := models.RoomObject{
				ID: "bed-1", Type: models.ObjectBed,
				Position: models.Point{X: 80, Y: -40}, Rotation: bedRot,
				Width: 180, Length: 60,
			}
			layout := models.RoomLayout{Objects: []models.RoomObject{
				{ID: "radar-1", Type: models.ObjectRadar, Position: models.Point{X: -30, Y: 20}, Rotation: radarRot},
				bed,
			}}
			c, err := NewClassifier(layout)
			require.NoError(t, err)

			// 在画布中按床的局部坐标取点
			sin, cos := math.Sincos(radians(bedRot))
			for _, local := range [][2]float64{{85, 25}, {-85, 25}, {85, -25}, {-85, -25}, {0, 0}} {
				p := models.Point{
					X: bed.Position.X + local[0]*cos - local[1]*sin,
					Y: bed.Position.Y + local[0]*sin + local[1]*cos,
				}
				assert.True(t, c.IsInBedArea(ToRadarFrame(p, c.Pose())), "radar %v bed %v local %v", radarRot, bedRot, local)
			}
			outside := models.Point{
				X: bed.Position.X - 40*sin,
				Y: bed.Position.Y + 40*cos,
			}
			assert.False(t, c.IsInBedArea(ToRadarFrame(outside, c.Pose())), "radar %v bed %v", radarRot, bedRot)
		}
	}
}

func TestZone_FromLocalIsContained(t *testing.T) {
	z := Zone{Center: models.RadarPoint{H: 40, V: -20}, Rotation: 37, Width: 120, Length: 60}
	for _, local := range [][2]float64{{0, 0}, {59, 29}, {-59, 29}, {59, -29}, {-59, -29}} {
		assert.True(t, z.Contains(z.FromLocal(local[0], local[1])), "local %v", local)
	}
	assert.False(t, z.Contains(z.FromLocal(61, 0)))
}
