package alarm

import (
	"testing"
	"time"

	"wisefido-radar-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	normalVital  = &models.VitalSample{HeartRate: 70, BreathingRate: 15}
	warningVital = &models.VitalSample{HeartRate: 100, BreathingRate: 15}
	dangerVital  = &models.VitalSample{HeartRate: 130, BreathingRate: 30}
	t0           = time.Unix(1700000000, 0)
)

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

func TestEvaluator_DangerPreemptsWarning(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())

	// 同时满足跌倒危险与 warning 生命体征
	for sec := 0; sec < 5; sec++ {
		d := e.Evaluate(at(float64(sec)), models.PostureFallConfirm, nil)
		assert.False(t, d.DangerActive)
	}
	d := e.Evaluate(at(5), models.PostureFallConfirm, warningVital)
	assert.True(t, d.DangerActivated)
	assert.True(t, d.DangerActive)
	assert.False(t, d.WarningActivated)
	assert.False(t, d.WarningActive)
	require.Len(t, d.Notices, 1)
	assert.Equal(t, LevelDanger, d.Notices[0].Level)
	assert.Equal(t, ReasonFall, d.Notices[0].Reason)
	assert.Equal(t, 5*time.Second, d.Notices[0].FallDuration)
}

func TestEvaluator_DangerCancelsActiveWarning(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())

	d := e.Evaluate(at(0), models.PostureLying, warningVital)
	require.True(t, d.WarningActivated)

	d = e.Evaluate(at(0.5), models.PostureLying, dangerVital)
	assert.True(t, d.DangerActivated)
	assert.True(t, d.WarningCancelled)
	assert.False(t, d.WarningActive)
}

func TestEvaluator_DangerCooldownExclusivity(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())

	d := e.Evaluate(at(0), models.PostureLying, dangerVital)
	require.True(t, d.DangerActivated)

	for sec := 1; sec < 15; sec++ {
		d = e.Evaluate(at(float64(sec)), models.PostureLying, dangerVital)
		assert.False(t, d.DangerActivated, "re-activated at %ds", sec)
		assert.True(t, d.DangerActive)
	}

	d = e.Evaluate(at(15), models.PostureLying, dangerVital)
	assert.True(t, d.DangerActivated)
	assert.Equal(t, at(30), e.State().DangerCooldownUntil)
}

func TestEvaluator_DangerClears(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())

	e.Evaluate(at(0), models.PostureLying, dangerVital)
	d := e.Evaluate(at(1), models.PostureLying, normalVital)
	assert.True(t, d.DangerCleared)
	assert.False(t, d.DangerActive)

	// 冷却期内再次危险也不会重新激活
	d = e.Evaluate(at(2), models.PostureLying, dangerVital)
	assert.False(t, d.DangerActivated)
}

func TestEvaluator_WarningPulse(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())

	d := e.Evaluate(at(0), models.PostureLying, warningVital)
	assert.True(t, d.WarningActivated)
	assert.True(t, d.WarningActive)
	require.Len(t, d.Notices, 1)
	assert.Equal(t, LevelWarning, d.Notices[0].Level)
	assert.Equal(t, at(15), e.State().WarningCooldownUntil)

	d = e.Evaluate(at(0.5), models.PostureLying, warningVital)
	assert.True(t, d.WarningActive)
	assert.False(t, d.WarningActivated)

	d = e.Evaluate(at(1), models.PostureLying, warningVital)
	assert.False(t, d.WarningActive)
	assert.False(t, d.WarningActivated)

	d = e.Evaluate(at(14), models.PostureLying, warningVital)
	assert.False(t, d.WarningActivated)

	d = e.Evaluate(at(15), models.PostureLying, warningVital)
	assert.True(t, d.WarningActivated)
}

func TestEvaluator_WarningBlockedByDangerCooldown(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())

	e.Evaluate(at(0), models.PostureLying, dangerVital)
	e.Evaluate(at(1), models.PostureLying, normalVital)

	d := e.Evaluate(at(2), models.PostureLying, warningVital)
	assert.False(t, d.WarningActivated)

	d = e.Evaluate(at(15), models.PostureLying, warningVital)
	assert.True(t, d.WarningActivated)
}

func TestEvaluator_FallTimerResets(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())

	e.Evaluate(at(0), models.PostureSitGroundConfirm, nil)
	e.Evaluate(at(4), models.PostureSitGroundConfirm, nil)
	e.Evaluate(at(4.5), models.PostureStanding, nil)
	assert.False(t, e.State().FallTiming)

	d := e.Evaluate(at(5), models.PostureSitGroundConfirm, nil)
	assert.False(t, d.DangerActivated)
	d = e.Evaluate(at(9), models.PostureSitGroundConfirm, nil)
	assert.False(t, d.DangerActivated)
	d = e.Evaluate(at(10), models.PostureSitGroundConfirm, nil)
	assert.True(t, d.DangerActivated)
}

func TestEvaluator_Reset(t *testing.T) {
	e := NewEvaluator(DefaultEvaluatorConfig())
	e.Evaluate(at(0), models.PostureLying, dangerVital)

	e.Reset()
	assert.Equal(t, State{}, e.State())

	d := e.Evaluate(at(1), models.PostureLying, dangerVital)
	assert.True(t, d.DangerActivated)
}
