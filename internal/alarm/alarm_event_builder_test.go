package alarm

import (
	"encoding/json"
	"testing"
	"time"

	"wisefido-radar-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlarmEventBuilder_BuildAlarmEvent(t *testing.T) {
	builder := NewAlarmEventBuilder("tenant-123", "device-456")
	notice := Notice{
		Level:        LevelDanger,
		Reason:       ReasonFall,
		At:           time.Unix(1700000000, 0),
		Posture:      models.PostureFallConfirm,
		FallDuration: 6 * time.Second,
	}

	event, err := builder.BuildAlarmEvent(notice, map[string]interface{}{
		"card_id": "card-789",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "tenant-123", event.TenantID)
	assert.Equal(t, "device-456", event.DeviceID)
	assert.Equal(t, "Fall", event.EventType)
	assert.Equal(t, "safety", event.Category)
	assert.Equal(t, "EMERGENCY", event.AlarmLevel)
	assert.Equal(t, "active", event.AlarmStatus)
	assert.Equal(t, notice.At, event.TriggeredAt)
	assert.Equal(t, "[]", event.NotifiedUsers)

	// 验证 trigger_data 序列化
	var td models.TriggerData
	require.NoError(t, json.Unmarshal([]byte(event.TriggerData), &td))
	assert.Equal(t, "Fall", td.EventType)
	assert.Equal(t, "Radar", td.Source)
	require.NotNil(t, td.Posture)
	assert.Equal(t, "FallConfirm", *td.Posture)
	require.NotNil(t, td.DurationSec)
	assert.Equal(t, 6, *td.DurationSec)
	assert.Nil(t, td.HeartRate)

	var metadata map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(event.Metadata), &metadata))
	assert.Equal(t, "card-789", metadata["card_id"])
}

func TestAlarmEventBuilder_VitalWarning(t *testing.T) {
	builder := NewAlarmEventBuilder("tenant-123", "device-456")
	event, err := builder.BuildAlarmEvent(Notice{
		Level:   LevelWarning,
		Reason:  ReasonVitalWarning,
		At:      time.Unix(1700000000, 0),
		Posture: models.PostureLying,
		Vital:   &models.VitalSample{HeartRate: 100, BreathingRate: 22},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "clinical", event.Category)
	assert.Equal(t, "WARNING", event.AlarmLevel)
	assert.Equal(t, "{}", event.Metadata)

	td := BuildTriggerData(Notice{Reason: ReasonVitalWarning, Vital: &models.VitalSample{HeartRate: 100, BreathingRate: 22}})
	require.NotNil(t, td.HeartRate)
	assert.Equal(t, 100, *td.HeartRate)
	assert.Equal(t, 22, *td.RespiratoryRate)
	assert.Nil(t, td.DurationSec)
}

func TestAlarmEventBuilder_UniqueIDs(t *testing.T) {
	builder := NewAlarmEventBuilder("t", "d")
	a, err := builder.BuildAlarmEvent(Notice{Level: LevelDanger, Reason: ReasonVitalDanger}, nil)
	require.NoError(t, err)
	b, err := builder.BuildAlarmEvent(Notice{Level: LevelDanger, Reason: ReasonVitalDanger}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID, b.EventID)
}
