package alarm

import (
	"encoding/json"
	"fmt"

	"wisefido-radar-sim/internal/models"

	"github.com/google/uuid"
)

const triggerSource = "Radar"

// AlarmEventBuilder 把报警激活转换为 alarm_events 记录
type AlarmEventBuilder struct {
	tenantID string
	deviceID string
}

// NewAlarmEventBuilder 创建报警事件构建器
func NewAlarmEventBuilder(tenantID, deviceID string) *AlarmEventBuilder {
	return &AlarmEventBuilder{
		tenantID: tenantID,
		deviceID: deviceID,
	}
}

// BuildAlarmEvent 构建报警事件
func (b *AlarmEventBuilder) BuildAlarmEvent(notice Notice, metadata map[string]interface{}) (*models.AlarmEvent, error) {
	triggerDataJSON, err := json.Marshal(BuildTriggerData(notice))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	metadataJSON := "{}"
	if metadata != nil {
		metadataBytes, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = string(metadataBytes)
	}

	return &models.AlarmEvent{
		EventID:       uuid.New().String(),
		TenantID:      b.tenantID,
		DeviceID:      b.deviceID,
		EventType:     string(notice.Reason),
		Category:      categoryFor(notice.Reason),
		AlarmLevel:    alarmLevelFor(notice.Level),
		AlarmStatus:   "active",
		TriggeredAt:   notice.At,
		TriggerData:   string(triggerDataJSON),
		NotifiedUsers: "[]",
		Metadata:      metadataJSON,
		CreatedAt:     notice.At,
		UpdatedAt:     notice.At,
	}, nil
}

// BuildTriggerData 构建触发数据快照
func BuildTriggerData(notice Notice) *models.TriggerData {
	posture := notice.Posture.String()
	td := &models.TriggerData{
		EventType: string(notice.Reason),
		Source:    triggerSource,
		Posture:   &posture,
	}
	if notice.Vital != nil {
		hr := notice.Vital.HeartRate
		rr := notice.Vital.BreathingRate
		td.HeartRate = &hr
		td.RespiratoryRate = &rr
	}
	if notice.Reason == ReasonFall {
		sec := int(notice.FallDuration.Seconds())
		td.DurationSec = &sec
	}
	return td
}

func categoryFor(reason Reason) string {
	if reason == ReasonFall {
		return "safety"
	}
	return "clinical"
}

func alarmLevelFor(level Level) string {
	if level == LevelDanger {
		return "EMERGENCY"
	}
	return "WARNING"
}
