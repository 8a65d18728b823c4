package models

import (
	"time"
)

// AlarmEvent 报警事件（对应 alarm_events 表）
type AlarmEvent struct {
	EventID       string    `json:"event_id" db:"event_id"`
	TenantID      string    `json:"tenant_id" db:"tenant_id"`
	DeviceID      string    `json:"device_id" db:"device_id"`
	EventType     string    `json:"event_type" db:"event_type"`
	Category      string    `json:"category" db:"category"`         // safety, clinical
	AlarmLevel    string    `json:"alarm_level" db:"alarm_level"`   // EMERGENCY, WARNING
	AlarmStatus   string    `json:"alarm_status" db:"alarm_status"` // active
	TriggeredAt   time.Time `json:"triggered_at" db:"triggered_at"`
	TriggerData   string    `json:"trigger_data" db:"trigger_data"` // JSONB
	NotifiedUsers string    `json:"notified_users" db:"notified_users"`
	Metadata      string    `json:"metadata" db:"metadata"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// TriggerData 触发数据快照（JSONB 结构）
type TriggerData struct {
	HeartRate       *int    `json:"heart_rate,omitempty"`
	RespiratoryRate *int    `json:"respiratory_rate,omitempty"`
	Posture         *string `json:"posture,omitempty"`
	EventType       string  `json:"event_type"`
	DurationSec     *int    `json:"duration_sec,omitempty"`
	Source          string  `json:"source"` // "Radar"
}
