package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wisefido-radar-sim/internal/models"

	"go.uber.org/zap"
)

// maxCachedAlarms 卡片报警列表保留的最大条数
const maxCachedAlarms = 20

// AlarmItem 卡片报警项，字段与卡片聚合服务读取的格式一致
type AlarmItem struct {
	EventID     string                 `json:"event_id"`
	EventType   string                 `json:"event_type"`
	Category    string                 `json:"category,omitempty"`
	AlarmLevel  string                 `json:"alarm_level"`
	AlarmStatus string                 `json:"alarm_status"`
	TriggeredAt int64                  `json:"triggered_at"`
	TriggeredBy string                 `json:"triggered_by,omitempty"`
	TriggerData map[string]interface{} `json:"trigger_data,omitempty"`
}

// RealtimeData 卡片实时数据
type RealtimeData struct {
	Heart        *int   `json:"heart,omitempty"`
	Breath       *int   `json:"breath,omitempty"`
	HeartSource  string `json:"heart_source,omitempty"`
	BreathSource string `json:"breath_source,omitempty"`
	SleepStage   *int   `json:"sleep_stage,omitempty"`
	Posture      *int   `json:"posture,omitempty"`
	PersonCount  int    `json:"person_count"`
	Timestamp    int64  `json:"timestamp"`
}

// CardCache 写入 vital-focus 卡片缓存（realtime 与 alarms）
type CardCache struct {
	store  CardStore
	cardID string
	ttl    time.Duration
	source string
	logger *zap.Logger
}

// NewCardCache 创建卡片缓存写入器
func NewCardCache(store CardStore, cardID string, ttl time.Duration, source string, logger *zap.Logger) *CardCache {
	return &CardCache{
		store:  store,
		cardID: cardID,
		ttl:    ttl,
		source: source,
		logger: logger,
	}
}

func (c *CardCache) alarmsKey() string {
	return fmt.Sprintf("vital-focus:card:%s:alarms", c.cardID)
}

func (c *CardCache) realtimeKey() string {
	return fmt.Sprintf("vital-focus:card:%s:realtime", c.cardID)
}

// AppendAlarm 把报警事件插入列表头部，超过上限的旧报警被丢弃
func (c *CardCache) AppendAlarm(ctx context.Context, event *models.AlarmEvent) error {
	alarms, err := c.Alarms(ctx)
	if err != nil {
		return err
	}

	item := AlarmItem{
		EventID:     event.EventID,
		EventType:   event.EventType,
		Category:    event.Category,
		AlarmLevel:  event.AlarmLevel,
		AlarmStatus: event.AlarmStatus,
		TriggeredAt: event.TriggeredAt.Unix(),
		TriggeredBy: c.source,
	}
	if event.TriggerData != "" {
		if err := json.Unmarshal([]byte(event.TriggerData), &item.TriggerData); err != nil {
			return fmt.Errorf("failed to parse trigger data: %w", err)
		}
	}

	alarms = append([]AlarmItem{item}, alarms...)
	if len(alarms) > maxCachedAlarms {
		alarms = alarms[:maxCachedAlarms]
	}

	if err := c.store.Save(ctx, c.alarmsKey(), alarms, c.ttl); err != nil {
		return fmt.Errorf("failed to write alarms: %w", err)
	}

	c.logger.Debug("Alarm cached",
		zap.String("card_id", c.cardID),
		zap.String("event_id", event.EventID),
		zap.Int("alarm_count", len(alarms)),
	)
	return nil
}

// Alarms 读取缓存中的报警列表，缓存不存在时返回空列表
func (c *CardCache) Alarms(ctx context.Context) ([]AlarmItem, error) {
	var alarms []AlarmItem
	if err := c.store.Load(ctx, c.alarmsKey(), &alarms); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alarms: %w", err)
	}
	return alarms, nil
}

// UpdateRealtime 用最新的轨迹和生命体征刷新实时数据
func (c *CardCache) UpdateRealtime(ctx context.Context, sample *models.PersonSample, vital *models.VitalSample, at time.Time) error {
	rt := RealtimeData{Timestamp: at.Unix()}
	if sample != nil {
		posture := int(sample.Posture)
		rt.Posture = &posture
		rt.PersonCount = 1
	}
	if vital != nil {
		hr, br, sleep := vital.HeartRate, vital.BreathingRate, vital.SleepState
		rt.Heart = &hr
		rt.Breath = &br
		rt.SleepStage = &sleep
		rt.HeartSource = c.source
		rt.BreathSource = c.source
	}

	if err := c.store.Save(ctx, c.realtimeKey(), rt, c.ttl); err != nil {
		return fmt.Errorf("failed to write realtime data: %w", err)
	}
	return nil
}
