package publisher

import (
	"context"
	"fmt"
	"time"

	rediscommon "wisefido-radar-sim/internal/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DeviceIdentity 模拟雷达的设备标识
type DeviceIdentity struct {
	DeviceID     string
	TenantID     string
	SerialNumber string
	UID          string
}

// StreamPublisher 把原始帧按采集服务的格式写入 Redis Streams
type StreamPublisher struct {
	client        *redis.Client
	stream        string
	topicTemplate string
	device        DeviceIdentity
	logger        *zap.Logger
	now           func() time.Time
}

// NewStreamPublisher 创建 Redis Streams 发布器
func NewStreamPublisher(client *redis.Client, stream, topicTemplate string, device DeviceIdentity, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{
		client:        client,
		stream:        stream,
		topicTemplate: topicTemplate,
		device:        device,
		logger:        logger,
		now:           time.Now,
	}
}

// Publish 发布一帧原始数据，返回 stream 消息 ID
func (p *StreamPublisher) Publish(ctx context.Context, rawData map[string]interface{}) (string, error) {
	standardizedData := map[string]interface{}{
		"device_id":     p.device.DeviceID,
		"tenant_id":     p.device.TenantID,
		"serial_number": p.device.SerialNumber,
		"uid":           p.device.UID,
		"device_type":   "Radar",
		"raw_data":      rawData,
		"timestamp":     p.now().Unix(),
		"topic":         deviceTopic(p.topicTemplate, p.device),
	}

	streamID, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, standardizedData)
	if err != nil {
		return "", fmt.Errorf("failed to publish to stream: %w", err)
	}

	p.logger.Debug("Published radar data to Redis Streams",
		zap.String("device_id", p.device.DeviceID),
		zap.String("stream", p.stream),
		zap.String("stream_id", streamID),
	)
	return streamID, nil
}

// deviceTopic 设备主题，优先使用序列号
func deviceTopic(template string, device DeviceIdentity) string {
	identifier := device.SerialNumber
	if identifier == "" {
		identifier = device.UID
	}
	if identifier == "" {
		identifier = device.DeviceID
	}
	return fmt.Sprintf(template, identifier)
}
