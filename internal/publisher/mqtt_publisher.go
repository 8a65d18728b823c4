package publisher

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// MessagePublisher MQTT 发布接口，由 common/mqtt.Client 实现
type MessagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	QoS() byte
}

// MQTTPublisher 以真实雷达的主题格式发布原始帧
type MQTTPublisher struct {
	client MessagePublisher
	topic  string
	logger *zap.Logger
}

// NewMQTTPublisher 创建 MQTT 发布器，topicTemplate 形如 radar/%s/data
func NewMQTTPublisher(client MessagePublisher, topicTemplate string, device DeviceIdentity, logger *zap.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		topic:  deviceTopic(topicTemplate, device),
		logger: logger,
	}
}

// Topic 发布主题
func (p *MQTTPublisher) Topic() string {
	return p.topic
}

// Publish 发布一帧原始数据
func (p *MQTTPublisher) Publish(rawData map[string]interface{}) error {
	payload, err := json.Marshal(rawData)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if err := p.client.Publish(p.topic, p.client.QoS(), false, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published radar frame to MQTT",
		zap.String("topic", p.topic),
		zap.Int("payload_size", len(payload)),
	)
	return nil
}
