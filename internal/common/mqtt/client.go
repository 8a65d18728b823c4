package mqtt

import (
	"errors"
	"fmt"
	"time"

	"wisefido-radar-sim/internal/common/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
)

// ErrPublishTimeout 发布在超时内未得到 broker 确认
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Client 只发布的 MQTT 客户端，模拟雷达不订阅任何主题
type Client struct {
	client         mqtt.Client
	qos            byte
	publishTimeout time.Duration
	logger         *zap.Logger
}

// NewClient 创建MQTT客户端并连接 broker
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.KeepAlive > 0 {
		opts.SetKeepAlive(cfg.KeepAlive)
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info("MQTT reconnecting", zap.String("broker", cfg.Broker))
	})

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out after %s", cfg.Broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	publishTimeout := cfg.PublishTimeout
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}

	logger.Info("Connected to MQTT broker",
		zap.String("broker", cfg.Broker),
		zap.String("client_id", cfg.ClientID),
	)

	return &Client{
		client:         client,
		qos:            cfg.QoS,
		publishTimeout: publishTimeout,
		logger:         logger,
	}, nil
}

// Publish 发布消息并等待确认
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.publishTimeout) {
		return fmt.Errorf("topic %s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// QoS 返回配置的默认 QoS
func (c *Client) QoS() byte {
	return c.qos
}

// Disconnect 断开连接，等待最多 250ms 发送完剩余消息
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
