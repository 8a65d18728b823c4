package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig PostgreSQL 连接配置
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	MaxIdle         int
	ConnectTimeout  time.Duration
	ApplicationName string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// GetDSN 获取 lib/pq 连接字符串
func (c *DatabaseConfig) GetDSN() string {
	parts := []string{
		"host=" + c.Host,
		"port=" + strconv.Itoa(c.Port),
		"user=" + c.User,
		"password=" + c.Password,
		"dbname=" + c.Database,
		"sslmode=" + c.SSLMode,
	}
	if c.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", int(c.ConnectTimeout.Seconds())))
	}
	if c.ApplicationName != "" {
		parts = append(parts, "application_name="+c.ApplicationName)
	}
	return strings.Join(parts, " ")
}

// LoadFromEnv 用 {prefix}_HOST、{prefix}_PORT 等环境变量覆盖已有值
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	lookupString(prefix+"_HOST", &c.Host)
	lookupInt(prefix+"_PORT", &c.Port)
	lookupString(prefix+"_USER", &c.User)
	lookupString(prefix+"_PASSWORD", &c.Password)
	lookupString(prefix+"_NAME", &c.Database)
	lookupString(prefix+"_SSLMODE", &c.SSLMode)
	lookupInt(prefix+"_MAX_CONNS", &c.MaxConns)
	lookupInt(prefix+"_MAX_IDLE", &c.MaxIdle)
	lookupSeconds(prefix+"_CONNECT_TIMEOUT", &c.ConnectTimeout)
}

// LoadFromEnv 从环境变量加载Redis配置
func (c *RedisConfig) LoadFromEnv(prefix string) {
	lookupString(prefix+"_ADDR", &c.Addr)
	lookupString(prefix+"_PASSWORD", &c.Password)
	lookupInt(prefix+"_DB", &c.DB)
	lookupInt(prefix+"_POOL_SIZE", &c.PoolSize)
	lookupSeconds(prefix+"_DIAL_TIMEOUT", &c.DialTimeout)
}

// LoadFromEnv 从环境变量加载MQTT配置
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	lookupString(prefix+"_BROKER", &c.Broker)
	lookupString(prefix+"_CLIENT_ID", &c.ClientID)
	lookupString(prefix+"_USERNAME", &c.Username)
	lookupString(prefix+"_PASSWORD", &c.Password)
	if v, ok := os.LookupEnv(prefix + "_QOS"); ok {
		if qos, err := strconv.Atoi(v); err == nil && qos >= 0 && qos <= 2 {
			c.QoS = byte(qos)
		}
	}
	lookupSeconds(prefix+"_KEEPALIVE", &c.KeepAlive)
	lookupSeconds(prefix+"_CONNECT_TIMEOUT", &c.ConnectTimeout)
	lookupSeconds(prefix+"_PUBLISH_TIMEOUT", &c.PublishTimeout)
}

func lookupString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// lookupInt 无法解析的值保留原值
func lookupInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func lookupSeconds(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = time.Duration(n) * time.Second
		}
	}
}
