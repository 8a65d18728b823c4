package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"wisefido-radar-sim/internal/common/config"
)

const (
	LayoutSourceFile     = "file"
	LayoutSourceDatabase = "database"
)

// Config 雷达模拟服务配置
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	// 模拟器配置
	Simulator struct {
		LayoutSource string // "file" 或 "database"
		LayoutFile   string
		TenantID     string
		UnitID       string

		// 模拟设备标识
		DeviceID     string
		SerialNumber string
		UID          string
		CardID       string

		Seed            int64 // 0 表示按时间取种子
		TrackIntervalMS int
		VitalIntervalMS int

		BedProbability float64
		BedMargin      float64
		BoundaryMargin float64
		MaxAttempts    int

		VitalDanger    float64
		VitalWarning   float64
		VitalNormal    float64
		VitalUndefined float64

		// 回放数据源：本地文件、xlsx 或 http(s) 地址，为空时使用随机生成
		PlaybackSource string
	}

	// 输出配置
	Publish struct {
		RedisEnabled      bool
		MQTTEnabled       bool
		AlarmCacheEnabled bool
		Stream            string // 如 "radar:data:stream"
		TopicTemplate     string // 如 "radar/%s/data"
		AlarmCacheTTL     int    // 秒
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = 5432
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "owlrd")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = 2
	cfg.Database.ApplicationName = "wisefido-radar-sim"
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wisefido-radar-sim")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")

	sim := &cfg.Simulator
	sim.LayoutSource = strings.ToLower(getEnv("SIM_LAYOUT_SOURCE", LayoutSourceFile))
	sim.LayoutFile = getEnv("SIM_LAYOUT_FILE", "configs/room_layout.json")
	sim.TenantID = getEnv("TENANT_ID", "")
	sim.UnitID = getEnv("SIM_UNIT_ID", "")
	sim.DeviceID = getEnv("SIM_DEVICE_ID", "sim-radar-1")
	sim.SerialNumber = getEnv("SIM_SERIAL_NUMBER", "SIM-RADAR-0001")
	sim.UID = getEnv("SIM_UID", "")
	sim.CardID = getEnv("SIM_CARD_ID", "sim-card-1")
	sim.Seed = int64(getEnvInt("SIM_SEED", 0))
	sim.TrackIntervalMS = getEnvInt("SIM_TRACK_INTERVAL_MS", 1000)
	sim.VitalIntervalMS = getEnvInt("SIM_VITAL_INTERVAL_MS", 2000)
	sim.BedProbability = getEnvFloat("SIM_BED_PROBABILITY", 0.6)
	sim.BedMargin = getEnvFloat("SIM_BED_MARGIN", 10)
	sim.BoundaryMargin = getEnvFloat("SIM_BOUNDARY_MARGIN", 20)
	sim.MaxAttempts = getEnvInt("SIM_MAX_ATTEMPTS", 50)
	sim.VitalDanger = getEnvFloat("SIM_VITAL_DANGER", 0.3)
	sim.VitalWarning = getEnvFloat("SIM_VITAL_WARNING", 0.2)
	sim.VitalNormal = getEnvFloat("SIM_VITAL_NORMAL", 0.4)
	sim.VitalUndefined = getEnvFloat("SIM_VITAL_UNDEFINED", 0.1)
	sim.PlaybackSource = getEnv("SIM_PLAYBACK_SOURCE", "")

	cfg.Publish.RedisEnabled = getEnvBool("PUBLISH_REDIS_ENABLED", false)
	cfg.Publish.MQTTEnabled = getEnvBool("PUBLISH_MQTT_ENABLED", false)
	cfg.Publish.AlarmCacheEnabled = getEnvBool("PUBLISH_ALARM_CACHE_ENABLED", false)
	cfg.Publish.Stream = getEnv("PUBLISH_STREAM", "radar:data:stream")
	cfg.Publish.TopicTemplate = getEnv("PUBLISH_TOPIC_TEMPLATE", "radar/%s/data")
	cfg.Publish.AlarmCacheTTL = getEnvInt("ALARM_CACHE_TTL", 30)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	sim := c.Simulator
	switch sim.LayoutSource {
	case LayoutSourceFile:
		if sim.LayoutFile == "" {
			return fmt.Errorf("SIM_LAYOUT_FILE is required when layout source is file")
		}
	case LayoutSourceDatabase:
		if sim.TenantID == "" || sim.UnitID == "" {
			return fmt.Errorf("TENANT_ID and SIM_UNIT_ID are required when layout source is database")
		}
	default:
		return fmt.Errorf("invalid SIM_LAYOUT_SOURCE %q", sim.LayoutSource)
	}

	if sim.TrackIntervalMS <= 0 || sim.VitalIntervalMS <= 0 {
		return fmt.Errorf("tick intervals must be positive")
	}
	if sim.BedProbability < 0 || sim.BedProbability > 1 {
		return fmt.Errorf("SIM_BED_PROBABILITY must be within [0, 1], got %v", sim.BedProbability)
	}
	vitalProbabilities := []struct {
		key string
		p   float64
	}{
		{"SIM_VITAL_DANGER", sim.VitalDanger},
		{"SIM_VITAL_WARNING", sim.VitalWarning},
		{"SIM_VITAL_NORMAL", sim.VitalNormal},
		{"SIM_VITAL_UNDEFINED", sim.VitalUndefined},
	}
	for _, vp := range vitalProbabilities {
		if vp.p < 0 {
			return fmt.Errorf("%s must not be negative, got %v", vp.key, vp.p)
		}
	}
	if sim.VitalDanger+sim.VitalWarning+sim.VitalNormal+sim.VitalUndefined <= 0 {
		return fmt.Errorf("vital category probabilities must not all be zero")
	}
	if c.Publish.AlarmCacheEnabled && sim.CardID == "" {
		return fmt.Errorf("SIM_CARD_ID is required when alarm cache is enabled")
	}
	if !strings.Contains(c.Publish.TopicTemplate, "%s") {
		return fmt.Errorf("PUBLISH_TOPIC_TEMPLATE must contain %%s")
	}
	return nil
}

// NeedsDatabase 是否需要连接数据库
func (c *Config) NeedsDatabase() bool {
	return c.Simulator.LayoutSource == LayoutSourceDatabase
}

// NeedsRedis 是否需要连接 Redis
func (c *Config) NeedsRedis() bool {
	return c.Publish.RedisEnabled || c.Publish.AlarmCacheEnabled
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}
