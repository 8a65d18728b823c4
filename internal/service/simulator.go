package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"wisefido-radar-sim/internal/alarm"
	"wisefido-radar-sim/internal/common/database"
	mqttcommon "wisefido-radar-sim/internal/common/mqtt"
	rediscommon "wisefido-radar-sim/internal/common/redis"
	"wisefido-radar-sim/internal/config"
	"wisefido-radar-sim/internal/models"
	"wisefido-radar-sim/internal/playback"
	"wisefido-radar-sim/internal/publisher"
	"wisefido-radar-sim/internal/repository"
	"wisefido-radar-sim/internal/simulator"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Dependencies 服务依赖的外部连接，为 nil 的依赖对应的功能不启用
type Dependencies struct {
	DB        *sql.DB
	Redis     *redis.Client
	MQTT      publisher.MessagePublisher
	Scheduler simulator.Scheduler
}

// Stats 已发布的数据计数
type Stats struct {
	TrackFrames int64
	VitalFrames int64
	Alarms      int64
	SinkErrors  int64
}

// SimulatorService 雷达模拟服务
// 加载布局与回放数据，驱动模拟引擎，并把输出分发到 Redis Streams、MQTT 与卡片缓存
type SimulatorService struct {
	config *config.Config
	logger *zap.Logger

	db         *sql.DB
	redis      *redis.Client
	mqttClient *mqttcommon.Client

	engine       *simulator.Engine
	personID     int
	device       publisher.DeviceIdentity
	stream       *publisher.StreamPublisher
	mqtt         *publisher.MQTTPublisher
	cardCache    *publisher.CardCache
	alarmBuilder *alarm.AlarmEventBuilder

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	lastVital *models.VitalSample

	trackFrames atomic.Int64
	vitalFrames atomic.Int64
	alarms      atomic.Int64
	sinkErrors  atomic.Int64
}

// NewSimulatorService 按配置建立连接并创建模拟服务
func NewSimulatorService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*SimulatorService, error) {
	var deps Dependencies

	if cfg.NeedsDatabase() {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.DB = db
	}

	if cfg.NeedsRedis() {
		redisClient := rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(ctx, redisClient); err != nil {
			database.Close(deps.DB)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.Redis = redisClient
	}

	var mqttClient *mqttcommon.Client
	if cfg.Publish.MQTTEnabled {
		client, err := mqttcommon.NewClient(&cfg.MQTT, logger)
		if err != nil {
			database.Close(deps.DB)
			rediscommon.Close(deps.Redis)
			return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
		}
		mqttClient = client
		deps.MQTT = client
	}

	s, err := NewSimulatorServiceWithDeps(ctx, cfg, deps, logger)
	if err != nil {
		if mqttClient != nil {
			mqttClient.Disconnect()
		}
		rediscommon.Close(deps.Redis)
		database.Close(deps.DB)
		return nil, err
	}
	s.mqttClient = mqttClient
	return s, nil
}

// NewSimulatorServiceWithDeps 使用已建立的连接创建模拟服务
func NewSimulatorServiceWithDeps(ctx context.Context, cfg *config.Config, deps Dependencies, logger *zap.Logger) (*SimulatorService, error) {
	s := &SimulatorService{
		config: cfg,
		logger: logger,
		db:     deps.DB,
		redis:  deps.Redis,
	}

	layout, err := s.loadLayout(ctx)
	if err != nil {
		return nil, err
	}
	s.device = s.resolveDevice(ctx)

	opts := []simulator.Option{
		simulator.WithLogger(logger.With(zap.String("device_id", s.device.DeviceID))),
		simulator.WithRand(simulator.NewRand(cfg.Simulator.Seed)),
		simulator.WithAlarmHandler(s.handleAlarm),
	}
	if deps.Scheduler != nil {
		opts = append(opts, simulator.WithScheduler(deps.Scheduler))
	}
	if records := s.loadPlayback(ctx); len(records) > 0 {
		opts = append(opts, simulator.WithPlayback(records))
	}

	engineCfg := EngineConfig(cfg)
	s.personID = engineCfg.PersonID
	engine, err := simulator.NewEngine(layout, engineCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulator engine: %w", err)
	}
	s.engine = engine

	if cfg.Publish.RedisEnabled && deps.Redis != nil {
		s.stream = publisher.NewStreamPublisher(deps.Redis, cfg.Publish.Stream, cfg.Publish.TopicTemplate, s.device, logger)
	}
	if cfg.Publish.MQTTEnabled && deps.MQTT != nil {
		s.mqtt = publisher.NewMQTTPublisher(deps.MQTT, cfg.Publish.TopicTemplate, s.device, logger)
	}
	if cfg.Publish.AlarmCacheEnabled && deps.Redis != nil {
		ttl := time.Duration(cfg.Publish.AlarmCacheTTL) * time.Second
		s.cardCache = publisher.NewCardCache(publisher.NewRedisCardStore(deps.Redis), cfg.Simulator.CardID, ttl, "Radar", logger)
	}
	s.alarmBuilder = alarm.NewAlarmEventBuilder(s.device.TenantID, s.device.DeviceID)

	return s, nil
}

// EngineConfig 把服务配置转换为引擎配置
func EngineConfig(cfg *config.Config) simulator.Config {
	sim := cfg.Simulator
	ec := simulator.DefaultConfig()
	ec.TrackInterval = time.Duration(sim.TrackIntervalMS) * time.Millisecond
	ec.VitalInterval = time.Duration(sim.VitalIntervalMS) * time.Millisecond
	ec.Sampler = simulator.SamplerConfig{
		BedProbability: sim.BedProbability,
		BedMargin:      sim.BedMargin,
		BoundaryMargin: sim.BoundaryMargin,
		MaxAttempts:    sim.MaxAttempts,
	}
	ec.Vital.DangerProbability = sim.VitalDanger
	ec.Vital.WarningProbability = sim.VitalWarning
	ec.Vital.NormalProbability = sim.VitalNormal
	ec.Vital.UndefinedProbability = sim.VitalUndefined
	return ec
}

func (s *SimulatorService) loadLayout(ctx context.Context) (models.RoomLayout, error) {
	sim := s.config.Simulator
	if sim.LayoutSource == config.LayoutSourceDatabase {
		if s.db == nil {
			return models.RoomLayout{}, fmt.Errorf("database layout source requires a database connection")
		}
		layout, err := repository.NewLayoutRepository(s.db, s.logger).GetUnitLayout(ctx, sim.TenantID, sim.UnitID)
		if err != nil {
			return models.RoomLayout{}, fmt.Errorf("failed to load layout: %w", err)
		}
		return layout, nil
	}

	layout, err := repository.LoadLayoutFile(sim.LayoutFile)
	if err != nil {
		return models.RoomLayout{}, fmt.Errorf("failed to load layout: %w", err)
	}
	s.logger.Info("Loaded room layout from file",
		zap.String("path", sim.LayoutFile),
		zap.Int("objects", len(layout.Objects)),
	)
	return layout, nil
}

// resolveDevice 优先使用设备表中与序列号对应的设备，找不到时使用配置值
func (s *SimulatorService) resolveDevice(ctx context.Context) publisher.DeviceIdentity {
	sim := s.config.Simulator
	device := publisher.DeviceIdentity{
		DeviceID:     sim.DeviceID,
		TenantID:     sim.TenantID,
		SerialNumber: sim.SerialNumber,
		UID:          sim.UID,
	}
	if s.db == nil || sim.SerialNumber == "" {
		return device
	}

	record, err := repository.NewDeviceRepository(s.db, s.logger).GetDeviceBySerialNumber(ctx, sim.SerialNumber)
	if err != nil {
		s.logger.Warn("Simulated device not registered, using configured identity",
			zap.String("serial_number", sim.SerialNumber),
			zap.Error(err),
		)
		return device
	}

	device.DeviceID = record.DeviceID
	device.TenantID = record.TenantID
	if record.UID.Valid {
		device.UID = record.UID.String
	}
	return device
}

// loadPlayback 加载回放数据，失败时回退到随机生成
func (s *SimulatorService) loadPlayback(ctx context.Context) []playback.Record {
	source := s.config.Simulator.PlaybackSource
	if source == "" {
		return nil
	}

	records, err := playback.NewLoader(s.logger).Load(ctx, source)
	if err != nil {
		s.logger.Warn("Failed to load playback feed, falling back to generated data",
			zap.String("source", source),
			zap.Error(err),
		)
		return nil
	}
	return records
}

// Device 模拟设备标识
func (s *SimulatorService) Device() publisher.DeviceIdentity {
	return s.device
}

// Engine 模拟引擎
func (s *SimulatorService) Engine() *simulator.Engine {
	return s.engine
}

// Stats 已发布数据计数
func (s *SimulatorService) Stats() Stats {
	return Stats{
		TrackFrames: s.trackFrames.Load(),
		VitalFrames: s.vitalFrames.Load(),
		Alarms:      s.alarms.Load(),
		SinkErrors:  s.sinkErrors.Load(),
	}
}

// Start 启动服务
func (s *SimulatorService) Start(ctx context.Context) error {
	s.logger.Info("Starting radar simulator",
		zap.String("device_id", s.device.DeviceID),
		zap.String("serial_number", s.device.SerialNumber),
		zap.Bool("playback", s.engine.Playback()),
		zap.Bool("redis_stream", s.stream != nil),
		zap.Bool("mqtt", s.mqtt != nil),
		zap.Bool("card_cache", s.cardCache != nil),
	)

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.engine.Start(s.handleTrack, s.handleVital)

	s.logger.Info("Radar simulator started successfully")
	return nil
}

// Stop 停止服务
func (s *SimulatorService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping radar simulator")

	if s.engine != nil {
		s.engine.Stop()
	}
	s.clearVital()
	if s.cancel != nil {
		s.cancel()
	}

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if s.redis != nil {
		rediscommon.Close(s.redis)
	}
	if s.db != nil {
		database.Close(s.db)
	}

	stats := s.Stats()
	s.logger.Info("Radar simulator stopped",
		zap.Int64("track_frames", stats.TrackFrames),
		zap.Int64("vital_frames", stats.VitalFrames),
		zap.Int64("alarms", stats.Alarms),
		zap.Int64("sink_errors", stats.SinkErrors),
	)
	return nil
}

func (s *SimulatorService) handleTrack(samples []models.PersonSample) {
	ctx := s.sinkContext()
	for i := range samples {
		s.publishFrame(ctx, publisher.TrackFrame(samples[i]))
		s.trackFrames.Add(1)
	}

	// 生命体征只在卧姿时有效
	if len(samples) == 0 || samples[0].Posture != models.PostureLying {
		s.clearVital()
	}

	if s.cardCache == nil {
		return
	}
	var sample *models.PersonSample
	if len(samples) > 0 {
		sample = &samples[0]
	}
	if err := s.cardCache.UpdateRealtime(ctx, sample, s.currentVital(), time.Now()); err != nil {
		s.sinkError("card realtime", err)
	}
}

func (s *SimulatorService) handleVital(v models.VitalSample) {
	s.mu.Lock()
	s.lastVital = &v
	s.mu.Unlock()

	s.publishFrame(s.sinkContext(), publisher.VitalFrame(s.personID, v))
	s.vitalFrames.Add(1)
}

func (s *SimulatorService) handleAlarm(notice alarm.Notice) {
	s.alarms.Add(1)

	event, err := s.alarmBuilder.BuildAlarmEvent(notice, map[string]interface{}{
		"card_id":       s.config.Simulator.CardID,
		"serial_number": s.device.SerialNumber,
		"simulated":     true,
	})
	if err != nil {
		s.sinkError("alarm event", err)
		return
	}

	s.logger.Info("Alarm event built",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("alarm_level", event.AlarmLevel),
	)

	if s.cardCache == nil {
		return
	}
	if err := s.cardCache.AppendAlarm(s.sinkContext(), event); err != nil {
		s.sinkError("card alarms", err)
	}
}

func (s *SimulatorService) publishFrame(ctx context.Context, frame map[string]interface{}) {
	if s.stream != nil {
		if _, err := s.stream.Publish(ctx, frame); err != nil {
			s.sinkError("redis stream", err)
		}
	}
	if s.mqtt != nil {
		if err := s.mqtt.Publish(frame); err != nil {
			s.sinkError("mqtt", err)
		}
	}
}

func (s *SimulatorService) clearVital() {
	s.mu.Lock()
	s.lastVital = nil
	s.mu.Unlock()
}

func (s *SimulatorService) currentVital() *models.VitalSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVital
}

func (s *SimulatorService) sinkContext() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

func (s *SimulatorService) sinkError(sink string, err error) {
	s.sinkErrors.Add(1)
	s.logger.Error("Failed to publish simulator output",
		zap.String("sink", sink),
		zap.Error(err),
	)
}
