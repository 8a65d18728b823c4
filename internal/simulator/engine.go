package simulator

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"wisefido-radar-sim/internal/alarm"
	"wisefido-radar-sim/internal/geometry"
	"wisefido-radar-sim/internal/models"
	"wisefido-radar-sim/internal/playback"

	"go.uber.org/zap"
)

// TrackHandler 轨迹回调，每个 track tick 调用一次；没有合法位置时传入空切片
type TrackHandler func(samples []models.PersonSample)

// VitalHandler 生命体征回调，只在存在当前生命体征时调用
type VitalHandler func(sample models.VitalSample)

// AlarmHandler 报警激活回调
type AlarmHandler func(notice alarm.Notice)

// ConfigError 引擎构造失败
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("simulator config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config 引擎配置
type Config struct {
	TrackInterval time.Duration
	VitalInterval time.Duration
	PersonID      int

	Sampler SamplerConfig
	Posture PostureConfig
	Vital   VitalConfig
	Alarm   alarm.EvaluatorConfig
}

// DefaultConfig 默认引擎配置：1s 轨迹，2s 生命体征
func DefaultConfig() Config {
	return Config{
		TrackInterval: time.Second,
		VitalInterval: 2 * time.Second,
		PersonID:      1,
		Sampler:       DefaultSamplerConfig(),
		Posture:       DefaultPostureConfig(),
		Vital:         DefaultVitalConfig(),
		Alarm:         alarm.DefaultEvaluatorConfig(),
	}
}

func (c Config) validate() error {
	switch {
	case c.TrackInterval <= 0:
		return errors.New("track interval must be positive")
	case c.VitalInterval <= 0:
		return errors.New("vital interval must be positive")
	case c.Sampler.BedProbability < 0 || c.Sampler.BedProbability > 1:
		return fmt.Errorf("bed probability %v out of range", c.Sampler.BedProbability)
	}
	if err := c.Posture.validate(); err != nil {
		return err
	}
	return c.Vital.validate()
}

// Option 引擎可选项
type Option func(*Engine)

// WithScheduler 使用指定调度器，测试中传入 ManualScheduler
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithRand 使用指定随机源
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rnd = r }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithAlarmHandler 注册报警回调
func WithAlarmHandler(h AlarmHandler) Option {
	return func(e *Engine) { e.onAlarm = h }
}

// WithPlayback 使用回放记录替代随机生成
func WithPlayback(records []playback.Record) Option {
	return func(e *Engine) { e.records = records }
}

// Engine 单个雷达的模拟引擎
// 所有状态只属于本实例，多个雷达需要各自创建引擎
type Engine struct {
	cfg        Config
	classifier *geometry.Classifier
	pose       geometry.Pose
	sched      Scheduler
	rnd        Rand
	logger     *zap.Logger
	onAlarm    AlarmHandler
	records    []playback.Record

	postures *PostureMachine
	vitals   *VitalGenerator
	alarms   *alarm.Evaluator

	// tick 内状态
	vital     *models.VitalSample
	playIndex int
	present   bool // 本轮已输出过人员
	lastArea  int

	// 生命周期
	mu      sync.Mutex
	running bool
	cancels []CancelFunc

	playMu     sync.Mutex
	playing    bool
	playCancel CancelFunc
}

// NewEngine 创建模拟引擎，布局中必须有且只有一个雷达
func NewEngine(layout models.RoomLayout, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	classifier, err := geometry.NewClassifier(layout)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	e := &Engine{
		cfg:        cfg,
		classifier: classifier,
		pose:       classifier.Pose(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewTickerScheduler()
	}
	if e.rnd == nil {
		e.rnd = NewRand(0)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	sampler := NewPositionSampler(classifier, cfg.Sampler, e.rnd)
	e.postures = NewPostureMachine(classifier, sampler, cfg.Posture, e.rnd)
	e.vitals = NewVitalGenerator(cfg.Vital, e.rnd)
	e.alarms = alarm.NewEvaluator(cfg.Alarm)

	if e.Playback() {
		e.checkPlaybackBoundary()
	}
	return e, nil
}

// checkPlaybackBoundary 统计落在雷达边界外的回放点，仍照常回放
func (e *Engine) checkPlaybackBoundary() {
	outside := 0
	for _, rec := range e.records {
		if !e.classifier.InBoundary(rec.RadarPoint()) {
			outside++
		}
	}
	if outside > 0 {
		e.logger.Warn("Playback records outside radar boundary",
			zap.Int("outside", outside),
			zap.Int("records", len(e.records)),
		)
	}
}

// Playback 是否处于回放模式
func (e *Engine) Playback() bool {
	return len(e.records) > 0
}

// Running 引擎是否在运行
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start 开始产生数据，已在运行时先停止上一轮
// 回调在 tick 中同步调用，不能在回调中调用 Start/Stop
func (e *Engine) Start(onTrack TrackHandler, onVital VitalHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	if e.Playback() {
		e.playMu.Lock()
		e.playing = true
		e.playMu.Unlock()
		e.schedulePlayback(0, onTrack)
	} else {
		e.cancels = append(e.cancels, e.sched.Every(e.cfg.TrackInterval, func() {
			e.trackTick(onTrack)
		}))
	}
	e.cancels = append(e.cancels, e.sched.Every(e.cfg.VitalInterval, func() {
		e.vitalTick(onVital)
	}))
	e.running = true

	e.logger.Info("Simulator engine started",
		zap.Bool("playback", e.Playback()),
		zap.Duration("track_interval", e.cfg.TrackInterval),
		zap.Duration("vital_interval", e.cfg.VitalInterval),
	)
}

// Stop 停止所有 tick 并清空状态，可重复调用
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasRunning := e.running
	e.stopLocked()
	if wasRunning {
		e.logger.Info("Simulator engine stopped")
	}
}

func (e *Engine) stopLocked() {
	e.stopPlayback()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = nil
	e.running = false

	e.postures.Reset()
	e.vitals.Reset()
	e.alarms.Reset()
	e.vital = nil
	e.playIndex = 0
	e.present = false
	e.lastArea = 0
}

func (e *Engine) trackTick(onTrack TrackHandler) {
	defer e.recoverTick("track")

	now := e.sched.Now()
	samples := e.generate(now)
	if onTrack != nil {
		onTrack(samples)
	}
}

// generate 姿态/位置更新 -> 生命体征 -> 报警评估
func (e *Engine) generate(now time.Time) []models.PersonSample {
	state, remaining, transitioned, ok := e.postures.Tick(now)
	if !ok {
		e.vitals.Reset()
		e.vital = nil
		e.evaluate(now, models.PostureInit)
		return []models.PersonSample{}
	}
	if transitioned {
		e.logger.Debug("Posture transition",
			zap.String("posture", state.Posture.String()),
			zap.Stringer("area", state.Area),
			zap.Duration("dwell", state.Dwell),
			zap.Float64("h", state.Position.H),
			zap.Float64("v", state.Position.V),
		)
	}

	e.vital = e.vitals.Generate(now, state.Posture)
	e.evaluate(now, state.Posture)

	areaID := e.classifier.AreaID(state.Position)
	return []models.PersonSample{{
		ID:               e.cfg.PersonID,
		Position:         geometry.ToRenderFrame(state.Position, e.pose),
		RadarPosition:    state.Position,
		Z:                math.Floor(uniform(e.rnd, 50, 250)),
		Posture:          state.Posture,
		RemainingSeconds: remaining,
		Event:            e.personEvent(areaID),
		AreaID:           areaID,
	}}
}

// personEvent 本轮首次输出为进入房间，之后床区域编号变化时为进入/离开区域
func (e *Engine) personEvent(areaID int) models.PersonEvent {
	prev := e.lastArea
	e.lastArea = areaID
	switch {
	case !e.present:
		e.present = true
		return models.EventEnterRoom
	case areaID == prev:
		return models.EventNone
	case areaID == 0:
		return models.EventLeaveArea
	default:
		return models.EventEnterArea
	}
}

func (e *Engine) evaluate(now time.Time, posture models.Posture) {
	decision := e.alarms.Evaluate(now, posture, e.vital)
	for _, notice := range decision.Notices {
		e.logger.Info("Alarm activated",
			zap.String("level", string(notice.Level)),
			zap.String("reason", string(notice.Reason)),
			zap.String("posture", notice.Posture.String()),
		)
		if e.onAlarm != nil {
			e.onAlarm(notice)
		}
	}
	if decision.DangerCleared {
		e.logger.Info("Danger alarm cleared")
	}
}

func (e *Engine) vitalTick(onVital VitalHandler) {
	defer e.recoverTick("vital")

	if e.vital == nil || onVital == nil {
		return
	}
	onVital(*e.vital)
}

// playbackTick 输出当前记录，再按时间戳差安排下一条，末尾循环
func (e *Engine) playbackTick(onTrack TrackHandler) {
	cur := e.records[e.playIndex]
	next := (e.playIndex + 1) % len(e.records)

	func() {
		defer e.recoverTick("playback")

		now := e.sched.Now()
		e.vital = nil
		e.evaluate(now, cur.Posture)

		rp := cur.RadarPoint()
		sample := models.PersonSample{
			ID:               cur.ID,
			Position:         geometry.ToRenderFrame(rp, e.pose),
			RadarPosition:    rp,
			Z:                cur.Z,
			Posture:          cur.Posture,
			RemainingSeconds: cur.RemainingSeconds,
			Event:            cur.Event,
			AreaID:           cur.AreaID,
		}
		if onTrack != nil {
			onTrack([]models.PersonSample{sample})
		}
	}()

	e.playIndex = next
	delay := playback.DefaultInterval
	if next != 0 {
		delay = playback.Interval(cur, e.records[next])
	}
	e.schedulePlayback(delay, onTrack)
}

// schedulePlayback 安排下一条回放记录；回调内调用时不能持有 e.mu
func (e *Engine) schedulePlayback(delay time.Duration, onTrack TrackHandler) {
	e.playMu.Lock()
	defer e.playMu.Unlock()
	if !e.playing {
		return
	}
	e.playCancel = e.sched.After(delay, func() {
		e.playbackTick(onTrack)
	})
}

// stopPlayback 取消待执行的回放记录，正在执行的回放不会再安排下一条
func (e *Engine) stopPlayback() {
	e.playMu.Lock()
	e.playing = false
	cancel := e.playCancel
	e.playCancel = nil
	e.playMu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (e *Engine) recoverTick(name string) {
	if r := recover(); r != nil {
		e.logger.Error("Simulator tick panicked",
			zap.String("tick", name),
			zap.Any("panic", r),
		)
	}
}
