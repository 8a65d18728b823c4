package alarm

import (
	"time"

	"wisefido-radar-sim/internal/models"
)

// Level 报警级别
type Level string

const (
	LevelDanger  Level = "danger"
	LevelWarning Level = "warning"
)

// Reason 报警原因
type Reason string

const (
	ReasonFall         Reason = "Fall"         // 跌倒/坐地确认持续
	ReasonVitalDanger  Reason = "VitalDanger"  // 生命体征危险
	ReasonVitalWarning Reason = "VitalWarning" // 生命体征警告
)

// EvaluatorConfig 报警评估配置
type EvaluatorConfig struct {
	FallHold        time.Duration // 跌倒/坐地确认持续多久视为危险
	DangerCooldown  time.Duration
	WarningCooldown time.Duration
	WarningPulse    time.Duration // warning 报警响铃时长
}

// DefaultEvaluatorConfig 默认报警评估配置
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		FallHold:        5 * time.Second,
		DangerCooldown:  15 * time.Second,
		WarningCooldown: 15 * time.Second,
		WarningPulse:    time.Second,
	}
}

// State 报警状态，只由 Evaluator 修改
type State struct {
	DangerCooldownUntil  time.Time
	WarningCooldownUntil time.Time
	DangerActive         bool
	WarningActive        bool
	WarningUntil         time.Time

	FallSince  time.Time
	FallTiming bool
}

// Notice 一次报警激活
type Notice struct {
	Level   Level
	Reason  Reason
	At      time.Time
	Posture models.Posture
	Vital   *models.VitalSample
	// FallDuration 跌倒/坐地确认已持续的时长，非跌倒原因时为 0
	FallDuration time.Duration
}

// Decision 单次评估结果
type Decision struct {
	DangerActive     bool
	WarningActive    bool
	DangerActivated  bool
	WarningActivated bool
	DangerCleared    bool
	WarningCancelled bool
	Notices          []Notice
}

// Evaluator 两级报警评估器
// danger 持续评估，激活后进入冷却；warning 为固定时长的脉冲，danger 激活时取消 warning
type Evaluator struct {
	cfg   EvaluatorConfig
	state State
}

// NewEvaluator 创建报警评估器
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// State 当前状态快照
func (e *Evaluator) State() State {
	return e.state
}

// Reset 清空所有计时与冷却
func (e *Evaluator) Reset() {
	e.state = State{}
}

// Evaluate 根据当前姿态与生命体征评估一次报警
func (e *Evaluator) Evaluate(now time.Time, posture models.Posture, vital *models.VitalSample) Decision {
	var d Decision
	s := &e.state
	category := ClassifyVital(vital)

	var fallFor time.Duration
	if posture.IsGroundConfirmed() {
		if !s.FallTiming {
			s.FallTiming = true
			s.FallSince = now
		}
		fallFor = now.Sub(s.FallSince)
	} else {
		s.FallTiming = false
		s.FallSince = time.Time{}
	}
	fallMatured := s.FallTiming && fallFor >= e.cfg.FallHold

	if s.WarningActive && !now.Before(s.WarningUntil) {
		s.WarningActive = false
	}

	danger := fallMatured || category == models.VitalDanger
	switch {
	case danger && !now.Before(s.DangerCooldownUntil):
		s.DangerActive = true
		s.DangerCooldownUntil = now.Add(e.cfg.DangerCooldown)
		if s.WarningActive {
			s.WarningActive = false
			d.WarningCancelled = true
		}
		d.DangerActivated = true

		notice := Notice{Level: LevelDanger, Reason: ReasonVitalDanger, At: now, Posture: posture, Vital: vital}
		if fallMatured {
			notice.Reason = ReasonFall
			notice.FallDuration = fallFor
		}
		d.Notices = append(d.Notices, notice)
	case !danger && s.DangerActive:
		s.DangerActive = false
		d.DangerCleared = true
	}

	if !s.DangerActive &&
		category == models.VitalWarning &&
		!now.Before(s.DangerCooldownUntil) &&
		!now.Before(s.WarningCooldownUntil) &&
		!s.WarningActive {
		s.WarningActive = true
		s.WarningUntil = now.Add(e.cfg.WarningPulse)
		s.WarningCooldownUntil = now.Add(e.cfg.WarningCooldown)
		d.WarningActivated = true
		d.Notices = append(d.Notices, Notice{
			Level:   LevelWarning,
			Reason:  ReasonVitalWarning,
			At:      now,
			Posture: posture,
			Vital:   vital,
		})
	}

	d.DangerActive = s.DangerActive
	d.WarningActive = s.WarningActive
	return d
}
