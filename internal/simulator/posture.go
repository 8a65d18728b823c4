package simulator

import (
	"fmt"
	"math"
	"time"

	"wisefido-radar-sim/internal/geometry"
	"wisefido-radar-sim/internal/models"
)

// PostureConfig 姿态状态机配置
type PostureConfig struct {
	BedWeights   []Weighted[models.Posture]
	FloorWeights []Weighted[models.Posture]

	LyingDwell   time.Duration // 卧姿保持时长
	ConfirmDwell time.Duration // 跌倒确认/坐地确认保持时长
	DefaultDwell time.Duration
}

// DefaultPostureConfig 默认姿态权重与保持时长
func DefaultPostureConfig() PostureConfig {
	return PostureConfig{
		BedWeights: []Weighted[models.Posture]{
			{Value: models.PostureLying, Weight: 60},
			{Value: models.PostureSitUpBed, Weight: 15},
			{Value: models.PostureSitUpBedSuspect, Weight: 10},
			{Value: models.PostureSitUpBedConfirm, Weight: 15},
		},
		FloorWeights: []Weighted[models.Posture]{
			{Value: models.PostureWalking, Weight: 10},
			{Value: models.PostureStanding, Weight: 15},
			{Value: models.PostureSitGroundSuspect, Weight: 10},
			{Value: models.PostureSitGroundConfirm, Weight: 20},
			{Value: models.PostureFallSuspect, Weight: 10},
			{Value: models.PostureFallConfirm, Weight: 20},
			{Value: models.PostureSitting, Weight: 15},
		},
		LyingDwell:   30 * time.Second,
		ConfirmDwell: 15 * time.Second,
		DefaultDwell: 5 * time.Second,
	}
}

// validate 权重非负且总和为正，床上权重表只含床上姿态，地面权重表只含地面姿态
func (c PostureConfig) validate() error {
	if err := validateWeights("bed", c.BedWeights, models.Posture.IsBedPosture); err != nil {
		return err
	}
	return validateWeights("floor", c.FloorWeights, models.Posture.IsFloorPosture)
}

func validateWeights(table string, weights []Weighted[models.Posture], inPartition func(models.Posture) bool) error {
	if len(weights) == 0 {
		return fmt.Errorf("%s posture weights must not be empty", table)
	}
	var total float64
	for _, w := range weights {
		if w.Weight < 0 {
			return fmt.Errorf("%s posture %s has negative weight %v", table, w.Value, w.Weight)
		}
		if !inPartition(w.Value) {
			return fmt.Errorf("posture %s does not belong in the %s weight table", w.Value, table)
		}
		total += w.Weight
	}
	if total <= 0 {
		return fmt.Errorf("%s posture weights must not all be zero", table)
	}
	return nil
}

// DwellFor 姿态的保持时长
func (c PostureConfig) DwellFor(p models.Posture) time.Duration {
	switch {
	case p.IsGroundConfirmed():
		return c.ConfirmDwell
	case p == models.PostureLying:
		return c.LyingDwell
	default:
		return c.DefaultDwell
	}
}

// PostureState 姿态状态机内部状态
type PostureState struct {
	Posture     models.Posture
	Assigned    bool
	Position    models.RadarPoint
	Area        geometry.Area
	HasPosition bool
	EnteredAt   time.Time
	Dwell       time.Duration
}

// PostureMachine 姿态状态机
// 每个 tick 调用一次 Tick，到期或区域不匹配时重新采样位置并抽取新姿态
type PostureMachine struct {
	classifier *geometry.Classifier
	sampler    *PositionSampler
	cfg        PostureConfig
	rnd        Rand
	state      PostureState
}

// NewPostureMachine 创建姿态状态机
func NewPostureMachine(classifier *geometry.Classifier, sampler *PositionSampler, cfg PostureConfig, rnd Rand) *PostureMachine {
	return &PostureMachine{
		classifier: classifier,
		sampler:    sampler,
		cfg:        cfg,
		rnd:        rnd,
	}
}

// State 当前状态快照
func (m *PostureMachine) State() PostureState {
	return m.state
}

// Reset 清空状态，下一次 Tick 重新初始化
func (m *PostureMachine) Reset() {
	m.state = PostureState{}
}

// Tick 推进一次状态机
// 返回当前状态、剩余保持秒数、本次是否发生转移；
// ok 为 false 表示从未得到过合法位置，本次不应输出轨迹
func (m *PostureMachine) Tick(now time.Time) (state PostureState, remaining int, transitioned bool, ok bool) {
	if m.needsTransition(now) {
		if !m.transition(now) {
			return m.state, 0, false, false
		}
		transitioned = true
	}
	return m.state, m.remaining(now), transitioned, true
}

func (m *PostureMachine) needsTransition(now time.Time) bool {
	if !m.state.Assigned {
		return true
	}
	if now.Sub(m.state.EnteredAt) >= m.state.Dwell {
		return true
	}
	inBed := m.classifier.AreaOf(m.state.Position) == geometry.AreaBed
	return m.state.Posture.IsBedPosture() != inBed
}

func (m *PostureMachine) transition(now time.Time) bool {
	position, err := m.sampler.Sample()
	if err != nil {
		if !m.state.HasPosition {
			return false
		}
		position = m.state.Position
	}

	area := m.classifier.AreaOf(position)
	weights := m.cfg.FloorWeights
	if area == geometry.AreaBed {
		weights = m.cfg.BedWeights
	}
	posture := WeightedChoice(m.rnd, weights)

	m.state = PostureState{
		Posture:     posture,
		Assigned:    true,
		Position:    position,
		Area:        area,
		HasPosition: true,
		EnteredAt:   now,
		Dwell:       m.cfg.DwellFor(posture),
	}
	return true
}

func (m *PostureMachine) remaining(now time.Time) int {
	left := (m.state.Dwell - now.Sub(m.state.EnteredAt)).Seconds()
	if left <= 0 {
		return 0
	}
	return int(math.Floor(left))
}
