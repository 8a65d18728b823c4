package simulator

import (
	"fmt"
	"math"
	"time"

	"wisefido-radar-sim/internal/models"
)

// VitalConfig 生命体征生成配置
type VitalConfig struct {
	DangerProbability    float64
	WarningProbability   float64
	NormalProbability    float64
	UndefinedProbability float64

	DangerHold      time.Duration // danger 最短保持时长
	WarningHold     time.Duration // warning 最短保持时长
	SmoothingFactor float64       // 指数平滑步长
}

// DefaultVitalConfig 默认生命体征配置
func DefaultVitalConfig() VitalConfig {
	return VitalConfig{
		DangerProbability:    0.3,
		WarningProbability:   0.2,
		NormalProbability:    0.4,
		UndefinedProbability: 0.1,
		DangerHold:           10 * time.Second,
		WarningHold:          5 * time.Second,
		SmoothingFactor:      0.3,
	}
}

func (c VitalConfig) validate() error {
	probs := []struct {
		name string
		p    float64
	}{
		{"danger", c.DangerProbability},
		{"warning", c.WarningProbability},
		{"normal", c.NormalProbability},
		{"undefined", c.UndefinedProbability},
	}
	var total float64
	for _, pr := range probs {
		if pr.p < 0 {
			return fmt.Errorf("%s vital probability must not be negative, got %v", pr.name, pr.p)
		}
		total += pr.p
	}
	if total <= 0 {
		return fmt.Errorf("vital probabilities must not all be zero")
	}
	if c.SmoothingFactor <= 0 || c.SmoothingFactor > 1 {
		return fmt.Errorf("smoothing factor %v out of range (0, 1]", c.SmoothingFactor)
	}
	return nil
}

func (c VitalConfig) hold(status models.VitalStatus) time.Duration {
	switch status {
	case models.VitalDanger:
		return c.DangerHold
	case models.VitalWarning:
		return c.WarningHold
	default:
		return 0
	}
}

// band 半开区间 [Min, Max)
type band struct {
	Min, Max float64
}

type vitalBands struct {
	heartRate []band
	breathing []band
}

// 每个状态的心率/呼吸取值区间，多个区间时抛硬币选择
var bandsByStatus = map[models.VitalStatus]vitalBands{
	models.VitalNormal: {
		heartRate: []band{{60, 95}},
		breathing: []band{{12, 20}},
	},
	models.VitalWarning: {
		heartRate: []band{{45, 59}, {96, 105}},
		breathing: []band{{8, 11}, {21, 26}},
	},
	models.VitalDanger: {
		heartRate: []band{{0, 45}, {105, 150}},
		breathing: []band{{0, 8}, {26, 40}},
	},
}

// VitalGenerator 生命体征生成器，仅在卧姿时产生数据
type VitalGenerator struct {
	cfg VitalConfig
	rnd Rand

	category    models.VitalStatus
	hasCategory bool
	enteredAt   time.Time
	last        *models.VitalSample
}

// NewVitalGenerator 创建生命体征生成器
func NewVitalGenerator(cfg VitalConfig, rnd Rand) *VitalGenerator {
	return &VitalGenerator{cfg: cfg, rnd: rnd}
}

// Category 当前生命体征状态
func (g *VitalGenerator) Category() models.VitalStatus {
	if !g.hasCategory {
		return models.VitalUndefined
	}
	return g.category
}

// Reset 清空状态与平滑记忆
func (g *VitalGenerator) Reset() {
	g.category = ""
	g.hasCategory = false
	g.enteredAt = time.Time{}
	g.last = nil
}

// NextCategory 返回本次的生命体征状态
// danger/warning 在最短保持时长内保持不变；只有状态变化时才记录进入时间
func (g *VitalGenerator) NextCategory(now time.Time) models.VitalStatus {
	if g.hasCategory && now.Sub(g.enteredAt) < g.cfg.hold(g.category) {
		return g.category
	}

	next := WeightedChoice(g.rnd, []Weighted[models.VitalStatus]{
		{Value: models.VitalDanger, Weight: g.cfg.DangerProbability},
		{Value: models.VitalWarning, Weight: g.cfg.WarningProbability},
		{Value: models.VitalNormal, Weight: g.cfg.NormalProbability},
		{Value: models.VitalUndefined, Weight: g.cfg.UndefinedProbability},
	})

	if !g.hasCategory || next != g.category {
		g.category = next
		g.hasCategory = true
		g.enteredAt = now
	}
	return next
}

// Generate 根据姿态生成一次生命体征，非卧姿或 undefined 时返回 nil
func (g *VitalGenerator) Generate(now time.Time, posture models.Posture) *models.VitalSample {
	if posture != models.PostureLying {
		g.Reset()
		return nil
	}

	category := g.NextCategory(now)
	if category == models.VitalUndefined {
		return nil
	}

	raw := g.sample(category)
	smoothed := g.Smooth(raw)
	return &smoothed
}

func (g *VitalGenerator) sample(category models.VitalStatus) models.VitalSample {
	bands := bandsByStatus[category]
	return models.VitalSample{
		Type:          0,
		HeartRate:     g.draw(bands.heartRate),
		BreathingRate: g.draw(bands.breathing),
		SleepState:    models.SleepStateFor(category),
	}
}

func (g *VitalGenerator) draw(bands []band) int {
	b := bands[0]
	if len(bands) > 1 && !coin(g.rnd, 0.5) {
		b = bands[1]
	}
	return int(math.Floor(uniform(g.rnd, b.Min, b.Max)))
}

// Smooth 对原始采样做指数平滑：首个采样原样输出，
// 之后每个字段输出 floor(last + (raw - last) * factor) 并作为新的 last
func (g *VitalGenerator) Smooth(raw models.VitalSample) models.VitalSample {
	if g.last == nil {
		first := raw
		g.last = &first
		return first
	}

	smoothed := models.VitalSample{
		Type:          raw.Type,
		HeartRate:     g.step(g.last.HeartRate, raw.HeartRate),
		BreathingRate: g.step(g.last.BreathingRate, raw.BreathingRate),
		SleepState:    raw.SleepState,
	}
	g.last = &smoothed
	return smoothed
}

func (g *VitalGenerator) step(last, raw int) int {
	return int(math.Floor(float64(last) + float64(raw-last)*g.cfg.SmoothingFactor))
}
