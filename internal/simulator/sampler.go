package simulator

import (
	"errors"

	"wisefido-radar-sim/internal/geometry"
	"wisefido-radar-sim/internal/models"
)

// ErrSamplingExhausted 在尝试次数内没有找到合法位置
var ErrSamplingExhausted = errors.New("position sampling exhausted")

// SamplerConfig 位置采样配置
type SamplerConfig struct {
	BedProbability float64 // 优先落在床上的概率
	BedMargin      float64 // 床边界内缩
	BoundaryMargin float64 // 雷达边界内缩
	MaxAttempts    int
}

// DefaultSamplerConfig 默认采样配置
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		BedProbability: 0.6,
		BedMargin:      10,
		BoundaryMargin: 20,
		MaxAttempts:    50,
	}
}

// PositionSampler 在雷达坐标系中生成合法位置
type PositionSampler struct {
	classifier *geometry.Classifier
	cfg        SamplerConfig
	rnd        Rand
}

// NewPositionSampler 创建位置采样器
func NewPositionSampler(classifier *geometry.Classifier, cfg SamplerConfig, rnd Rand) *PositionSampler {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultSamplerConfig().MaxAttempts
	}
	return &PositionSampler{
		classifier: classifier,
		cfg:        cfg,
		rnd:        rnd,
	}
}

// Sample 生成一个位置：按概率优先落在床上，否则在雷达边界内均匀分布；
// 落入禁区或（目标为床时）未落在床上的候选点会被丢弃重试
func (s *PositionSampler) Sample() (models.RadarPoint, error) {
	beds := s.classifier.Beds()
	targetBed := coin(s.rnd, s.cfg.BedProbability) && len(beds) > 0

	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		var candidate models.RadarPoint
		if targetBed {
			candidate = s.sampleInBed(beds)
		} else {
			candidate = s.sampleInBoundary()
		}

		if s.classifier.IsInForbiddenArea(candidate) {
			continue
		}
		if targetBed && !s.classifier.IsInBedArea(candidate) {
			continue
		}
		return candidate, nil
	}

	return models.RadarPoint{}, ErrSamplingExhausted
}

func (s *PositionSampler) sampleInBed(beds []geometry.Zone) models.RadarPoint {
	bed := beds[0]
	if len(beds) > 1 {
		idx := int(s.rnd.Float64() * float64(len(beds)))
		if idx >= len(beds) {
			idx = len(beds) - 1
		}
		bed = beds[idx]
	}

	halfW := bed.Width/2 - s.cfg.BedMargin
	halfL := bed.Length/2 - s.cfg.BedMargin
	localH := uniform(s.rnd, -halfW, halfW)
	localV := uniform(s.rnd, -halfL, halfL)
	return bed.FromLocal(localH, localV)
}

func (s *PositionSampler) sampleInBoundary() models.RadarPoint {
	v := geometry.BoundaryVertices(s.classifier.Radar())
	m := s.cfg.BoundaryMargin

	// v1 为 (minH, minV)，v3 为 (maxH, maxV)；壁挂模式下 minV 为 0
	h := uniform(s.rnd, v[0].H+m, v[2].H-m)
	vv := uniform(s.rnd, v[0].V+m, v[2].V-m)
	return models.RadarPoint{H: h, V: vv}
}
