package geometry

import (
	"math"

	"wisefido-radar-sim/internal/models"
)

// Area 位置所在区域
type Area int

const (
	AreaFloor Area = iota
	AreaBed
	AreaForbidden
)

func (a Area) String() string {
	switch a {
	case AreaBed:
		return "bed"
	case AreaForbidden:
		return "forbidden"
	default:
		return "floor"
	}
}

// Zone 雷达坐标系下的矩形区域（可旋转）
type Zone struct {
	ID       string
	Type     models.ObjectType
	Center   models.RadarPoint
	Rotation float64 // 雷达坐标系中的旋转角，[0, 360)，H 轴翻转后方向与画布相反
	Width    float64 // 沿局部 H 方向
	Length   float64 // 沿局部 V 方向
}

// Contains 点是否在区域内（含边界）
func (z Zone) Contains(p models.RadarPoint) bool {
	dh := p.H - z.Center.H
	dv := p.V - z.Center.V
	sin, cos := math.Sincos(radians(-z.Rotation))
	localH := dh*cos - dv*sin
	localV := dh*sin + dv*cos
	return math.Abs(localH) <= z.Width/2 && math.Abs(localV) <= z.Length/2
}

// FromLocal 区域局部坐标 -> 雷达坐标
func (z Zone) FromLocal(localH, localV float64) models.RadarPoint {
	sin, cos := math.Sincos(radians(z.Rotation))
	return models.RadarPoint{
		H: z.Center.H + localH*cos - localV*sin,
		V: z.Center.V + localH*sin + localV*cos,
	}
}

// Classifier 区域判断器
// 构造时把所有物体一次性转换到雷达坐标系，会话期间物体不再变化
type Classifier struct {
	radar     models.RoomObject
	pose      Pose
	beds      []Zone
	forbidden []Zone
}

// NewClassifier 根据房间布局创建区域判断器
func NewClassifier(layout models.RoomLayout) (*Classifier, error) {
	radar, err := layout.Radar()
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		radar: radar,
		pose:  PoseOf(radar),
	}

	for _, obj := range layout.Objects {
		if obj.Type == models.ObjectRadar {
			continue
		}
		// 画布中顺时针的相对转角在翻转 H 轴后变为反向
		zone := Zone{
			ID:       obj.ID,
			Type:     obj.Type,
			Center:   ToRadarFrame(obj.Position, c.pose),
			Rotation: normalizeDegrees(radar.Rotation - obj.Rotation),
			Width:    obj.Width,
			Length:   obj.Length,
		}
		switch {
		case obj.Type.IsBed():
			c.beds = append(c.beds, zone)
		case obj.Type.IsForbidden():
			c.forbidden = append(c.forbidden, zone)
		}
	}

	return c, nil
}

// Radar 布局中的雷达
func (c *Classifier) Radar() models.RoomObject {
	return c.radar
}

// Pose 雷达位姿
func (c *Classifier) Pose() Pose {
	return c.pose
}

// Beds 雷达坐标系下的床区域
func (c *Classifier) Beds() []Zone {
	return c.beds
}

// IsInBedArea 点是否在任意床区域内
func (c *Classifier) IsInBedArea(p models.RadarPoint) bool {
	return c.AreaID(p) > 0
}

// IsInForbiddenArea 点是否在障碍物或门区域内
func (c *Classifier) IsInForbiddenArea(p models.RadarPoint) bool {
	for _, z := range c.forbidden {
		if z.Contains(p) {
			return true
		}
	}
	return false
}

// InBoundary 点是否在雷达边界内
func (c *Classifier) InBoundary(p models.RadarPoint) bool {
	return PointInBoundary(p, c.radar)
}

// AreaID 包含该点的床区域编号（从 1 开始），0 表示不在床上
func (c *Classifier) AreaID(p models.RadarPoint) int {
	for i, z := range c.beds {
		if z.Contains(p) {
			return i + 1
		}
	}
	return 0
}

// AreaOf 点所在区域，床优先于禁区
func (c *Classifier) AreaOf(p models.RadarPoint) Area {
	if c.IsInBedArea(p) {
		return AreaBed
	}
	if c.IsInForbiddenArea(p) {
		return AreaForbidden
	}
	return AreaFloor
}
