package models

import (
	"errors"
	"fmt"
)

var (
	// ErrRadarNotFound 布局中没有雷达对象
	ErrRadarNotFound = errors.New("radar not found in room layout")
	// ErrMultipleRadars 布局中存在多个雷达对象
	ErrMultipleRadars = errors.New("room layout contains more than one radar")
)

// ObjectType 房间物体类型
type ObjectType string

const (
	ObjectRadar        ObjectType = "Radar"
	ObjectBed          ObjectType = "Bed"
	ObjectMonitoredBed ObjectType = "MonitoredBed"
	ObjectDoor         ObjectType = "Door"
	ObjectObstacle     ObjectType = "Obstacle"
	ObjectOther        ObjectType = "Other"
)

// IsBed 是否为床（普通床或监护床）
func (t ObjectType) IsBed() bool {
	return t == ObjectBed || t == ObjectMonitoredBed
}

// IsForbidden 是否为人员不可到达的区域
func (t ObjectType) IsForbidden() bool {
	return t == ObjectObstacle || t == ObjectDoor
}

// RadarMode 雷达安装方式
type RadarMode string

const (
	ModeCeiling RadarMode = "ceiling"
	ModeWall    RadarMode = "wall"
)

// Point 画布坐标系中的点
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RadarPoint 雷达坐标系中的点
// H 向雷达左侧为正，V 远离雷达为正（吸顶向下，壁挂向前）
type RadarPoint struct {
	H float64 `json:"h"`
	V float64 `json:"v"`
}

// Boundary 雷达探测边界
type Boundary struct {
	LeftH  float64 `json:"leftH"`
	RightH float64 `json:"rightH"`
	FrontV float64 `json:"frontV"`
	RearV  float64 `json:"rearV"`
}

// ModeConfig 单一安装方式下的雷达配置
type ModeConfig struct {
	Height   float64   `json:"height,omitempty"`
	Boundary *Boundary `json:"boundary,omitempty"`
}

// DefaultBoundary 返回安装方式的出厂边界
func DefaultBoundary(mode RadarMode) Boundary {
	if mode == ModeWall {
		return Boundary{LeftH: 300, RightH: 300, FrontV: 400, RearV: 0}
	}
	return Boundary{LeftH: 300, RightH: 300, FrontV: 200, RearV: 200}
}

// RoomObject 房间物体（会话期间不可变）
type RoomObject struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	Type       ObjectType  `json:"typeName"`
	Position   Point       `json:"position"`
	Rotation   float64     `json:"rotation"`
	Width      float64     `json:"width"`
	Length     float64     `json:"length"`
	Mode       RadarMode   `json:"mode,omitempty"`
	Boundary   *Boundary   `json:"boundary,omitempty"`
	Ceiling    *ModeConfig `json:"ceiling,omitempty"`
	Wall       *ModeConfig `json:"wall,omitempty"`
	BorderOnly bool        `json:"borderOnly,omitempty"`
}

// RadarMode 返回雷达的安装方式，未设置时为吸顶
func (o RoomObject) RadarMode() RadarMode {
	if o.Mode == ModeWall {
		return ModeWall
	}
	return ModeCeiling
}

// ActiveBoundary 返回当前安装方式下生效的边界
func (o RoomObject) ActiveBoundary() Boundary {
	if o.Boundary != nil {
		return *o.Boundary
	}
	mode := o.RadarMode()
	modeCfg := o.Ceiling
	if mode == ModeWall {
		modeCfg = o.Wall
	}
	if modeCfg != nil && modeCfg.Boundary != nil {
		return *modeCfg.Boundary
	}
	return DefaultBoundary(mode)
}

// RoomLayout 房间布局
type RoomLayout struct {
	Objects []RoomObject `json:"objects"`
}

// Radar 返回布局中唯一的雷达
func (l RoomLayout) Radar() (RoomObject, error) {
	var (
		radar RoomObject
		found int
	)
	for _, obj := range l.Objects {
		if obj.Type == ObjectRadar {
			radar = obj
			found++
		}
	}
	switch {
	case found == 0:
		return RoomObject{}, ErrRadarNotFound
	case found > 1:
		return RoomObject{}, fmt.Errorf("%w: found %d", ErrMultipleRadars, found)
	}
	return radar, nil
}
