// Package geometry 画布坐标系与雷达坐标系之间的变换，以及房间区域判断
//
// 画布坐标系：x 向右，y 向下，旋转角顺时针为正（单位：度）。
// 雷达坐标系：原点在雷达中心，H 向左为正，V 向下（吸顶）或向前（壁挂）为正。
package geometry

import (
	"math"

	"wisefido-radar-sim/internal/models"
)

// Pose 雷达在画布坐标系中的位置和朝向
type Pose struct {
	Position models.Point
	Rotation float64
}

// PoseOf 返回物体的位姿
func PoseOf(obj models.RoomObject) Pose {
	return Pose{Position: obj.Position, Rotation: obj.Rotation}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToRadarFrame 画布坐标 -> 雷达坐标
// 先平移到雷达原点，再旋转 -Rotation，最后翻转 H 轴（画布向右对应 -H）
func ToRadarFrame(p models.Point, pose Pose) models.RadarPoint {
	dx := p.X - pose.Position.X
	dy := p.Y - pose.Position.Y

	sin, cos := math.Sincos(radians(pose.Rotation))
	localX := dx*cos + dy*sin
	localY := -dx*sin + dy*cos

	return models.RadarPoint{H: -localX, V: localY}
}

// ToRenderFrame 雷达坐标 -> 画布坐标，ToRadarFrame 的逆变换
func ToRenderFrame(rp models.RadarPoint, pose Pose) models.Point {
	localX := -rp.H
	localY := rp.V

	sin, cos := math.Sincos(radians(pose.Rotation))
	dx := localX*cos - localY*sin
	dy := localX*sin + localY*cos

	return models.Point{X: pose.Position.X + dx, Y: pose.Position.Y + dy}
}

// PointInBoundary 判断雷达坐标点是否在雷达边界内
// 壁挂模式没有后方区域，V 从 0 开始
func PointInBoundary(p models.RadarPoint, radar models.RoomObject) bool {
	b := radar.ActiveBoundary()
	if p.H < -b.RightH || p.H > b.LeftH {
		return false
	}
	if radar.RadarMode() == models.ModeWall {
		return p.V >= 0 && p.V <= b.FrontV
	}
	return p.V >= -b.RearV && p.V <= b.FrontV
}

// BoundaryVertices 边界的四个顶点 v1..v4
// v1 (minH, minV)，v2 (maxH, minV)，v3 (maxH, maxV)，v4 (minH, maxV)
func BoundaryVertices(radar models.RoomObject) [4]models.RadarPoint {
	b := radar.ActiveBoundary()
	minV := -b.RearV
	if radar.RadarMode() == models.ModeWall {
		minV = 0
	}
	return [4]models.RadarPoint{
		{H: -b.RightH, V: minV},
		{H: b.LeftH, V: minV},
		{H: b.LeftH, V: b.FrontV},
		{H: -b.RightH, V: b.FrontV},
	}
}

// normalizeDegrees 把角度归一化到 [0, 360)
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
