package models

import "strconv"

// Posture 人员姿态编码（0-11）
type Posture int

const (
	PostureInit             Posture = 0  // 初始化
	PostureWalking          Posture = 1  // 行走
	PostureFallSuspect      Posture = 2  // 疑似跌倒
	PostureSitting          Posture = 3  // 蹲坐
	PostureStanding         Posture = 4  // 站立
	PostureFallConfirm      Posture = 5  // 跌倒确认
	PostureLying            Posture = 6  // 卧
	PostureSitGroundSuspect Posture = 7  // 疑似坐地
	PostureSitGroundConfirm Posture = 8  // 确认坐地
	PostureSitUpBed         Posture = 9  // 普通床上坐起
	PostureSitUpBedSuspect  Posture = 10 // 疑似床上坐起
	PostureSitUpBedConfirm  Posture = 11 // 确认床上坐起
)

var postureLabels = map[Posture]string{
	PostureInit:             "Init",
	PostureWalking:          "Walking",
	PostureFallSuspect:      "FallSuspect",
	PostureSitting:          "Sitting",
	PostureStanding:         "Standing",
	PostureFallConfirm:      "FallConfirm",
	PostureLying:            "Lying",
	PostureSitGroundSuspect: "SitGroundSuspect",
	PostureSitGroundConfirm: "SitGroundConfirm",
	PostureSitUpBed:         "SitUpBed",
	PostureSitUpBedSuspect:  "SitUpBedSuspect",
	PostureSitUpBedConfirm:  "SitUpBedConfirm",
}

func (p Posture) String() string {
	if label, ok := postureLabels[p]; ok {
		return label
	}
	return "Posture(" + strconv.Itoa(int(p)) + ")"
}

// Valid 编码是否在 0-11 范围内
func (p Posture) Valid() bool {
	_, ok := postureLabels[p]
	return ok
}

// IsBedPosture 床上姿态
func (p Posture) IsBedPosture() bool {
	switch p {
	case PostureLying, PostureSitUpBed, PostureSitUpBedSuspect, PostureSitUpBedConfirm:
		return true
	}
	return false
}

// IsFloorPosture 地面姿态
func (p Posture) IsFloorPosture() bool {
	switch p {
	case PostureWalking, PostureStanding, PostureSitting,
		PostureFallSuspect, PostureFallConfirm,
		PostureSitGroundSuspect, PostureSitGroundConfirm:
		return true
	}
	return false
}

// IsGroundConfirmed 跌倒确认或坐地确认
func (p Posture) IsGroundConfirmed() bool {
	return p == PostureFallConfirm || p == PostureSitGroundConfirm
}

// PersonEvent 人员事件
type PersonEvent int

const (
	EventNone      PersonEvent = 0 // 无事件
	EventEnterRoom PersonEvent = 1 // 进入房间
	EventLeaveRoom PersonEvent = 2 // 离开房间
	EventEnterArea PersonEvent = 3 // 进入区域
	EventLeaveArea PersonEvent = 4 // 离开区域
)

// Valid 事件编码是否在 0-4 范围内
func (e PersonEvent) Valid() bool {
	switch e {
	case EventNone, EventEnterRoom, EventLeaveRoom, EventEnterArea, EventLeaveArea:
		return true
	}
	return false
}
