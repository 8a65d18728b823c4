package models

// PersonSample 单次轨迹采样，由模拟器每个 tick 生成
type PersonSample struct {
	ID               int         `json:"id"`
	Position         Point       `json:"position"`
	RadarPosition    RadarPoint  `json:"radarPosition"`
	Z                float64     `json:"z"`
	Posture          Posture     `json:"posture"`
	RemainingSeconds int         `json:"remainTime"`
	Event            PersonEvent `json:"event"`
	AreaID           int         `json:"areaId"`
}

// VitalSample 生命体征采样，仅在卧姿时存在
type VitalSample struct {
	Type          int `json:"type"` // 0: 实时呼吸心率
	BreathingRate int `json:"breathing"`
	HeartRate     int `json:"heartRate"`
	SleepState    int `json:"sleepState"`
}

// VitalStatus 生命体征状态
type VitalStatus string

const (
	VitalUndefined VitalStatus = "undefined"
	VitalNormal    VitalStatus = "normal"
	VitalWarning   VitalStatus = "warning"
	VitalDanger    VitalStatus = "danger"
)

// 睡眠状态位于 bit 7&6：00 未定义，01 浅睡，10 深睡，11 清醒
const (
	SleepStateUndefined = 0
	SleepStateLight     = 1 << 6
	SleepStateDeep      = 2 << 6
	SleepStateAwake     = 3 << 6
)

// SleepStateFor 生命体征状态对应的睡眠状态
// normal -> 深睡，warning -> 浅睡，danger -> 清醒
func SleepStateFor(status VitalStatus) int {
	switch status {
	case VitalNormal:
		return SleepStateDeep
	case VitalWarning:
		return SleepStateLight
	case VitalDanger:
		return SleepStateAwake
	default:
		return SleepStateUndefined
	}
}
