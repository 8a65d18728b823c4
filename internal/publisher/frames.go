package publisher

import (
	"math"

	"wisefido-radar-sim/internal/models"
)

// 雷达上报的原始帧字段，与数据转换服务解析的字段一致

// TrackFrame 轨迹采样 -> 原始帧，位置单位为 dm
func TrackFrame(s models.PersonSample) map[string]interface{} {
	return map[string]interface{}{
		"tracking_id": s.ID,
		"position_x":  toDecimeter(s.RadarPosition.H),
		"position_y":  toDecimeter(s.RadarPosition.V),
		"position_z":  toDecimeter(s.Z),
		"posture":     int(s.Posture),
		"remain_time": s.RemainingSeconds,
		"event_type":  int(s.Event),
		"area_id":     s.AreaID,
	}
}

// VitalFrame 生命体征采样 -> 原始帧
func VitalFrame(trackingID int, v models.VitalSample) map[string]interface{} {
	return map[string]interface{}{
		"tracking_id": trackingID,
		"heart_rate":  v.HeartRate,
		"breath_rate": v.BreathingRate,
		"sleep_state": v.SleepState,
	}
}

func toDecimeter(cm float64) int {
	return int(math.Round(cm / 10))
}
