package alarm

import "wisefido-radar-sim/internal/models"

// HeartRateStatus 心率分级：<45 或 >=105 为 danger，<60 或 >95 为 warning
func HeartRateStatus(bpm int) models.VitalStatus {
	switch {
	case bpm < 45 || bpm >= 105:
		return models.VitalDanger
	case bpm < 60 || bpm > 95:
		return models.VitalWarning
	default:
		return models.VitalNormal
	}
}

// BreathingStatus 呼吸分级：<8 或 >=26 为 danger，<12 或 >20 为 warning
func BreathingStatus(rpm int) models.VitalStatus {
	switch {
	case rpm < 8 || rpm >= 26:
		return models.VitalDanger
	case rpm < 12 || rpm > 20:
		return models.VitalWarning
	default:
		return models.VitalNormal
	}
}

// ClassifyVital 取心率与呼吸中更严重的一项，没有采样时为 undefined
func ClassifyVital(v *models.VitalSample) models.VitalStatus {
	if v == nil {
		return models.VitalUndefined
	}
	return worse(HeartRateStatus(v.HeartRate), BreathingStatus(v.BreathingRate))
}

func severity(s models.VitalStatus) int {
	switch s {
	case models.VitalDanger:
		return 3
	case models.VitalWarning:
		return 2
	case models.VitalNormal:
		return 1
	default:
		return 0
	}
}

func worse(a, b models.VitalStatus) models.VitalStatus {
	if severity(b) > severity(a) {
		return b
	}
	return a
}
