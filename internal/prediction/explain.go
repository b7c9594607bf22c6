package prediction

import "fmt"

const (
	recommendationAllNormal = "All health parameters are within normal ranges. Continue monitoring."
	recommendationNoData    = "No recent health data available. Ensure your device is syncing."
)

func riskFactor(v Vital, value float64, band Band) string {
	switch v {
	case VitalSpO2:
		if band == BandCritical {
			return fmt.Sprintf("Critically low blood oxygen saturation (%.1f%%)", value)
		}
		return fmt.Sprintf("Low blood oxygen saturation (%.1f%%)", value)
	case VitalHeartRate:
		if band == BandCritical {
			return fmt.Sprintf("Dangerously abnormal heart rate (%.1f BPM)", value)
		}
		return fmt.Sprintf("Abnormal heart rate (%.1f BPM)", value)
	case VitalSkinTemperature:
		if band == BandCritical {
			return fmt.Sprintf("Extreme skin temperature (%.1f°C)", value)
		}
		return fmt.Sprintf("Abnormal skin temperature (%.1f°C)", value)
	}
	return ""
}

func recommendation(v Vital, band Band) string {
	switch v {
	case VitalSpO2:
		if band == BandCritical {
			return "Seek immediate medical attention for critically low blood oxygen."
		}
		return "Monitor blood oxygen closely and rest; consult a doctor if it drops further."
	case VitalHeartRate:
		if band == BandCritical {
			return "Seek immediate medical attention for dangerously abnormal heart rate."
		}
		return "Monitor heart rate and rest; avoid strenuous activity."
	case VitalSkinTemperature:
		if band == BandCritical {
			return "Seek immediate medical attention for extreme body temperature."
		}
		return "Monitor body temperature and rest; consult a doctor if it persists."
	}
	return ""
}
