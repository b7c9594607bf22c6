package prediction

// Vital identifies one of the physiological signals the engine evaluates.
type Vital string

const (
	VitalSpO2            Vital = "spo2"
	VitalHeartRate       Vital = "heart_rate"
	VitalSkinTemperature Vital = "skin_temperature"
)

// vitalOrder fixes iteration order so responses are deterministic and
// diffable in tests.
var vitalOrder = [3]Vital{VitalSpO2, VitalHeartRate, VitalSkinTemperature}

// Unit returns the unit string reported in per-metric summaries.
func (v Vital) Unit() string {
	switch v {
	case VitalSpO2:
		return "%"
	case VitalHeartRate:
		return "BPM"
	case VitalSkinTemperature:
		return "°C"
	}
	return ""
}

// Band is the three-way classification of a resolved vital.
type Band int

const (
	BandNormal Band = iota
	BandConcerning
	BandCritical
)

func (b Band) String() string {
	switch b {
	case BandNormal:
		return "normal"
	case BandConcerning:
		return "concerning"
	case BandCritical:
		return "critical"
	}
	return "unknown"
}

// Score is the per-metric health score reported in summaries. It feeds the
// response only, never the aggregation.
func (b Band) Score() float64 {
	switch b {
	case BandNormal:
		return 1.0
	case BandConcerning:
		return 0.5
	default:
		return 0.0
	}
}

// Classify maps a resolved vital value onto its band using fixed clinical
// thresholds. Boundaries are inclusive as written: an SpO2 of exactly 95.0
// is normal, a heart rate of exactly 120.0 is concerning rather than
// critical.
func Classify(v Vital, value float64) Band {
	switch v {
	case VitalSpO2:
		switch {
		case value >= 95.0:
			return BandNormal
		case value >= 90.0:
			return BandConcerning
		default:
			return BandCritical
		}
	case VitalHeartRate:
		switch {
		case value >= 60.0 && value <= 100.0:
			return BandNormal
		case value >= 40.0 && value <= 120.0:
			return BandConcerning
		default:
			return BandCritical
		}
	case VitalSkinTemperature:
		switch {
		case value >= 36.1 && value <= 37.2:
			return BandNormal
		case value >= 35.0 && value <= 38.0:
			return BandConcerning
		default:
			return BandCritical
		}
	}
	return BandCritical
}
