package recorder

import "fmt"

// Quality selects the encoder speed/fidelity trade-off for a recording.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ParseQuality validates a user-supplied quality name.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityLow, QualityMedium, QualityHigh:
		return Quality(s), nil
	default:
		return "", fmt.Errorf("invalid quality %q: must be low, medium, or high", s)
	}
}

// Preset returns the x264 encoder preset for this quality level.
func (q Quality) Preset() string {
	switch q {
	case QualityLow:
		return "ultrafast"
	case QualityHigh:
		return "slow"
	default:
		return "medium"
	}
}

// CRF returns the constant rate factor for this quality level.
func (q Quality) CRF() string {
	switch q {
	case QualityLow:
		return "30"
	case QualityHigh:
		return "18"
	default:
		return "23"
	}
}
