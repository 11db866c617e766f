package assessment

// RiskLevel is the qualitative bucket for a final score.
type RiskLevel string

const (
	LevelVeryLow  RiskLevel = "very_low"
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelHigh     RiskLevel = "high"
	LevelVeryHigh RiskLevel = "very_high"
)

// LevelForScore maps a final [0,100] score onto its risk level.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 75:
		return LevelVeryHigh
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	case score >= 25:
		return LevelLow
	default:
		return LevelVeryLow
	}
}
