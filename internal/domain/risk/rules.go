package risk

// ══════════════════════════════════════════════════════════════════════════════
// RULE-BASED CLASSIFIER
// Deterministic threshold classification, independent of any trained model.
// ══════════════════════════════════════════════════════════════════════════════

// Thresholds configures the rule-based classifier. All values are
// inclusive lower bounds for the safer bucket.
type Thresholds struct {
	// AttendanceSafe - attendance percentage at or above which the
	// attendance category is green.
	AttendanceSafe float64

	// AttendanceWarning - attendance percentage at or above which the
	// attendance category is yellow (below it: red).
	AttendanceWarning float64

	// ScoreSafe - average score at or above which the academic category
	// is green.
	ScoreSafe float64

	// ScoreWarning - average score at or above which the academic
	// category is yellow (below it: red).
	ScoreWarning float64
}

// Financial category boundaries. A student with zero overdue fees is
// green; up to this share of overdue fees is yellow; above it red.
const overdueRatioWarningMax = 0.3

// DefaultThresholds returns the institutional defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AttendanceSafe:    75,
		AttendanceWarning: 60,
		ScoreSafe:         60,
		ScoreWarning:      40,
	}
}

// RuleRiskProfile is the output of the rule-based classifier.
// Overall always equals the worst of the three category levels.
type RuleRiskProfile struct {
	Attendance Level `json:"attendance"`
	Academic   Level `json:"academic"`
	Financial  Level `json:"financial"`
	Overall    Level `json:"overall"`
}

// Classify maps a feature vector to category risk levels using the given
// thresholds. It is pure, deterministic, and total: every input produces
// a complete profile.
func Classify(f FeatureVector, t Thresholds) RuleRiskProfile {
	var p RuleRiskProfile

	switch {
	case f.AttendancePercentage >= t.AttendanceSafe:
		p.Attendance = LevelGreen
	case f.AttendancePercentage >= t.AttendanceWarning:
		p.Attendance = LevelYellow
	default:
		p.Attendance = LevelRed
	}

	switch {
	case f.AverageScore >= t.ScoreSafe:
		p.Academic = LevelGreen
	case f.AverageScore >= t.ScoreWarning:
		p.Academic = LevelYellow
	default:
		p.Academic = LevelRed
	}

	switch {
	case f.OverdueFeesRatio == 0:
		p.Financial = LevelGreen
	case f.OverdueFeesRatio <= overdueRatioWarningMax:
		p.Financial = LevelYellow
	default:
		p.Financial = LevelRed
	}

	p.Overall = MaxLevel(p.Attendance, p.Academic, p.Financial)
	return p
}
