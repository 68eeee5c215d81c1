package risk

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION GENERATOR
// Pure mapping from (features, rule profile, ML prediction) to an ordered
// list of actions for the counseling staff. Order is significant: the most
// specific action for each category comes first, followed by the standing
// reminder for that category.
// ══════════════════════════════════════════════════════════════════════════════

// Recommendation texts. Kept as constants so the HTTP layer and
// notification templates reference the exact same strings.
const (
	RecAttendanceImmediate = "Immediate intervention required for attendance"
	RecAttendanceMeeting   = "Schedule meeting with student and parents about attendance"
	RecAttendanceTracking  = "Implement attendance tracking and early warning system"

	RecAcademicUrgent  = "Urgent academic support needed"
	RecAcademicClasses = "Schedule extra classes and academic counseling"
	RecAcademicMentor  = "Assign peer mentor for academic support"

	RecFinancialImmediate  = "Immediate financial counseling required"
	RecFinancialDiscussion = "Schedule fee payment discussion"
	RecFinancialAid        = "Explore financial aid and payment plan options"

	RecDropoutHigh     = "High dropout risk - implement comprehensive intervention plan"
	RecDropoutModerate = "Moderate dropout risk - monitor closely and provide support"

	RecOverallCounseling = "Schedule comprehensive counseling session"
	RecOverallParents    = "Involve parents/guardians in intervention plan"
	RecOverallMonitoring = "Weekly progress monitoring required"
)

// Recommend generates the ordered action list for an assessment.
// Triggers are evaluated independently; a student flagged in several
// categories accumulates the actions of each. A fully green profile
// with dropout probability at or below 0.5 yields an empty list.
func Recommend(f FeatureVector, profile RuleRiskProfile, pred MLPrediction) []string {
	recs := []string{}

	if profile.Attendance.AtRisk() {
		if f.AttendancePercentage < 60 {
			recs = append(recs, RecAttendanceImmediate)
		} else if f.AttendancePercentage < 75 {
			recs = append(recs, RecAttendanceMeeting)
		}
		recs = append(recs, RecAttendanceTracking)
	}

	if profile.Academic.AtRisk() {
		if f.AverageScore < 40 {
			recs = append(recs, RecAcademicUrgent)
		} else if f.AverageScore < 60 {
			recs = append(recs, RecAcademicClasses)
		}
		recs = append(recs, RecAcademicMentor)
	}

	if profile.Financial.AtRisk() {
		if f.OverdueFeesRatio > 0.5 {
			recs = append(recs, RecFinancialImmediate)
		} else if f.OverdueFeesRatio > 0.2 {
			recs = append(recs, RecFinancialDiscussion)
		}
		recs = append(recs, RecFinancialAid)
	}

	if pred.DropoutProbability > 0.7 {
		recs = append(recs, RecDropoutHigh)
	} else if pred.DropoutProbability > 0.5 {
		recs = append(recs, RecDropoutModerate)
	}

	if profile.Overall == LevelRed {
		recs = append(recs,
			RecOverallCounseling,
			RecOverallParents,
			RecOverallMonitoring,
		)
	}

	return recs
}
