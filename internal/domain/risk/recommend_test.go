package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_AllClear(t *testing.T) {
	f := FeatureVector{AttendancePercentage: 90, AverageScore: 80}
	profile := Classify(f, DefaultThresholds())
	pred := MLPrediction{DropoutProbability: 0.2, Confidence: 0.8}

	recs := Recommend(f, profile, pred)
	assert.Empty(t, recs)
}

// Scenario: healthy rule profile, but the predictor has no models and
// falls back to the neutral prior of 0.5. Only the probability trigger
// is close - and 0.5 is not strictly above it, so nothing fires until
// the probability crosses 0.5.
func TestRecommend_NeutralPriorAlone(t *testing.T) {
	f := FeatureVector{AttendancePercentage: 80, AverageScore: 70}
	profile := Classify(f, DefaultThresholds())
	require.Equal(t, LevelGreen, profile.Overall)

	recs := Recommend(f, profile, NeutralPrior())
	assert.Empty(t, recs)

	// Just above the moderate threshold fires exactly one action.
	recs = Recommend(f, profile, MLPrediction{DropoutProbability: 0.51})
	assert.Equal(t, []string{RecDropoutModerate}, recs)
}

func TestRecommend_AttendanceTiers(t *testing.T) {
	th := DefaultThresholds()

	// Below 60: immediate intervention.
	f := FeatureVector{AttendancePercentage: 50, AverageScore: 80}
	recs := Recommend(f, Classify(f, th), MLPrediction{})
	assert.Equal(t, []string{RecAttendanceImmediate, RecAttendanceTracking}, recs[:2])

	// Between 60 and 75: parent meeting.
	f = FeatureVector{AttendancePercentage: 68, AverageScore: 80}
	recs = Recommend(f, Classify(f, th), MLPrediction{})
	assert.Equal(t, []string{RecAttendanceMeeting, RecAttendanceTracking}, recs[:2])
}

func TestRecommend_FinancialTiers(t *testing.T) {
	th := DefaultThresholds()

	f := FeatureVector{AttendancePercentage: 90, AverageScore: 80, OverdueFeesRatio: 0.6}
	recs := Recommend(f, Classify(f, th), MLPrediction{})
	assert.Contains(t, recs, RecFinancialImmediate)
	assert.Contains(t, recs, RecFinancialAid)

	f = FeatureVector{AttendancePercentage: 90, AverageScore: 80, OverdueFeesRatio: 0.25}
	recs = Recommend(f, Classify(f, th), MLPrediction{})
	assert.Contains(t, recs, RecFinancialDiscussion)
	assert.NotContains(t, recs, RecFinancialImmediate)
}

func TestRecommend_HighDropoutProbability(t *testing.T) {
	f := FeatureVector{AttendancePercentage: 90, AverageScore: 80}
	profile := Classify(f, DefaultThresholds())

	recs := Recommend(f, profile, MLPrediction{DropoutProbability: 0.85})
	assert.Equal(t, []string{RecDropoutHigh}, recs)
}

// Worst case across every category: attendance 50%, no exam records,
// 60% of fees overdue. Checks the full ordered output.
func TestRecommend_EverythingRed(t *testing.T) {
	f := FeatureVector{
		AttendancePercentage: 50,
		AverageScore:         0,
		OverdueFeesRatio:     0.6,
	}
	profile := Classify(f, DefaultThresholds())
	require.Equal(t, LevelRed, profile.Attendance)
	require.Equal(t, LevelRed, profile.Academic)
	require.Equal(t, LevelRed, profile.Financial)
	require.Equal(t, LevelRed, profile.Overall)

	recs := Recommend(f, profile, NeutralPrior())

	want := []string{
		RecAttendanceImmediate,
		RecAttendanceTracking,
		RecAcademicUrgent,
		RecAcademicMentor,
		RecFinancialImmediate,
		RecFinancialAid,
		RecOverallCounseling,
		RecOverallParents,
		RecOverallMonitoring,
	}
	assert.Equal(t, want, recs)
}
