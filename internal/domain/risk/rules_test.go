package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_AttendanceBoundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		attendance float64
		want       Level
	}{
		{100, LevelGreen},
		{75, LevelGreen}, // safe threshold is inclusive
		{74.99, LevelYellow},
		{60, LevelYellow}, // warning threshold is inclusive
		{59.99, LevelRed},
		{0, LevelRed},
	}

	for _, tt := range tests {
		f := FeatureVector{AttendancePercentage: tt.attendance, AverageScore: 100}
		got := Classify(f, th)
		assert.Equal(t, tt.want, got.Attendance, "attendance=%v", tt.attendance)
	}
}

func TestClassify_AcademicBoundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		score float64
		want  Level
	}{
		{90, LevelGreen},
		{60, LevelGreen},
		{59.99, LevelYellow},
		{40, LevelYellow},
		{39.99, LevelRed},
		{0, LevelRed},
	}

	for _, tt := range tests {
		f := FeatureVector{AttendancePercentage: 100, AverageScore: tt.score}
		got := Classify(f, th)
		assert.Equal(t, tt.want, got.Academic, "score=%v", tt.score)
	}
}

func TestClassify_FinancialBoundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		ratio float64
		want  Level
	}{
		{0, LevelGreen},
		{0.01, LevelYellow},
		{0.3, LevelYellow}, // upper yellow bound is inclusive
		{0.31, LevelRed},
		{1, LevelRed},
	}

	for _, tt := range tests {
		f := FeatureVector{AttendancePercentage: 100, AverageScore: 100, OverdueFeesRatio: tt.ratio}
		got := Classify(f, th)
		assert.Equal(t, tt.want, got.Financial, "ratio=%v", tt.ratio)
	}
}

func TestClassify_OverallIsWorstCategory(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		f    FeatureVector
		want Level
	}{
		{
			"all green",
			FeatureVector{AttendancePercentage: 80, AverageScore: 70, OverdueFeesRatio: 0},
			LevelGreen,
		},
		{
			"one yellow category",
			FeatureVector{AttendancePercentage: 65, AverageScore: 70, OverdueFeesRatio: 0},
			LevelYellow,
		},
		{
			"red financial dominates",
			FeatureVector{AttendancePercentage: 90, AverageScore: 80, OverdueFeesRatio: 0.6},
			LevelRed,
		},
		{
			"everything red",
			FeatureVector{AttendancePercentage: 50, AverageScore: 0, OverdueFeesRatio: 0.6},
			LevelRed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.f, th)
			assert.Equal(t, tt.want, got.Overall)
			assert.Equal(t, MaxLevel(got.Attendance, got.Academic, got.Financial), got.Overall)
		})
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	th := Thresholds{AttendanceSafe: 90, AttendanceWarning: 80, ScoreSafe: 70, ScoreWarning: 50}

	got := Classify(FeatureVector{AttendancePercentage: 85, AverageScore: 65}, th)
	assert.Equal(t, LevelYellow, got.Attendance)
	assert.Equal(t, LevelYellow, got.Academic)
}

func TestPredictionRiskLevelBoundaries(t *testing.T) {
	tests := []struct {
		p    float64
		want Level
	}{
		{0.0, LevelGreen},
		{0.29, LevelGreen},
		{0.3, LevelYellow}, // lower boundary belongs to yellow
		{0.5, LevelYellow},
		{0.59, LevelYellow},
		{0.6, LevelRed}, // upper boundary belongs to red
		{1.0, LevelRed},
	}

	for _, tt := range tests {
		pred := MLPrediction{DropoutProbability: tt.p}
		assert.Equal(t, tt.want, pred.RiskLevel(), "p=%v", tt.p)
	}
}
