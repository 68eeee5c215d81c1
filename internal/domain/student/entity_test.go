package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStudent(t *testing.T) *Student {
	t.Helper()
	s, err := NewStudent(NewStudentParams{
		ID:              "stu-1",
		AdmissionNumber: "ADM-2025-001",
		FirstName:       "Aruzhan",
		LastName:        "Bekova",
		Email:           "aruzhan@example.com",
		ClassName:       "10",
		AcademicYear:    "2025-2026",
		EnrollmentDate:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return s
}

func TestNewStudentDefaults(t *testing.T) {
	s := newTestStudent(t)

	assert.Equal(t, StatusActive, s.Status)
	assert.True(t, s.IsActive())
	assert.True(t, s.HasEnrollmentDate())
	assert.Equal(t, "Aruzhan Bekova", s.FullName())
}

func TestNewStudentValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewStudentParams)
		wantErr error
	}{
		{
			name:    "admission number too short",
			mutate:  func(p *NewStudentParams) { p.AdmissionNumber = "A" },
			wantErr: ErrInvalidAdmissionNumber,
		},
		{
			name:    "admission number with whitespace",
			mutate:  func(p *NewStudentParams) { p.AdmissionNumber = "ADM 001" },
			wantErr: ErrInvalidAdmissionNumber,
		},
		{
			name:    "empty first name",
			mutate:  func(p *NewStudentParams) { p.FirstName = "   " },
			wantErr: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := NewStudentParams{
				ID:              "stu-1",
				AdmissionNumber: "ADM-2025-001",
				FirstName:       "Aruzhan",
				LastName:        "Bekova",
			}
			tt.mutate(&params)

			_, err := NewStudent(params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStudentStatusTransitions(t *testing.T) {
	t.Run("active to dropped out", func(t *testing.T) {
		s := newTestStudent(t)
		require.NoError(t, s.MarkDroppedOut())
		assert.Equal(t, StatusDroppedOut, s.Status)
		assert.True(t, s.Status.IsTerminal())
	})

	t.Run("terminal status is final", func(t *testing.T) {
		s := newTestStudent(t)
		require.NoError(t, s.MarkGraduated())

		assert.ErrorIs(t, s.MarkDroppedOut(), ErrInvalidStatus)
		assert.ErrorIs(t, s.MarkGraduated(), ErrInvalidStatus)
		assert.Equal(t, StatusGraduated, s.Status)
	})

	t.Run("suspend and reinstate", func(t *testing.T) {
		s := newTestStudent(t)
		require.NoError(t, s.Suspend())
		assert.Equal(t, StatusSuspended, s.Status)
		assert.False(t, s.IsActive())

		require.NoError(t, s.Reinstate())
		assert.Equal(t, StatusActive, s.Status)
	})

	t.Run("only suspended students can be reinstated", func(t *testing.T) {
		s := newTestStudent(t)
		assert.Error(t, s.Reinstate())
	})

	t.Run("suspended students can still drop out", func(t *testing.T) {
		s := newTestStudent(t)
		require.NoError(t, s.Suspend())
		require.NoError(t, s.MarkDroppedOut())
		assert.Equal(t, StatusDroppedOut, s.Status)
	})
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, StatusSuspended.IsTerminal())
	assert.True(t, StatusGraduated.IsTerminal())
	assert.True(t, StatusDroppedOut.IsTerminal())
}
