package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT REPOSITORY IMPLEMENTATION
// Owns the "one assessment per student per day" policy via the
// (student_id, assessment_date) unique constraint and ON CONFLICT upsert.
// ══════════════════════════════════════════════════════════════════════════════

// assessmentColumns is the canonical column list used by every SELECT.
const assessmentColumns = `
	id, student_id, assessment_date, features,
	attendance_risk, academic_risk, financial_risk, overall_risk,
	dropout_probability, prediction_confidence, model_predictions, ml_risk_level,
	recommendations, created_at
`

const assessmentUpsert = `
	INSERT INTO risk_assessments (
		id, student_id, assessment_date, features,
		attendance_risk, academic_risk, financial_risk, overall_risk,
		dropout_probability, prediction_confidence, model_predictions, ml_risk_level,
		recommendations, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (student_id, assessment_date) DO UPDATE SET
		id = EXCLUDED.id,
		features = EXCLUDED.features,
		attendance_risk = EXCLUDED.attendance_risk,
		academic_risk = EXCLUDED.academic_risk,
		financial_risk = EXCLUDED.financial_risk,
		overall_risk = EXCLUDED.overall_risk,
		dropout_probability = EXCLUDED.dropout_probability,
		prediction_confidence = EXCLUDED.prediction_confidence,
		model_predictions = EXCLUDED.model_predictions,
		ml_risk_level = EXCLUDED.ml_risk_level,
		recommendations = EXCLUDED.recommendations,
		created_at = EXCLUDED.created_at
`

// AssessmentRepository implements risk.Repository for PostgreSQL.
type AssessmentRepository struct {
	conn *Connection
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(conn *Connection) *AssessmentRepository {
	return &AssessmentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Save upserts one assessment, replacing any record already stored for
// the same student and date.
func (r *AssessmentRepository) Save(ctx context.Context, a *risk.Assessment) error {
	args, err := upsertArgs(a)
	if err != nil {
		return err
	}

	if _, err := r.conn.Exec(ctx, assessmentUpsert, args...); err != nil {
		return shared.WrapError("risk", "Save", shared.ErrPersistenceFailure, "failed to save assessment", err)
	}
	return nil
}

// SaveBatch upserts all assessments in a single transaction. Either
// every assessment is committed or none are.
func (r *AssessmentRepository) SaveBatch(ctx context.Context, batch []*risk.Assessment) error {
	if len(batch) == 0 {
		return nil
	}

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		for _, a := range batch {
			args, err := upsertArgs(a)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, assessmentUpsert, args...); err != nil {
				return fmt.Errorf("assessment %s: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return shared.WrapError("risk", "SaveBatch", shared.ErrPersistenceFailure, "failed to save assessment batch", err)
	}
	return nil
}

// Delete removes an assessment by ID.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM risk_assessments WHERE id = $1`, id)
	if err != nil {
		return shared.WrapError("risk", "Delete", shared.ErrPersistenceFailure, "failed to delete assessment", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrAssessmentNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns an assessment by ID.
func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*risk.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM risk_assessments WHERE id = $1`
	return r.scanAssessment(r.conn.QueryRow(ctx, query, id))
}

// LatestByStudent returns the most recent assessment for a student.
func (r *AssessmentRepository) LatestByStudent(ctx context.Context, studentID string) (*risk.Assessment, error) {
	query := `
		SELECT ` + assessmentColumns + `
		FROM risk_assessments
		WHERE student_id = $1
		ORDER BY assessment_date DESC
		LIMIT 1
	`
	return r.scanAssessment(r.conn.QueryRow(ctx, query, studentID))
}

// List returns assessments matching the filter, newest first.
func (r *AssessmentRepository) List(ctx context.Context, filter risk.ListFilter) ([]*risk.Assessment, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`SELECT ` + assessmentColumns + ` FROM risk_assessments WHERE 1=1`)

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&sb, " AND student_id = $%d", len(args))
	}
	if filter.OverallLevel != nil {
		args = append(args, filter.OverallLevel.String())
		fmt.Fprintf(&sb, " AND overall_risk = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		fmt.Fprintf(&sb, " AND assessment_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		fmt.Fprintf(&sb, " AND assessment_date <= $%d", len(args))
	}

	sb.WriteString(" ORDER BY assessment_date DESC, created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, shared.WrapError("risk", "List", shared.ErrPersistenceFailure, "failed to list assessments", err)
	}
	defer rows.Close()

	var assessments []*risk.Assessment
	for rows.Next() {
		a, err := r.scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

// Summary returns aggregate counts over each student's latest assessment.
func (r *AssessmentRepository) Summary(ctx context.Context) (risk.Summary, error) {
	query := `
		WITH latest AS (
			SELECT DISTINCT ON (student_id)
				overall_risk, dropout_probability
			FROM risk_assessments
			ORDER BY student_id, assessment_date DESC, created_at DESC
		)
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE overall_risk = 'green'),
			COUNT(*) FILTER (WHERE overall_risk = 'yellow'),
			COUNT(*) FILTER (WHERE overall_risk = 'red'),
			COALESCE(AVG(dropout_probability), 0)
		FROM latest
	`

	var s risk.Summary
	err := r.conn.QueryRow(ctx, query).Scan(&s.Total, &s.Green, &s.Yellow, &s.Red, &s.AverageDropoutProbability)
	if err != nil {
		return risk.Summary{}, shared.WrapError("risk", "Summary", shared.ErrPersistenceFailure, "failed to compute summary", err)
	}
	return s, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning and marshalling
// ─────────────────────────────────────────────────────────────────────────────

func upsertArgs(a *risk.Assessment) ([]interface{}, error) {
	featuresJSON, err := json.Marshal(a.Features)
	if err != nil {
		return nil, shared.WrapError("risk", "Save", shared.ErrPersistenceFailure, "failed to marshal features", err)
	}

	scores := a.Prediction.ModelScores
	if scores == nil {
		scores = map[string]float64{}
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return nil, shared.WrapError("risk", "Save", shared.ErrPersistenceFailure, "failed to marshal model scores", err)
	}

	recsJSON, err := json.Marshal(a.Recommendations)
	if err != nil {
		return nil, shared.WrapError("risk", "Save", shared.ErrPersistenceFailure, "failed to marshal recommendations", err)
	}

	return []interface{}{
		a.ID,
		a.StudentID,
		a.AssessmentDate,
		featuresJSON,
		a.RuleProfile.Attendance.String(),
		a.RuleProfile.Academic.String(),
		a.RuleProfile.Financial.String(),
		a.RuleProfile.Overall.String(),
		a.Prediction.DropoutProbability,
		a.Prediction.Confidence,
		scoresJSON,
		a.MLRiskLevel.String(),
		recsJSON,
		a.CreatedAt,
	}, nil
}

func (r *AssessmentRepository) scanAssessment(row pgx.Row) (*risk.Assessment, error) {
	var (
		a              risk.Assessment
		featuresJSON   []byte
		scoresJSON     []byte
		recsJSON       []byte
		attendance     string
		academicRisk   string
		financial      string
		overall        string
		mlLevel        string
		assessmentDate time.Time
	)

	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&assessmentDate,
		&featuresJSON,
		&attendance,
		&academicRisk,
		&financial,
		&overall,
		&a.Prediction.DropoutProbability,
		&a.Prediction.Confidence,
		&scoresJSON,
		&mlLevel,
		&recsJSON,
		&a.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAssessmentNotFound
		}
		return nil, shared.WrapError("risk", "Scan", shared.ErrPersistenceFailure, "failed to scan assessment", err)
	}

	a.AssessmentDate = assessmentDate.UTC()

	if err := json.Unmarshal(featuresJSON, &a.Features); err != nil {
		return nil, shared.WrapError("risk", "Scan", shared.ErrPersistenceFailure, "failed to decode features", err)
	}
	if err := json.Unmarshal(scoresJSON, &a.Prediction.ModelScores); err != nil {
		return nil, shared.WrapError("risk", "Scan", shared.ErrPersistenceFailure, "failed to decode model scores", err)
	}
	if err := json.Unmarshal(recsJSON, &a.Recommendations); err != nil {
		return nil, shared.WrapError("risk", "Scan", shared.ErrPersistenceFailure, "failed to decode recommendations", err)
	}

	if lvl, err := risk.ParseLevel(attendance); err == nil {
		a.RuleProfile.Attendance = lvl
	}
	if lvl, err := risk.ParseLevel(academicRisk); err == nil {
		a.RuleProfile.Academic = lvl
	}
	if lvl, err := risk.ParseLevel(financial); err == nil {
		a.RuleProfile.Financial = lvl
	}
	if lvl, err := risk.ParseLevel(overall); err == nil {
		a.RuleProfile.Overall = lvl
	}
	if lvl, err := risk.ParseLevel(mlLevel); err == nil {
		a.MLRiskLevel = lvl
	}

	return &a, nil
}
