// Package postgres implements the PostgreSQL persistence layer for the
// Student Risk Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    admission_number VARCHAR(30) NOT NULL UNIQUE,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL DEFAULT '',
    email VARCHAR(255) NOT NULL DEFAULT '',
    class_name VARCHAR(30) NOT NULL DEFAULT '',
    section VARCHAR(10) NOT NULL DEFAULT '',
    academic_year VARCHAR(20) NOT NULL DEFAULT '',
    guardian_name VARCHAR(200) NOT NULL DEFAULT '',
    guardian_phone VARCHAR(30) NOT NULL DEFAULT '',
    enrollment_date DATE,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    mentor_id UUID,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('active', 'graduated', 'dropped_out', 'suspended'))
);

CREATE INDEX IF NOT EXISTS idx_students_admission_number ON students(admission_number);
CREATE INDEX IF NOT EXISTS idx_students_status ON students(status);
CREATE INDEX IF NOT EXISTS idx_students_mentor_id ON students(mentor_id) WHERE mentor_id IS NOT NULL;
`

const migration001Down = `
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE ACADEMIC HISTORY
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create attendance, exam score and fee tables
-- Version: 002

CREATE TABLE IF NOT EXISTS attendance_records (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    date DATE NOT NULL,
    subject VARCHAR(100) NOT NULL DEFAULT '',
    present BOOLEAN NOT NULL,
    remarks TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_attendance_student_id ON attendance_records(student_id);
CREATE INDEX IF NOT EXISTS idx_attendance_student_date ON attendance_records(student_id, date DESC);

CREATE TABLE IF NOT EXISTS exam_scores (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    exam_name VARCHAR(150) NOT NULL,
    exam_type VARCHAR(20) NOT NULL DEFAULT 'quiz',
    subject VARCHAR(100) NOT NULL DEFAULT '',
    exam_date DATE,
    marks_obtained DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_marks DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_exam_type CHECK (exam_type IN ('midterm', 'final', 'quiz', 'assignment', 'project')),
    CONSTRAINT valid_marks CHECK (marks_obtained >= 0 AND total_marks >= 0)
);

CREATE INDEX IF NOT EXISTS idx_exam_scores_student_id ON exam_scores(student_id);

CREATE TABLE IF NOT EXISTS fee_records (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    fee_type VARCHAR(50) NOT NULL DEFAULT 'tuition',
    amount_due DOUBLE PRECISION NOT NULL DEFAULT 0,
    amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
    due_date DATE,
    status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
    overdue BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_fee_status CHECK (status IN ('paid', 'partial', 'unpaid', 'overdue')),
    CONSTRAINT valid_amounts CHECK (amount_due >= 0 AND amount_paid >= 0)
);

CREATE INDEX IF NOT EXISTS idx_fee_records_student_id ON fee_records(student_id);
CREATE INDEX IF NOT EXISTS idx_fee_records_overdue ON fee_records(student_id) WHERE overdue;
`

const migration002Down = `
DROP TABLE IF EXISTS fee_records;
DROP TABLE IF EXISTS exam_scores;
DROP TABLE IF EXISTS attendance_records;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE RISK ASSESSMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create risk assessments table
-- Version: 003

CREATE TABLE IF NOT EXISTS risk_assessments (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    assessment_date DATE NOT NULL,

    -- Extracted feature vector, stored as JSONB for schema evolution.
    features JSONB NOT NULL DEFAULT '{}'::jsonb,

    -- Rule-based category levels.
    attendance_risk VARCHAR(10) NOT NULL,
    academic_risk VARCHAR(10) NOT NULL,
    financial_risk VARCHAR(10) NOT NULL,
    overall_risk VARCHAR(10) NOT NULL,

    -- Ensemble prediction.
    dropout_probability DOUBLE PRECISION NOT NULL DEFAULT 0.5,
    prediction_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    model_predictions JSONB NOT NULL DEFAULT '{}'::jsonb,
    ml_risk_level VARCHAR(10) NOT NULL,

    recommendations JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- One assessment per student per calendar day. Re-running the
    -- pipeline on the same day replaces the stored record.
    CONSTRAINT uq_assessment_per_day UNIQUE (student_id, assessment_date),

    CONSTRAINT valid_levels CHECK (
        attendance_risk IN ('green', 'yellow', 'red') AND
        academic_risk IN ('green', 'yellow', 'red') AND
        financial_risk IN ('green', 'yellow', 'red') AND
        overall_risk IN ('green', 'yellow', 'red') AND
        ml_risk_level IN ('green', 'yellow', 'red')
    ),
    CONSTRAINT valid_probability CHECK (dropout_probability >= 0 AND dropout_probability <= 1)
);

CREATE INDEX IF NOT EXISTS idx_assessments_student_id ON risk_assessments(student_id);
CREATE INDEX IF NOT EXISTS idx_assessments_date ON risk_assessments(assessment_date DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_overall ON risk_assessments(overall_risk);
CREATE INDEX IF NOT EXISTS idx_assessments_student_date ON risk_assessments(student_id, assessment_date DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS risk_assessments;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create staff users table
-- Version: 004

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    full_name VARCHAR(200) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'viewer',
    password_hash TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_role CHECK (role IN ('admin', 'mentor', 'counselor', 'viewer'))
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

const migration004Down = `
DROP TABLE IF EXISTS users;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_students",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_academic_history",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_risk_assessments",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_users",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}
