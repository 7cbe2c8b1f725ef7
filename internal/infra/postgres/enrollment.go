package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// EnrollmentProvider reads class membership and the live participation
// denominator. Enrollment rows are owned by the class-management
// collaborator; this store never writes them.
type EnrollmentProvider struct {
	db *bun.DB
}

func NewEnrollmentProvider(db *bun.DB) *EnrollmentProvider {
	return &EnrollmentProvider{db: db}
}

type enrollmentRow struct {
	bun.BaseModel `bun:"table:class_enrollments"`

	ClassID   string `bun:"class_id,pk"`
	StudentID string `bun:"student_id,pk"`
	IsActive  bool   `bun:"is_active"`
}

func (p *EnrollmentProvider) IsEnrolled(ctx context.Context, studentID, classID string) (bool, error) {
	exists, err := p.db.NewSelect().Model((*enrollmentRow)(nil)).
		Where("class_id = ? AND student_id = ? AND is_active", classID, studentID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

func (p *EnrollmentProvider) ParticipationDenominator(ctx context.Context, classID string) (int, error) {
	count, err := p.db.NewSelect().
		TableExpr("quizzes").
		Where("class_id = ? AND is_active", classID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count class quizzes: %w", err)
	}
	return count, nil
}
