package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sentence-practice-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AssignmentLoader loads assignment JSONB from Postgres for self-hosted
// content.
type AssignmentLoader struct {
	pool *pgxpool.Pool
}

func NewAssignmentLoader(pool *pgxpool.Pool) *AssignmentLoader {
	return &AssignmentLoader{pool: pool}
}

func (l *AssignmentLoader) LoadQuestionSet(ctx context.Context, assignmentID string) (domain.QuestionSet, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM assignments WHERE id=$1`, assignmentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSet{}, domain.ErrAssignmentNotFound
	}
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("load assignment: %w", err)
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("unmarshal assignment: %w", err)
	}
	set.AssignmentID = assignmentID
	for i := range set.Questions {
		set.Questions[i].Normalize()
	}
	if set.TotalQuestions == 0 {
		set.TotalQuestions = len(set.Questions)
	}
	return set, nil
}
