package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/LetzTalk/internal/domain/models"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
}

type reportRepo struct {
	db *sqlx.DB
}

func NewReportRepo(db *sqlx.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *models.Report) error {
	_, err := r.db.NamedExecContext(
		ctx,
		`INSERT INTO reports (id, reporter_id, reported_user_id, reported_connection_id, reason, room_id, created_at)
		VALUES (:id, :reporter_id, :reported_user_id, :reported_connection_id, :reason, :room_id, :created_at)`,
		report,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	return nil
}
