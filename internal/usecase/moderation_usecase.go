package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/qrave1/LetzTalk/internal/domain/input"
	"github.com/qrave1/LetzTalk/internal/domain/models"
	"github.com/qrave1/LetzTalk/internal/infra/adapters/postgres/repository"
)

var (
	ErrTargetRequired = errors.New("reported user or connection is required")
	ErrSelfReport     = errors.New("cannot report or block yourself")
)

// IdentityResolver отдает постоянную identity живого соединения, если она есть.
type IdentityResolver interface {
	IdentityOf(connID string) (uuid.UUID, bool)
}

type ModerationUsecase interface {
	Report(ctx context.Context, in *input.ReportInput) (*models.Report, error)
	// Block возвращает created=false, если такая блокировка уже была
	Block(ctx context.Context, in *input.BlockInput) (block *models.Block, created bool, err error)
}

type moderationUsecase struct {
	reportRepo repository.ReportRepository
	blockRepo  repository.BlockRepository

	identities IdentityResolver
}

func NewModerationUsecase(
	reportRepo repository.ReportRepository,
	blockRepo repository.BlockRepository,
	identities IdentityResolver,
) ModerationUsecase {
	return &moderationUsecase{
		reportRepo: reportRepo,
		blockRepo:  blockRepo,
		identities: identities,
	}
}

func (uc *moderationUsecase) Report(ctx context.Context, in *input.ReportInput) (*models.Report, error) {
	target, err := uc.resolveTarget(in.ReporterID, in.ReportedUserID, in.ReportedConnectionID)
	if err != nil {
		return nil, err
	}

	report := models.NewReport(in.ReporterID, target, in.ReportedConnectionID, in.Reason, in.RoomID)

	if err = uc.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	return report, nil
}

func (uc *moderationUsecase) Block(ctx context.Context, in *input.BlockInput) (*models.Block, bool, error) {
	target, err := uc.resolveTarget(in.BlockerID, in.BlockedUserID, in.BlockedConnectionID)
	if err != nil {
		return nil, false, err
	}

	block := models.NewBlock(in.BlockerID, target, in.BlockedConnectionID)

	created, err := uc.blockRepo.Create(ctx, block)
	if err != nil {
		return nil, false, fmt.Errorf("create block: %w", err)
	}

	return block, created, nil
}

// resolveTarget дополняет user id по connection id, если соединение живое и авторизованное.
func (uc *moderationUsecase) resolveTarget(actor uuid.UUID, userID uuid.NullUUID, connID string) (uuid.NullUUID, error) {
	if !userID.Valid && connID == "" {
		return uuid.NullUUID{}, ErrTargetRequired
	}

	if !userID.Valid && uc.identities != nil {
		if id, ok := uc.identities.IdentityOf(connID); ok {
			userID = uuid.NullUUID{UUID: id, Valid: true}
		}
	}

	if userID.Valid && userID.UUID == actor {
		return uuid.NullUUID{}, ErrSelfReport
	}

	return userID, nil
}
