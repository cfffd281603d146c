package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/LetzTalk/internal/domain/models"
)

type BlockRepository interface {
	// Create идемпотентен для пары blocker / blocked user.
	// Повторная блокировка не создает запись: в block подставляются id и created_at
	// существующей строки, created=false.
	Create(ctx context.Context, block *models.Block) (created bool, err error)
}

type blockRepo struct {
	db *sqlx.DB
}

func NewBlockRepo(db *sqlx.DB) BlockRepository {
	return &blockRepo{db: db}
}

// DO UPDATE вместо DO NOTHING, чтобы RETURNING отдал уже существующую строку.
// xmax = 0 только у только что вставленной версии строки.
const insertBlockQuery = `INSERT INTO blocks (id, blocker_id, blocked_user_id, blocked_connection_id, created_at)
	VALUES (:id, :blocker_id, :blocked_user_id, :blocked_connection_id, :created_at)
	ON CONFLICT (blocker_id, blocked_user_id) WHERE blocked_user_id IS NOT NULL
	DO UPDATE SET blocker_id = EXCLUDED.blocker_id
	RETURNING id, created_at, (xmax = 0) AS inserted`

func (r *blockRepo) Create(ctx context.Context, block *models.Block) (bool, error) {
	rows, err := r.db.NamedQueryContext(ctx, insertBlockQuery, block)
	if err != nil {
		return false, fmt.Errorf("insert block: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return false, fmt.Errorf("insert block: %w", err)
		}

		return false, fmt.Errorf("insert block: no row returned")
	}

	var inserted bool
	if err = rows.Scan(&block.ID, &block.CreatedAt, &inserted); err != nil {
		return false, fmt.Errorf("scan block: %w", err)
	}

	return inserted, nil
}
