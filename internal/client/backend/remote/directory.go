package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/dmitrijs2005/citywatch/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Directory stores accounts in the users table. The secret column holds an
// argon2id hash, never the plaintext.
type Directory struct {
	db dbx.DBTX
}

func NewDirectory(db dbx.DBTX) *Directory {
	return &Directory{db: db}
}

func (r *Directory) Register(ctx context.Context, email, name, secretHash string) (*models.User, error) {
	query :=
		`INSERT INTO users (email, secret, name)
         VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	user := &models.User{Email: email, Name: name}
	err := r.db.QueryRowContext(ctx, query, email, secretHash, name).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: email %s", common.ErrConflict, email)
		}
		return nil, fmt.Errorf("%w: db error: %w", common.ErrBackendUnavailable, err)
	}

	return user, nil
}

func (r *Directory) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, email, secret, name, created_at FROM users
		 WHERE email = $1
		 `

	acc := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&acc.ID, &acc.Email, &acc.SecretHash, &acc.Name, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: db error: %w", common.ErrBackendUnavailable, err)
	}

	return acc, nil
}
