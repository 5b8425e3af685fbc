package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/privacy2run/internal/model"
)

// AuthCodeRepo persists authorization records (one row per athlete in the
// 'auth_codes' table). The table is the durable twin of the in-memory
// registry: rows are inserted on first authorization, updated on
// re-authorization and read back in full when the scheduler hydrates an
// empty registry. Rows are never deleted; there is no revocation path.
type AuthCodeRepo struct{ DB *sql.DB }

func NewAuthCodeRepo(db *sql.DB) *AuthCodeRepo { return &AuthCodeRepo{DB: db} }

// LoadAll returns every stored authorization record.
func (r *AuthCodeRepo) LoadAll(ctx context.Context) ([]model.AuthCode, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT athlete_id, token, name, valid FROM auth_codes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []model.AuthCode
	for rows.Next() {
		var c model.AuthCode
		if err := rows.Scan(&c.ID, &c.Token, &c.Name, &c.Valid); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// Insert stores a brand-new authorization record.
func (r *AuthCodeRepo) Insert(ctx context.Context, c model.AuthCode) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_codes (athlete_id, token, name, valid) VALUES (?,?,?,?)",
		c.ID, c.Token, c.Name, c.Valid)
	return err
}

// Update replaces the stored fields for an existing athlete id.
func (r *AuthCodeRepo) Update(ctx context.Context, c model.AuthCode) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE auth_codes SET token=?, name=?, valid=? WHERE athlete_id=?",
		c.Token, c.Name, c.Valid, c.ID)
	return err
}
