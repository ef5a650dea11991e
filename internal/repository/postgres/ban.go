package postgres

import (
	"database/sql"
)

// BanRepo implements repository.BanRepository
type BanRepo struct {
	db *sql.DB
}

// NewBanRepo creates a new ban repository
func NewBanRepo(db *sql.DB) *BanRepo {
	return &BanRepo{db: db}
}

// Ban inserts a user into the ban list. Banning an already-banned user is
// a no-op.
func (r *BanRepo) Ban(userID int64) error {
	query := `
		INSERT INTO banned_users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(query, userID)
	return err
}

// Unban removes a user from the ban list. Unbanning a user who is not
// banned is a no-op.
func (r *BanRepo) Unban(userID int64) error {
	query := `DELETE FROM banned_users WHERE user_id = $1`
	_, err := r.db.Exec(query, userID)
	return err
}

// IsBanned checks whether a user is on the ban list.
func (r *BanRepo) IsBanned(userID int64) (bool, error) {
	var banned bool
	query := `SELECT EXISTS(SELECT 1 FROM banned_users WHERE user_id = $1)`
	err := r.db.QueryRow(query, userID).Scan(&banned)
	if err != nil {
		return false, err
	}
	return banned, nil
}
