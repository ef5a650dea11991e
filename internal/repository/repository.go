package repository

// BanRepository defines the durable ban list operations. Bans are the only
// state that survives a restart; insert and delete are idempotent.
type BanRepository interface {
	Ban(userID int64) error
	Unban(userID int64) error
	IsBanned(userID int64) (bool, error)
}
