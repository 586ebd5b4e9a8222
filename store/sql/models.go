package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// sessionRecord stores one encrypted session per account. The payload
// columns mirror the encrypted blob; the plaintext session never touches
// the database.
type sessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions,alias:as"`

	AccountKey string    `bun:"account_key,pk"`
	Nonce      string    `bun:"nonce,notnull"`
	Ciphertext string    `bun:"ciphertext,notnull"`
	AADVersion string    `bun:"aad_version,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
