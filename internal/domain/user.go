package domain

import "time"

// User is the identity record. TelegramUsername links the account to the
// companion bot and is unique when set; locally registered users always carry
// a password hash.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	TelegramUsername *string   `gorm:"size:255;uniqueIndex" json:"telegram_username,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RefreshToken is the server-side half of a refresh token. Only a one-way
// hash of the token material is stored; deleting the row revokes the token
// even though its signature still verifies.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	TokenHash string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
