package domain

import (
	"context"
	"time"
)

// SocialAccount is a user's handle on an external platform.
// swagger:model SocialAccount
type SocialAccount struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Platform  string    `json:"platform"`
	Username  string    `json:"username"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// SocialAccountRepository defines storage for social accounts.
type SocialAccountRepository interface {
	Create(ctx context.Context, a *SocialAccount) error
	GetByID(ctx context.Context, id string) (*SocialAccount, error)
	ListByUserID(ctx context.Context, userID string) ([]*SocialAccount, error)
	Delete(ctx context.Context, id string) error
}

// SocialAccountService manages a user's social accounts.
type SocialAccountService interface {
	List(ctx context.Context, userID string) ([]*SocialAccount, error)
	Add(ctx context.Context, userID, platform, username, url string) (*SocialAccount, error)
	Remove(ctx context.Context, userID, accountID string) error
}
