package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"eventconnect/internal/domain"
)

// profileURL derives a profile link for the platforms that have a stable one.
func profileURL(platform, username string) string {
	switch platform {
	case "linkedin":
		return "https://www.linkedin.com/in/" + username
	case "twitter":
		return "https://twitter.com/" + strings.TrimPrefix(username, "@")
	case "instagram":
		return "https://www.instagram.com/" + strings.TrimPrefix(username, "@")
	case "whatsapp":
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, username)
		if digits == "" {
			return ""
		}
		return "https://wa.me/" + digits
	}
	return ""
}

type socialAccountService struct {
	accountRepo    domain.SocialAccountRepository
	contextTimeout time.Duration
}

// NewSocialAccountService creates a SocialAccountService.
func NewSocialAccountService(accountRepo domain.SocialAccountRepository, timeout time.Duration) domain.SocialAccountService {
	return &socialAccountService{accountRepo: accountRepo, contextTimeout: timeout}
}

func (s *socialAccountService) List(ctx context.Context, userID string) ([]*domain.SocialAccount, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	accounts, err := s.accountRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list social accounts: %w", err)
	}
	return accounts, nil
}

func (s *socialAccountService) Add(ctx context.Context, userID, platform, username, link string) (*domain.SocialAccount, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	platform = strings.ToLower(strings.TrimSpace(platform))
	username = strings.TrimSpace(username)
	link = strings.TrimSpace(link)
	if platform == "" || username == "" {
		return nil, invalid("platform and username are required")
	}
	if link == "" {
		if link = profileURL(platform, username); link == "" {
			return nil, invalid("url is required for platform %q", platform)
		}
	} else if u, err := url.Parse(link); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("url must be an http or https link")
	}

	account := &domain.SocialAccount{
		UserID:    userID,
		Platform:  platform,
		Username:  username,
		URL:       link,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("create social account: %w", err)
	}
	return account, nil
}

func (s *socialAccountService) Remove(ctx context.Context, userID, accountID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get social account: %w", err)
	}
	if account.UserID != userID {
		return domain.ErrNotFound
	}
	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete social account: %w", err)
	}
	return nil
}
