package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"replymate/internal/domain"
)

const DefaultMaxHistory = 10

var (
	ErrUnknownStyle   = errors.New("unknown style")
	ErrEmptyDetailKey = errors.New("personal detail key is required")
	ErrEmptyUserID    = errors.New("user id is required")
)

// Backend persists whole profile records. Implementations need not be safe for
// concurrent writes to the same user; Store serializes those.
type Backend interface {
	Load(ctx context.Context, userID string) (domain.UserProfile, bool, error)
	Save(ctx context.Context, userID string, profile domain.UserProfile) error
	Close() error
}

type Config struct {
	MaxHistory int
	Catalog    domain.StyleCatalog
}

type Store struct {
	backend    Backend
	maxHistory int
	catalog    domain.StyleCatalog
	locks      *userLocks
}

func New(backend Backend, cfg Config) *Store {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if len(cfg.Catalog.List()) == 0 {
		cfg.Catalog = domain.DefaultStyleCatalog()
	}
	return &Store{
		backend:    backend,
		maxHistory: cfg.MaxHistory,
		catalog:    cfg.Catalog,
		locks:      newUserLocks(),
	}
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// GetProfile returns the user's profile, creating and persisting a default one
// on first access.
func (s *Store) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	var out domain.UserProfile
	err := s.update(ctx, userID, func(p *domain.UserProfile) (bool, error) {
		out = p.Clone()
		return false, nil
	})
	return out, err
}

// LoadProfile reads the user's profile without creating one. found is false
// for users the store has never seen.
func (s *Store) LoadProfile(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserProfile{}, false, ErrEmptyUserID
	}
	profile, found, err := s.backend.Load(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("load profile %s: %w", userID, err)
	}
	if !found {
		return domain.UserProfile{}, false, nil
	}
	profile.Normalize()
	return profile, true, nil
}

func (s *Store) UpdateStyle(ctx context.Context, userID, style string) error {
	style = strings.ToLower(strings.TrimSpace(style))
	if !s.catalog.Has(style) {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	return s.mutate(ctx, userID, func(p *domain.UserProfile) {
		p.Style = style
	})
}

func (s *Store) SetPartnerName(ctx context.Context, userID, name string) error {
	return s.mutate(ctx, userID, func(p *domain.UserProfile) {
		p.PartnerName = strings.TrimSpace(name)
	})
}

func (s *Store) AddPersonalDetail(ctx context.Context, userID, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyDetailKey
	}
	return s.mutate(ctx, userID, func(p *domain.UserProfile) {
		p.PersonalDetails[key] = strings.TrimSpace(value)
	})
}

// AppendHistory adds ex and keeps only the most recent MaxHistory exchanges.
func (s *Store) AppendHistory(ctx context.Context, userID string, ex domain.Exchange) error {
	return s.mutate(ctx, userID, func(p *domain.UserProfile) {
		p.History = append(p.History, ex)
		p.TrimHistory(s.maxHistory)
	})
}

func (s *Store) mutate(ctx context.Context, userID string, fn func(*domain.UserProfile)) error {
	return s.update(ctx, userID, func(p *domain.UserProfile) (bool, error) {
		fn(p)
		return true, nil
	})
}

// update runs fn on the stored (or freshly defaulted) profile while holding the
// user's lock. The profile is saved when it was new or fn reports a change.
func (s *Store) update(ctx context.Context, userID string, fn func(*domain.UserProfile) (bool, error)) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrEmptyUserID
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	profile, found, err := s.backend.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", userID, err)
	}
	if !found {
		profile = domain.DefaultProfile()
	}
	profile.Normalize()

	changed, err := fn(&profile)
	if err != nil {
		return err
	}
	if !found || changed {
		if err := s.backend.Save(ctx, userID, profile); err != nil {
			return fmt.Errorf("save profile %s: %w", userID, err)
		}
	}
	return nil
}
