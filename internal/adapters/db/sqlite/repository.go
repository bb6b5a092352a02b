package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const (
	keyToken      = "token"
	keyDraftTitle = "builder.title"
)

// LocalStore is the client's persistent key/value storage: the bearer token
// and the builder draft.
type LocalStore struct {
	db *gorm.DB
}

func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
}

func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

func (s *LocalStore) Get(ctx context.Context, key string) (string, error) {
	var m LocalValueModel
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.Value, nil
}

func (s *LocalStore) Set(ctx context.Context, key, value string) error {
	m := LocalValueModel{Key: key}
	return s.db.WithContext(ctx).
		Where("key = ?", key).
		Assign(map[string]any{"value": value, "updated_at": time.Now().UTC()}).
		FirstOrCreate(&m).Error
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&LocalValueModel{}).Error
}

func (s *LocalStore) Token(ctx context.Context) (string, error) {
	return s.Get(ctx, keyToken)
}

func (s *LocalStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	return s.Set(ctx, keyToken, token)
}

func (s *LocalStore) ClearToken(ctx context.Context) error {
	return s.Delete(ctx, keyToken)
}

func (s *LocalStore) DraftParts(ctx context.Context) ([]domain.DraftPart, error) {
	rows := make([]DraftPartModel, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.DraftPart, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.DraftPart{Category: domain.Category(m.Category), PartID: m.PartID})
	}
	return out, nil
}

// PutDraftPart fills the category slot, replacing whatever was there.
func (s *LocalStore) PutDraftPart(ctx context.Context, category domain.Category, partID int64) error {
	m := DraftPartModel{Category: string(category)}
	return s.db.WithContext(ctx).
		Where("category = ?", string(category)).
		Assign(map[string]any{"part_id": partID}).
		FirstOrCreate(&m).Error
}

func (s *LocalStore) RemoveDraftPart(ctx context.Context, category domain.Category) error {
	return s.db.WithContext(ctx).Where("category = ?", string(category)).Delete(&DraftPartModel{}).Error
}

func (s *LocalStore) DraftTitle(ctx context.Context) (string, error) {
	return s.Get(ctx, keyDraftTitle)
}

func (s *LocalStore) SetDraftTitle(ctx context.Context, title string) error {
	return s.Set(ctx, keyDraftTitle, title)
}

func (s *LocalStore) ClearDraft(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&DraftPartModel{}).Error; err != nil {
			return err
		}
		return tx.Where("key = ?", keyDraftTitle).Delete(&LocalValueModel{}).Error
	})
}
