package discounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

func setupRulesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	rules := `
CREATE TABLE IF NOT EXISTS volume_discount_rules (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  threshold REAL NOT NULL,
  percent INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(rules).Error)
	return db
}

func newRule(t *testing.T, db *gorm.DB, kind enums.VolumeRuleKind, threshold float64, percent int, active bool) *models.VolumeDiscountRule {
	t.Helper()

	rule := &models.VolumeDiscountRule{
		ID:        uuid.New(),
		Kind:      kind,
		Threshold: threshold,
		Percent:   percent,
		IsActive:  active,
	}
	require.NoError(t, db.Create(rule).Error)
	return rule
}

func TestRepositoryListActiveExcludesDisabledRules(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newRule(t, db, enums.VolumeRuleKindPacks, 7, 25, true)
	newRule(t, db, enums.VolumeRuleKindWeight, 2.0, 25, true)
	newRule(t, db, enums.VolumeRuleKindPacks, 3, 10, false)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositoryDeleteRule(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rule := newRule(t, db, enums.VolumeRuleKindPacks, 7, 25, true)

	require.NoError(t, repo.Delete(ctx, rule.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rule.ID), gorm.ErrRecordNotFound)

	_, err := repo.FindByID(ctx, rule.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateRule(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rule := newRule(t, db, enums.VolumeRuleKindWeight, 2.0, 25, true)

	require.NoError(t, repo.Update(ctx, rule.ID, map[string]any{"percent": 30, "is_active": false}))

	found, err := repo.FindByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, found.Percent)
	assert.False(t, found.IsActive)

	assert.ErrorIs(t, repo.Update(ctx, uuid.New(), map[string]any{"percent": 5}), gorm.ErrRecordNotFound)
}
