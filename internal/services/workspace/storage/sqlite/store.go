// Package sqlite provides a SQLite-backed layout storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/gmworkspace/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists layouts in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite layout store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

const layoutColumns = `id, user_id, campaign_id, name, description,
        left_tabs, right_tabs, left_active_index, right_active_index,
        right_panel_visible, split_ratio, is_default, usage_count,
        stage, kind, created_at, updated_at, last_used_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLayout(row rowScanner) (storage.Layout, error) {
	var (
		layout            storage.Layout
		leftTabs          string
		rightTabs         string
		rightPanelVisible int
		isDefault         int
		stage             string
		kind              string
		createdAt         int64
		updatedAt         int64
		lastUsedAt        int64
	)
	if err := row.Scan(
		&layout.ID,
		&layout.UserID,
		&layout.CampaignID,
		&layout.Name,
		&layout.Description,
		&leftTabs,
		&rightTabs,
		&layout.Snapshot.LeftActiveIndex,
		&layout.Snapshot.RightActiveIndex,
		&rightPanelVisible,
		&layout.Snapshot.SplitRatio,
		&isDefault,
		&layout.UsageCount,
		&stage,
		&kind,
		&createdAt,
		&updatedAt,
		&lastUsedAt,
	); err != nil {
		return storage.Layout{}, err
	}
	if err := json.Unmarshal([]byte(leftTabs), &layout.Snapshot.LeftTabs); err != nil {
		return storage.Layout{}, fmt.Errorf("decode left tabs: %w", err)
	}
	if err := json.Unmarshal([]byte(rightTabs), &layout.Snapshot.RightTabs); err != nil {
		return storage.Layout{}, fmt.Errorf("decode right tabs: %w", err)
	}
	layout.Snapshot.RightPanelVisible = rightPanelVisible != 0
	layout.IsDefault = isDefault != 0
	layout.Stage = panel.Stage(stage)
	layout.Kind = storage.Kind(kind)
	layout.CreatedAt = fromMillis(createdAt)
	layout.UpdatedAt = fromMillis(updatedAt)
	layout.LastUsedAt = fromMillis(lastUsedAt)
	return layout, nil
}

func encodeTabs(tabs []workspace.TabSnapshot) (string, error) {
	if tabs == nil {
		tabs = []workspace.TabSnapshot{}
	}
	data, err := json.Marshal(tabs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// ListLayouts returns the layouts of scope, default first, then most used,
// then by name.
func (s *Store) ListLayouts(ctx context.Context, scope storage.Scope) ([]storage.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	userID := strings.TrimSpace(scope.UserID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+layoutColumns+`
		   FROM layouts
		  WHERE user_id = ? AND campaign_id = ?
		  ORDER BY is_default DESC, usage_count DESC, name ASC`,
		userID,
		strings.TrimSpace(scope.CampaignID),
	)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	layouts := make([]storage.Layout, 0)
	for rows.Next() {
		layout, err := scanLayout(rows)
		if err != nil {
			return nil, fmt.Errorf("list layouts: %w", err)
		}
		layouts = append(layouts, layout)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return layouts, nil
}

// GetLayout returns one layout by ID.
func (s *Store) GetLayout(ctx context.Context, id string) (storage.Layout, error) {
	if err := ctx.Err(); err != nil {
		return storage.Layout{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Layout{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Layout{}, fmt.Errorf("layout id is required")
	}
	return getLayout(ctx, s.sqlDB, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getLayout(ctx context.Context, db queryRower, id string) (storage.Layout, error) {
	row := db.QueryRowContext(ctx, `SELECT `+layoutColumns+` FROM layouts WHERE id = ?`, id)
	layout, err := scanLayout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Layout{}, storage.ErrNotFound
		}
		return storage.Layout{}, fmt.Errorf("get layout: %w", err)
	}
	return layout, nil
}

// CreateLayout inserts a layout. When it is the default, other defaults of
// the same scope and stage are cleared in the same transaction.
func (s *Store) CreateLayout(ctx context.Context, layout storage.Layout) (storage.Layout, error) {
	if err := ctx.Err(); err != nil {
		return storage.Layout{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Layout{}, fmt.Errorf("storage is not configured")
	}
	layout.ID = strings.TrimSpace(layout.ID)
	layout.UserID = strings.TrimSpace(layout.UserID)
	layout.CampaignID = strings.TrimSpace(layout.CampaignID)
	layout.Name = strings.TrimSpace(layout.Name)
	layout.Description = strings.TrimSpace(layout.Description)
	if layout.ID == "" {
		return storage.Layout{}, fmt.Errorf("layout id is required")
	}
	if layout.UserID == "" {
		return storage.Layout{}, fmt.Errorf("user id is required")
	}
	if layout.Name == "" {
		return storage.Layout{}, fmt.Errorf("name is required")
	}
	if layout.Kind == "" {
		layout.Kind = storage.KindCustom
	}
	if layout.CreatedAt.IsZero() {
		layout.CreatedAt = s.now()
	}
	if layout.UpdatedAt.IsZero() {
		layout.UpdatedAt = layout.CreatedAt
	}
	layout.CreatedAt = fromMillis(toMillis(layout.CreatedAt))
	layout.UpdatedAt = fromMillis(toMillis(layout.UpdatedAt))
	layout.LastUsedAt = fromMillis(toMillis(layout.LastUsedAt))
	layout.Snapshot = layout.Snapshot.Clone()

	leftTabs, err := encodeTabs(layout.Snapshot.LeftTabs)
	if err != nil {
		return storage.Layout{}, fmt.Errorf("encode left tabs: %w", err)
	}
	rightTabs, err := encodeTabs(layout.Snapshot.RightTabs)
	if err != nil {
		return storage.Layout{}, fmt.Errorf("encode right tabs: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Layout{}, fmt.Errorf("begin create layout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if layout.IsDefault {
		if err := clearDefaults(ctx, tx, layout.Scope(), layout.Stage, layout.ID); err != nil {
			return storage.Layout{}, err
		}
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO layouts (
		   id, user_id, campaign_id, name, description,
		   left_tabs, right_tabs, left_active_index, right_active_index,
		   right_panel_visible, split_ratio, is_default, usage_count,
		   stage, kind, created_at, updated_at, last_used_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		layout.ID,
		layout.UserID,
		layout.CampaignID,
		layout.Name,
		layout.Description,
		leftTabs,
		rightTabs,
		layout.Snapshot.LeftActiveIndex,
		layout.Snapshot.RightActiveIndex,
		boolToInt(layout.Snapshot.RightPanelVisible),
		layout.Snapshot.SplitRatio,
		boolToInt(layout.IsDefault),
		layout.UsageCount,
		string(layout.Stage),
		string(layout.Kind),
		toMillis(layout.CreatedAt),
		toMillis(layout.UpdatedAt),
		toMillis(layout.LastUsedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Layout{}, storage.ErrAlreadyExists
		}
		return storage.Layout{}, fmt.Errorf("create layout: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Layout{}, fmt.Errorf("commit create layout: %w", err)
	}
	return layout, nil
}

// UpdateLayout applies patch and returns the stored result.
func (s *Store) UpdateLayout(ctx context.Context, id string, patch storage.LayoutPatch) (storage.Layout, error) {
	if err := ctx.Err(); err != nil {
		return storage.Layout{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Layout{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Layout{}, fmt.Errorf("layout id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Layout{}, fmt.Errorf("begin update layout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	layout, err := getLayout(ctx, tx, id)
	if err != nil {
		return storage.Layout{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return storage.Layout{}, fmt.Errorf("name is required")
		}
		layout.Name = name
	}
	if patch.Description != nil {
		layout.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Snapshot != nil {
		layout.Snapshot = patch.Snapshot.Clone()
	}
	if patch.IsDefault != nil {
		layout.IsDefault = *patch.IsDefault
		if layout.IsDefault {
			if err := clearDefaults(ctx, tx, layout.Scope(), layout.Stage, layout.ID); err != nil {
				return storage.Layout{}, err
			}
		}
	}
	layout.UpdatedAt = fromMillis(toMillis(s.now()))

	leftTabs, err := encodeTabs(layout.Snapshot.LeftTabs)
	if err != nil {
		return storage.Layout{}, fmt.Errorf("encode left tabs: %w", err)
	}
	rightTabs, err := encodeTabs(layout.Snapshot.RightTabs)
	if err != nil {
		return storage.Layout{}, fmt.Errorf("encode right tabs: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE layouts
		    SET name = ?, description = ?,
		        left_tabs = ?, right_tabs = ?,
		        left_active_index = ?, right_active_index = ?,
		        right_panel_visible = ?, split_ratio = ?,
		        is_default = ?, updated_at = ?
		  WHERE id = ?`,
		layout.Name,
		layout.Description,
		leftTabs,
		rightTabs,
		layout.Snapshot.LeftActiveIndex,
		layout.Snapshot.RightActiveIndex,
		boolToInt(layout.Snapshot.RightPanelVisible),
		layout.Snapshot.SplitRatio,
		boolToInt(layout.IsDefault),
		toMillis(layout.UpdatedAt),
		layout.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Layout{}, storage.ErrAlreadyExists
		}
		return storage.Layout{}, fmt.Errorf("update layout: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Layout{}, fmt.Errorf("commit update layout: %w", err)
	}
	return layout, nil
}

func clearDefaults(ctx context.Context, tx *sql.Tx, scope storage.Scope, stage panel.Stage, keepID string) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE layouts
		    SET is_default = 0
		  WHERE user_id = ? AND campaign_id = ? AND stage = ? AND id <> ? AND is_default = 1`,
		scope.UserID,
		scope.CampaignID,
		string(stage),
		keepID,
	)
	if err != nil {
		return fmt.Errorf("clear default layouts: %w", err)
	}
	return nil
}

// DeleteLayout removes one layout.
func (s *Store) DeleteLayout(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("layout id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return requireAffected(result)
}

// RecordLayoutUse increments the usage count and stamps the last use.
func (s *Store) RecordLayoutUse(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("layout id is required")
	}
	if at.IsZero() {
		at = s.now()
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE layouts SET usage_count = usage_count + 1, last_used_at = ? WHERE id = ?`,
		toMillis(at),
		id,
	)
	if err != nil {
		return fmt.Errorf("record layout use: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "layouts.")
}

var _ storage.LayoutStore = (*Store)(nil)
