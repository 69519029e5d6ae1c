package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"codeberg.org/miketth/nskbd/pkg/layoutstore/sqlite/migrations"
	"codeberg.org/miketth/nskbd/pkg/nskbd"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	selectLayouts = `select app, layout from window_layouts`
	selectHotkeys = `select name, combo from hotkeys`
	insertLayout  = `insert into window_layouts (app, layout) values (?, ?)`
	insertHotkey  = `insert into hotkeys (name, combo) values (?, ?)`
)

type LayoutStore struct {
	db *sql.DB
}

func NewLayoutStore(filename string, log *zap.SugaredLogger) (*LayoutStore, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &LayoutStore{db: db}, nil
}

func (s *LayoutStore) Close() error {
	return s.db.Close()
}

func (s *LayoutStore) Load() (nskbd.Configuration, error) {
	ctx := context.Background()
	cfg := nskbd.DefaultConfiguration()

	rows, err := s.db.QueryContext(ctx, selectLayouts)
	if err != nil {
		return nskbd.Configuration{}, fmt.Errorf("sqlite select layouts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var window string
		var layout int
		if err := rows.Scan(&window, &layout); err != nil {
			return nskbd.Configuration{}, fmt.Errorf("sqlite scan layout: %w", err)
		}
		cfg.WindowLayoutMap[window] = nskbd.LayoutCode(layout)
	}
	if err := rows.Err(); err != nil {
		return nskbd.Configuration{}, fmt.Errorf("sqlite iterate layouts: %w", err)
	}

	hotkeys, err := s.db.QueryContext(ctx, selectHotkeys)
	if err != nil {
		return nskbd.Configuration{}, fmt.Errorf("sqlite select hotkeys: %w", err)
	}
	defer hotkeys.Close()

	for hotkeys.Next() {
		var action, combo string
		if err := hotkeys.Scan(&action, &combo); err != nil {
			return nskbd.Configuration{}, fmt.Errorf("sqlite scan hotkey: %w", err)
		}
		if cfg.Hotkeys == nil {
			cfg.Hotkeys = make(map[string]string)
		}
		cfg.Hotkeys[action] = combo
	}
	if err := hotkeys.Err(); err != nil {
		return nskbd.Configuration{}, fmt.Errorf("sqlite iterate hotkeys: %w", err)
	}

	return cfg, nil
}

// Save replaces the stored configuration in a single transaction.
func (s *LayoutStore) Save(cfg nskbd.Configuration) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `delete from window_layouts`); err != nil {
		return fmt.Errorf("sqlite clear layouts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `delete from hotkeys`); err != nil {
		return fmt.Errorf("sqlite clear hotkeys: %w", err)
	}

	for window, layout := range cfg.WindowLayoutMap {
		if _, err := tx.ExecContext(ctx, insertLayout, window, int(layout)); err != nil {
			return fmt.Errorf("sqlite insert layout %q: %w", window, err)
		}
	}
	for action, combo := range cfg.Hotkeys {
		if _, err := tx.ExecContext(ctx, insertHotkey, action, combo); err != nil {
			return fmt.Errorf("sqlite insert hotkey %q: %w", action, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}

	return nil
}
