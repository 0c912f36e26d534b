package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ffly/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// LoadSession reads the single session row and its account, when one exists.
// ErrNoSession means the instance has never been configured.
func (r *SQLiteRepository) LoadSession(ctx context.Context) (model.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT instance_url, device_id FROM session WHERE id = 1`)
	var session model.Session
	if err := row.Scan(&session.InstanceURL, &session.DeviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrNoSession
		}
		return model.Session{}, err
	}

	account, err := r.loadAccount(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return session, nil
		}
		return model.Session{}, err
	}
	session.Account = &account
	return session, nil
}

func (r *SQLiteRepository) loadAccount(ctx context.Context) (model.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT secret, username, full_name, email, guid, role, token_date
		FROM account WHERE id = 1`)
	var account model.Account
	var tokenDate string
	err := row.Scan(&account.Secret, &account.Username, &account.FullName,
		&account.Email, &account.GUID, &account.Role, &tokenDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	account.TokenDate, err = time.Parse(sqliteTimeLayout, tokenDate)
	if err != nil {
		return model.Account{}, fmt.Errorf("parse token_date: %w", err)
	}
	return account, nil
}

// SaveInstance stores the portal URL and device id. These survive logout, so
// re-login reuses the same device registration.
func (r *SQLiteRepository) SaveInstance(ctx context.Context, instanceURL, deviceID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, instance_url, device_id) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET instance_url = excluded.instance_url, device_id = excluded.device_id`,
		instanceURL, deviceID,
	)
	return err
}

// SaveAccount stores the credential. Incomplete accounts are rejected here
// as a second line of defense behind the token parser.
func (r *SQLiteRepository) SaveAccount(ctx context.Context, account model.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account (id, secret, username, full_name, email, guid, role, token_date)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			secret = excluded.secret,
			username = excluded.username,
			full_name = excluded.full_name,
			email = excluded.email,
			guid = excluded.guid,
			role = excluded.role,
			token_date = excluded.token_date`,
		account.Secret, account.Username, account.FullName, account.Email,
		account.GUID, account.Role, account.TokenDate.UTC().Format(sqliteTimeLayout),
	)
	return err
}

// ClearAccount deletes the credential but keeps the session row, so the
// instance URL and device id survive the logout.
func (r *SQLiteRepository) ClearAccount(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM account WHERE id = 1`)
	return err
}

func (r *SQLiteRepository) ListPinned(ctx context.Context) ([]model.ResourceNode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url, section, title, has_children
		FROM pinned_resources ORDER BY pinned_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ResourceNode, 0)
	for rows.Next() {
		var node model.ResourceNode
		if scanErr := rows.Scan(&node.ID, &node.URL, &node.Section, &node.Title, &node.HasChildren); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, node)
	}
	return out, rows.Err()
}

// Pin stores a resource node. Pinning an already pinned page overwrites it,
// since node ids are stable within the portal.
func (r *SQLiteRepository) Pin(ctx context.Context, node model.ResourceNode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pinned_resources (id, url, section, title, has_children, pinned_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			url = excluded.url,
			section = excluded.section,
			title = excluded.title,
			has_children = excluded.has_children`,
		node.ID, node.URL, node.Section, node.Title, node.HasChildren,
		time.Now().UTC().Format(sqliteTimeLayout),
	)
	return err
}

func (r *SQLiteRepository) Unpin(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pinned_resources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
