package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

const stateTable = "client_state"

const upsertSuffix = "ON CONFLICT (account, state_key) DO UPDATE SET state_value = excluded.state_value, updated_at = excluded.updated_at"

// StateRepository stores string values by key for one account
type StateRepository struct {
	db      *DB
	account string
}

// NewStateRepository creates a repository scoped to account
func NewStateRepository(db *DB, account string) *StateRepository {
	return &StateRepository{db: db, account: account}
}

// WithAccount returns a repository over the same database for another account
func (r *StateRepository) WithAccount(account string) *StateRepository {
	return &StateRepository{db: r.db, account: account}
}

// Account returns the scope of the repository
func (r *StateRepository) Account() string {
	return r.account
}

// Get returns the value stored under key and whether it exists
func (r *StateRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := r.db.psql.Select("state_value").
		From(stateTable).
		Where(squirrel.Eq{"account": r.account, "state_key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select query (key: %s): %w", key, err)
	}

	var value string
	if err = r.db.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get state (account: %s, key: %s): %w", r.account, key, err)
	}

	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (r *StateRepository) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

// SetMany stores all values in a single transaction
func (r *StateRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	return r.db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		for _, key := range keys {
			query, args, err := r.db.psql.Insert(stateTable).
				Columns("account", "state_key", "state_value", "updated_at").
				Values(r.account, key, values[key], now).
				Suffix(upsertSuffix).
				ToSql()
			if err != nil {
				return fmt.Errorf("build upsert query (key: %s): %w", key, err)
			}

			if _, err = tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("set state (account: %s, key: %s): %w", r.account, key, err)
			}
		}
		return nil
	})
}

// Delete removes key; deleting a missing key is not an error
func (r *StateRepository) Delete(ctx context.Context, key string) error {
	query, args, err := r.db.psql.Delete(stateTable).
		Where(squirrel.Eq{"account": r.account, "state_key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query (key: %s): %w", key, err)
	}

	if _, err = r.db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete state (account: %s, key: %s): %w", r.account, key, err)
	}

	return nil
}

// Keys lists the keys of the account starting with prefix
func (r *StateRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := r.db.psql.Select("state_key").
		From(stateTable).
		Where(squirrel.Eq{"account": r.account}).
		Where(squirrel.Like{"state_key": prefix + "%"}).
		OrderBy("state_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keys query (prefix: %s): %w", prefix, err)
	}

	var keys []string
	if err = r.db.db.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("list state keys (account: %s, prefix: %s): %w", r.account, prefix, err)
	}

	// LIKE treats '_' as a wildcard
	return lo.Filter(keys, func(k string, _ int) bool {
		return strings.HasPrefix(k, prefix)
	}), nil
}
