package db

import (
	"context"
)

// SteamApp is one entry of the Steam catalog seed.
type SteamApp struct {
	AppID        int64
	Name         string
	LastModified int64
}

// UpsertSteamApps writes a batch of catalog entries in a single transaction.
func (db *DB) UpsertSteamApps(ctx context.Context, apps []SteamApp) error {
	if len(apps) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return WrapDBError(err, "upsert steam apps", "")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steam_apps (appid, name, last_modified)
		VALUES (?, ?, ?)
		ON CONFLICT(appid) DO UPDATE SET
			name = excluded.name,
			last_modified = excluded.last_modified
	`)
	if err != nil {
		_ = tx.Rollback()
		return WrapDBError(err, "upsert steam apps", "")
	}
	defer func() { _ = stmt.Close() }()

	for _, app := range apps {
		if _, err := stmt.ExecContext(ctx, app.AppID, app.Name, app.LastModified); err != nil {
			_ = tx.Rollback()
			return WrapDBError(err, "upsert steam apps", app.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return WrapDBError(err, "upsert steam apps", "")
	}
	return nil
}

// SearchSteamApps returns catalog entries whose name starts with the prefix.
// Backs the name-suggestion endpoint; matching is case-insensitive.
func (db *DB) SearchSteamApps(ctx context.Context, prefix string, limit int) ([]SteamApp, error) {
	if prefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT appid, name, last_modified FROM steam_apps
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY name LIMIT ?
	`, likePrefix(prefix), limit)
	if err != nil {
		return nil, WrapDBError(err, "search steam apps", prefix)
	}
	defer func() { _ = rows.Close() }()

	var apps []SteamApp
	for rows.Next() {
		var a SteamApp
		if err := rows.Scan(&a.AppID, &a.Name, &a.LastModified); err != nil {
			return nil, WrapDBError(err, "scan steam app", "")
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapDBError(err, "search steam apps", prefix)
	}
	return apps, nil
}

// CountSteamApps returns the size of the catalog seed.
func (db *DB) CountSteamApps(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM steam_apps").Scan(&n); err != nil {
		return 0, WrapDBError(err, "count steam apps", "")
	}
	return n, nil
}

// likePrefix escapes LIKE metacharacters and appends the wildcard.
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+2)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '%' || c == '_' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return string(escaped) + "%"
}
