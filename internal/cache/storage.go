package cache

import (
	"fmt"
	"os"
	"time"
)

// Prune removes snapshots fetched longer ago than retention and returns
// the number of stories deleted.
func (c *Cache) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	tx, err := c.writeDB.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		DELETE FROM stories WHERE query_key IN (
			SELECT query_key FROM snapshots WHERE fetched_at < ?
		)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning stories: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE fetched_at < ?`, cutoff); err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if deleted > 0 {
		// reclaim space, best effort
		_, _ = c.writeDB.Exec("VACUUM")
	}
	return deleted, nil
}

// Stats returns the number of stored stories and the database file size.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.Get(&count, "SELECT COUNT(*) FROM stories"); err != nil {
		return 0, 0, fmt.Errorf("counting stories: %w", err)
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}
