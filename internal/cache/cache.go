package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/matheuskafuri/hntop/internal/story"
)

// ErrNotFound is returned when a query key has no stored snapshot.
var ErrNotFound = errors.New("snapshot not found")

type Cache struct {
	readDB  *sqlx.DB
	writeDB *sqlx.DB
}

type storyRow struct {
	ObjectID    string    `db:"object_id"`
	Title       string    `db:"title"`
	URL         string    `db:"url"`
	Points      int       `db:"points"`
	Author      string    `db:"author"`
	CreatedAt   time.Time `db:"created_at"`
	NumComments int       `db:"num_comments"`
}

// Snapshot describes one stored query result.
type Snapshot struct {
	Key       string    `db:"query_key"`
	FetchedAt time.Time `db:"fetched_at"`
	Count     int       `db:"story_count"`
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sqlx.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			query_key   TEXT PRIMARY KEY,
			fetched_at  DATETIME NOT NULL,
			story_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS stories (
			query_key    TEXT NOT NULL,
			object_id    TEXT NOT NULL,
			position     INTEGER NOT NULL,
			title        TEXT NOT NULL,
			url          TEXT NOT NULL DEFAULT '',
			points       INTEGER NOT NULL DEFAULT 0,
			author       TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL,
			num_comments INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (query_key, object_id)
		);
		CREATE INDEX IF NOT EXISTS idx_stories_position ON stories(query_key, position);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var result *multierror.Error
	if c.readDB != nil {
		if err := c.readDB.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.writeDB != nil {
		if err := c.writeDB.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// SaveStories replaces the snapshot for key, keeping the given order.
func (c *Cache) SaveStories(key string, stories []story.Story) error {
	tx, err := c.writeDB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM stories WHERE query_key = ?`, key); err != nil {
		return fmt.Errorf("clearing snapshot %s: %w", key, err)
	}

	stmt, err := tx.Preparex(`
		INSERT INTO stories (query_key, object_id, position, title, url, points, author, created_at, num_comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(query_key, object_id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range stories {
		_, err := stmt.Exec(key, s.ObjectID, i, s.Title, s.URL, s.Points, s.Author, s.CreatedAt, s.NumComments)
		if err != nil {
			return fmt.Errorf("saving story %s: %w", s.ObjectID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO snapshots (query_key, fetched_at, story_count) VALUES (?, ?, ?)
		ON CONFLICT(query_key) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			story_count = excluded.story_count
	`, key, time.Now().UTC(), len(stories))
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", key, err)
	}

	return tx.Commit()
}

// LoadStories returns the stored stories for key and when they were fetched.
func (c *Cache) LoadStories(key string) ([]story.Story, time.Time, error) {
	var snap Snapshot
	err := c.readDB.Get(&snap, `SELECT query_key, fetched_at, story_count FROM snapshots WHERE query_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading snapshot %s: %w", key, err)
	}

	var rows []storyRow
	err = c.readDB.Select(&rows, `
		SELECT object_id, title, url, points, author, created_at, num_comments
		FROM stories WHERE query_key = ? ORDER BY position
	`, key)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading stories %s: %w", key, err)
	}

	stories := make([]story.Story, len(rows))
	for i, r := range rows {
		stories[i] = story.Story(r)
	}
	return stories, snap.FetchedAt, nil
}

// Snapshots lists stored snapshots, newest first.
func (c *Cache) Snapshots() ([]Snapshot, error) {
	var snaps []Snapshot
	err := c.readDB.Select(&snaps, `SELECT query_key, fetched_at, story_count FROM snapshots ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return snaps, nil
}

// StoryStore adapts a Cache to the query store interface.
type StoryStore struct {
	Cache *Cache
}

func (s StoryStore) Load(key string) ([]story.Story, time.Time, error) {
	return s.Cache.LoadStories(key)
}

func (s StoryStore) Save(key string, stories []story.Story) error {
	return s.Cache.SaveStories(key, stories)
}
