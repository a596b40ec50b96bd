package pubsite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite content index. Every build stages the loaded content
// and commits it once the site is written; listings page through it with
// LIMIT/OFFSET.
type Store struct {
	reader
	db *sql.DB
}

// PostFilter narrows post queries. Empty fields match everything.
type PostFilter struct {
	Category string
	Author   string
}

func (f PostFilter) where(drafts bool) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if !drafts {
		clauses = append(clauses, "status <> 'draft'")
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Author != "" {
		clauses = append(clauses, "author = ?")
		args = append(args, f.Author)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while the watcher reindexes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{reader: reader{q: db}, db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    subtitle TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL,
    date TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    banner TEXT NOT NULL DEFAULT '',
    banner_path TEXT NOT NULL DEFAULT '',
    featured INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'published',
    html TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS posts_date ON posts (date DESC, slug);
CREATE INDEX IF NOT EXISTS posts_category ON posts (category, date DESC);
CREATE INDEX IF NOT EXISTS posts_author ON posts (author, date DESC);
CREATE TABLE IF NOT EXISTS authors (
    user_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    twitter TEXT NOT NULL DEFAULT '',
    facebook TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS categories (
    slug TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    banner TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL
);
`)
	return err
}

const postColumns = `slug, title, subtitle, author, date, category, banner, banner_path, featured, status, html, excerpt, source`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (Post, error) {
	var (
		p        Post
		date     string
		featured int
	)
	if err := r.Scan(&p.Slug, &p.Title, &p.Subtitle, &p.Author, &date, &p.Category,
		&p.Banner, &p.BannerPath, &featured, &p.Status, &p.HTML, &p.Excerpt, &p.Source); err != nil {
		return Post{}, err
	}
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return Post{}, fmt.Errorf("post %q: bad stored date %q: %w", p.Slug, date, err)
	}
	p.Date = t
	p.Featured = featured == 1
	return p, nil
}


// Stage replaces the indexed content with c inside a transaction. Queries
// through the returned Staged see the new content; every other reader keeps
// seeing the previous content until Commit.
func (s *Store) Stage(ctx context.Context, c *Content) (*Staged, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := replaceContent(ctx, tx, c); err != nil {
		tx.Rollback()
		return nil, err
	}
	return &Staged{reader: reader{q: tx, mu: new(sync.Mutex)}, tx: tx}, nil
}

// Staged is an uncommitted index replacement.
type Staged struct {
	reader
	tx *sql.Tx
}

// Commit makes the staged content visible to every reader.
func (st *Staged) Commit() error {
	return st.tx.Commit()
}

// Rollback discards the staged content. It is a no-op after Commit.
func (st *Staged) Rollback() error {
	err := st.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func replaceContent(ctx context.Context, tx *sql.Tx, c *Content) error {
	for _, table := range []string{"posts", "authors", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	for _, p := range c.Posts {
		if err := savePost(ctx, tx, p); err != nil {
			return fmt.Errorf("index post %q: %w", p.Slug, err)
		}
	}
	for _, a := range c.Authors {
		if err := saveAuthor(ctx, tx, a); err != nil {
			return fmt.Errorf("index author %q: %w", a.User, err)
		}
	}
	for i, cat := range c.Categories {
		if err := saveCategory(ctx, tx, cat, i); err != nil {
			return fmt.Errorf("index category %q: %w", cat.Key, err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func savePost(ctx context.Context, db execer, p Post) error {
	featured := 0
	if p.Featured {
		featured = 1
	}
	status := p.Status
	if status == "" {
		status = StatusPublished
	}
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Subtitle, p.Author, p.Date.UTC().Format(time.RFC3339), p.Category,
		p.Banner, p.BannerPath, featured, status, p.HTML, p.Excerpt, p.Source)
	return err
}

func saveAuthor(ctx context.Context, db execer, a Author) error {
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO authors (user_id, name, twitter, facebook) VALUES (?, ?, ?, ?)`,
		a.User, a.Name, a.Twitter, a.Facebook)
	return err
}

func saveCategory(ctx context.Context, db execer, c Category, position int) error {
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO categories (slug, name, description, banner, position) VALUES (?, ?, ?, ?, ?)`,
		c.Key, c.Name, c.Desc, c.Banner, position)
	return err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// reader holds the index queries shared by the Store and a Staged rebuild.
// A transaction runs one statement at a time, so mu is set for Staged.
type reader struct {
	q  querier
	mu *sync.Mutex
}

func (r *reader) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *reader) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	defer r.lock()()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns one page of published posts matching f, ordered by date
// descending. A limit of zero or less returns every match.
func (r *reader) ListPosts(ctx context.Context, f PostFilter, limit, offset int) ([]Post, error) {
	where, args := f.where(false)
	q := `SELECT ` + postColumns + ` FROM posts` + where + ` ORDER BY date DESC, slug`
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return r.queryPosts(ctx, q, args...)
}

// CountPosts returns the number of published posts matching f.
func (r *reader) CountPosts(ctx context.Context, f PostFilter) (int, error) {
	where, args := f.where(false)
	defer r.lock()()
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n)
	return n, err
}

// ListDrafts returns every draft ordered by date descending.
func (r *reader) ListDrafts(ctx context.Context) ([]Post, error) {
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE status = 'draft' ORDER BY date DESC, slug`)
}

// GetPostAny returns a post by slug regardless of status (for draft preview).
func (r *reader) GetPostAny(ctx context.Context, slug string) (Post, error) {
	defer r.lock()()
	return scanPost(r.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
}

// ListAuthors returns every author sorted by user id.
func (r *reader) ListAuthors(ctx context.Context) ([]Author, error) {
	defer r.lock()()
	rows, err := r.q.QueryContext(ctx, `SELECT user_id, name, twitter, facebook FROM authors ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.User, &a.Name, &a.Twitter, &a.Facebook); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// ListCategories returns categories in the order they were declared.
func (r *reader) ListCategories(ctx context.Context) ([]Category, error) {
	defer r.lock()()
	rows, err := r.q.QueryContext(ctx, `SELECT slug, name, description, banner FROM categories ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Key, &c.Name, &c.Desc, &c.Banner); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

