package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"gochef/internal/model"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var (
	// ErrUnavailable means the database file could not be created, opened,
	// initialized or read.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound means no row has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt means a row exists but a required column is NULL or not text.
	ErrCorrupt = errors.New("store corrupt")
)

// busy_timeout lets concurrent first runs wait on each other instead of
// failing with SQLITE_BUSY; immediate transactions take the write lock up front.
const dsnParams = "?_busy_timeout=5000&_txlock=immediate"

const (
	seedRecipePipeline = `[{"op":"To Base64","args":["A-Za-z0-9+/="]}]`
	seedServerURI      = "http://localhost:3000/bake"
)

// Store holds recipes and servers in a single SQLite file
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// dsn turns a file path into a SQLite URI so characters such as '?' and '#'
// stay part of the file name instead of starting the query string.
func dsn(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + dsnParams
}

// Open connects to the database at path and makes sure the schema and seed
// rows exist. The parent directory must already exist.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.initialize(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	logger.Debug("store ready", zap.String("path", path))
	return s, nil
}

// initialize creates tables if not exists and seeds row 1 of each
func (s *Store) initialize(ctx context.Context) error {
	recipeTable := `
	CREATE TABLE IF NOT EXISTS recipes (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		recipe TEXT NOT NULL,
		"return" TEXT
	);
	`
	serverTable := `
	CREATE TABLE IF NOT EXISTS servers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		uri TEXT NOT NULL
	);
	`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, recipeTable); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, serverTable); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO recipes (id, name, recipe, "return") VALUES (?, ?, ?, ?)`,
		1, "Base64", seedRecipePipeline, "string"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO servers (id, name, uri) VALUES (?, ?, ?)`,
		1, "local", seedServerURI); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRecipe fetches a single recipe by ID
func (s *Store) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	var (
		name                     sql.NullString
		pipeline, outputType     sql.NullString
		pipelineKind, outputKind string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT name, recipe, typeof(recipe), "return", typeof("return") FROM recipes WHERE id = ? LIMIT 1`, id).
		Scan(&name, &pipeline, &pipelineKind, &outputType, &outputKind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: recipe %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: recipe %d: %w", ErrUnavailable, id, err)
	}

	if pipelineKind != "text" {
		return nil, fmt.Errorf("%w: recipe %d: pipeline is %s", ErrCorrupt, id, pipelineKind)
	}
	if outputKind != "text" {
		return nil, fmt.Errorf("%w: recipe %d: output type is %s", ErrCorrupt, id, outputKind)
	}

	s.logger.Debug("loaded recipe", zap.Int64("id", id), zap.String("name", name.String))
	return &model.Recipe{
		ID:         id,
		Name:       name.String,
		Pipeline:   pipeline.String,
		OutputType: outputType.String,
	}, nil
}

// GetServer fetches a single server by ID
func (s *Store) GetServer(ctx context.Context, id int64) (*model.Server, error) {
	var (
		name    sql.NullString
		uri     sql.NullString
		uriKind string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT name, uri, typeof(uri) FROM servers WHERE id = ? LIMIT 1`, id).
		Scan(&name, &uri, &uriKind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: server %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: server %d: %w", ErrUnavailable, id, err)
	}

	if uriKind != "text" {
		return nil, fmt.Errorf("%w: server %d: uri is %s", ErrCorrupt, id, uriKind)
	}

	s.logger.Debug("loaded server", zap.Int64("id", id), zap.String("uri", uri.String))
	return &model.Server{
		ID:   id,
		Name: name.String,
		URI:  uri.String,
	}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}
