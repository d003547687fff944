package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps every collection in a single documents table with a
// JSONB payload column, so new collection names need no schema changes.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and ensures the documents table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT PRIMARY KEY,
			data JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
	`
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, collection string, order OrderSpec, limit int) ([]Document, error) {
	return s.Find(ctx, collection, nil, order, limit)
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter, order OrderSpec, limit int) ([]Document, error) {
	field := order.Field
	if field == "" {
		field = CreatedDateField
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}

	query := `SELECT data FROM documents WHERE collection = $1`
	args := []any{collection}

	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter: %w", err)
		}
		query += fmt.Sprintf(` AND data @> $%d::jsonb`, len(args)+1)
		args = append(args, string(filterJSON))
	}

	query += fmt.Sprintf(` ORDER BY data -> $%d `, len(args)+1) + dir
	args = append(args, field)

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var doc Document
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, data map[string]any) (Document, error) {
	doc := stamped(data)

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := s.db.Exec(ctx, query, collection, doc.ID(), string(payload)); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, patch map[string]any) (Document, error) {
	clean := withoutID(patch)
	payload, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	query := `
		UPDATE documents SET data = data || $3::jsonb
		WHERE collection = $1 AND id = $2
		RETURNING data
	`
	var doc Document
	err = s.db.QueryRow(ctx, query, collection, id, string(payload)).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.Exec(ctx, query, collection, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, collection string, filter Filter, data map[string]any) (Document, error) {
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockCollection(ctx, tx, collection); err != nil {
		return nil, err
	}

	var id string
	err = tx.QueryRow(ctx,
		`SELECT id FROM documents WHERE collection = $1 AND data @> $2::jsonb LIMIT 1 FOR UPDATE`,
		collection, string(filterJSON),
	).Scan(&id)

	var doc Document
	switch {
	case err == nil:
		payload, merr := json.Marshal(withoutID(data))
		if merr != nil {
			return nil, fmt.Errorf("failed to encode patch: %w", merr)
		}
		err = tx.QueryRow(ctx,
			`UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2 RETURNING data`,
			collection, id, string(payload),
		).Scan(&doc)
		if err != nil {
			return nil, fmt.Errorf("failed to update document: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		merged := make(map[string]any, len(filter)+len(data))
		for k, v := range filter {
			merged[k] = v
		}
		for k, v := range data {
			merged[k] = v
		}
		doc = stamped(merged)
		payload, merr := json.Marshal(doc)
		if merr != nil {
			return nil, fmt.Errorf("failed to encode document: %w", merr)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
			collection, doc.ID(), string(payload),
		); err != nil {
			return nil, fmt.Errorf("failed to create document: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to match document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) CreateExclusive(ctx context.Context, collection, flagField string, data map[string]any) (Document, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockCollection(ctx, tx, collection); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET data = jsonb_set(data, ARRAY[$2], 'false'::jsonb)
		 WHERE collection = $1 AND data ->> $2 = 'true'`,
		collection, flagField,
	); err != nil {
		return nil, fmt.Errorf("failed to clear active flag: %w", err)
	}

	withFlag := make(map[string]any, len(data)+1)
	for k, v := range data {
		withFlag[k] = v
	}
	withFlag[flagField] = true
	doc := stamped(withFlag)

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
		collection, doc.ID(), string(payload),
	); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit create: %w", err)
	}
	return doc, nil
}

// lockCollection serializes multi-statement writes on one collection. At
// READ COMMITTED two concurrent clear+insert transactions cannot see each
// other's uncommitted insert, so both flags would survive; the advisory lock
// makes the second transaction wait for the first to commit.
func lockCollection(ctx context.Context, tx pgx.Tx, collection string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, collection); err != nil {
		return fmt.Errorf("failed to lock collection: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// stamped copies data, injecting a fresh id and a created_date when absent.
func stamped(data map[string]any) Document {
	doc := make(Document, len(data)+2)
	for k, v := range data {
		doc[k] = v
	}
	doc["id"] = uuid.New().String()
	if _, ok := doc[CreatedDateField]; !ok {
		doc[CreatedDateField] = Timestamp()
	}
	return doc
}

func withoutID(patch map[string]any) map[string]any {
	clean := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" {
			continue
		}
		clean[k] = v
	}
	return clean
}
