// Package corpusrepo persists embedded corpus snapshots.
package corpusrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
)

// PostgresRepository implements retrieval.IndexRepository using pgx and a
// pgvector column. One fingerprint owns one ordered set of rows.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Load fetches the snapshot stored for the fingerprint, in corpus order.
func (r *PostgresRepository) Load(ctx context.Context, fingerprint string) (retrieval.Snapshot, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT question, answer, category, embedding
		FROM corpus_snapshots
		WHERE fingerprint = $1
		ORDER BY position
	`, fingerprint)
	if err != nil {
		return retrieval.Snapshot{}, false, err
	}
	defer rows.Close()

	var snap retrieval.Snapshot
	for rows.Next() {
		var (
			entry retrieval.Entry
			vec   pgvector.Vector
		)
		if err := rows.Scan(&entry.Question, &entry.Answer, &entry.Category, &vec); err != nil {
			return retrieval.Snapshot{}, false, err
		}
		snap.Entries = append(snap.Entries, entry)
		snap.Vectors = append(snap.Vectors, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return retrieval.Snapshot{}, false, err
	}
	if len(snap.Entries) == 0 {
		return retrieval.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Save replaces the rows stored for the fingerprint.
func (r *PostgresRepository) Save(ctx context.Context, fingerprint string, snap retrieval.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM corpus_snapshots WHERE fingerprint = $1`, fingerprint); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, entry := range snap.Entries {
		batch.Queue(`
			INSERT INTO corpus_snapshots (fingerprint, position, question, answer, category, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, fingerprint, i, entry.Question, entry.Answer, entry.Category, pgvector.NewVector(snap.Vectors[i]))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ retrieval.IndexRepository = (*PostgresRepository)(nil)
