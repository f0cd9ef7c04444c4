package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docmentor/docmentor/internal/core/domain"
)

// UnitRepository stores chunker output so the api process can rebuild
// the retriever without re-processing the document.
type UnitRepository struct {
	db *sql.DB
}

func NewUnitRepository(db *sql.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// ReplaceUnits atomically swaps the persisted unit set of a document.
// Ordinal preserves the chunker's output order, which retrieval
// tie-breaking depends on.
func (r *UnitRepository) ReplaceUnits(ctx context.Context, documentID string, units []domain.RetrievalUnit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin units tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM retrieval_units WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete old units: %w", err)
	}

	for i, unit := range units {
		_, err := tx.ExecContext(ctx, `
INSERT INTO retrieval_units (document_id, ordinal, content, source, page_number, element_id)
VALUES ($1,$2,$3,$4,$5,$6)
`,
			documentID, i, unit.Content,
			unit.Metadata.Source, unit.Metadata.PageNumber, unit.Metadata.ElementID,
		)
		if err != nil {
			return fmt.Errorf("insert unit %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit units tx: %w", err)
	}
	return nil
}

func (r *UnitRepository) LoadUnits(ctx context.Context, documentID string) ([]domain.RetrievalUnit, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT content, source, page_number, element_id
FROM retrieval_units
WHERE document_id = $1
ORDER BY ordinal
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []domain.RetrievalUnit
	for rows.Next() {
		var unit domain.RetrievalUnit
		if err := rows.Scan(
			&unit.Content,
			&unit.Metadata.Source, &unit.Metadata.PageNumber, &unit.Metadata.ElementID,
		); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}
