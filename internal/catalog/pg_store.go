package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/toko-checkout/internal/obs"
)

const findVisibleProductsSQL = `SELECT doc
FROM catalog
WHERE product_id = ANY($1)
  AND is_visible
  AND NOT is_deleted`

type queryProvider interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGStore reads published catalog documents from Postgres.
type PGStore struct {
	db queryProvider
}

// NewPGStore constructs a PGStore. A *pgxpool.Pool satisfies queryProvider.
func NewPGStore(db queryProvider) *PGStore {
	return &PGStore{db: db}
}

// FindVisibleProducts implements Lookup.
func (s *PGStore) FindVisibleProducts(ctx context.Context, productIDs []string) ([]Product, error) {
	ids := DistinctIDs(productIDs)
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := s.db.Query(ctx, findVisibleProductsSQL, ids)
	if err != nil {
		obs.ObserveCatalogLookup("postgres", err)
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		obs.ObserveCatalogLookup("postgres", err)
		return nil, fmt.Errorf("collect catalog rows: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		var p Product
		if err := json.Unmarshal(doc, &p); err != nil {
			obs.ObserveCatalogLookup("postgres", err)
			return nil, fmt.Errorf("decode catalog document: %w", err)
		}
		products = append(products, p)
	}
	obs.ObserveCatalogLookup("postgres", nil)
	return sellableOnly(products), nil
}
