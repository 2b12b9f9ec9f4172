package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

const getCartSQL = `SELECT doc FROM carts WHERE id = $1`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore loads cart documents from Postgres. Carts are written by the cart
// mutation service; this store only reads them.
type PGStore struct {
	db rowQuerier
}

// NewPGStore constructs a PGStore. A *pgxpool.Pool satisfies rowQuerier.
func NewPGStore(db rowQuerier) *PGStore {
	return &PGStore{db: db}
}

// Get returns the cart with the given internal id.
func (s *PGStore) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.db == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	var doc []byte
	if err := s.db.QueryRow(ctx, getCartSQL, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(doc, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart %s: %w", id, err)
	}
	if c.ID == "" {
		c.ID = id
	}
	return c, nil
}
