package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Schema contains the DDL for the three catalog tables. Applied by the CLI
// migrate command and by the integration test harness.
//
//go:embed schema.sql
var Schema string

// PostgresCatalog implements catalog access on top of a pgx pool.
// The quote pipeline consumes it through its own narrow interface so tests
// can substitute deterministic fixtures.
type PostgresCatalog struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresCatalog creates a catalog backed by the given pool.
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{
		pool:   pool,
		logger: log.With().Str("component", "catalog").Logger(),
	}
}

// ResolveListings returns active listings for exactly one filter kind,
// honoring the ids > category > terms precedence.
func (c *PostgresCatalog) ResolveListings(ctx context.Context, f ListingFilter) ([]Listing, error) {
	where := `l.active AND (l.material_id IS NULL OR m.active)`
	args := []any{}

	switch f.Kind() {
	case FilterMaterialIDs:
		where += ` AND l.material_id = ANY($1)`
		args = append(args, f.MaterialIDs)
	case FilterCategory:
		where += ` AND l.category = $1`
		args = append(args, strings.TrimSpace(f.Category))
	case FilterTerms:
		clauses := make([]string, 0, len(f.Terms))
		for _, term := range f.CleanTerms() {
			args = append(args, "%"+term+"%")
			clauses = append(clauses, "l.name ILIKE $"+strconv.Itoa(len(args)))
		}
		where += " AND (" + strings.Join(clauses, " OR ") + ")"
	default:
		// Unbounded queries are a deliberate safety boundary
		return []Listing{}, nil
	}

	query := `
		SELECT l.id, l.store_id, l.material_id, l.name, l.category, l.price, l.unit
		FROM listings l
		LEFT JOIN materials m ON m.id = l.material_id
		WHERE ` + where + `
		ORDER BY l.name`

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.StoreID, &l.MaterialID, &l.Name, &l.Category, &l.Price, &l.Unit); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ListStores returns all stores. The location column is read as text and
// stays opaque until the geo parser decodes it.
func (c *PostgresCatalog) ListStores(ctx context.Context) ([]Store, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, name, contact_handle, location, address
		FROM stores
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	stores := []Store{}
	for rows.Next() {
		var s Store
		var rawLocation *string
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactHandle, &rawLocation, &s.Address); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		if rawLocation != nil {
			s.RawLocation = *rawLocation
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// GetStore returns one store or pgx.ErrNoRows.
func (c *PostgresCatalog) GetStore(ctx context.Context, id string) (*Store, error) {
	var s Store
	var rawLocation *string
	err := c.pool.QueryRow(ctx, `
		SELECT id, name, contact_handle, location, address
		FROM stores WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.ContactHandle, &rawLocation, &s.Address)
	if err != nil {
		return nil, err
	}
	if rawLocation != nil {
		s.RawLocation = *rawLocation
	}
	return &s, nil
}

// ListMaterials returns the active master catalog ordered by name.
func (c *PostgresCatalog) ListMaterials(ctx context.Context) ([]Material, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, name, category, unit, active
		FROM materials
		WHERE active
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.Active); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// GetMaterials returns the active materials matching the given ids.
func (c *PostgresCatalog) GetMaterials(ctx context.Context, ids []int64) ([]Material, error) {
	if len(ids) == 0 {
		return []Material{}, nil
	}
	rows, err := c.pool.Query(ctx, `
		SELECT id, name, category, unit, active
		FROM materials
		WHERE active AND id = ANY($1)
		ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("query materials by id: %w", err)
	}
	defer rows.Close()

	materials := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.Active); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// ListCategories returns the distinct categories of the active catalog.
func (c *PostgresCatalog) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT DISTINCT category FROM materials
		WHERE active AND category <> ''
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// CreateStore registers a merchant store. The location is stored as EWKT,
// the format new rows have used since the schema stabilized.
func (c *PostgresCatalog) CreateStore(ctx context.Context, s Store) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO stores (id, name, contact_handle, location, address)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Name, s.ContactHandle, s.RawLocation, s.Address)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// CreateListing inserts a single listing row. Each write is independently
// atomic; concurrent edits by the same merchant are last-write-wins.
func (c *PostgresCatalog) CreateListing(ctx context.Context, l Listing) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO listings (id, store_id, material_id, name, category, price, unit, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)`,
		l.ID, l.StoreID, l.MaterialID, l.Name, l.Category, l.Price, l.Unit)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// UpdateListingPrice sets a new price on one listing row.
func (c *PostgresCatalog) UpdateListingPrice(ctx context.Context, listingID string, price float64) error {
	tag, err := c.pool.Exec(ctx, `
		UPDATE listings SET price = $2 WHERE id = $1`, listingID, price)
	if err != nil {
		return fmt.Errorf("update listing price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteListing removes one listing row.
func (c *PostgresCatalog) DeleteListing(ctx context.Context, listingID string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListInventory returns every listing of one store, newest first, including
// inactive rows so the merchant can see the whole inventory.
func (c *PostgresCatalog) ListInventory(ctx context.Context, storeID string) ([]Listing, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, store_id, material_id, name, category, price, unit
		FROM listings
		WHERE store_id = $1
		ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.StoreID, &l.MaterialID, &l.Name, &l.Category, &l.Price, &l.Unit); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
