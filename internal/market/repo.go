package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres-backed Store.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{DB: db} }

// cond accumulates a dynamic WHERE clause.
type cond struct {
	clauses []string
	args    []any
}

func (c *cond) add(expr string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(expr, len(c.args)))
}

func (c *cond) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// ---- users ----

func (r *Repo) InsertUser(ctx context.Context, u User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, email, password_hash, company, contact_person, phone,
		                  role, address, city, state, kyc_verified, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		u.ID, u.Email, u.PasswordHash, u.Company, u.ContactPerson, u.Phone,
		u.Role, u.Address, u.City, u.State, u.KYCVerified, u.CreatedAt, u.UpdatedAt)
	return err
}

const userCols = `id, email, password_hash, company, contact_person, phone,
                  role, address, city, state, kyc_verified, created_at, updated_at`

func (r *Repo) scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Company, &u.ContactPerson, &u.Phone,
		&u.Role, &u.Address, &u.City, &u.State, &u.KYCVerified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("%w: user", ErrNotFound)
	}
	return u, err
}

func (r *Repo) UserByID(ctx context.Context, id string) (User, error) {
	return r.scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email))
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// ---- products ----

const productCols = `id, supplier_id, title, ash_type, quantity_available, price_per_ton,
                     location, city, state, quality_specs, test_report_url, description,
                     is_active, created_at, updated_at`

func (r *Repo) InsertProduct(ctx context.Context, p Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(`+productCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.SupplierID, p.Title, p.AshType, p.QuantityAvailable, p.PricePerTon,
		p.Location, p.City, p.State, p.QualitySpecs, p.TestReportURL, p.Description,
		p.IsActive, p.CreatedAt, p.UpdatedAt)
	return err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SupplierID, &p.Title, &p.AshType, &p.QuantityAvailable, &p.PricePerTon,
		&p.Location, &p.City, &p.State, &p.QualitySpecs, &p.TestReportURL, &p.Description,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: product", ErrNotFound)
	}
	return p, err
}

func (r *Repo) ProductByID(ctx context.Context, id string) (Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func productCond(f ProductFilter) *cond {
	c := &cond{}
	if f.SupplierID != "" {
		c.add(`supplier_id=$%d`, f.SupplierID)
	}
	if f.AshType != "" {
		c.add(`ash_type=$%d`, f.AshType)
	}
	if f.City != "" {
		c.add(`city ILIKE $%d`, "%"+f.City+"%")
	}
	if f.MinQuantity != nil {
		c.add(`quantity_available >= $%d`, *f.MinQuantity)
	}
	if f.MaxPrice != nil {
		c.add(`price_per_ton <= $%d`, *f.MaxPrice)
	}
	if f.ActiveOnly {
		c.add(`is_active=$%d`, true)
	}
	return c
}

func (r *Repo) Products(ctx context.Context, f ProductFilter) ([]Product, error) {
	c := productCond(f)
	q := `SELECT ` + productCols + ` FROM products` + c.where()
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	rows, err := r.DB.Query(ctx, q, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) CountProducts(ctx context.Context, f ProductFilter) (int64, error) {
	c := productCond(f)
	var n int64
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`+c.where(), c.args...).Scan(&n)
	return n, err
}

func (r *Repo) AddProductQuantity(ctx context.Context, id string, delta int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET quantity_available = quantity_available + $2, updated_at = now()
		WHERE id=$1`, id, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return nil
}

// ---- demands ----

const demandCols = `id, buyer_id, title, ash_type, quantity_required, max_price_per_ton,
                    delivery_location, delivery_city, delivery_state, required_by,
                    quality_requirements, description, is_active, created_at`

func (r *Repo) InsertDemand(ctx context.Context, d Demand) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO demands(`+demandCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		d.ID, d.BuyerID, d.Title, d.AshType, d.QuantityRequired, d.MaxPricePerTon,
		d.DeliveryLocation, d.DeliveryCity, d.DeliveryState, d.RequiredBy,
		d.QualityRequirements, d.Description, d.IsActive, d.CreatedAt)
	return err
}

func scanDemand(row pgx.Row) (Demand, error) {
	var d Demand
	err := row.Scan(&d.ID, &d.BuyerID, &d.Title, &d.AshType, &d.QuantityRequired, &d.MaxPricePerTon,
		&d.DeliveryLocation, &d.DeliveryCity, &d.DeliveryState, &d.RequiredBy,
		&d.QualityRequirements, &d.Description, &d.IsActive, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Demand{}, fmt.Errorf("%w: demand", ErrNotFound)
	}
	return d, err
}

func demandCond(f DemandFilter) *cond {
	c := &cond{}
	if f.BuyerID != "" {
		c.add(`buyer_id=$%d`, f.BuyerID)
	}
	if f.AshType != "" {
		c.add(`ash_type=$%d`, f.AshType)
	}
	if f.MaxQuantity != nil {
		c.add(`quantity_required <= $%d`, *f.MaxQuantity)
	}
	if f.MinPrice != nil {
		c.add(`max_price_per_ton >= $%d`, *f.MinPrice)
	}
	if f.ActiveOnly {
		c.add(`is_active=$%d`, true)
	}
	return c
}

func (r *Repo) Demands(ctx context.Context, f DemandFilter) ([]Demand, error) {
	c := demandCond(f)
	q := `SELECT ` + demandCols + ` FROM demands` + c.where()
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	rows, err := r.DB.Query(ctx, q, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Demand{}
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) CountDemands(ctx context.Context, f DemandFilter) (int64, error) {
	c := demandCond(f)
	var n int64
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM demands`+c.where(), c.args...).Scan(&n)
	return n, err
}
