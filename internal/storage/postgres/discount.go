package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/discount"
)

const (
	discountColumns = `id, name, code, description, type, policy, value, max_discount, rules, expires_at`

	listActiveDiscountsSQL = `SELECT ` + discountColumns + `
		FROM discounts
		WHERE active = TRUE AND expires_at > $1 AND NOT (type = ANY($2))
		ORDER BY expires_at, name`

	getDiscountByCodeSQL = `SELECT ` + discountColumns + `
		FROM discounts WHERE UPPER(code) = UPPER($1) AND active = TRUE`

	upsertDiscountSQL = `INSERT INTO discounts
		(id, name, code, description, type, policy, value, max_discount, rules, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		ON CONFLICT ((UPPER(code))) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			policy = EXCLUDED.policy,
			value = EXCLUDED.value,
			max_discount = EXCLUDED.max_discount,
			rules = EXCLUDED.rules,
			expires_at = EXCLUDED.expires_at,
			active = TRUE,
			updated_at = now()
		RETURNING id`

	deactivateDiscountSQL = `UPDATE discounts SET active = FALSE, updated_at = now()
		WHERE UPPER(code) = UPPER($1) AND active = TRUE`
)

// Policy kinds as stored in the policy column.
const (
	policyPercentage = "percentage"
	policyFixed      = "fixed"
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool, now: time.Now}
}

// ListActive returns active, unexpired discounts whose type is not excluded,
// soonest-expiring first.
func (r *DiscountRepository) ListActive(ctx context.Context, exclude ...discount.Type) ([]discount.Definition, error) {
	excluded := make([]string, len(exclude))
	for i, t := range exclude {
		excluded[i] = string(t)
	}

	rows, err := r.pool.Query(ctx, listActiveDiscountsSQL, r.now(), excluded)
	if err != nil {
		return nil, fmt.Errorf("listing active discounts: %w", err)
	}

	defs, err := pgx.CollectRows(rows, scanDefinition)
	if err != nil {
		return nil, fmt.Errorf("listing active discounts: %w", err)
	}
	return defs, nil
}

// FindByCode looks up an active discount by its code (case-insensitive).
// Expired discounts are returned so callers can tell them apart from unknown
// codes. Returns discount.ErrDiscountNotFound when no row matches.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Definition, error) {
	rows, err := r.pool.Query(ctx, getDiscountByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}

	def, err := pgx.CollectExactlyOneRow(rows, scanDefinition)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}
	return &def, nil
}

// Upsert inserts or replaces discounts keyed by their lookup code in a single
// transaction and returns the stored IDs in input order. Definitions without
// an ID get a fresh UUID; existing rows keep theirs.
func (r *DiscountRepository) Upsert(ctx context.Context, defs ...discount.Definition) ([]string, error) {
	batch := &pgx.Batch{}
	for _, def := range defs {
		args, err := upsertArgs(def)
		if err != nil {
			return nil, errors.Wrapf(err, "discount %q", def.Name)
		}
		batch.Queue(upsertDiscountSQL, args...)
	}

	ids := make([]string, 0, len(defs))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		defer func() { _ = br.Close() }()

		for _, def := range defs {
			var id string
			if err := br.QueryRow().Scan(&id); err != nil {
				return fmt.Errorf("upserting discount %q: %w", def.LookupCode(), err)
			}
			ids = append(ids, id)
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Deactivate hides the discount addressed by code from lookups. It returns
// discount.ErrDiscountNotFound when no active row matches.
func (r *DiscountRepository) Deactivate(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, deactivateDiscountSQL, code)
	if err != nil {
		return fmt.Errorf("deactivating discount %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrDiscountNotFound
	}
	return nil
}

func upsertArgs(def discount.Definition) ([]any, error) {
	id := def.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Wrap(err, "parse id")
	}

	kind, value, err := encodePolicy(def.Policy)
	if err != nil {
		return nil, err
	}

	rules, err := encodeRules(def.Rules)
	if err != nil {
		return nil, err
	}

	return []any{
		id, def.Name, def.LookupCode(), def.Description, string(def.Type),
		kind, value, def.MaxDiscount, rules, def.ExpiresAt,
	}, nil
}

func encodePolicy(p discount.Policy) (string, decimal.Decimal, error) {
	switch p := p.(type) {
	case discount.Percentage:
		return policyPercentage, p.Percent, nil
	case discount.Fixed:
		return policyFixed, p.Value, nil
	default:
		return "", decimal.Zero, errors.Errorf("unsupported policy %T", p)
	}
}

func decodePolicy(kind string, value decimal.Decimal) (discount.Policy, error) {
	switch kind {
	case policyPercentage:
		return discount.Percentage{Percent: value}, nil
	case policyFixed:
		return discount.Fixed{Value: value}, nil
	default:
		return nil, errors.Errorf("unknown policy kind %q", kind)
	}
}

func scanDefinition(row pgx.CollectableRow) (discount.Definition, error) {
	var (
		def        discount.Definition
		typ        string
		policyKind string
		value      decimal.Decimal
		rules      []byte
	)
	if err := row.Scan(
		&def.ID, &def.Name, &def.Code, &def.Description, &typ,
		&policyKind, &value, &def.MaxDiscount, &rules, &def.ExpiresAt,
	); err != nil {
		return def, err
	}

	var err error
	if def.Type, err = discount.ParseType(typ); err != nil {
		return def, err
	}
	if def.Policy, err = decodePolicy(policyKind, value); err != nil {
		return def, err
	}
	if def.Rules, err = decodeRules(rules); err != nil {
		return def, err
	}
	return def, nil
}
