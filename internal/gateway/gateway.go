// Package gateway is the generic data-access layer: filtered reads, inserts,
// updates and deletes against the named relations of the hub.
package gateway

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"gorm.io/gorm"

	"reseller_hub/internal/models"
)

type Relation string

const (
	Items     Relation = "items"
	Resellers Relation = "resellers"
	Orders    Relation = "orders"
)

// Relations lists every relation the gateway serves, in dependency order:
// orders reference both items and resellers.
var Relations = []Relation{Items, Resellers, Orders}

var primaryKeys = map[Relation]string{
	Items:     "item_id",
	Resellers: "reseller_id",
	Orders:    "order_id",
}

func ParseRelation(name string) (Relation, error) {
	rel := Relation(name)
	if _, ok := primaryKeys[rel]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelation, name)
	}
	return rel, nil
}

// PrimaryKey returns the identifier column of the relation.
func (r Relation) PrimaryKey() string {
	return primaryKeys[r]
}

func (r Relation) model() interface{} {
	switch r {
	case Items:
		return &models.Item{}
	case Resellers:
		return &models.Reseller{}
	default:
		return &models.Order{}
	}
}

// Filter is a conjunction of column equality tests.
type Filter map[string]interface{}

// Eq builds a single-column filter.
func Eq(column string, value interface{}) Filter {
	return Filter{column: value}
}

type OrderBy struct {
	Column string
	Desc   bool
}

// RowSet holds raw rows with their columns in table order.
type RowSet struct {
	Columns []string
	Rows    [][]interface{}
}

func (r *RowSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Gateway struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// Transaction runs fn against a gateway bound to a single transaction.
func (g *Gateway) Transaction(ctx context.Context, fn func(tx *Gateway) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gateway{db: tx})
	})
}

func (g *Gateway) Select(ctx context.Context, rel Relation, filter Filter, order ...OrderBy) (*RowSet, error) {
	const op = "select"

	if _, err := ParseRelation(string(rel)); err != nil {
		return nil, err
	}
	query := g.db.WithContext(ctx).Table(string(rel))
	query, err := applyFilter(query, filter)
	if err != nil {
		return nil, err
	}
	for _, o := range order {
		if !identifier.MatchString(o.Column) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		query = query.Order(o.Column + " " + dir)
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, Classify(op, rel, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, Classify(op, rel, err)
	}

	set := &RowSet{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, Classify(op, rel, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify(op, rel, err)
	}
	return set, nil
}

func (g *Gateway) Insert(ctx context.Context, rel Relation, row map[string]interface{}) error {
	if _, err := ParseRelation(string(rel)); err != nil {
		return err
	}
	if err := checkColumns(row); err != nil {
		return err
	}
	return Classify("insert", rel, g.db.WithContext(ctx).Model(rel.model()).Create(row).Error)
}

// Update applies patch to every row matching filter. Matching nothing is
// reported as ErrNotFound.
func (g *Gateway) Update(ctx context.Context, rel Relation, patch map[string]interface{}, filter Filter) error {
	const op = "update"

	if _, err := ParseRelation(string(rel)); err != nil {
		return err
	}
	if len(filter) == 0 {
		return ErrUnfiltered
	}
	if err := checkColumns(patch); err != nil {
		return err
	}
	query, err := applyFilter(g.db.WithContext(ctx).Model(rel.model()), filter)
	if err != nil {
		return err
	}
	result := query.Updates(patch)
	if result.Error != nil {
		return Classify(op, rel, result.Error)
	}
	if result.RowsAffected == 0 {
		return Classify(op, rel, gorm.ErrRecordNotFound)
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, rel Relation, filter Filter) error {
	if _, err := ParseRelation(string(rel)); err != nil {
		return err
	}
	if len(filter) == 0 {
		return ErrUnfiltered
	}
	query, err := applyFilter(g.db.WithContext(ctx), filter)
	if err != nil {
		return err
	}
	return Classify("delete", rel, query.Delete(rel.model()).Error)
}

// DeleteReferencing removes every row of rel whose column points at a row of
// parent. Bulk maintenance uses it to drop orders before the items or
// resellers they reference.
func (g *Gateway) DeleteReferencing(ctx context.Context, rel Relation, column string, parent Relation) (int64, error) {
	if _, err := ParseRelation(string(rel)); err != nil {
		return 0, err
	}
	if _, err := ParseRelation(string(parent)); err != nil {
		return 0, err
	}
	if !identifier.MatchString(column) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}
	db := g.db.WithContext(ctx)
	parents := db.Table(string(parent)).Select(parent.PrimaryKey())
	result := db.Where(column+" IN (?)", parents).Delete(rel.model())
	return result.RowsAffected, Classify("delete", rel, result.Error)
}

// DeleteAll empties a relation. It is irreversible.
func (g *Gateway) DeleteAll(ctx context.Context, rel Relation) (int64, error) {
	if _, err := ParseRelation(string(rel)); err != nil {
		return 0, err
	}
	result := g.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(rel.model())
	return result.RowsAffected, Classify("delete", rel, result.Error)
}

func applyFilter(query *gorm.DB, filter Filter) (*gorm.DB, error) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		if !identifier.MatchString(k) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query = query.Where(k+" = ?", filter[k])
	}
	return query, nil
}

func checkColumns(row map[string]interface{}) error {
	for k := range row {
		if !identifier.MatchString(k) {
			return fmt.Errorf("%w: %q", ErrInvalidColumn, k)
		}
	}
	return nil
}
