// Package postgres implements driver.Driver against a live Postgres
// server via database/sql and github.com/lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/querybind/querybind/internal/driver"
)

// catalog resolves pg_type OIDs into driver.PgType trees, caching
// every OID it has already resolved within one run so an OID's
// pg_type row is fetched by typeRowQuery at most once. Lookups by name
// (resolveByName) are not cached: each one issues its own by-name
// query before consulting the OID cache. This is purely a
// network-cost cache: the registrar (internal/types) is what makes
// repeated registration of the same (schema, name) idempotent.
type catalog struct {
	db    *sql.DB
	byOID map[int64]driver.PgType
}

func newCatalog(db *sql.DB) *catalog {
	return &catalog{db: db, byOID: make(map[int64]driver.PgType)}
}

// pgTypeRow mirrors one row of pg_catalog.pg_type joined with its
// namespace, enough to classify the type and recurse.
type pgTypeRow struct {
	oid       int64
	schema    string
	name      string
	typtype   string // 'b' base, 'd' domain, 'e' enum, 'c' composite
	typcat    string // 'A' array, from typcategory
	elemOID   int64
	domBase   int64
	relOID    int64 // pg_class.oid backing a composite (typrelid)
}

const typeRowQuery = `
SELECT t.oid, n.nspname, t.typname, t.typtype, t.typcategory, t.typelem, t.typbasetype, t.typrelid
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
WHERE t.oid = $1`

func (c *catalog) resolveOID(ctx context.Context, oid int64) (driver.PgType, error) {
	if t, ok := c.byOID[oid]; ok {
		return t, nil
	}

	var row pgTypeRow
	if err := c.db.QueryRowContext(ctx, typeRowQuery, oid).Scan(
		&row.oid, &row.schema, &row.name, &row.typtype, &row.typcat, &row.elemOID, &row.domBase, &row.relOID,
	); err != nil {
		return nil, fmt.Errorf("postgres: resolve type oid %d: %w", oid, err)
	}

	switch {
	case row.typcat == "A" && row.elemOID != 0:
		elem, err := c.resolveOID(ctx, row.elemOID)
		if err != nil {
			return nil, err
		}
		t := driver.ArrayOf(row.schema, row.name, elem)
		c.byOID[oid] = t
		return t, nil

	case row.typtype == "d":
		inner, err := c.resolveOID(ctx, row.domBase)
		if err != nil {
			return nil, err
		}
		t := driver.DomainOf(row.schema, row.name, inner)
		c.byOID[oid] = t
		return t, nil

	case row.typtype == "e":
		variants, err := c.enumVariants(ctx, oid)
		if err != nil {
			return nil, err
		}
		t := driver.EnumOf(row.schema, row.name, variants)
		c.byOID[oid] = t
		return t, nil

	case row.typtype == "c":
		// Pre-register a fieldless placeholder before recursing, the
		// same precaution the registrar takes for composite types
		// (internal/types.Registrar.Register).
		placeholder := driver.CompositeOf(row.schema, row.name, nil)
		c.byOID[oid] = placeholder
		fields, err := c.compositeFields(ctx, row.relOID)
		if err != nil {
			return nil, err
		}
		placeholder.FieldList = fields
		return placeholder, nil

	default:
		t := driver.Primitive(row.schema, row.name)
		c.byOID[oid] = t
		return t, nil
	}
}

const typeRowByNameQuery = `
SELECT t.oid, n.nspname, t.typname, t.typtype, t.typcategory, t.typelem, t.typbasetype, t.typrelid
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
WHERE t.typname = $1
ORDER BY n.nspname = 'pg_catalog' DESC
LIMIT 1`

// resolveByName looks up a type by its bare name, as reported by
// pg_prepared_statements.parameter_types and
// sql.ColumnType.DatabaseTypeName (both report the unqualified
// typname, stripped of any array "[]" suffix for element lookups).
// pg_catalog types are preferred on a name collision since every
// primitive this driver cares about lives there.
func (c *catalog) resolveByName(ctx context.Context, rawName string) (driver.PgType, error) {
	name, arraySuffix := strings.CutSuffix(rawName, "[]")
	if arraySuffix {
		elem, err := c.resolveByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return driver.ArrayOf("pg_catalog", "_"+name, elem), nil
	}

	var row pgTypeRow
	if err := c.db.QueryRowContext(ctx, typeRowByNameQuery, name).Scan(
		&row.oid, &row.schema, &row.name, &row.typtype, &row.typcat, &row.elemOID, &row.domBase, &row.relOID,
	); err != nil {
		return nil, fmt.Errorf("postgres: resolve type name %q: %w", name, err)
	}
	return c.resolveOID(ctx, row.oid)
}

const enumVariantsQuery = `
SELECT e.enumlabel
FROM pg_catalog.pg_enum e
WHERE e.enumtypid = $1
ORDER BY e.enumsortorder`

func (c *catalog) enumVariants(ctx context.Context, enumOID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, enumVariantsQuery, enumOID)
	if err != nil {
		return nil, fmt.Errorf("postgres: enum variants for oid %d: %w", enumOID, err)
	}
	defer rows.Close()

	var variants []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

const compositeFieldsQuery = `
SELECT a.attname, a.atttypid
FROM pg_catalog.pg_attribute a
WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

func (c *catalog) compositeFields(ctx context.Context, relOID int64) ([]driver.CompositeAttr, error) {
	rows, err := c.db.QueryContext(ctx, compositeFieldsQuery, relOID)
	if err != nil {
		return nil, fmt.Errorf("postgres: composite fields for relid %d: %w", relOID, err)
	}
	defer rows.Close()

	var attrs []driver.CompositeAttr
	for rows.Next() {
		var name string
		var typOID int64
		if err := rows.Scan(&name, &typOID); err != nil {
			return nil, err
		}
		ft, err := c.resolveOID(ctx, typOID)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, driver.CompositeAttr{Name: name, Type: ft})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attrs, nil
}
