// Package migrate applies a directory of plain SQL migration files to
// a driver.Driver in lexicographic filename order, ahead of running
// the query preparation pipeline against the resulting schema.
package migrate

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/migrate"

	"github.com/querybind/querybind/internal/driver"
)

// Apply loads every *.sql file under dirPath via
// ariga.io/atlas/sql/migrate.LocalDir (which already returns Files()
// in sorted filename order) and runs each one's statements through
// drv.BatchExecute, stopping at the first failure.
func Apply(ctx context.Context, drv driver.Driver, dirPath string) error {
	dir, err := migrate.NewLocalDir(dirPath)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	files, err := dir.Files()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, f := range files {
		if err := drv.BatchExecute(ctx, string(f.Bytes())); err != nil {
			return fmt.Errorf("migrate: %s: %w", f.Name(), err)
		}
	}
	return nil
}
