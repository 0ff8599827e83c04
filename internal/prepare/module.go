package prepare

import (
	"context"

	"github.com/querybind/querybind/internal/driver"
	"github.com/querybind/querybind/internal/ir"
	"github.com/querybind/querybind/internal/query"
	"github.com/querybind/querybind/internal/types"
)

// Module implements spec §4.C: processes queries in source order,
// accumulating into the module's three IR maps. Any per-query error
// aborts the module with that query's location attached (it already
// is, by prepareQuery).
func Module(ctx context.Context, drv driver.Driver, registrar *types.Registrar, m query.Module) (*ir.PreparedModule, error) {
	moduleIR := ir.NewModule(m.Name)
	for _, q := range m.Queries {
		if err := prepareQuery(ctx, drv, moduleIR, registrar, q, m.Path); err != nil {
			return nil, err
		}
	}
	return moduleIR, nil
}

// Result is the output of a full run: one PreparedModule per input
// module, plus every Custom type interned along the way (the
// flattened enum/domain/composite declarations the renderer needs —
// see SPEC_FULL.md's Supplemented Features).
type Result struct {
	Modules []*ir.PreparedModule
	Types   []*types.CoreType
}

// All prepares every module in source order (spec §4.C's "prepare" top
// level), sharing one registrar across all of them so a type defined
// in one module and referenced from another is only interned once.
func All(ctx context.Context, drv driver.Driver, modules []query.Module) (*Result, error) {
	registrar := types.NewRegistrar()
	prepared := make([]*ir.PreparedModule, 0, len(modules))
	for _, m := range modules {
		mod, err := Module(ctx, drv, registrar, m)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, mod)
	}
	return &Result{Modules: prepared, Types: registrar.CustomTypesInOrder()}, nil
}
