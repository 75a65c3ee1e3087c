// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

// schemaRegistry tracks which schemas exist and in what order they were
// created. It is not synchronized, the catalog facade owns the lock that
// protects it.
type schemaRegistry struct {
	names []string // creation order, default schema first
	set   map[string]struct{}
}

func newSchemaRegistry(defaultSchema string) *schemaRegistry {
	return &schemaRegistry{
		names: []string{defaultSchema},
		set:   map[string]struct{}{defaultSchema: {}},
	}
}

func (r *schemaRegistry) create(schemaName string) error {
	if _, ok := r.set[schemaName]; ok {
		return ErrSchemaAlreadyExists.WithCausef("Schema [%s] already exists", schemaName)
	}

	r.names = append(r.names, schemaName)
	r.set[schemaName] = struct{}{}
	return nil
}

func (r *schemaRegistry) exists(schemaName string) bool {
	_, ok := r.set[schemaName]
	return ok
}

func (r *schemaRegistry) list() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
