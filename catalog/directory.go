// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/vortexdb/memcatalog/catalog/id"
	"github.com/vortexdb/memcatalog/pkg/assert"
)

// tableRecord is the directory-owned state of one table. It is referenced
// externally only through TableHandle values, never aliased.
type tableRecord struct {
	handle     TableHandle
	columns    []ColumnSpec
	properties map[string]string
	fragments  []Fragment
	lifecycle  *fsm.FSM
}

// tableDirectory maps (schema, table) names to records and keeps a secondary
// index by table id for the fencing checks. It is not synchronized, the
// catalog facade owns the lock that protects it.
type tableDirectory struct {
	idAlloc id.Allocator

	tables     map[SchemaTableName]*tableRecord
	tablesByID map[TableID]*tableRecord
	order      []TableID // insertion order, keeps listings deterministic
}

func newTableDirectory(idAlloc id.Allocator) *tableDirectory {
	return &tableDirectory{
		idAlloc:    idAlloc,
		tables:     make(map[SchemaTableName]*tableRecord),
		tablesByID: make(map[TableID]*tableRecord),
	}
}

func (d *tableDirectory) lookup(schemaName, tableName string) (TableHandle, bool) {
	record, ok := d.tables[SchemaTableName{SchemaName: schemaName, TableName: tableName}]
	if !ok {
		return TableHandle{}, false
	}
	return record.handle, true
}

// list returns the handles of all tables, or of the tables in one schema when
// filtered is set. Order is insertion order.
func (d *tableDirectory) list(schemaName string, filtered bool) []TableHandle {
	handles := make([]TableHandle, 0, len(d.order))
	for _, tableID := range d.order {
		record, ok := d.tablesByID[tableID]
		assert.Assertf(ok, "table id %d present in order but missing from id index", tableID)
		if filtered && record.handle.SchemaName != schemaName {
			continue
		}
		handles = append(handles, record.handle)
	}
	return handles
}

// insertPending allocates a fresh identity and inserts a Pending record. The
// record is visible to lookup and list immediately, with no fragments yet.
func (d *tableDirectory) insertPending(ctx context.Context, schemaName, tableName string, columns []ColumnSpec, properties map[string]string) (TableHandle, error) {
	key := SchemaTableName{SchemaName: schemaName, TableName: tableName}
	if _, ok := d.tables[key]; ok {
		return TableHandle{}, ErrTableAlreadyExists.WithCausef("Table [%s] already exists", key)
	}

	tableID, err := d.idAlloc.Alloc(ctx)
	if err != nil {
		return TableHandle{}, errors.WithMessage(err, "alloc table id")
	}

	record := &tableRecord{
		handle: TableHandle{
			ID:         TableID(tableID),
			SchemaName: schemaName,
			TableName:  tableName,
		},
		columns:    append([]ColumnSpec(nil), columns...),
		properties: copyProperties(properties),
		lifecycle:  newTableLifecycle(),
	}

	d.tables[key] = record
	d.tablesByID[record.handle.ID] = record
	d.order = append(d.order, record.handle.ID)
	d.assertIndexesConsistent()

	return record.handle, nil
}

// commit moves a Pending record to Committed and appends the supplied
// fragments. A concurrently dropped identity fails as not found; a record
// that already committed fails the lifecycle transition.
func (d *tableDirectory) commit(handle TableHandle, fragments []Fragment) error {
	record, ok := d.tablesByID[handle.ID]
	if !ok {
		return ErrTableNotFound.WithCausef("Table [%s] does not exist", handle.SchemaTableName())
	}

	if err := record.lifecycle.Event(Event_Table_Commit); err != nil {
		return ErrInvalidTableState.WithCausef("Table [%s] in state %s cannot commit", handle.SchemaTableName(), record.lifecycle.Current())
	}

	record.fragments = append(record.fragments, fragments...)
	return nil
}

func (d *tableDirectory) rename(handle TableHandle, newSchemaName, newTableName string) (TableHandle, error) {
	record, ok := d.tablesByID[handle.ID]
	if !ok {
		return TableHandle{}, ErrTableNotFound.WithCausef("Table [%s] does not exist", handle.SchemaTableName())
	}

	newKey := SchemaTableName{SchemaName: newSchemaName, TableName: newTableName}
	if _, ok := d.tables[newKey]; ok {
		return TableHandle{}, ErrTableAlreadyExists.WithCausef("Table [%s] already exists", newKey)
	}

	delete(d.tables, record.handle.SchemaTableName())
	record.handle.SchemaName = newSchemaName
	record.handle.TableName = newTableName
	d.tables[newKey] = record
	d.assertIndexesConsistent()

	return record.handle, nil
}

// drop removes the record entirely. Dropping an already absent identity is an
// error, callers rely on it to detect stale handles.
func (d *tableDirectory) drop(handle TableHandle) error {
	record, ok := d.tablesByID[handle.ID]
	if !ok {
		return ErrTableNotFound.WithCausef("Table [%s] does not exist", handle.SchemaTableName())
	}

	delete(d.tables, record.handle.SchemaTableName())
	delete(d.tablesByID, record.handle.ID)
	for i, tableID := range d.order {
		if tableID == record.handle.ID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.assertIndexesConsistent()

	return nil
}

// activeTableIDs snapshots the identities of every live table. The returned
// set is a copy, later directory mutations never touch it.
func (d *tableDirectory) activeTableIDs() TableIDSet {
	ids := make(TableIDSet, len(d.tablesByID))
	for tableID := range d.tablesByID {
		ids[tableID] = struct{}{}
	}
	return ids
}

func (d *tableDirectory) dataFragments(handle TableHandle) ([]Fragment, error) {
	record, ok := d.tablesByID[handle.ID]
	if !ok {
		return nil, ErrTableNotFound.WithCausef("Table [%s] does not exist", handle.SchemaTableName())
	}

	fragments := make([]Fragment, len(record.fragments))
	copy(fragments, record.fragments)
	return fragments, nil
}

func (d *tableDirectory) columns(handle TableHandle) ([]ColumnSpec, error) {
	record, ok := d.tablesByID[handle.ID]
	if !ok {
		return nil, ErrTableNotFound.WithCausef("Table [%s] does not exist", handle.SchemaTableName())
	}

	columns := make([]ColumnSpec, len(record.columns))
	copy(columns, record.columns)
	return columns, nil
}

func (d *tableDirectory) metadata(handle TableHandle) (TableMetadata, error) {
	record, ok := d.tablesByID[handle.ID]
	if !ok {
		return TableMetadata{}, ErrTableNotFound.WithCausef("Table [%s] does not exist", handle.SchemaTableName())
	}

	columns := make([]ColumnSpec, len(record.columns))
	copy(columns, record.columns)
	return TableMetadata{
		Handle:     record.handle,
		Columns:    columns,
		Properties: copyProperties(record.properties),
	}, nil
}

func (d *tableDirectory) assertIndexesConsistent() {
	assert.Assertf(len(d.tables) == len(d.tablesByID),
		"name index and id index diverged, byName:%d, byID:%d", len(d.tables), len(d.tablesByID))
	assert.Assertf(len(d.order) == len(d.tablesByID),
		"listing order and id index diverged, order:%d, byID:%d", len(d.order), len(d.tablesByID))
}

func copyProperties(properties map[string]string) map[string]string {
	copied := make(map[string]string, len(properties))
	for k, v := range properties {
		copied[k] = v
	}
	return copied
}
