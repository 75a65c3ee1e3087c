// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

import "fmt"

// TableID is the identity of a table. Ids are allocated monotonically and
// never reused, so two tables that carried the same name at different times
// never share an id.
type TableID uint64

// SchemaTableName keys the table directory. Comparisons are exact and
// case-sensitive; the same table name is legal in different schemas.
type SchemaTableName struct {
	SchemaName string
	TableName  string
}

func (n SchemaTableName) String() string {
	return fmt.Sprintf("%s.%s", n.SchemaName, n.TableName)
}

// ColumnSpec describes one column of a table. The catalog stores the specs
// verbatim, it never interprets types.
type ColumnSpec struct {
	Name string
	Type string
}

// Fragment is an opaque descriptor of a unit of committed table data. The
// write path supplies fragments on finish and the catalog stores them
// verbatim for the layout machinery to read back.
type Fragment struct {
	HostAddress string
	Rows        uint64
}

// TableHandle is the immutable external reference to a table. It is a value,
// safe to copy across goroutines and nodes; it never aliases directory state.
type TableHandle struct {
	ID         TableID
	SchemaName string
	TableName  string
}

func (h TableHandle) SchemaTableName() SchemaTableName {
	return SchemaTableName{SchemaName: h.SchemaName, TableName: h.TableName}
}

// TableMetadata is the full description of one table as seen at call time.
// All fields are copies, detached from directory state.
type TableMetadata struct {
	Handle     TableHandle
	Columns    []ColumnSpec
	Properties map[string]string
}

// TableIDSet is a frozen point-in-time membership set of table ids. Once
// returned by the catalog it is detached from any later catalog activity.
type TableIDSet map[TableID]struct{}

func (s TableIDSet) Contains(id TableID) bool {
	_, ok := s[id]
	return ok
}
