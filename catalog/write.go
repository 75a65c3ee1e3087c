// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

import (
	"context"

	"github.com/pkg/errors"
)

// CreateTableTransaction is the token of a two-phase table creation. The
// handle it carries already resolves through lookup and list while the
// creation is in flight.
type CreateTableTransaction struct {
	Handle TableHandle
}

// InsertTransaction fences a long-running write without a lock. The id set is
// the directory membership at the moment the insert began; a writer compares
// its expectations against it after the write completes. The set is a frozen
// value, later catalog activity never mutates it.
type InsertTransaction struct {
	Handle         TableHandle
	ActiveTableIDs TableIDSet
}

// writeCoordinator runs the begin/finish protocols on top of the directory.
// Like the directory it relies on the facade for synchronization.
type writeCoordinator struct {
	directory *tableDirectory
}

func newWriteCoordinator(directory *tableDirectory) *writeCoordinator {
	return &writeCoordinator{directory: directory}
}

func (w *writeCoordinator) beginCreate(ctx context.Context, schemaName, tableName string, columns []ColumnSpec, properties map[string]string) (*CreateTableTransaction, error) {
	handle, err := w.directory.insertPending(ctx, schemaName, tableName, columns, properties)
	if err != nil {
		return nil, errors.WithMessage(err, "insert pending table")
	}

	return &CreateTableTransaction{Handle: handle}, nil
}

func (w *writeCoordinator) finishCreate(txn *CreateTableTransaction, fragments []Fragment) error {
	return w.directory.commit(txn.Handle, fragments)
}

func (w *writeCoordinator) beginInsert(handle TableHandle) (*InsertTransaction, error) {
	if _, ok := w.directory.tablesByID[handle.ID]; !ok {
		return nil, ErrTableNotFound.WithCausef("Table [%s] does not exist", handle.SchemaTableName())
	}

	return &InsertTransaction{
		Handle:         handle,
		ActiveTableIDs: w.directory.activeTableIDs(),
	}, nil
}

// finishInsert is the fencing check itself: it fails if the target table was
// dropped while the write ran. Rename does not invalidate the write, the
// identity survives renames.
func (w *writeCoordinator) finishInsert(txn *InsertTransaction) error {
	if _, ok := w.directory.tablesByID[txn.Handle.ID]; !ok {
		return ErrTableNotFound.WithCausef("Table [%s] was dropped during insert", txn.Handle.SchemaTableName())
	}

	return nil
}
