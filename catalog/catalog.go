// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/vortexdb/memcatalog/catalog/id"
	"github.com/vortexdb/memcatalog/config"
	"github.com/vortexdb/memcatalog/limiter"
	"github.com/vortexdb/memcatalog/pkg/log"
	"go.uber.org/zap"
)

// DefaultSchemaName always exists and can never be dropped.
const DefaultSchemaName = "default"

// Catalog operation names, used for flow limiting.
const (
	OpCreateSchema      = "CreateSchema"
	OpCreateTable       = "CreateTable"
	OpBeginCreateTable  = "BeginCreateTable"
	OpFinishCreateTable = "FinishCreateTable"
	OpRenameTable       = "RenameTable"
	OpDropTable         = "DropTable"
	OpBeginInsert       = "BeginInsert"
	OpFinishInsert      = "FinishInsert"
)

// Catalog is the metadata surface of the in-memory storage backend. One
// instance exists per engine node; construct it explicitly and inject it,
// there is no hidden process-global instance.
//
// All mutating calls are linearizable with respect to each other. Read calls
// may run concurrently but never observe a partial mutation. No call blocks
// beyond the internal mutex; in particular no lock is held across a data
// write, that is what the InsertTransaction snapshot is for.
//
// The session argument carried by mutating calls identifies the caller for
// logging only; the catalog never interprets it.
type Catalog interface {
	CreateSchema(ctx context.Context, session string, schemaName string) error
	ListSchemas(ctx context.Context) []string
	SchemaExists(ctx context.Context, schemaName string) bool

	GetTableHandle(ctx context.Context, schemaName, tableName string) (TableHandle, bool)
	// ListTables returns the tables of one schema; ListAllTables spans all
	// schemas. Both report Pending tables, a table mid-creation is visible
	// with zero fragments.
	ListTables(ctx context.Context, schemaName string) []TableHandle
	ListAllTables(ctx context.Context) []TableHandle
	GetColumns(ctx context.Context, handle TableHandle) ([]ColumnSpec, error)
	GetTableMetadata(ctx context.Context, handle TableHandle) (TableMetadata, error)
	GetDataFragments(ctx context.Context, handle TableHandle) ([]Fragment, error)

	CreateTable(ctx context.Context, session string, schemaName, tableName string, columns []ColumnSpec, properties map[string]string) (TableHandle, error)
	// BeginCreateTable inserts a Pending table that is immediately visible.
	// A caller that never finishes the transaction leaves the table Pending
	// forever; reaping abandoned transactions is the caller's responsibility.
	BeginCreateTable(ctx context.Context, session string, schemaName, tableName string, columns []ColumnSpec, properties map[string]string) (*CreateTableTransaction, error)
	FinishCreateTable(ctx context.Context, session string, txn *CreateTableTransaction, fragments []Fragment) error
	RenameTable(ctx context.Context, session string, handle TableHandle, newSchemaName, newTableName string) (TableHandle, error)
	DropTable(ctx context.Context, session string, handle TableHandle) error

	BeginInsert(ctx context.Context, session string, handle TableHandle) (*InsertTransaction, error)
	FinishInsert(ctx context.Context, session string, txn *InsertTransaction) error
}

var _ Catalog = &CatalogImpl{}

type CatalogImpl struct {
	flowLimiter *limiter.FlowLimiter

	// RWMutex is used to protect following fields.
	lock      sync.RWMutex
	schemas   *schemaRegistry
	directory *tableDirectory
	writer    *writeCoordinator
}

func NewCatalogImpl(defaultSchema string, idAlloc id.Allocator, flowLimiter *limiter.FlowLimiter) *CatalogImpl {
	if defaultSchema == "" {
		defaultSchema = DefaultSchemaName
	}
	directory := newTableDirectory(idAlloc)

	return &CatalogImpl{
		flowLimiter: flowLimiter,
		schemas:     newSchemaRegistry(defaultSchema),
		directory:   directory,
		writer:      newWriteCoordinator(directory),
	}
}

func NewCatalogWithConfig(cfg config.Config) *CatalogImpl {
	var flowLimiter *limiter.FlowLimiter
	if cfg.Limiter.Enable {
		flowLimiter = limiter.NewFlowLimiter(cfg.Limiter)
	}
	return NewCatalogImpl(cfg.DefaultSchema, id.NewAllocatorImpl(), flowLimiter)
}

func (c *CatalogImpl) CreateSchema(_ context.Context, session string, schemaName string) error {
	if err := c.allow(OpCreateSchema); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.schemas.create(schemaName); err != nil {
		return errors.WithMessage(err, "create schema")
	}

	log.Info("create schema", zap.String("schema", schemaName), zap.String("session", session))
	return nil
}

func (c *CatalogImpl) ListSchemas(_ context.Context) []string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.schemas.list()
}

func (c *CatalogImpl) SchemaExists(_ context.Context, schemaName string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.schemas.exists(schemaName)
}

func (c *CatalogImpl) GetTableHandle(_ context.Context, schemaName, tableName string) (TableHandle, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.directory.lookup(schemaName, tableName)
}

func (c *CatalogImpl) ListTables(_ context.Context, schemaName string) []TableHandle {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.directory.list(schemaName, true)
}

func (c *CatalogImpl) ListAllTables(_ context.Context) []TableHandle {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.directory.list("", false)
}

func (c *CatalogImpl) GetColumns(_ context.Context, handle TableHandle) ([]ColumnSpec, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.directory.columns(handle)
}

func (c *CatalogImpl) GetTableMetadata(_ context.Context, handle TableHandle) (TableMetadata, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.directory.metadata(handle)
}

func (c *CatalogImpl) GetDataFragments(_ context.Context, handle TableHandle) ([]Fragment, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.directory.dataFragments(handle)
}

// CreateTable is the single-step creation: begin immediately followed by
// finish with no fragments.
func (c *CatalogImpl) CreateTable(ctx context.Context, session string, schemaName, tableName string, columns []ColumnSpec, properties map[string]string) (TableHandle, error) {
	if err := c.allow(OpCreateTable); err != nil {
		return TableHandle{}, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	txn, err := c.writer.beginCreate(ctx, schemaName, tableName, columns, properties)
	if err != nil {
		return TableHandle{}, errors.WithMessage(err, "create table")
	}
	if err := c.writer.finishCreate(txn, nil); err != nil {
		return TableHandle{}, errors.WithMessage(err, "create table")
	}

	log.Info("create table",
		zap.String("schema", schemaName),
		zap.String("table", tableName),
		zap.Uint64("tableID", uint64(txn.Handle.ID)),
		zap.String("session", session))
	return txn.Handle, nil
}

func (c *CatalogImpl) BeginCreateTable(ctx context.Context, session string, schemaName, tableName string, columns []ColumnSpec, properties map[string]string) (*CreateTableTransaction, error) {
	if err := c.allow(OpBeginCreateTable); err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	txn, err := c.writer.beginCreate(ctx, schemaName, tableName, columns, properties)
	if err != nil {
		return nil, errors.WithMessage(err, "begin create table")
	}

	log.Info("begin create table",
		zap.String("schema", schemaName),
		zap.String("table", tableName),
		zap.Uint64("tableID", uint64(txn.Handle.ID)),
		zap.String("session", session))
	return txn, nil
}

func (c *CatalogImpl) FinishCreateTable(_ context.Context, session string, txn *CreateTableTransaction, fragments []Fragment) error {
	if err := c.allow(OpFinishCreateTable); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.writer.finishCreate(txn, fragments); err != nil {
		return errors.WithMessage(err, "finish create table")
	}

	log.Info("finish create table",
		zap.Uint64("tableID", uint64(txn.Handle.ID)),
		zap.Int("fragments", len(fragments)),
		zap.String("session", session))
	return nil
}

func (c *CatalogImpl) RenameTable(_ context.Context, session string, handle TableHandle, newSchemaName, newTableName string) (TableHandle, error) {
	if err := c.allow(OpRenameTable); err != nil {
		return TableHandle{}, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	renamed, err := c.directory.rename(handle, newSchemaName, newTableName)
	if err != nil {
		return TableHandle{}, errors.WithMessage(err, "rename table")
	}

	log.Info("rename table",
		zap.String("from", handle.SchemaTableName().String()),
		zap.String("to", renamed.SchemaTableName().String()),
		zap.Uint64("tableID", uint64(renamed.ID)),
		zap.String("session", session))
	return renamed, nil
}

func (c *CatalogImpl) DropTable(_ context.Context, session string, handle TableHandle) error {
	if err := c.allow(OpDropTable); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.directory.drop(handle); err != nil {
		return errors.WithMessage(err, "drop table")
	}

	log.Info("drop table",
		zap.String("table", handle.SchemaTableName().String()),
		zap.Uint64("tableID", uint64(handle.ID)),
		zap.String("session", session))
	return nil
}

func (c *CatalogImpl) BeginInsert(_ context.Context, session string, handle TableHandle) (*InsertTransaction, error) {
	if err := c.allow(OpBeginInsert); err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	txn, err := c.writer.beginInsert(handle)
	if err != nil {
		return nil, errors.WithMessage(err, "begin insert")
	}

	log.Debug("begin insert",
		zap.Uint64("tableID", uint64(handle.ID)),
		zap.Int("activeTables", len(txn.ActiveTableIDs)),
		zap.String("session", session))
	return txn, nil
}

func (c *CatalogImpl) FinishInsert(_ context.Context, session string, txn *InsertTransaction) error {
	if err := c.allow(OpFinishInsert); err != nil {
		return err
	}

	c.lock.RLock()
	defer c.lock.RUnlock()

	if err := c.writer.finishInsert(txn); err != nil {
		return errors.WithMessage(err, "finish insert")
	}

	log.Debug("finish insert",
		zap.Uint64("tableID", uint64(txn.Handle.ID)),
		zap.String("session", session))
	return nil
}

func (c *CatalogImpl) allow(op string) error {
	if c.flowLimiter == nil || c.flowLimiter.Allow(op) {
		return nil
	}
	return ErrFlowLimit.WithCausef("operation %s rejected", op)
}
