// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vortexdb/memcatalog/catalog/id"
	"github.com/vortexdb/memcatalog/config"
	"github.com/vortexdb/memcatalog/limiter"
	"github.com/vortexdb/memcatalog/pkg/coderr"
	"golang.org/x/sync/errgroup"
)

const (
	testSession = "test-session"
	testSchema  = "test"
	table1      = "test1"
	table2      = "test2"
	tempTable   = "temp_table"
	firstTable  = "first_table"
	secondTable = "second_table"
)

func newTestCatalog() *CatalogImpl {
	return NewCatalogImpl(DefaultSchemaName, id.NewAllocatorImpl(), nil)
}

func assertNoTables(re *require.Assertions, c *CatalogImpl) {
	re.Empty(c.ListAllTables(context.Background()))
}

func TestTableCreatedAfterCommit(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()
	assertNoTables(re, c)

	txn, err := c.BeginCreateTable(ctx, testSession, DefaultSchemaName, tempTable, nil, nil)
	re.NoError(err)

	err = c.FinishCreateTable(ctx, testSession, txn, nil)
	re.NoError(err)

	tables := c.ListAllTables(ctx)
	re.Len(tables, 1)
	re.Equal(tempTable, tables[0].TableName)
	re.Equal(DefaultSchemaName, tables[0].SchemaName)
}

func TestTableAlreadyExists(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()
	assertNoTables(re, c)

	_, err := c.CreateTable(ctx, testSession, DefaultSchemaName, table1, nil, nil)
	re.NoError(err)

	_, err = c.CreateTable(ctx, testSession, DefaultSchemaName, table1, nil, nil)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.AlreadyExists))
	re.ErrorContains(err, "Table [default.test1] already exists")
	re.Len(c.ListAllTables(ctx), 1)

	test1Handle, ok := c.GetTableHandle(ctx, DefaultSchemaName, table1)
	re.True(ok)
	_, err = c.CreateTable(ctx, testSession, DefaultSchemaName, table2, nil, nil)
	re.NoError(err)

	_, err = c.RenameTable(ctx, testSession, test1Handle, DefaultSchemaName, table2)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.AlreadyExists))
	re.ErrorContains(err, "Table [default.test2] already exists")

	// The failed rename left both records untouched.
	_, ok = c.GetTableHandle(ctx, DefaultSchemaName, table1)
	re.True(ok)
	_, ok = c.GetTableHandle(ctx, DefaultSchemaName, table2)
	re.True(ok)
}

func TestActiveTableIDs(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()
	assertNoTables(re, c)

	firstHandle, err := c.CreateTable(ctx, testSession, DefaultSchemaName, firstTable, nil, nil)
	re.NoError(err)

	txn, err := c.BeginInsert(ctx, testSession, firstHandle)
	re.NoError(err)
	re.True(txn.ActiveTableIDs.Contains(firstHandle.ID))

	secondHandle, err := c.CreateTable(ctx, testSession, DefaultSchemaName, secondTable, nil, nil)
	re.NoError(err)
	re.NotEqual(firstHandle.ID, secondHandle.ID)

	txn, err = c.BeginInsert(ctx, testSession, secondHandle)
	re.NoError(err)
	re.True(txn.ActiveTableIDs.Contains(firstHandle.ID))
	re.True(txn.ActiveTableIDs.Contains(secondHandle.ID))
}

func TestReadTableBeforeCreationCompleted(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()
	assertNoTables(re, c)

	txn, err := c.BeginCreateTable(ctx, testSession, DefaultSchemaName, tempTable, nil, nil)
	re.NoError(err)

	// The pending table is already visible, with no data yet.
	tables := c.ListAllTables(ctx)
	re.Len(tables, 1)

	handle, ok := c.GetTableHandle(ctx, DefaultSchemaName, tempTable)
	re.True(ok)
	fragments, err := c.GetDataFragments(ctx, handle)
	re.NoError(err)
	re.Empty(fragments)

	err = c.FinishCreateTable(ctx, testSession, txn, []Fragment{{HostAddress: "127.0.0.1:8080", Rows: 42}})
	re.NoError(err)

	// Finishing changed the fragment content, not the table count.
	re.Len(c.ListAllTables(ctx), 1)
	fragments, err = c.GetDataFragments(ctx, handle)
	re.NoError(err)
	re.Len(fragments, 1)
	re.Equal(uint64(42), fragments[0].Rows)
}

func TestCreateSchema(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()

	re.Equal([]string{DefaultSchemaName}, c.ListSchemas(ctx))

	err := c.CreateSchema(ctx, testSession, testSchema)
	re.NoError(err)
	re.Equal([]string{DefaultSchemaName, testSchema}, c.ListSchemas(ctx))
	re.True(c.SchemaExists(ctx, testSchema))
	re.Empty(c.ListTables(ctx, testSchema))

	err = c.CreateSchema(ctx, testSession, testSchema)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.AlreadyExists))

	// The default schema is already registered, recreating it collides too.
	err = c.CreateSchema(ctx, testSession, DefaultSchemaName)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.AlreadyExists))

	handle, err := c.CreateTable(ctx, testSession, testSchema, firstTable, nil, nil)
	re.NoError(err)

	re.Equal([]TableHandle{handle}, c.ListAllTables(ctx))
	re.Equal([]TableHandle{handle}, c.ListTables(ctx, testSchema))
	re.Empty(c.ListTables(ctx, DefaultSchemaName))
}

func TestRenameTable(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()

	handle, err := c.CreateTable(ctx, testSession, DefaultSchemaName, table1, nil, nil)
	re.NoError(err)
	err = c.CreateSchema(ctx, testSession, testSchema)
	re.NoError(err)

	renamed, err := c.RenameTable(ctx, testSession, handle, testSchema, table2)
	re.NoError(err)
	re.Equal(handle.ID, renamed.ID)
	re.Equal(testSchema, renamed.SchemaName)
	re.Equal(table2, renamed.TableName)

	// The old name is free again, the new one resolves.
	_, ok := c.GetTableHandle(ctx, DefaultSchemaName, table1)
	re.False(ok)
	got, ok := c.GetTableHandle(ctx, testSchema, table2)
	re.True(ok)
	re.Equal(handle.ID, got.ID)

	// Renaming a dropped table fails as not found.
	err = c.DropTable(ctx, testSession, renamed)
	re.NoError(err)
	_, err = c.RenameTable(ctx, testSession, renamed, DefaultSchemaName, table1)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.NotFound))
}

func TestDropTable(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()

	handle, err := c.CreateTable(ctx, testSession, DefaultSchemaName, table1, nil, nil)
	re.NoError(err)

	err = c.DropTable(ctx, testSession, handle)
	re.NoError(err)
	assertNoTables(re, c)

	// Dropping a stale handle is an error, not a silent success.
	err = c.DropTable(ctx, testSession, handle)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.NotFound))

	// Recreating the same name issues a fresh identity.
	recreated, err := c.CreateTable(ctx, testSession, DefaultSchemaName, table1, nil, nil)
	re.NoError(err)
	re.NotEqual(handle.ID, recreated.ID)
}

func TestInsertFencing(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()

	handle, err := c.CreateTable(ctx, testSession, DefaultSchemaName, firstTable, nil, nil)
	re.NoError(err)

	txn, err := c.BeginInsert(ctx, testSession, handle)
	re.NoError(err)

	// The snapshot is frozen, later creations never appear in it.
	other, err := c.CreateTable(ctx, testSession, DefaultSchemaName, secondTable, nil, nil)
	re.NoError(err)
	re.False(txn.ActiveTableIDs.Contains(other.ID))
	re.True(txn.ActiveTableIDs.Contains(handle.ID))

	// The target survived, the write may land.
	err = c.FinishInsert(ctx, testSession, txn)
	re.NoError(err)

	// A rename keeps the identity alive, the write still lands.
	renamed, err := c.RenameTable(ctx, testSession, handle, DefaultSchemaName, table2)
	re.NoError(err)
	err = c.FinishInsert(ctx, testSession, txn)
	re.NoError(err)

	// A drop fences the write out.
	err = c.DropTable(ctx, testSession, renamed)
	re.NoError(err)
	err = c.FinishInsert(ctx, testSession, txn)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.NotFound))

	// Starting an insert against a stale handle fails up front.
	_, err = c.BeginInsert(ctx, testSession, handle)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.NotFound))
}

func TestConcurrentCreateSameName(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()

	const workers = 8
	results := make([]error, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		worker := i
		g.Go(func() error {
			_, err := c.CreateTable(gctx, testSession, DefaultSchemaName, table1, nil, nil)
			results[worker] = err
			return nil
		})
	}
	re.NoError(g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		re.True(coderr.EqualsByCode(err, coderr.AlreadyExists))
	}
	re.Equal(1, succeeded)
	re.Len(c.ListAllTables(ctx), 1)
}

func TestConcurrentCreateDistinctNames(t *testing.T) {
	re := require.New(t)
	c := newTestCatalog()
	ctx := context.Background()

	const workers = 8
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		worker := i
		g.Go(func() error {
			_, err := c.CreateTable(gctx, testSession, DefaultSchemaName, fmt.Sprintf("table_%d", worker), nil, nil)
			return err
		})
	}
	re.NoError(g.Wait())

	tables := c.ListAllTables(ctx)
	re.Len(tables, workers)
	seen := make(map[TableID]struct{}, workers)
	for _, handle := range tables {
		_, dup := seen[handle.ID]
		re.False(dup)
		seen[handle.ID] = struct{}{}
	}
}

func TestCatalogFlowLimit(t *testing.T) {
	re := require.New(t)
	cfg := config.MakeDefaultConfig()
	cfg.Limiter.Enable = true
	cfg.Limiter.TokenBucketFillRate = 1
	cfg.Limiter.TokenBucketBurstEventCapacity = 2
	c := NewCatalogImpl(DefaultSchemaName, id.NewAllocatorImpl(), limiter.NewFlowLimiter(cfg.Limiter))
	ctx := context.Background()

	_, err := c.CreateTable(ctx, testSession, DefaultSchemaName, table1, nil, nil)
	re.NoError(err)
	txn, err := c.BeginCreateTable(ctx, testSession, DefaultSchemaName, table2, nil, nil)
	re.NoError(err)

	_, err = c.CreateTable(ctx, testSession, DefaultSchemaName, tempTable, nil, nil)
	re.Error(err)
	re.True(coderr.EqualsByCode(err, coderr.FlowLimit))

	// Finishing an in-flight creation is exempt from the limit.
	err = c.FinishCreateTable(ctx, testSession, txn, nil)
	re.NoError(err)
}
