// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

import "github.com/vortexdb/memcatalog/pkg/coderr"

var (
	ErrSchemaAlreadyExists = coderr.NewCodeError(coderr.AlreadyExists, "schema already exists")
	ErrTableAlreadyExists  = coderr.NewCodeError(coderr.AlreadyExists, "table already exists")
	ErrTableNotFound       = coderr.NewCodeError(coderr.NotFound, "table not found")
	ErrInvalidTableState   = coderr.NewCodeError(coderr.Invalid, "invalid table state")
	ErrFlowLimit           = coderr.NewCodeError(coderr.FlowLimit, "catalog flow limit exceeded")
)
