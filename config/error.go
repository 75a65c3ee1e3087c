// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package config

import "github.com/vortexdb/memcatalog/pkg/coderr"

var (
	ErrInvalidCommandArgs = coderr.NewCodeError(coderr.Invalid, "invalid command arguments")
	ErrInvalidConfigFile  = coderr.NewCodeError(coderr.Invalid, "invalid config file")
)
