// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package coderr

type Code int

const (
	Invalid Code = iota
	Internal
	NotFound
	AlreadyExists
	FlowLimit
)
