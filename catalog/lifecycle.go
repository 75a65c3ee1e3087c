// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package catalog

import (
	"github.com/looplab/fsm"
)

// Table lifecycle
const (
	Event_Table_Commit = "EventTableCommit"

	State_Table_Pending   = "StateTablePending"
	State_Table_Committed = "StateTableCommitted"
)

var (
	tableLifecycleEvents = fsm.Events{
		{Name: Event_Table_Commit, Src: []string{State_Table_Pending}, Dst: State_Table_Committed},
	}
	tableLifecycleCallbacks = fsm.Callbacks{}
)

// newTableLifecycle returns the state machine of one table record. A record
// starts Pending (visible, no data yet) and commits exactly once; committing
// twice is an invalid transition.
func newTableLifecycle() *fsm.FSM {
	return fsm.NewFSM(State_Table_Pending, tableLifecycleEvents, tableLifecycleCallbacks)
}
