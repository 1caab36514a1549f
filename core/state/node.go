package state

import "github.com/flightops/rotables/core/model"

// node is the clean kit inventory for one airport at the start of one hour.
//
// Convention: movements whose destination hour equals this node's hour have
// already been credited, and movements originating at this hour have
// already been debited. Nodes are materialized lazily by copying the
// previous hour and cached permanently in the matrix arena.
type node struct {
	hour     int
	stock    model.KitQuantities
	realized bool
}
