package simvm

import (
	"sync/atomic"

	"github.com/wippyai/jni-bridge/reftable"
)

// Stats is a snapshot of a VM's counters.
type Stats struct {
	Boundary       int64 // every environment call, exception checks included
	Calls          int64 // method and constructor bodies run
	FieldReads     int64
	FieldWrites    int64
	ArrayOps       int64
	Attaches       int64
	Detaches       int64
	FramesPushed   int64
	FramesPopped   int64
	LocalsCreated  int64
	GlobalsCreated int64
	GlobalsDeleted int64
	InvalidDeletes int64
	LiveLocals     int
	LiveGlobals    int
}

type counters struct {
	boundary       atomic.Int64
	calls          atomic.Int64
	fieldReads     atomic.Int64
	fieldWrites    atomic.Int64
	arrayOps       atomic.Int64
	attaches       atomic.Int64
	detaches       atomic.Int64
	framesPushed   atomic.Int64
	framesPopped   atomic.Int64
	localsCreated  atomic.Int64
	globalsCreated atomic.Int64
	globalsDeleted atomic.Int64
	invalidDeletes atomic.Int64
}

// OnReferenceEvent counts reference table traffic.
func (c *counters) OnReferenceEvent(e reftable.Event) {
	switch {
	case e.Type == reftable.EventCreated && e.Kind == reftable.Local:
		c.localsCreated.Add(1)
	case e.Type == reftable.EventCreated && e.Kind == reftable.Global:
		c.globalsCreated.Add(1)
	case e.Type == reftable.EventDeleted && e.Kind == reftable.Global:
		c.globalsDeleted.Add(1)
	}
}

// Stats returns the VM's counters.
func (vm *VM) Stats() Stats {
	c := &vm.stats
	return Stats{
		Boundary:       c.boundary.Load(),
		Calls:          c.calls.Load(),
		FieldReads:     c.fieldReads.Load(),
		FieldWrites:    c.fieldWrites.Load(),
		ArrayOps:       c.arrayOps.Load(),
		Attaches:       c.attaches.Load(),
		Detaches:       c.detaches.Load(),
		FramesPushed:   c.framesPushed.Load(),
		FramesPopped:   c.framesPopped.Load(),
		LocalsCreated:  c.localsCreated.Load(),
		GlobalsCreated: c.globalsCreated.Load(),
		GlobalsDeleted: c.globalsDeleted.Load(),
		InvalidDeletes: c.invalidDeletes.Load(),
		LiveLocals:     vm.refs.Count(reftable.Local),
		LiveGlobals:    vm.refs.Count(reftable.Global),
	}
}
