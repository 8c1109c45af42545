// Package reftable provides the reference handle table behind a simulated
// runtime's local and global references.
//
// A Handle is an opaque, non-zero integer naming one reference to a value.
// Many handles may name the same value. Each handle carries a generation, so
// a handle that has been deleted never resolves again even after its slot is
// reused:
//
//	table := reftable.New()
//
//	h := table.Insert(reftable.Global, obj)
//	v, ok := table.Get(h)          // obj, true
//	table.Delete(h)                // obj, true
//	table.Delete(h)                // nil, false: already deleted
//
// # Kinds
//
// Entries are tagged with a Kind (Local or Global). GetKind performs a
// kind-checked lookup, which is how a runtime rejects deleting a local
// reference through the global reference API.
//
// # Observers
//
// Observers receive Created and Deleted events synchronously, in the order
// the operations happen. They must not call back into the table.
package reftable
