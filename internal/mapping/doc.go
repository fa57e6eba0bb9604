// Package mapping defines the canonical data model of the editor: the
// Assignment (an ordered mapping from group ids to group records), the
// ValueRef type held inside group records, and the Location variant that
// places a value identity either in the pool or in a specific group.
//
// The Assignment is owned by the hosting application. The core reads it,
// produces a complete replacement snapshot on every mutation, and hands
// that snapshot back through a single onChange callback; it never keeps a
// divergent copy across an event boundary.
package mapping
