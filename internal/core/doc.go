// Package core composes the reducer, routes id-addressed actions through
// scope projections and runs effects on a single serialized action path.
//
// Allowed here:
// - action and effect contracts, action path wrapping
// - the reducer and its routing through nested collections
// - the Store loop that owns the only mutable copy of the state
//
// Not allowed here:
// - rendering or terminal concerns
// - persistence of state
package core
