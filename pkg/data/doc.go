// Package data holds the hierarchical data tree handed to the renderer.
//
// A tree is created with New and owned by its *Root. Fragments and
// FragmentLists are handles into an arena owned by the root; Values of kind
// KindFragment or KindList reference arena nodes without owning them. Once
// Root.Release is called every handle becomes invalid: dereferencing a
// reference Value fails with failure.ErrReleased and building through a stale
// handle panics.
//
// Trees are not safe for concurrent mutation. A tree is owned by exactly one
// render call at a time.
package data
