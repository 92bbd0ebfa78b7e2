// Package udf holds the registry of user-defined extension functions and the
// bridge that marshals data.Values to and from host-native Go values.
//
// Functions are registered during start-up, before rendering begins, and are
// never removed. The first registration of a name wins; later attempts return
// false. After Freeze the registry is read-only and lookups skip locking.
//
// Host functions receive:
//
//	string, string_ref  -> string
//	integer             -> int64
//	real                -> float64
//	undefined           -> nil
//	fragment reference  -> FragmentView (read-only)
//	list reference      -> ListView (read-only)
//
// and must return nil, a string, an integer or a float. Errors and panics
// raised by a function are reported as failure.ErrCallableFailure carrying the
// function's message.
package udf
