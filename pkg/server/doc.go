// Package server exposes the family tree over HTTP.
//
// Reads are public. Mutations need edit mode, which a [Gate] decides per
// request; [TokenGate] grants it to requests carrying the configured
// bearer token. Every successful mutation reaches the [pipeline.Live]
// layout through the store's change notifications, so GET /api/tree
// always reflects the latest committed data, or the last good layout
// together with the refresh error when the store is failing.
//
// Errors use one envelope:
//
//	{"error": {"code": "PERSON_NOT_FOUND", "message": "person \"9\" not found"}}
package server
