// Package pkg holds the drevorod libraries.
//
// Data flows one way:
//
//	store (memory, file, sqlite, mongo, neo4j)
//	         ↓ family.Snapshot
//	layout (unions, graph, diagnostics) + rank (dot, layered)
//	         ↓ layout.Layout
//	render (json, toml, dot, svg, pdf, png)
//
// [pipeline] ties the stages together with caching ([cache]), and
// [server] exposes the live layout and editing over HTTP. [family] holds
// the domain types, [errors] the coded errors shared by every layer, and
// [observability] the hooks for metrics and tracing.
package pkg
