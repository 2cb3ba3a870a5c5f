// Package rank provides the layered graph-drawing algorithms behind the
// layout engine.
//
// Two implementations of [layout.Ranker] are available:
//
//   - [Dot] runs Graphviz dot (embedded as WebAssembly by go-graphviz). It
//     has the most refined crossing reduction and is the default.
//   - [Layered] is a pure-Go Sugiyama pipeline built on [dag],
//     [transform] and [ordering]. It needs no Graphviz and is useful in
//     tests and constrained environments.
//
// Both are deterministic: the same graph always yields the same centres.
//
//	r, err := rank.New("layered")
//	l, err := layout.Compute(ctx, snapshot, r)
//
// [dag]: github.com/firemesscode/drevorod/pkg/dag
// [transform]: github.com/firemesscode/drevorod/pkg/dag/transform
// [ordering]: github.com/firemesscode/drevorod/pkg/ordering
package rank
