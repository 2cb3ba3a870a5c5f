// Package render turns computed family tree layouts into files.
//
// # Formats
//
//   - json, toml: the layout itself (nodes, edges, size, diagnostics)
//   - dot: a Graphviz document with every node pinned at its computed
//     centre ([ToDOT])
//   - graphviz: that document drawn by Graphviz ([SVG])
//   - svg: a self-contained drawing made without Graphviz ([WriteSVG])
//   - pdf, png: the svg output converted by rsvg-convert ([ToPDF], [ToPNG])
//
// [Render] dispatches on a [Format]:
//
//	data, err := render.Render(ctx, l, render.FormatSVG, render.Options{})
//
// PDF and PNG need librsvg installed: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux).
//
// # Cards
//
// Person cards show the full name ("Last First Middle"), the years of
// birth and death, and the current age or the age at death. See [CardFor].
package render
