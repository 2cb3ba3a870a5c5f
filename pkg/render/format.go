package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/layout"
)

// Format is an output format for a computed layout.
type Format string

const (
	FormatJSON     Format = "json"
	FormatTOML     Format = "toml"
	FormatDOT      Format = "dot"
	FormatSVG      Format = "svg"
	FormatGraphviz Format = "graphviz"
	FormatPDF      Format = "pdf"
	FormatPNG      Format = "png"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatTOML, FormatDOT, FormatSVG, FormatGraphviz, FormatPDF, FormatPNG}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", s)
}

// FormatFromPath infers the format from a file extension. ".gv" selects
// DOT; Graphviz-drawn SVG has no extension of its own.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "gv" {
		return FormatDOT, nil
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatTOML:
		return "application/toml"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG, FormatGraphviz:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Extension returns the file extension for the format, without a dot.
// Graphviz-drawn SVG gets "graphviz.svg" so it does not clash with svg.
func (f Format) Extension() string {
	if f == FormatGraphviz {
		return "graphviz.svg"
	}
	return string(f)
}

// Options tunes [Render].
type Options struct {
	// Scale is the PNG scale factor. Zero means 2.
	Scale float64
	// SVG passes options to [WriteSVG] for the svg, pdf and png formats.
	SVG []SVGOption
}

// Render produces the layout in the given format.
func Render(ctx context.Context, l *layout.Layout, f Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(l); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		enc := toml.NewEncoder(&buf)
		enc.Indent = ""
		if err := enc.Encode(l); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(ToDOT(l)), nil
	case FormatGraphviz:
		return SVG(ctx, l)
	}

	if err := WriteSVG(&buf, l, opts.SVG...); err != nil {
		return nil, err
	}
	switch f {
	case FormatSVG:
		return buf.Bytes(), nil
	case FormatPDF:
		return ToPDF(ctx, buf.Bytes())
	case FormatPNG:
		scale := opts.Scale
		if scale <= 0 {
			scale = 2
		}
		return ToPNG(ctx, buf.Bytes(), scale)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", f)
}

// Write renders the layout and writes it to w.
func Write(ctx context.Context, w io.Writer, l *layout.Layout, f Format, opts Options) error {
	data, err := Render(ctx, l, f, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
