package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	errs "github.com/hurstaa/landlab/pkg/errors"
	"github.com/hurstaa/landlab/pkg/grid"
)

// DefaultNoData is written when a grid has closed nodes and no other
// NODATA value is given.
const DefaultNoData = -9999.0

// ASCIIHeader is the header of an ESRI ASCII raster.
type ASCIIHeader struct {
	Cols, Rows int
	X, Y       float64 // lower-left corner or center, see Centered
	Centered   bool    // X and Y came from xllcenter/yllcenter
	CellSize   float64
	NoData     float64
	HasNoData  bool
}

var headerKeys = map[string]bool{
	"ncols": true, "nrows": true, "xllcorner": true, "yllcorner": true,
	"xllcenter": true, "yllcenter": true, "cellsize": true, "nodata_value": true,
}

// ReadASCII decodes an ESRI ASCII raster from r into a new grid, storing
// the values in the float field named field. NODATA cells become closed
// nodes. ReadASCII does not close r.
func ReadASCII(r io.Reader, field string) (*grid.Raster, ASCIIHeader, error) {
	var hdr ASCIIHeader
	if err := errs.ValidateFieldName(field); err != nil {
		return nil, hdr, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	var pending string
	seen := make(map[string]bool)
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if !headerKeys[key] {
			pending = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, hdr, errs.New(errs.ErrCodeInvalidFormat, "header %s has no value", key)
		}
		if err := hdr.set(key, sc.Text()); err != nil {
			return nil, hdr, err
		}
		seen[key] = true
	}
	for _, key := range []string{"ncols", "nrows", "cellsize"} {
		if !seen[key] {
			return nil, hdr, errs.New(errs.ErrCodeInvalidFormat, "missing %s header", key)
		}
	}
	if err := errs.ValidateGridShape(hdr.Rows, hdr.Cols, hdr.CellSize); err != nil {
		return nil, hdr, err
	}

	// Nodes sit at cell centers.
	x0, y0 := hdr.X, hdr.Y
	if !hdr.Centered {
		x0, y0 = x0+hdr.CellSize/2, y0+hdr.CellSize/2
	}
	g, err := grid.NewRaster(hdr.Rows, hdr.Cols, hdr.CellSize, grid.WithOrigin(x0, y0))
	if err != nil {
		return nil, hdr, err
	}

	n := hdr.Rows * hdr.Cols
	cells := make([]string, 0, n)
	if pending != "" {
		cells = append(cells, pending)
	}
	for len(cells) < n && sc.Scan() {
		cells = append(cells, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, hdr, fmt.Errorf("read: %w", err)
	}
	if len(cells) < n {
		return nil, hdr, errs.New(errs.ErrCodeInvalidFormat, "expected %d cells, got %d", n, len(cells))
	}

	z := make([]float64, n)
	for i, tok := range cells {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, hdr, errs.Wrap(errs.ErrCodeInvalidFormat, err, "cell %d", i)
		}
		// File rows run north to south; grid rows run south to north.
		node := (hdr.Rows-1-i/hdr.Cols)*hdr.Cols + i%hdr.Cols
		z[node] = v
		if hdr.HasNoData && v == hdr.NoData {
			if err := g.SetStatus(node, grid.Closed); err != nil {
				return nil, hdr, err
			}
		}
	}
	if err := g.AddFloats(field, z); err != nil {
		return nil, hdr, err
	}
	return g, hdr, nil
}

func (h *ASCIIHeader) set(key, value string) error {
	var err error
	switch key {
	case "ncols":
		h.Cols, err = strconv.Atoi(value)
	case "nrows":
		h.Rows, err = strconv.Atoi(value)
	case "xllcorner", "xllcenter":
		h.X, err = strconv.ParseFloat(value, 64)
		h.Centered = key == "xllcenter"
	case "yllcorner", "yllcenter":
		h.Y, err = strconv.ParseFloat(value, 64)
		h.Centered = key == "yllcenter"
	case "cellsize":
		h.CellSize, err = strconv.ParseFloat(value, 64)
	case "nodata_value":
		h.NoData, err = strconv.ParseFloat(value, 64)
		h.HasNoData = true
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "header %s", key)
	}
	return nil
}

// ImportASCII reads the ESRI ASCII raster at path. See [ReadASCII].
func ImportASCII(path, field string) (*grid.Raster, ASCIIHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ASCIIHeader{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, ASCIIHeader{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadASCII(f, field)
}

// WriteASCII encodes the float field named field of g as an ESRI ASCII
// raster. Closed nodes are written as noData.
func WriteASCII(w io.Writer, g *grid.Raster, field string, noData float64) error {
	z, err := g.Floats(field)
	if err != nil {
		return err
	}
	rows, cols := g.Shape()
	x, y := g.XY(0)
	half := g.Spacing() / 2

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols        %d\n", cols)
	fmt.Fprintf(bw, "nrows        %d\n", rows)
	fmt.Fprintf(bw, "xllcorner    %s\n", formatFloat(x-half))
	fmt.Fprintf(bw, "yllcorner    %s\n", formatFloat(y-half))
	fmt.Fprintf(bw, "cellsize     %s\n", formatFloat(g.Spacing()))
	fmt.Fprintf(bw, "NODATA_value %s\n", formatFloat(noData))
	for row := rows - 1; row >= 0; row-- {
		for col := 0; col < cols; col++ {
			node := row*cols + col
			v := z[node]
			if g.Status(node) == grid.Closed || math.IsNaN(v) {
				v = noData
			}
			if col > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatFloat(v))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportASCII writes the field to an ESRI ASCII file at path.
func ExportASCII(g *grid.Raster, field, path string, noData float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteASCII(f, g, field, noData); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
