// Package io reads and writes elevation grids and fill reports.
//
// # ESRI ASCII grids
//
// [ReadASCII] and [ImportASCII] load an ESRI ASCII raster into a
// [grid.Raster]:
//
//	ncols        4
//	nrows        3
//	xllcorner    0.0
//	yllcorner    0.0
//	cellsize     10.0
//	NODATA_value -9999
//	 9 9 9 9
//	 9 2 3 9
//	 9 9 9 9
//
// The first data row is the northernmost, so it becomes the top row of the
// grid. Cells holding the NODATA value are stored with that value and their
// nodes are closed. [WriteASCII] and [ExportASCII] write a field back out in
// the same layout, with closed nodes as NODATA.
//
// # TOML grid descriptions
//
// Small synthetic surfaces are easier to write by hand as TOML:
//
//	rows    = 3
//	cols    = 4
//	spacing = 1.0
//	field   = "topographic__elevation"
//	closed  = []
//	elevation = [
//	  [9.0, 9.0, 9.0, 9.0],
//	  [9.0, 2.0, 3.0, 9.0],
//	  [9.0, 9.0, 9.0, 9.0],
//	]
//
// As in ASCII grids, the first elevation row is the top of the grid.
//
// # Fill reports
//
// [NewReport] summarises a finished fill: how many nodes were raised, the
// deepest fill, the filled volume and the lakes behind them. [WriteJSON]
// and [ExportJSON] encode a report; [ReadJSON] and [ImportJSON] decode it.
package io
