// Package tile cuts a region graph into per-tile subgraphs.
//
// Tiles form a square grid of side Size pixels anchored at the origin. Tile
// (X, Y) covers the half-open box [X*Size, (X+1)*Size) x [Y*Size, (Y+1)*Size),
// so a coordinate lying exactly on a shared edge belongs to the tile to its
// right or below, never to both.
//
// # Pipeline
//
//	sub := tile.Partition(g, t, size)  // nodes inside t, edges with both ends inside
//	c := tile.Compact(sub)             // dense local indices by ascending node id
//
// [Partition] never clips or duplicates an edge: an edge with one endpoint
// outside the tile is dropped from that tile and, since its other endpoint
// lies in exactly one other tile, from every tile.
//
// # Catalogs
//
// Which tiles exist for a region is decided by a [Catalog]. [DirCatalog]
// matches image files named "<region>_<x>_<y>_sat.<ext>" in a directory;
// [StaticCatalog] serves a fixed list.
package tile
