// Package graph holds the region-level road graph that tile labels are cut
// from.
//
// A region graph is a set of nodes with global pixel coordinates (y grows
// downward) and a list of directed edges between node identifiers. It is built
// once per region by the source package and treated as read-only afterwards:
// every tile derives its own subgraph from it without mutating it.
//
// # Core Types
//
//   - [Graph]: node coordinate map plus edge list for one region
//   - [Edge]: edge identifier with source and destination node identifiers
//   - [Endpoint]: one observation of a node coordinate taken from a feature
//   - [Conflict]: a node identifier observed with two different coordinates
//
// # Endpoint Merging
//
// Line features only carry coordinates for their endpoints, so the same node
// identifier can be observed several times. [MergeEndpoints] folds the
// observations into the node map with last-write-wins semantics and reports
// every identifier whose coordinates disagreed:
//
//	nodes, conflicts := graph.MergeEndpoints(observations)
//	for _, c := range conflicts {
//	    logger.Warn("conflicting node coordinate", "node", c.ID, "kept", c.Kept)
//	}
//
// # Serialization
//
// [Marshal] and [Unmarshal] encode a graph as JSON with nodes sorted by
// identifier, which keeps the encoding stable for content hashing and caching.
package graph
