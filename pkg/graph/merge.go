package graph

import "github.com/paulmach/orb"

// Endpoint is one observation of a node's coordinate, taken from the first or
// last point of a line feature.
type Endpoint struct {
	ID      NodeID
	Point   orb.Point
	Feature int // index of the feature the observation came from
}

// Conflict records a node identifier observed with different coordinates.
// Kept is the coordinate that won (the last observation); Dropped holds the
// earlier coordinates that disagreed with it, in observation order.
type Conflict struct {
	ID       NodeID
	Kept     orb.Point
	Dropped  []orb.Point
	Features []int // feature indices of every observation of ID
}

// MergeEndpoints folds endpoint observations into a node coordinate map.
//
// The last observation of an identifier wins, matching how the coordinates
// are read from the geometry file. Identifiers whose observations disagree
// are returned as conflicts sorted by identifier; observations that repeat
// the same coordinate are not conflicts.
func MergeEndpoints(obs []Endpoint) (map[NodeID]orb.Point, []Conflict) {
	nodes := make(map[NodeID]orb.Point, len(obs))
	seen := make(map[NodeID][]Endpoint)

	for _, o := range obs {
		nodes[o.ID] = o.Point
		seen[o.ID] = append(seen[o.ID], o)
	}

	var conflicts []Conflict
	for _, id := range SortedKeys(seen) {
		all := seen[id]
		if len(all) < 2 {
			continue
		}
		kept := nodes[id]
		var dropped []orb.Point
		for _, o := range all[:len(all)-1] {
			if !o.Point.Equal(kept) {
				dropped = append(dropped, o.Point)
			}
		}
		if len(dropped) == 0 {
			continue
		}
		features := make([]int, len(all))
		for i, o := range all {
			features[i] = o.Feature
		}
		conflicts = append(conflicts, Conflict{
			ID:       id,
			Kept:     kept,
			Dropped:  dropped,
			Features: features,
		})
	}

	return nodes, conflicts
}
