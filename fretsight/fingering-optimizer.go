package main

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	clusterQuantum      = 20 // clusters per second (50ms)
	maxFingeringsPerSet = 40
)

type fingeringCandidate struct {
	positions []fretPosition // one per note, string ascending
	cost      float64
}

// staticCost rates how hard a single chord shape is to hold.
func staticCost(positions []fretPosition) float64 {
	if len(positions) == 0 {
		return 0
	}

	cost := 20.0

	fretted := []int{}
	open := 0
	for _, p := range positions {
		if p.fret > 0 {
			fretted = append(fretted, p.fret)
		} else {
			open++
		}
	}

	if len(fretted) > 0 {
		lo, hi, sum := fretted[0], fretted[0], 0
		for _, f := range fretted {
			if f < lo {
				lo = f
			}
			if f > hi {
				hi = f
			}
			sum += f
		}
		if span := hi - lo; span > 4 {
			cost += math.Pow(float64(span-4), 2) * 2
		}
		cost += float64(sum) / float64(len(fretted)) * 0.1
	}

	cost -= float64(open) * 2
	return math.Max(1, cost)
}

// centroid is the mean fretted fret and mean string. All-open shapes sit at
// (0, 0).
func centroid(positions []fretPosition) (float64, float64) {
	fretSum, fretCount, strSum := 0, 0, 0
	for _, p := range positions {
		if p.fret > 0 {
			fretSum += p.fret
			fretCount++
		}
		strSum += p.str
	}
	if fretCount == 0 {
		return 0, 0
	}
	return float64(fretSum) / float64(fretCount), float64(strSum) / float64(len(positions))
}

// transitionCost rates moving the hand from one shape to the next.
func transitionCost(prev []fretPosition, curr []fretPosition) float64 {
	if len(prev) == 0 || len(curr) == 0 {
		return 0
	}

	prevFret, prevStr := centroid(prev)
	currFret, currStr := centroid(curr)

	cost := 0.0
	fretDistance := math.Abs(currFret - prevFret)
	if fretDistance <= 4 {
		cost += fretDistance * 0.5
	} else {
		cost += math.Pow(fretDistance-4, 2)
	}

	strDelta := currStr - prevStr
	fretDelta := currFret - prevFret
	cost += math.Abs(strDelta) * 0.5

	if strDelta > 0.5 && fretDelta < -1 {
		cost += 5
	}
	if strDelta < -0.5 && fretDelta > 1 {
		cost += 5
	}
	return cost
}

// candidateFingerings enumerates every way to play the cluster with at most
// one note per string, cheapest first when pruned.
func candidateFingerings(cluster []Note, tn tuning) []fingeringCandidate {
	if len(cluster) == 0 {
		return []fingeringCandidate{{}}
	}

	choices := make([][]fretPosition, len(cluster))
	for i, note := range cluster {
		choices[i] = tn.possiblePositions(note.Pitch)
		if len(choices[i]) == 0 {
			return nil
		}
	}

	candidates := []fingeringCandidate{}
	picked := make([]fretPosition, len(cluster))
	var usedStrings [numStrings]bool

	var walk func(i int)
	walk = func(i int) {
		if i == len(cluster) {
			positions := make([]fretPosition, len(picked))
			copy(positions, picked)
			sort.Slice(positions, func(a, b int) bool { return positions[a].str < positions[b].str })
			candidates = append(candidates, fingeringCandidate{positions, staticCost(positions)})
			return
		}
		for _, p := range choices[i] {
			if usedStrings[p.str] {
				continue
			}
			usedStrings[p.str] = true
			picked[i] = p
			walk(i + 1)
			usedStrings[p.str] = false
		}
	}
	walk(0)

	if len(candidates) > maxFingeringsPerSet {
		sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].cost < candidates[b].cost })
		candidates = candidates[:maxFingeringsPerSet]
	}
	return candidates
}

type noteCluster struct {
	key     int64
	indexes []int // into the note slice
}

func clusterNotes(notes []Note) []noteCluster {
	byKey := map[int64]*noteCluster{}
	keys := []int64{}
	for i, n := range notes {
		key := int64(math.RoundToEven(n.Start * clusterQuantum))
		c, ok := byKey[key]
		if !ok {
			c = &noteCluster{key: key}
			byKey[key] = c
			keys = append(keys, key)
		}
		c.indexes = append(c.indexes, i)
	}

	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	clusters := make([]noteCluster, len(keys))
	for i, k := range keys {
		clusters[i] = *byKey[k]
	}
	return clusters
}

type fingeringNode struct {
	cluster   int
	candidate fingeringCandidate
}

// optimizeFingering assigns positions to notes by finding the cheapest path
// of shapes through the song. The input is not modified. Notes the path
// cannot place keep whatever fingering they had.
func optimizeFingering(notes []Note, tn tuning) []Note {
	result := make([]Note, len(notes))
	copy(result, notes)
	if len(notes) == 0 {
		return result
	}

	clusters := clusterNotes(result)

	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	const startID = int64(0)
	g.AddNode(simple.Node(startID))
	nextID := startID + 1

	nodes := map[int64]fingeringNode{}
	prevLayer := []int64{startID}

	for ci, cluster := range clusters {
		members := make([]Note, len(cluster.indexes))
		for i, idx := range cluster.indexes {
			members[i] = result[idx]
		}

		candidates := candidateFingerings(members, tn)
		if len(candidates) == 0 {
			continue
		}

		layer := []int64{}
		for _, candidate := range candidates {
			id := nextID
			nextID++
			g.AddNode(simple.Node(id))
			nodes[id] = fingeringNode{ci, candidate}

			for _, prevID := range prevLayer {
				var prevPositions []fretPosition
				if prevID != startID {
					prevPositions = nodes[prevID].candidate.positions
				}
				weight := candidate.cost + transitionCost(prevPositions, candidate.positions)
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(prevID), simple.Node(id), weight))
			}
			layer = append(layer, id)
		}
		prevLayer = layer
	}

	endID := nextID
	g.AddNode(simple.Node(endID))
	for _, prevID := range prevLayer {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(prevID), simple.Node(endID), 0))
	}

	shortest := path.DijkstraFrom(simple.Node(startID), g)
	route, weight := shortest.To(endID)
	if len(route) == 0 {
		log.Warn("fingering optimization found no path")
		return result
	}
	log.Debug("fingering optimized", "clusters", len(clusters), "cost", weight)

	for _, n := range route {
		fn, ok := nodes[n.ID()]
		if !ok {
			continue
		}

		byPitch := map[int]fretPosition{}
		for _, p := range fn.candidate.positions {
			byPitch[tn.pitchAt(p)] = p
		}
		for _, idx := range clusters[fn.cluster].indexes {
			if p, ok := byPitch[result[idx].Pitch]; ok {
				result[idx].Fingering = positioned{p}
			}
		}
	}
	return result
}
