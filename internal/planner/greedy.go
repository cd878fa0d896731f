package planner

import (
	"math"
	"sort"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// Greedy fallback engine. Cheaper than the time-windowed solver but blind
// to opening hours: it scores POIs by weighted category overlap with the
// weights decaying day over day, shapes each day's path over a minimum
// spanning tree, and polishes it with 2-opt plus a single rotation. Kept as
// a secondary strategy only; the VRPTW solver is the canonical engine.

const (
	greedyDayStartMinute = 9 * 60
	greedyDayEndMinute   = 17 * 60
	greedyMinVisit       = 5

	categoryConstraintWeight = 20
	categoryWeightDecay      = 4

	proximityRadiusMeters = 500
	proximityBestCount    = 3
	proximityRate         = 0.8

	shortLegMeters  = 500
	walkingSpeedMS  = 0.5
	drivingSpeedMS  = 3.7
	twoOptThreshold = -10
)

// GreedyEvent is one scheduled stop in a greedy day plan.
type GreedyEvent struct {
	POI           types.ScoredPOI
	StartMinute   int
	EndMinute     int
	TravelSeconds int
	Mode          types.TravelMode
}

// metersBetween is a flat-earth approximation, good enough at city scale.
func metersBetween(a, b types.Coordinates) float64 {
	const earthRadius = 6371009
	dlat := (a.Lat - b.Lat) * math.Pi / 180
	dlng := (a.Lng - b.Lng) * math.Pi / 180
	mlat := (a.Lat + b.Lat) / 2 * math.Pi / 180
	return earthRadius * math.Sqrt(dlat*dlat+math.Pow(math.Cos(mlat)*dlng, 2))
}

func legSeconds(meters float64) int {
	if meters < shortLegMeters {
		return int(meters / walkingSpeedMS)
	}
	return int(meters / drivingSpeedMS)
}

// GreedyPlanner carries the decaying category weights across the trip's
// days.
type GreedyPlanner struct {
	codes       []string
	weight      int
	totalWeight int
}

// NewGreedyPlanner seeds the category constraint from the user's categories
// and all their chosen subcategories.
func NewGreedyPlanner(prefs *types.UserPreferences) *GreedyPlanner {
	codes := append([]string(nil), prefs.Categories...)
	for _, subs := range prefs.Subcategories {
		codes = append(codes, subs...)
	}
	filtered := codes[:0]
	for _, c := range codes {
		if c != "" {
			filtered = append(filtered, c)
		}
	}
	return &GreedyPlanner{codes: filtered, weight: categoryConstraintWeight, totalWeight: categoryConstraintWeight}
}

func (g *GreedyPlanner) categoryScore(poi *types.ScoredPOI) float64 {
	if len(g.codes) == 0 {
		return 0
	}
	overlap := 0
	for _, code := range g.codes {
		if poi.HasType(code) {
			overlap++
		}
	}
	return float64(overlap) / float64(len(g.codes))
}

func (g *GreedyPlanner) evaluate(poi *types.ScoredPOI) float64 {
	if g.totalWeight == 0 {
		return 0.1
	}
	return g.categoryScore(poi)*float64(g.weight)/float64(g.totalWeight) + 0.1
}

func (g *GreedyPlanner) decay() {
	g.weight -= categoryWeightDecay
	if g.weight < 0 {
		g.weight = 0
	}
	g.totalWeight = g.weight
}

type scoredCandidate struct {
	poi   types.ScoredPOI
	score float64
}

// boostNearby smears the score of the current top candidates onto POIs
// within walking range of them, pulling neighborhoods together.
func boostNearby(cands []scoredCandidate) {
	for i := 0; i < proximityBestCount && i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			if metersBetween(cands[i].poi.Location, cands[j].poi.Location) < proximityRadiusMeters {
				cands[j].score = (1-proximityRate)*cands[j].score + proximityRate*cands[i].score
			}
		}
	}
}

func visitMinutes(poi *types.ScoredPOI) int {
	return max(poi.VisitMinutes(), greedyMinVisit)
}

// pickForDay fills the day budget with the best unvisited candidates.
func (g *GreedyPlanner) pickForDay(pois []types.ScoredPOI, taken map[string]bool) []scoredCandidate {
	cands := make([]scoredCandidate, 0, len(pois))
	for _, poi := range pois {
		cands = append(cands, scoredCandidate{poi: poi, score: g.evaluate(&poi)})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	boostNearby(cands)

	var picked []scoredCandidate
	budget := greedyDayEndMinute - greedyDayStartMinute
	used := 0
	for _, cand := range cands {
		if used >= budget {
			break
		}
		if taken[cand.poi.ID] {
			continue
		}
		used += visitMinutes(&cand.poi)
		picked = append(picked, cand)
	}
	return picked
}

// primMST builds a minimum spanning tree adjacency matrix over the distance
// graph.
func primMST(graph [][]float64) [][]int {
	n := len(graph)
	mst := make([][]int, n)
	for i := range mst {
		mst[i] = make([]int, n)
	}
	visited := make([]bool, n)
	visited[0] = true
	left := n - 1

	type edge struct {
		weight float64
		from   int
		to     int
	}
	var queue []edge
	for u := 1; u < n; u++ {
		queue = append(queue, edge{graph[0][u], 0, u})
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i].weight < queue[j].weight })

	for left > 0 && len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if visited[e.to] {
			continue
		}
		visited[e.to] = true
		left--
		mst[e.from][e.to] = 1
		mst[e.to][e.from] = 1
		for t := 0; t < n; t++ {
			if t != e.to && !visited[t] {
				queue = append(queue, edge{graph[e.to][t], e.to, t})
			}
		}
		sort.Slice(queue, func(i, j int) bool { return queue[i].weight < queue[j].weight })
	}
	return mst
}

// pathFromMST walks the tree depth-first, reusing edges once in each
// direction, which approximates an Euler-tour shortcutting.
func pathFromMST(mst [][]int) []int {
	n := len(mst)
	path := []int{0}
	deg := make([]int, n)
	for i := range mst {
		for _, v := range mst[i] {
			deg[i] += 2 * v
		}
	}
	bridged := make([][]bool, n)
	for i := range bridged {
		bridged[i] = make([]bool, n)
	}

	var dfs func(v int)
	dfs = func(v int) {
		for u := 0; u < n; u++ {
			if mst[v][u] == 1 && deg[u] > 0 && !bridged[u][v] {
				path = append(path, u)
				deg[u]--
				deg[v]--
				bridged[u][v] = true
				bridged[v][u] = true
				dfs(u)
			}
		}
		for u := 0; u < n; u++ {
			if mst[v][u] == 1 && deg[u] > 0 {
				deg[u]--
				deg[v]--
				dfs(u)
			}
		}
	}
	dfs(0)
	return path
}

// twoOpt untangles segment crossings; a swap has to win more than the
// threshold to count, keeping the loop from churning on noise.
func twoOpt(path []int, graph [][]float64) []int {
	n := len(path)
	for round := 0; round < maxPolishRounds; round++ {
		improved := false
		for i := 0; i < n-3; i++ {
			for j := i + 3; j < n; j++ {
				v, vNext := path[i], path[i+1]
				uPrev, u := path[j-1], path[j]
				delta := -graph[v][vNext] - graph[uPrev][u] + graph[v][uPrev] + graph[vNext][u]
				if delta < twoOptThreshold {
					improved = true
					next := append([]int(nil), path[:i+1]...)
					for k := j - 1; k > i; k-- {
						next = append(next, path[k])
					}
					next = append(next, path[j:]...)
					path = next
				}
			}
		}
		if !improved {
			break
		}
	}
	return path
}

// rotateAtLongestEdge re-roots the cycle so the longest edge is the one
// left open.
func rotateAtLongestEdge(path []int, graph [][]float64) []int {
	n := len(path)
	maxDist, start := 0.0, 0
	for i := 0; i < n; i++ {
		if d := graph[path[i]][path[(i+1)%n]]; d > maxDist {
			maxDist = d
			start = (i + 1) % n
		}
	}
	rotated := make([]int, 0, n)
	rotated = append(rotated, path[start:]...)
	rotated = append(rotated, path[:start]...)
	return rotated
}

func (g *GreedyPlanner) buildDay(picked []scoredCandidate) []GreedyEvent {
	if len(picked) == 0 {
		return nil
	}
	graph := make([][]float64, len(picked))
	for i := range picked {
		graph[i] = make([]float64, len(picked))
		for j := range picked {
			graph[i][j] = metersBetween(picked[i].poi.Location, picked[j].poi.Location)
		}
	}
	path := pathFromMST(primMST(graph))
	path = twoOpt(path, graph)
	path = rotateAtLongestEdge(path, graph)

	var events []GreedyEvent
	current := greedyDayStartMinute
	travelSec := 0
	for n, idx := range path {
		poi := picked[idx].poi
		visit := visitMinutes(&poi)
		travelMin := travelSec / 60
		if current+travelMin+visit > greedyDayEndMinute {
			break
		}
		mode := types.TravelModeFoot
		if n > 0 && graph[path[n-1]][idx] >= shortLegMeters {
			mode = types.TravelModeCar
		}
		start := current + travelMin
		events = append(events, GreedyEvent{
			POI:           poi,
			StartMinute:   start,
			EndMinute:     start + visit,
			TravelSeconds: travelSec,
			Mode:          mode,
		})
		current = start + visit
		if n+1 < len(path) {
			travelSec = legSeconds(graph[idx][path[n+1]])
		}
	}
	return events
}

// Plan builds one greedy day plan per trip day, never repeating a POI.
func (g *GreedyPlanner) Plan(pois []types.ScoredPOI, days int) [][]GreedyEvent {
	taken := make(map[string]bool)
	plans := make([][]GreedyEvent, 0, days)
	for day := 0; day < days; day++ {
		picked := g.pickForDay(pois, taken)
		events := g.buildDay(picked)
		for _, ev := range events {
			taken[ev.POI.ID] = true
		}
		plans = append(plans, events)
		g.decay()
	}
	return plans
}
