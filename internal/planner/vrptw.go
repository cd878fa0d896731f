package planner

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// TravelEstimator yields the travel duration and transport mode between two
// coordinates. Implementations must be failure-free: on any internal error
// they return a deterministic fallback estimate instead of an error.
type TravelEstimator interface {
	Estimate(ctx context.Context, from, to types.Coordinates) (seconds int, mode types.TravelMode)
}

const (
	// DepotOpenMinute and DayEndMinute bound the operating day: routes
	// leave the hotel no earlier than 10:00 and are back by 22:00.
	DepotOpenMinute = 10 * 60
	DayEndMinute    = 22 * 60

	// dropPenaltyScale converts a cumulative rating into a drop penalty.
	// Must-see POIs get the squared scale, which dwarfs any plausible
	// route cost and makes them effectively undroppable.
	dropPenaltyScale = 1000

	maxPolishRounds = 10
)

// InfeasibleDayError reports a modeling defect: the day's route is
// unsolvable even with every POI dropped. Window clipping guarantees
// per-POI windows are never inverted, so this only fires on a corrupted
// depot window.
type InfeasibleDayError struct {
	Reason string
}

func (e *InfeasibleDayError) Error() string {
	return fmt.Sprintf("infeasible day route: %s", e.Reason)
}

// Leg is the travel segment arriving at a stop from its predecessor.
type Leg struct {
	Seconds int
	Mode    types.TravelMode
}

// DayRoute is the solved visiting order for one day. Order, Arrivals,
// Departures and Legs are index-aligned; Order holds indices into the POI
// slice handed to SolveDay, the depot is excluded. The first stop's Leg is
// zero-valued: its travel from the hotel is not part of the reported plan.
type DayRoute struct {
	Order      []int
	Arrivals   []int
	Departures []int
	Legs       []Leg
	Dropped    []int
	Objective  int64
}

// Solver solves the per-day selection-and-ordering problem: a single
// vehicle, hard time windows, and soft disjunctions that let low-value POIs
// be dropped at a rating-proportional penalty.
type Solver struct {
	Estimator TravelEstimator
	DayStart  int
	DayEnd    int
}

func NewSolver(est TravelEstimator) *Solver {
	return &Solver{
		Estimator: est,
		DayStart:  DepotOpenMinute,
		DayEnd:    DayEndMinute,
	}
}

// dayModel holds the routing model for one day. Node 0 is the depot;
// node i > 0 is pois[i-1].
type dayModel struct {
	minutes [][]int
	seconds [][]int
	modes   [][]types.TravelMode
	visit   []int
	windows [][2]int
	penalty []int64
}

func (s *Solver) buildModel(ctx context.Context, pois []types.ScoredPOI, hotel types.Coordinates, weekday int) *dayModel {
	n := len(pois) + 1
	m := &dayModel{
		minutes: make([][]int, n),
		seconds: make([][]int, n),
		modes:   make([][]types.TravelMode, n),
		visit:   make([]int, n),
		windows: make([][2]int, n),
		penalty: make([]int64, n),
	}
	for i := range m.minutes {
		m.minutes[i] = make([]int, n)
		m.seconds[i] = make([]int, n)
		m.modes[i] = make([]types.TravelMode, n)
	}

	loc := func(i int) types.Coordinates {
		if i == 0 {
			return hotel
		}
		return pois[i-1].Location
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			seconds, mode := s.Estimator.Estimate(ctx, loc(i), loc(j))
			minutes := seconds / 60
			m.seconds[i][j], m.seconds[j][i] = seconds, seconds
			m.minutes[i][j], m.minutes[j][i] = minutes, minutes
			m.modes[i][j], m.modes[j][i] = mode, mode
		}
	}

	m.windows[0] = [2]int{s.DayStart, s.DayEnd}
	for i, poi := range pois {
		visit := poi.VisitMinutes()
		open := poi.OpeningHours[weekday].Open
		close := poi.OpeningHours[weekday].Close
		// Clip so the visit can finish before actual closing. The max/min
		// pair keeps the window non-inverted even when the visit is longer
		// than the whole open interval; such windows collapse to a single
		// instant and the POI becomes trivially droppable.
		adjClose := min(max(open, close-visit), s.DayEnd)
		adjOpen := min(open, adjClose)
		m.visit[i+1] = visit
		m.windows[i+1] = [2]int{adjOpen, adjClose}
		if poi.MustSee() {
			m.penalty[i+1] = dropPenaltyScale * dropPenaltyScale
		} else {
			m.penalty[i+1] = int64(math.Round(poi.CumulativeRating * dropPenaltyScale))
		}
	}
	return m
}

// schedule propagates visit-start times along the order, waiting out early
// arrivals. It reports the per-stop start minutes and whether every window
// and the return to the depot are respected.
func (m *dayModel) schedule(order []int) ([]int, bool) {
	starts := make([]int, len(order))
	t := m.windows[0][0]
	prev := 0
	for i, node := range order {
		arrive := t + m.visit[prev] + m.minutes[prev][node]
		if arrive < m.windows[node][0] {
			arrive = m.windows[node][0]
		}
		if arrive > m.windows[node][1] {
			return nil, false
		}
		starts[i] = arrive
		t = arrive
		prev = node
	}
	back := t + m.visit[prev] + m.minutes[prev][0]
	if back > m.windows[0][1] {
		return nil, false
	}
	return starts, true
}

// routeCost sums arc costs over the closed tour. Each arc charges the
// origin's visit duration on top of travel, so dwell time accumulates on
// departure and a single clock covers both.
func (m *dayModel) routeCost(order []int) int64 {
	var cost int64
	prev := 0
	for _, node := range order {
		cost += int64(m.minutes[prev][node] + m.visit[prev])
		prev = node
	}
	cost += int64(m.minutes[prev][0] + m.visit[prev])
	return cost
}

func insertAt(order []int, pos, node int) []int {
	trial := make([]int, 0, len(order)+1)
	trial = append(trial, order[:pos]...)
	trial = append(trial, node)
	trial = append(trial, order[pos:]...)
	return trial
}

// bestInsertion finds the cheapest feasible position for node, preferring
// the latest position on cost ties so earlier-closing stops keep their
// place at the front of the route.
func (m *dayModel) bestInsertion(order []int, node int) (pos int, delta int64, ok bool) {
	base := m.routeCost(order)
	bestDelta := int64(math.MaxInt64)
	bestPos := -1
	for p := 0; p <= len(order); p++ {
		trial := insertAt(order, p, node)
		if _, feasible := m.schedule(trial); !feasible {
			continue
		}
		if d := m.routeCost(trial) - base; d <= bestDelta {
			bestDelta, bestPos = d, p
		}
	}
	if bestPos == -1 {
		return 0, 0, false
	}
	return bestPos, bestDelta, true
}

// construct builds an initial route most-constrained-first: must-see nodes
// go in before anything else, then the remaining nodes ordered by adjusted
// closing time (earliest first, higher penalty breaking ties). A node is
// included only when its cheapest feasible insertion is cheaper than
// dropping it.
func (m *dayModel) construct() (order, dropped []int) {
	cands := make([]int, 0, len(m.windows)-1)
	for node := 1; node < len(m.windows); node++ {
		cands = append(cands, node)
	}
	mustSee := func(n int) bool { return m.penalty[n] == dropPenaltyScale*dropPenaltyScale }
	width := func(n int) int { return m.windows[n][1] - m.windows[n][0] }
	sort.Slice(cands, func(x, y int) bool {
		a, b := cands[x], cands[y]
		if mustSee(a) != mustSee(b) {
			return mustSee(a)
		}
		if m.windows[a][1] != m.windows[b][1] {
			return m.windows[a][1] < m.windows[b][1]
		}
		if m.penalty[a] != m.penalty[b] {
			return m.penalty[a] > m.penalty[b]
		}
		return width(a) < width(b)
	})

	for _, node := range cands {
		pos, delta, ok := m.bestInsertion(order, node)
		if ok && delta < m.penalty[node] {
			order = insertAt(order, pos, node)
		} else {
			dropped = append(dropped, node)
		}
	}
	return order, dropped
}

// polish runs relocate and 2-opt moves plus drop-reinsertion attempts until
// no move improves the objective or the round cap is hit.
func (m *dayModel) polish(order, dropped []int) ([]int, []int) {
	for round := 0; round < maxPolishRounds; round++ {
		improved := false

		// Relocate: pull one stop out and put it back at its best position.
		for i := 0; i < len(order); i++ {
			node := order[i]
			rest := append(append([]int(nil), order[:i]...), order[i+1:]...)
			pos, _, ok := m.bestInsertion(rest, node)
			if !ok {
				continue
			}
			trial := insertAt(rest, pos, node)
			if m.routeCost(trial) < m.routeCost(order) {
				order = trial
				improved = true
			}
		}

		// 2-opt: reverse a segment when that shortens the tour and keeps
		// every window satisfied.
		for i := 0; i < len(order)-1; i++ {
			for j := i + 1; j < len(order); j++ {
				trial := append([]int(nil), order...)
				for l, r := i, j; l < r; l, r = l+1, r-1 {
					trial[l], trial[r] = trial[r], trial[l]
				}
				if _, feasible := m.schedule(trial); !feasible {
					continue
				}
				if m.routeCost(trial) < m.routeCost(order) {
					order = trial
					improved = true
				}
			}
		}

		// Retry dropped nodes: route changes may have opened a slot.
		remaining := dropped[:0]
		for _, node := range dropped {
			pos, delta, ok := m.bestInsertion(order, node)
			if ok && delta < m.penalty[node] {
				order = insertAt(order, pos, node)
				improved = true
			} else {
				remaining = append(remaining, node)
			}
		}
		dropped = remaining

		if !improved {
			break
		}
	}
	return order, dropped
}

// SolveDay selects and orders a subset of the day's POIs into a single
// route from the hotel and back, maximizing included value under every
// opening-hour window and the whole-day budget. POIs that do not fit are
// dropped at a rating-proportional penalty. The returned route excludes the
// depot. An InfeasibleDayError is only possible on a corrupted depot
// window, since the empty route is always feasible otherwise.
func (s *Solver) SolveDay(ctx context.Context, pois []types.ScoredPOI, hotel types.Coordinates, weekday int) (*DayRoute, error) {
	if s.DayStart > s.DayEnd {
		return nil, &InfeasibleDayError{Reason: fmt.Sprintf("depot window inverted: [%d, %d]", s.DayStart, s.DayEnd)}
	}

	m := s.buildModel(ctx, pois, hotel, weekday)
	order, dropped := m.construct()
	order, dropped = m.polish(order, dropped)

	starts, feasible := m.schedule(order)
	if !feasible {
		// The empty route passed the depot check, so a schedule must exist.
		return nil, &InfeasibleDayError{Reason: "polished route lost feasibility"}
	}

	route := &DayRoute{Objective: m.routeCost(order)}
	prev := 0
	for i, node := range order {
		route.Order = append(route.Order, node-1)
		route.Arrivals = append(route.Arrivals, starts[i])
		route.Departures = append(route.Departures, starts[i]+m.visit[node])
		leg := Leg{}
		if prev != 0 {
			leg = Leg{Seconds: m.seconds[prev][node], Mode: m.modes[prev][node]}
		}
		route.Legs = append(route.Legs, leg)
		prev = node
	}
	for _, node := range dropped {
		route.Dropped = append(route.Dropped, node-1)
		route.Objective += m.penalty[node]
	}
	return route, nil
}
