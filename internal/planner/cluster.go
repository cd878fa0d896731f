package planner

import (
	"math"
	"math/rand"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// ratingFeatureScale stretches the cumulative rating so it is comparable in
// magnitude to city-scale lat/lng degrees inside the feature vector.
const ratingFeatureScale = 10

const maxKMeansIterations = 100

// featureVector is (lat, lng, cumulativeRating * scale). Only the first two
// components drive assignment distance; the rating component participates
// in centroid averaging only.
func featureVector(poi *types.ScoredPOI) []float64 {
	return []float64{
		poi.Location.Lat,
		poi.Location.Lng,
		poi.CumulativeRating * ratingFeatureScale,
	}
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// spatialDistance ignores the trailing rating feature.
func spatialDistance(a, b []float64) float64 {
	return euclidean(a[:len(a)-1], b[:len(b)-1])
}

// seedCentroids picks k initial centroids k-means++ style: the first is
// uniform random, each subsequent one is drawn with probability
// proportional to its squared distance from the nearest centroid so far.
func seedCentroids(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), data[rng.Intn(len(data))]...))

	for len(centroids) < k {
		weights := make([]float64, len(data))
		total := 0.0
		for i, point := range data {
			nearest := math.Inf(1)
			for _, c := range centroids {
				if d := euclidean(point, c); d < nearest {
					nearest = d
				}
			}
			weights[i] = nearest * nearest
			total += weights[i]
		}
		if total == 0 {
			// All remaining points coincide with a centroid; any pick works.
			centroids = append(centroids, append([]float64(nil), data[rng.Intn(len(data))]...))
			continue
		}
		r := rng.Float64() * total
		picked := len(data) - 1
		for i, w := range weights {
			if r < w {
				picked = i
				break
			}
			r -= w
		}
		centroids = append(centroids, append([]float64(nil), data[picked]...))
	}
	return centroids
}

func equalCentroids(a, b [][]float64) bool {
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// ConstrainedKMeans clusters the feature vectors into k clusters while
// honoring membership constraints: fixed points are pinned to their cluster
// regardless of distance, flexible points choose the nearest centroid among
// their allowed clusters only, and unconstrained points take the globally
// nearest centroid. Centroids that receive no members keep their previous
// position. Hitting the iteration cap without converging is not an error;
// the last assignment is returned as-is.
func ConstrainedKMeans(data [][]float64, k int, fixed map[int]int, flexible map[int][]int, rng *rand.Rand) (centroids [][]float64, assignment []int) {
	n := len(data)
	assignment = make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}
	for idx, cluster := range fixed {
		assignment[idx] = cluster
	}
	if n == 0 || k <= 0 {
		return nil, assignment
	}

	centroids = seedCentroids(data, k, rng)

	for iter := 0; iter < maxKMeansIterations; iter++ {
		for i, point := range data {
			if _, pinned := fixed[i]; pinned {
				continue
			}
			candidates, constrained := flexible[i]
			best, bestDist := -1, math.Inf(1)
			if constrained {
				for _, c := range candidates {
					if d := spatialDistance(point, centroids[c]); d < bestDist {
						best, bestDist = c, d
					}
				}
			} else {
				for c := range centroids {
					if d := spatialDistance(point, centroids[c]); d < bestDist {
						best, bestDist = c, d
					}
				}
			}
			assignment[i] = best
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, len(data[0]))
		}
		for i, point := range data {
			c := assignment[i]
			counts[c]++
			for j, v := range point {
				next[c][j] += v
			}
		}
		for c := range next {
			if counts[c] == 0 {
				next[c] = append([]float64(nil), centroids[c]...)
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}

		if equalCentroids(centroids, next) {
			break
		}
		centroids = next
	}
	return centroids, assignment
}

// PartitionDays assigns every available POI to exactly one trip-day
// position using the constrained k-means over (lat, lng, scaled rating)
// features. The number of clusters always equals the trip length, even when
// some days come out empty.
func PartitionDays(avail Availability, days int, rng *rand.Rand) [][]types.ScoredPOI {
	buckets := make([][]types.ScoredPOI, days)
	if len(avail.Open) == 0 {
		return buckets
	}

	data := make([][]float64, len(avail.Open))
	for i := range avail.Open {
		data[i] = featureVector(&avail.Open[i])
	}

	_, assignment := ConstrainedKMeans(data, days, avail.Fixed, avail.Flexible, rng)
	for i, day := range assignment {
		buckets[day] = append(buckets[day], avail.Open[i])
	}
	return buckets
}
