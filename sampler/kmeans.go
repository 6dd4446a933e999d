package sampler

import (
	"annolab.com/seqtag/types"
	"fmt"
	"math"
	"math/rand"
)

const kmeansMaxIterations = 100

// RunKMeans clusters the vectors with Lloyd iterations, restarting NInit
// times from seeded random centers and keeping the run with the lowest
// inertia.
func RunKMeans(vectors [][]float64, params types.KMeansParams) (centers [][]float64, assignments []int, err error) {
	if params.NClusters <= 0 {
		return nil, nil, fmt.Errorf("kmeans requires n_clusters")
	}
	if params.NClusters > len(vectors) {
		return nil, nil, fmt.Errorf("kmeans got %d vectors for %d clusters", len(vectors), params.NClusters)
	}
	restarts := params.NInit
	if restarts <= 0 {
		restarts = 1
	}

	rng := rand.New(rand.NewSource(params.Seed))
	bestInertia := math.Inf(1)
	for restart := 0; restart < restarts; restart++ {
		candidateCenters, candidateAssignments, inertia := lloyd(vectors, params.NClusters, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			centers = candidateCenters
			assignments = candidateAssignments
		}
	}
	return centers, assignments, nil
}

func lloyd(vectors [][]float64, k int, rng *rand.Rand) (centers [][]float64, assignments []int, inertia float64) {
	dim := len(vectors[0])

	// distinct random points as initial centers
	centers = make([][]float64, k)
	for i, pick := range rng.Perm(len(vectors))[:k] {
		centers[i] = append([]float64(nil), vectors[pick]...)
	}

	assignments = make([]int, len(vectors))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, vector := range vectors {
			nearest := nearestCenter(vector, centers)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, vector := range vectors {
			counts[assignments[i]]++
			for d, v := range vector {
				next[assignments[i]][d] += v
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// re-seed an empty cluster with a random point
				next[c] = append([]float64(nil), vectors[rng.Intn(len(vectors))]...)
				continue
			}
			for d := range next[c] {
				next[c][d] /= float64(counts[c])
			}
		}
		centers = next
	}

	for i, vector := range vectors {
		inertia += squaredDistance(vector, centers[assignments[i]])
	}
	return centers, assignments, inertia
}

func nearestCenter(vector []float64, centers [][]float64) int {
	nearest := 0
	best := math.Inf(1)
	for c, center := range centers {
		if dist := squaredDistance(vector, center); dist < best {
			best = dist
			nearest = c
		}
	}
	return nearest
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for d := range a {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return sum
}
