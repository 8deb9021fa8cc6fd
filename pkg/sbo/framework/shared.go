package framework

import (
	"math"
	"sort"
)

// Dominates checks if individual a dominates individual b.
func Dominates(a, b Individual) bool {
	return dominatesRows(a.Objectives, b.Objectives)
}

// dominatesRows reports whether objective vector a is at least as good as b
// in every dimension and strictly better in at least one.
func dominatesRows(a, b []float64) bool {
	better := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			better = true
		}
	}
	return better
}

// NonDominatedSort performs non-dominated sorting on the population and
// assigns each individual its front index via the Rank field.
func NonDominatedSort(population []Individual) [][]Individual {
	objs := make([][]float64, len(population))
	for i := range population {
		objs[i] = population[i].Objectives
	}

	var fronts [][]Individual
	for rank, front := range nonDominatedSortIndices(objs) {
		members := make([]Individual, len(front))
		for i, idx := range front {
			population[idx].Rank = rank
			members[i] = population[idx]
		}
		fronts = append(fronts, members)
	}
	return fronts
}

// nonDominatedSortIndices sorts row indices of an objective matrix into
// successive non-dominated fronts.
func nonDominatedSortIndices(objs [][]float64) [][]int {
	n := len(objs)
	dominated := make([][]int, n)
	domCount := make([]int, n)

	// Calculate domination for each individual
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominatesRows(objs[i], objs[j]) {
				dominated[i] = append(dominated[i], j)
			} else if dominatesRows(objs[j], objs[i]) {
				domCount[i]++
			}
		}
	}

	var fronts [][]int
	var currentFront []int
	for i := 0; i < n; i++ {
		if domCount[i] == 0 {
			currentFront = append(currentFront, i)
		}
	}
	if len(currentFront) > 0 {
		fronts = append(fronts, currentFront)
	}

	// Find subsequent fronts
	for len(currentFront) > 0 {
		var nextFront []int
		for _, idx := range currentFront {
			for _, dominatedIdx := range dominated[idx] {
				domCount[dominatedIdx]--
				if domCount[dominatedIdx] == 0 {
					nextFront = append(nextFront, dominatedIdx)
				}
			}
		}
		if len(nextFront) > 0 {
			fronts = append(fronts, nextFront)
		}
		currentFront = nextFront
	}

	return fronts
}

// NonDominatedIndices returns the row indices of the non-dominated subset of
// an objective matrix (the first front only).
func NonDominatedIndices(objs [][]float64) []int {
	var front []int
	for i := range objs {
		isDominated := false
		for j := range objs {
			if i != j && dominatesRows(objs[j], objs[i]) {
				isDominated = true
				break
			}
		}
		if !isDominated {
			front = append(front, i)
		}
	}
	return front
}

// ParetoFront returns a copy of the non-dominated rows of an objective matrix.
func ParetoFront(objs [][]float64) [][]float64 {
	idx := NonDominatedIndices(objs)
	front := make([][]float64, len(idx))
	for i, j := range idx {
		front[i] = make([]float64, len(objs[j]))
		copy(front[i], objs[j])
	}
	return front
}

// CrowdingDistances computes the crowding distance for each row of an
// objective matrix. Boundary points along any objective get +Inf.
func CrowdingDistances(objs [][]float64) []float64 {
	n := len(objs)
	dist := make([]float64, n)
	if n == 0 {
		return dist
	}
	if n <= 2 {
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	numObjectives := len(objs[0])
	order := make([]int, n)
	for m := 0; m < numObjectives; m++ {
		for i := range order {
			order[i] = i
		}
		// Sort by each objective
		sort.Slice(order, func(i, j int) bool {
			return objs[order[i]][m] < objs[order[j]][m]
		})

		// Set boundary points to infinity
		dist[order[0]] = math.Inf(1)
		dist[order[n-1]] = math.Inf(1)

		objectiveRange := objs[order[n-1]][m] - objs[order[0]][m]
		if objectiveRange == 0 {
			continue
		}

		// Calculate distance for intermediate points
		for i := 1; i < n-1; i++ {
			dist[order[i]] += (objs[order[i+1]][m] - objs[order[i-1]][m]) / objectiveRange
		}
	}
	return dist
}

// CrowdingDistance calculates crowding distances for individuals in a front
// and stores them in the Distance field.
func CrowdingDistance(front []Individual) {
	objs := make([][]float64, len(front))
	for i := range front {
		objs[i] = front[i].Objectives
	}
	for i, d := range CrowdingDistances(objs) {
		front[i].Distance = d
	}
}

// RankAndCrowdingIndices selects nSurvive individuals using rank and crowding
// survival selection (as used by NSGA-II) and returns their indices into pop.
// Feasible individuals are ranked by non-dominated front and crowding
// distance; infeasible individuals follow, ordered by ascending constraint
// violation. Rank and Distance fields of pop are updated as a side effect.
func RankAndCrowdingIndices(pop []Individual, nSurvive int) []int {
	if nSurvive > len(pop) {
		nSurvive = len(pop)
	}

	var feasible, infeasible []int
	for i := range pop {
		if pop[i].IsFeasible() {
			feasible = append(feasible, i)
		} else {
			infeasible = append(infeasible, i)
		}
	}

	objs := make([][]float64, len(feasible))
	for i, idx := range feasible {
		objs[i] = pop[idx].Objectives
	}

	selected := make([]int, 0, nSurvive)
	fronts := nonDominatedSortIndices(objs)
	for rank, front := range fronts {
		frontObjs := make([][]float64, len(front))
		for i, fi := range front {
			frontObjs[i] = objs[fi]
		}
		dist := CrowdingDistances(frontObjs)
		for i, fi := range front {
			pop[feasible[fi]].Rank = rank
			pop[feasible[fi]].Distance = dist[i]
		}

		if len(selected)+len(front) <= nSurvive {
			for _, fi := range front {
				selected = append(selected, feasible[fi])
			}
			continue
		}

		// Split the front on crowding distance
		order := make([]int, len(front))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return dist[order[a]] > dist[order[b]]
		})
		for _, oi := range order[:nSurvive-len(selected)] {
			selected = append(selected, feasible[front[oi]])
		}
		break
	}

	if len(selected) < nSurvive {
		sort.SliceStable(infeasible, func(a, b int) bool {
			return pop[infeasible[a]].ConstraintViolation() < pop[infeasible[b]].ConstraintViolation()
		})
		for i, idx := range infeasible {
			pop[idx].Rank = len(fronts) + i
			pop[idx].Distance = 0
		}
		selected = append(selected, infeasible[:nSurvive-len(selected)]...)
	}

	return selected
}

// RankAndCrowding selects nSurvive individuals using rank and crowding
// survival selection.
func RankAndCrowding(pop []Individual, nSurvive int) []Individual {
	idx := RankAndCrowdingIndices(pop, nSurvive)
	out := make([]Individual, len(idx))
	for i, j := range idx {
		out[i] = pop[j]
	}
	return out
}

// FilterOptimum returns the optimum subset of a population: the non-dominated
// set of the feasible individuals, or for single-objective populations the
// single best one. When no feasible individual exists and leastInfeasible is
// set, the individual with the smallest constraint violation is returned.
func FilterOptimum(pop []Individual, leastInfeasible bool) []Individual {
	if len(pop) == 0 {
		return nil
	}

	var feasible []Individual
	for i := range pop {
		if pop[i].IsFeasible() {
			feasible = append(feasible, pop[i])
		}
	}

	if len(feasible) == 0 {
		if !leastInfeasible {
			return nil
		}
		best := 0
		bestCV := pop[0].ConstraintViolation()
		for i := 1; i < len(pop); i++ {
			if cv := pop[i].ConstraintViolation(); cv < bestCV {
				best, bestCV = i, cv
			}
		}
		return []Individual{pop[best]}
	}

	if len(feasible[0].Objectives) == 1 {
		best := 0
		for i := 1; i < len(feasible); i++ {
			if feasible[i].Objectives[0] < feasible[best].Objectives[0] {
				best = i
			}
		}
		return []Individual{feasible[best]}
	}

	objs := make([][]float64, len(feasible))
	for i := range feasible {
		objs[i] = feasible[i].Objectives
	}
	idx := NonDominatedIndices(objs)
	out := make([]Individual, len(idx))
	for i, j := range idx {
		out[i] = feasible[j]
	}
	return out
}
