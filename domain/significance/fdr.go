package significance

import "sort"

// BenjaminiHochberg returns step-up FDR q-values for pvals, in input order.
// q_(i) = min over j >= i of p_(j) * m / j, clamped to 1.
func BenjaminiHochberg(pvals []float64) []float64 {
	m := len(pvals)
	q := make([]float64, m)
	if m == 0 {
		return q
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pvals[order[a]] < pvals[order[b]]
	})

	running := 1.0
	for rank := m; rank >= 1; rank-- {
		idx := order[rank-1]
		v := pvals[idx] * float64(m) / float64(rank)
		if v < running {
			running = v
		}
		q[idx] = running
	}
	return q
}
