package search

// Plans lists the fixed search plans an operator can choose from for a
// scenario of n regions: every region searched twice, followed by every pair
// of regions searched once each. Plan numbers are 1-based positions in the
// returned slice; for three regions they are
//
//	1: (1, 1)  2: (2, 2)  3: (3, 3)  4: (1, 2)  5: (1, 3)  6: (2, 3)
func Plans(n int) [][]int {
	if n <= 0 {
		return nil
	}
	plans := make([][]int, 0, n+n*(n-1)/2)
	for i := 1; i <= n; i++ {
		plans = append(plans, []int{i, i})
	}
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			plans = append(plans, []int{i, j})
		}
	}
	return plans
}

// Plan returns the region indices of plan number choice for n regions.
func Plan(n, choice int) ([]int, error) {
	plans := Plans(n)
	if choice < 1 || choice > len(plans) {
		return nil, newError("Plan", ErrInvalidStrategy, "plan %d outside [1, %d]", choice, len(plans))
	}
	return append([]int(nil), plans[choice-1]...), nil
}
