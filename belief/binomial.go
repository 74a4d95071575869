package belief

import "sync"

const binomialMax = 53

var (
	binomialOnce  sync.Once
	binomialTable [binomialMax][binomialMax]float64
)

// binomial returns C(n, k) from a table built once on first use. The
// table is read-only afterwards and shared by all workers.
func binomial(n, k int) float64 {
	binomialOnce.Do(func() {
		for i := 0; i < binomialMax; i++ {
			binomialTable[i][0] = 1
			for j := 1; j <= i; j++ {
				binomialTable[i][j] = binomialTable[i-1][j-1] + binomialTable[i-1][j]
			}
		}
	})
	if k < 0 || k > n {
		return 0
	}
	return binomialTable[n][k]
}
