package config

import "runtime"

// EstimateBatchConcurrency picks the default number of parallel evaluations
// for -file mode from the core count, leaving one core free above two.
func EstimateBatchConcurrency() int {
	numCPU := runtime.NumCPU()
	switch {
	case numCPU <= 2:
		return numCPU
	case numCPU <= 8:
		return numCPU - 1
	default:
		return 8
	}
}
