package services

import (
	"fmt"
	"math/rand/v2"

	"shipment-dashboard/internal/models"
)

const (
	DefaultSampleSize = 3001
	DefaultSampleSeed = 55045
)

// Sample draws n records uniformly without replacement. The generator is
// seeded from seed alone, so the same input always yields the same rows in
// the same order. n <= 0 returns a copy of every record.
func Sample(records []models.Shipment, n int, seed uint64) ([]models.Shipment, error) {
	if n <= 0 {
		out := make([]models.Shipment, len(records))
		copy(out, records)
		return out, nil
	}
	if n > len(records) {
		return nil, fmt.Errorf("%w: want %d rows, have %d", ErrSampleTooLarge, n, len(records))
	}

	rng := rand.New(rand.NewPCG(seed, seed))

	// partial Fisher-Yates: the first n slots end up holding the sample
	perm := make([]int, len(records))
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(perm)-i)
		perm[i], perm[j] = perm[j], perm[i]
	}

	out := make([]models.Shipment, n)
	for i := 0; i < n; i++ {
		out[i] = records[perm[i]]
	}
	return out, nil
}
