package extsort_test

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/hunomina/sort/pkg/extsort"
)

func BenchmarkSort(b *testing.B) {
	rng := rand.New(rand.NewPCG(9, 9))

	input := make([]int, 1<<14)
	for i := range input {
		input[i] = rng.Int()
	}

	for _, strategy := range []extsort.Strategy{extsort.MergeScan, extsort.MergeHeap} {
		for _, k := range []int{2, 8} {
			b.Run(fmt.Sprintf("%s/k=%d", strategy, k), func(b *testing.B) {
				s, err := extsort.New(extsort.Config[int]{
					FanIn:    k,
					PageSize: 256,
					Compare:  cmp.Compare[int],
					Strategy: strategy,
				})
				if err != nil {
					b.Fatal(err)
				}

				b.ReportAllocs()

				for b.Loop() {
					_, _, err := s.Sort(context.Background(), input)
					if err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
