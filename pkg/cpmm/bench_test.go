package cpmm

import (
	"testing"

	"github.com/holiman/uint256"
)

func BenchmarkGetAmountOut(b *testing.B) {
	rIn := uint256.NewInt(13_451_234_567_890)
	rOut := uint256.NewInt(98_765_432_109_876)
	in := uint256.NewInt(1_000_000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GetAmountOut(in, rIn, rOut)
	}
}
