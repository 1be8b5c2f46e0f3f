package pricing

import (
	"context"
	"hash/fnv"
)

// Stub is a deterministic offline Client for tests and --offline runs. The
// returned price is a stable function of the identifier so repeated runs
// produce identical reports.
type Stub struct {
	// Unknown lists identifiers that should report no offers.
	Unknown map[string]bool
}

// NewStub creates an offline pricing client.
func NewStub() *Stub {
	return &Stub{Unknown: map[string]bool{}}
}

func (s *Stub) CurrentPrice(_ context.Context, asin string) (float64, bool, error) {
	if s.Unknown[asin] {
		return 0, false, nil
	}
	h := fnv.New32a()
	h.Write([]byte(asin))
	// 10.00 .. 59.99
	return round2(10 + float64(h.Sum32()%5000)/100), true, nil
}

func (s *Stub) EstimateFees(_ context.Context, asin string, price float64, fba bool) (float64, bool, error) {
	if s.Unknown[asin] {
		return 0, false, nil
	}
	fee := price * 0.15
	if fba {
		fee += 3.50
	}
	return round2(fee), true, nil
}
