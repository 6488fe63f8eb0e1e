package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a suffix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New() // Generate a new UUID.
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr) // Append the module as a suffix to the UUID.
	return idWithSuffix
}

// Sequence hands out monotonically increasing ids starting at 1.
// It is owned by a Directory; nothing here is safe for concurrent use.
type Sequence struct {
	last int64
}

// NewSequence returns a sequence whose next id is last+1.
func NewSequence(last int64) *Sequence {
	if last < 0 {
		last = 0
	}
	return &Sequence{last: last}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}

// Observe raises the high-water mark so the next id is strictly greater than id.
func (s *Sequence) Observe(id int64) {
	if id > s.last {
		s.last = id
	}
}

// Peek returns the id Next would hand out, without consuming it.
func (s *Sequence) Peek() int64 {
	return s.last + 1
}

// Recorder stamps ledger entries: a system-wide transaction id sequence and a clock.
type Recorder struct {
	Transactions *Sequence
	Now          func() time.Time
}

// NewRecorder returns a recorder using the wall clock, truncated to seconds.
func NewRecorder(transactions *Sequence) *Recorder {
	if transactions == nil {
		transactions = NewSequence(0)
	}
	return &Recorder{Transactions: transactions, Now: time.Now}
}

func (r *Recorder) stamp() (int64, time.Time) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	return r.Transactions.Next(), now().Truncate(time.Second)
}

// SignedSum adds up the signed amounts of entries.
func SignedSum(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Signed())
	}
	return sum
}
