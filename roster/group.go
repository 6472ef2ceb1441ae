package roster

import (
	"fmt"
	"strconv"
)

// Mode selects how program codes map to buckets.
type Mode string

const (
	// ModeOverflow collapses codes above the threshold into the threshold's
	// bucket, adding each person to it at most once.
	ModeOverflow Mode = "overflow"
	// ModeSimple keys buckets by the raw numeric token.
	ModeSimple Mode = "simple"
)

// Policy configures the grouper.
type Policy struct {
	Mode      Mode `yaml:"mode"`
	Threshold int  `yaml:"threshold"`
}

// DefaultPolicy is overflow grouping above program 5.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeOverflow, Threshold: 5}
}

// Validate checks the mode and threshold.
func (p Policy) Validate() error {
	switch p.Mode {
	case ModeOverflow, ModeSimple:
	default:
		return fmt.Errorf("unknown grouping mode %q", p.Mode)
	}
	if p.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %d", p.Threshold)
	}
	return nil
}

// Buckets maps program codes to records, iterating in first-seen code order.
type Buckets struct {
	order []string
	m     map[string][]PersonRecord
}

func newBuckets() *Buckets {
	return &Buckets{m: make(map[string][]PersonRecord)}
}

func (b *Buckets) add(code string, r PersonRecord) {
	if _, ok := b.m[code]; !ok {
		b.order = append(b.order, code)
	}
	b.m[code] = append(b.m[code], r)
}

// Codes returns the program codes in first-seen order.
func (b *Buckets) Codes() []string {
	return append([]string(nil), b.order...)
}

// Records returns the records of one program.
func (b *Buckets) Records(code string) []PersonRecord {
	return b.m[code]
}

// Len is the number of programs.
func (b *Buckets) Len() int {
	return len(b.order)
}

// Group buckets records by program code. Tokens that are not integers are
// dropped. A record listing a code several times appears that many times in
// the bucket, except in the overflow bucket which holds each person once.
func Group(records []PersonRecord, p Policy) *Buckets {
	b := newBuckets()
	overflow := strconv.Itoa(p.Threshold)
	seen := make(map[Identity]bool)

	for _, r := range records {
		for _, tok := range r.Programs {
			n, err := strconv.Atoi(tok)
			if err != nil {
				continue
			}
			if p.Mode == ModeSimple {
				b.add(tok, r)
				continue
			}
			if n > p.Threshold {
				if seen[r.ID()] {
					continue
				}
				seen[r.ID()] = true
				b.add(overflow, r)
				continue
			}
			b.add(strconv.Itoa(n), r)
		}
	}
	return b
}
