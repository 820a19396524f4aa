package forexdaily

import (
	"fmt"
	"time"

	"github.com/robotomize/forexdaily/internal/storage"
	"github.com/robotomize/forexdaily/label"
	"github.com/robotomize/forexdaily/provider"
)

const dateLayout = "2006-01-02"

// Record is one currency's quote sheet for one calendar date: 1 Base = Rates[X] X.
// A Record is immutable, accessors hand out copies
type Record struct {
	date  time.Time
	base  label.Symbol
	rates map[label.Symbol]float64
}

// NewRecord copies rates and keeps only the UTC calendar date of date
func NewRecord(date time.Time, base label.Symbol, rates map[label.Symbol]float64) Record {
	cp := make(map[label.Symbol]float64, len(rates))
	for sym, v := range rates {
		cp[sym] = v
	}

	return Record{date: truncateDate(date), base: base, rates: cp}
}

func (r Record) Date() time.Time {
	return r.date
}

func (r Record) Base() label.Symbol {
	return r.base
}

func (r Record) Rates() map[label.Symbol]float64 {
	cp := make(map[label.Symbol]float64, len(r.rates))
	for sym, v := range r.rates {
		cp[sym] = v
	}

	return cp
}

func (r Record) Rate(sym label.Symbol) (float64, bool) {
	v, ok := r.rates[sym]
	return v, ok
}

func (r Record) Len() int {
	return len(r.rates)
}

// IsEmpty records are never persisted
func (r Record) IsEmpty() bool {
	return len(r.rates) == 0
}

func (r Record) DateString() string {
	return r.date.Format(dateLayout)
}

// Key is the document identity, BASE-YYYY-MM-DD
func (r Record) Key() string {
	return fmt.Sprintf("%s-%s", r.base, r.DateString())
}

func (r Record) Document() storage.Document {
	rates := make(map[string]float64, len(r.rates))
	for sym, v := range r.rates {
		rates[sym.String()] = v
	}

	return storage.Document{
		Key:   r.Key(),
		Date:  r.DateString(),
		Base:  r.base.String(),
		Rates: rates,
	}
}

func (r Record) String() string {
	return fmt.Sprintf("%s (%d rates)", r.Key(), len(r.rates))
}

func truncateDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type pendingRecord struct {
	base  label.Symbol
	rates map[label.Symbol]float64
}

// recordBuilder accumulates quotes per calendar date. It is owned by a single goroutine,
// finished builders are merged and turned into immutable records
type recordBuilder struct {
	dates map[time.Time]*pendingRecord
}

func newRecordBuilder() *recordBuilder {
	return &recordBuilder{dates: make(map[time.Time]*pendingRecord)}
}

// Add stores the quote, a later quote for the same date and target replaces the earlier one.
// Quotes whose base differs from the base already seen for the date are dropped
func (b *recordBuilder) Add(q provider.Quote) bool {
	date := truncateDate(q.Time)

	p, ok := b.dates[date]
	if !ok {
		p = &pendingRecord{base: q.Base, rates: make(map[label.Symbol]float64)}
		b.dates[date] = p
	}

	if p.base != q.Base {
		return false
	}

	p.rates[q.Target] = q.Value

	return true
}

// Merge folds other into b, values of other win
func (b *recordBuilder) Merge(other *recordBuilder) {
	for date, op := range other.dates {
		p, ok := b.dates[date]
		if !ok {
			p = &pendingRecord{base: op.base, rates: make(map[label.Symbol]float64, len(op.rates))}
			b.dates[date] = p
		}

		if p.base != op.base {
			continue
		}

		for sym, v := range op.rates {
			p.rates[sym] = v
		}
	}
}

// Latest returns the record of the most recent date
func (b *recordBuilder) Latest() (Record, bool) {
	var (
		latest time.Time
		found  bool
	)

	for date := range b.dates {
		if !found || date.After(latest) {
			latest = date
			found = true
		}
	}

	if !found {
		return Record{}, false
	}

	p := b.dates[latest]

	return NewRecord(latest, p.base, p.rates), true
}
