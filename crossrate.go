package forexdaily

import (
	"github.com/robotomize/forexdaily/label"
)

// CrossRates derives a sibling record for every currency C of the universe quoted in root:
// rates[root.Base] = 1 / root[C] and rates[D] = root[D] / root[C] for every other quoted D.
// Output follows the universe order, root itself is never part of it
func CrossRates(root Record) []Record {
	list := make([]Record, 0, root.Len())

	for _, sym := range label.Universe {
		if sym == root.base {
			continue
		}

		pivot, ok := root.rates[sym]
		if !ok {
			continue
		}

		rates := make(map[label.Symbol]float64, root.Len())
		rates[root.base] = 1 / pivot

		for _, other := range label.Universe {
			if other == sym || other == root.base {
				continue
			}

			v, ok := root.rates[other]
			if !ok {
				continue
			}

			rates[other] = v / pivot
		}

		list = append(list, Record{date: root.date, base: sym, rates: rates})
	}

	return list
}
