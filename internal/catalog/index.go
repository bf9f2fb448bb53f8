// Package catalog builds, lays out and queries the example fitment catalog.
//
// The catalog is grouped ahead of time by (vehicle, wheel width, offset) so
// that a lookup is an index hit followed by one retrieval of a small shard:
//
//	examples/
//	├── index.json                      vehicle → width → offset → count
//	└── <vehicle>/<width>/<offset>.json  records at that triple
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// Index maps vehicle → wheel width key → offset key → number of examples.
type Index map[string]map[string]map[string]int

// Triple identifies one shard of the catalog.
type Triple struct {
	Vehicle string
	Width   float64
	Offset  float64
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %sx%s", t.Vehicle, Key(t.Width), Key(t.Offset))
}

// Key renders a width or offset the way it appears in the index and in
// shard paths: the shortest decimal form, so 8 is "8" and 8.5 is "8.5".
func Key(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadIndex decodes an index.json stream.
func ReadIndex(r io.Reader) (Index, error) {
	var idx Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	if idx == nil {
		idx = Index{}
	}
	return idx, nil
}

// ReadIndexFile loads an index.json file.
func ReadIndexFile(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadIndex(f)
}

// Exists reports whether any example is indexed at the triple.
func (idx Index) Exists(vehicle string, width, offset float64) bool {
	return idx.Count(vehicle, width, offset) > 0
}

// Count returns the number of examples indexed at the triple.
func (idx Index) Count(vehicle string, width, offset float64) int {
	return idx[vehicle][Key(width)][Key(offset)]
}

// Vehicles returns the indexed vehicle names in sorted order.
func (idx Index) Vehicles() []string {
	names := make([]string, 0, len(idx))
	for v := range idx {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

// Total returns the number of index entries for a vehicle. A staggered
// example counts once per axle it was indexed under.
func (idx Index) Total(vehicle string) int {
	n := 0
	for _, offsets := range idx[vehicle] {
		for _, c := range offsets {
			n += c
		}
	}
	return n
}

// Offsets returns, per width, the sorted offsets with examples for a
// vehicle. This is the shape the graph engine plots.
func (idx Index) Offsets(vehicle string) map[float64][]float64 {
	out := make(map[float64][]float64)
	for wk, offsets := range idx[vehicle] {
		w, err := strconv.ParseFloat(wk, 64)
		if err != nil {
			continue
		}
		for ok, c := range offsets {
			o, err := strconv.ParseFloat(ok, 64)
			if err != nil || c <= 0 {
				continue
			}
			out[w] = append(out[w], o)
		}
		sort.Float64s(out[w])
	}
	return out
}

func (idx Index) add(t Triple) {
	widths, ok := idx[t.Vehicle]
	if !ok {
		widths = make(map[string]map[string]int)
		idx[t.Vehicle] = widths
	}
	wk := Key(t.Width)
	offsets, ok := widths[wk]
	if !ok {
		offsets = make(map[string]int)
		widths[wk] = offsets
	}
	offsets[Key(t.Offset)]++
}
