package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/model"
)

// Built is the result of grouping example sources: the index plus the raw
// records for every shard. Records are kept exactly as authored.
type Built struct {
	Index    Index
	Shards   map[Triple][]json.RawMessage
	Rejected []Rejection
}

// Rejection records an example that was left out of the catalog.
type Rejection struct {
	Vehicle  string
	Position int
	Err      error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s example %d: %v", r.Vehicle, r.Position, r.Err)
}

// Builder groups examples by (vehicle, width, offset).
type Builder struct {
	// Strict rejects examples missing source, link or description.
	Strict bool

	built Built
}

// NewBuilder returns an empty builder.
func NewBuilder(strict bool) *Builder {
	return &Builder{
		Strict: strict,
		built: Built{
			Index:  Index{},
			Shards: make(map[Triple][]json.RawMessage),
		},
	}
}

// AddJSON adds a vehicle's source file: a JSON array of loose records.
func (b *Builder) AddJSON(vehicle string, data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decoding %s examples: %w", vehicle, err)
	}
	for i, raw := range raws {
		var ex model.FitmentDescriptor
		if err := json.Unmarshal(raw, &ex); err != nil {
			b.built.Rejected = append(b.built.Rejected, Rejection{Vehicle: vehicle, Position: i, Err: err})
			continue
		}
		b.add(vehicle, i, ex, raw)
	}
	return nil
}

// Add adds a single decoded record.
func (b *Builder) Add(vehicle string, ex model.FitmentDescriptor) error {
	raw, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encoding %s example: %w", vehicle, err)
	}
	b.add(vehicle, -1, ex, raw)
	return nil
}

func (b *Builder) add(vehicle string, pos int, ex model.FitmentDescriptor, raw json.RawMessage) {
	if b.Strict {
		if err := fitment.CheckPassThrough(ex); err != nil {
			b.built.Rejected = append(b.built.Rejected, Rejection{Vehicle: vehicle, Position: pos, Err: err})
			return
		}
	}
	for _, t := range Triples(vehicle, ex) {
		b.built.Index.add(t)
		b.built.Shards[t] = append(b.built.Shards[t], raw)
	}
}

// Built returns everything added so far.
func (b *Builder) Built() *Built {
	return &b.built
}

// Triples lists the shards an example belongs to: one per distinct
// (width, offset) among its wheels, back first. A square record, or a split
// one whose axles share width and offset, is listed once.
func Triples(vehicle string, ex model.FitmentDescriptor) []Triple {
	front, back := ex.Wheel.Axles.Front, ex.Wheel.Axles.Back
	out := []Triple{{Vehicle: vehicle, Width: back.Width, Offset: back.Offset}}
	ft := Triple{Vehicle: vehicle, Width: front.Width, Offset: front.Offset}
	if ft != out[0] {
		out = append(out, ft)
	}
	return out
}

// BuildDir reads every <vehicle>.json file in srcDir.
func BuildDir(srcDir string, strict bool) (*Built, error) {
	b := NewBuilder(strict)
	if err := b.AddDir(srcDir); err != nil {
		return nil, err
	}
	return b.Built(), nil
}

// AddDir adds every <vehicle>.json file in srcDir.
func (b *Builder) AddDir(srcDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("reading source dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(srcDir, e.Name()))
		if err != nil {
			return err
		}
		if err := b.AddJSON(strings.TrimSuffix(e.Name(), ".json"), data); err != nil {
			return err
		}
	}
	return nil
}

// ErrBadVehicleName is returned for vehicle names that cannot be a single
// path segment.
var ErrBadVehicleName = errors.New("vehicle name cannot be used as a directory")

// ShardPath is the layout-relative path of a shard, using OS separators.
// Segments are raw here; HTTP clients percent-encode them.
func ShardPath(t Triple) (string, error) {
	if t.Vehicle == "" || t.Vehicle == "." || t.Vehicle == ".." || strings.ContainsAny(t.Vehicle, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrBadVehicleName, t.Vehicle)
	}
	return filepath.Join(t.Vehicle, Key(t.Width), Key(t.Offset)+".json"), nil
}

// WriteLayout replaces dir with the on-disk catalog: index.json plus one
// shard file per triple.
func WriteLayout(dir string, built *Built) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	triples := make([]Triple, 0, len(built.Shards))
	for t := range built.Shards {
		triples = append(triples, t)
	}
	sort.Slice(triples, func(i, j int) bool { return lessTriple(triples[i], triples[j]) })

	for _, t := range triples {
		rel, err := ShardPath(t)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		data, err := json.Marshal(built.Shards[t])
		if err != nil {
			return fmt.Errorf("encoding %s: %w", t, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", t, err)
		}
	}

	data, err := json.MarshalIndent(built.Index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "index.json"), data, 0o644)
}

func lessTriple(a, b Triple) bool {
	if a.Vehicle != b.Vehicle {
		return a.Vehicle < b.Vehicle
	}
	if a.Width != b.Width {
		return a.Width < b.Width
	}
	return a.Offset < b.Offset
}
