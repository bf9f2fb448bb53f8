package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/logging"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/pterm/pterm"
)

// Catalog answers example queries against a loaded index.
type Catalog struct {
	index     Index
	vehicles  *fitment.Vehicles
	retriever Retriever
	log       *pterm.Logger

	seq Sequencer
}

// ErrNoRetriever is returned by New without a retriever.
var ErrNoRetriever = errors.New("catalog needs a retriever")

// New creates a catalog. The index and vehicle table are read-only. A nil
// logger discards diagnostics.
func New(index Index, vehicles *fitment.Vehicles, r Retriever, log *pterm.Logger) (*Catalog, error) {
	if r == nil {
		return nil, ErrNoRetriever
	}
	if index == nil {
		index = Index{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Catalog{index: index, vehicles: vehicles, retriever: r, log: log}, nil
}

// Index returns the loaded index.
func (c *Catalog) Index() Index {
	return c.index
}

// Exists reports whether the triple has examples. It never touches the
// retriever.
func (c *Catalog) Exists(vehicle string, width, offset float64) bool {
	return c.index.Exists(vehicle, width, offset)
}

// Fetch returns the normalized examples at a triple. Triples missing from
// the index return an empty slice without a retrieval. Retrieval and decode
// failures are logged and also return an empty slice.
func (c *Catalog) Fetch(ctx context.Context, vehicle string, width, offset float64) []model.RequiredFitmentDescriptor {
	t := Triple{Vehicle: vehicle, Width: width, Offset: offset}
	if !c.Exists(vehicle, width, offset) {
		c.log.Debug("triple not in index", c.log.Args("triple", t.String()))
		return []model.RequiredFitmentDescriptor{}
	}

	data, err := c.retriever.Retrieve(ctx, t)
	if err != nil {
		msg := "retrieval failed"
		if errors.Is(err, ErrNotFound) {
			msg = "indexed shard missing"
		}
		c.log.Warn(msg, c.log.Args("triple", t.String(), "error", err.Error()))
		return []model.RequiredFitmentDescriptor{}
	}

	var loose []model.FitmentDescriptor
	if err := json.Unmarshal(data, &loose); err != nil {
		c.log.Warn("could not parse shard", c.log.Args("triple", t.String(), "error", err.Error()))
		return []model.RequiredFitmentDescriptor{}
	}

	stock := c.stock(vehicle)
	out := make([]model.RequiredFitmentDescriptor, 0, len(loose))
	for i, ex := range loose {
		d, err := fitment.Normalize(ex, stock)
		if err != nil {
			c.log.Warn("incomplete example", c.log.Args("triple", t.String(), "position", i, "error", err.Error()))
		}
		out = append(out, d)
	}
	return out
}

// FetchLatest is Fetch guarded by a request token from Begin. ok is false
// when a newer request was issued while this one was in flight; the
// results are then stale and should be dropped.
func (c *Catalog) FetchLatest(ctx context.Context, token uint64, vehicle string, width, offset float64) (examples []model.RequiredFitmentDescriptor, ok bool) {
	examples = c.Fetch(ctx, vehicle, width, offset)
	if !c.seq.IsLatest(token) {
		c.log.Debug("dropping stale examples", c.log.Args("token", token))
		return nil, false
	}
	return examples, true
}

// Begin issues a new request token, superseding all earlier ones.
func (c *Catalog) Begin() uint64 {
	return c.seq.Next()
}

// Current reports whether token is still the latest issued.
func (c *Catalog) Current(token uint64) bool {
	return c.seq.IsLatest(token)
}

func (c *Catalog) stock(vehicle string) model.RequiredFitmentDescriptor {
	if c.vehicles == nil {
		return model.RequiredFitmentDescriptor{}
	}
	v, err := c.vehicles.Get(vehicle)
	if err != nil {
		c.log.Debug("no stock fitment, using zero defaults", c.log.Args("vehicle", vehicle))
		return model.RequiredFitmentDescriptor{}
	}
	return v.Stock
}

// Sequencer issues monotonically increasing request tokens.
type Sequencer struct {
	n atomic.Uint64
}

// Next issues a token newer than every earlier one.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// IsLatest reports whether no token newer than t has been issued.
func (s *Sequencer) IsLatest(t uint64) bool {
	return s.n.Load() == t
}
