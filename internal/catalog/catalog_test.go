package catalog

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brz = fitment.DefaultVehicle

const brzExamples = `[
	{"source": "ft86club", "link": "https://example.com/a", "description": "square 8+20", "images": [],
	 "wheel": {"width": 8, "offset": 20, "diameter": 18}, "tire": {"width": 225, "aspect": 40}},
	{"source": "ft86club", "link": "https://example.com/b", "description": "staggered", "images": [],
	 "wheel": {"front": {"width": 8, "offset": 20, "diameter": 18}, "back": {"width": 9, "offset": 15, "diameter": 18}},
	 "tire": {"front": {"width": 225, "aspect": 40}, "back": {"width": 255, "aspect": 35}}},
	{"source": "ft86club", "link": "https://example.com/c", "description": "split but square", "images": [],
	 "wheel": {"front": {"width": 8.5, "offset": 35, "diameter": 17}, "back": {"width": 8.5, "offset": 35, "diameter": 17}},
	 "tire": {"width": 235, "aspect": 45}},
	{"source": "ft86club", "link": "https://example.com/d", "description": "negative offset", "images": [],
	 "wheel": {"width": 9.5, "offset": -5, "diameter": 17}, "tire": {"width": 255, "aspect": 40}}
]`

func buildLayout(t *testing.T) (string, *Built) {
	t.Helper()
	b := NewBuilder(true)
	require.NoError(t, b.AddJSON(brz, []byte(brzExamples)))
	built := b.Built()

	dir := filepath.Join(t.TempDir(), "examples")
	require.NoError(t, WriteLayout(dir, built))
	return dir, built
}

type countingRetriever struct {
	inner Retriever
	calls atomic.Int32
}

func (c *countingRetriever) Retrieve(ctx context.Context, t Triple) ([]byte, error) {
	c.calls.Add(1)
	return c.inner.Retrieve(ctx, t)
}

func newCatalog(t *testing.T, dir string, r Retriever) *Catalog {
	t.Helper()
	idx, err := DirRetriever{Dir: dir}.LoadIndex(context.Background())
	require.NoError(t, err)
	c, err := New(idx, fitment.NewVehicles(fitment.Builtin()), r, logging.Discard())
	require.NoError(t, err)
	return c
}

func TestNewNeedsRetriever(t *testing.T) {
	_, err := New(Index{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoRetriever)
}

func TestHTTPRetrieverLiteral(t *testing.T) {
	dir, _ := buildLayout(t)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	h := &HTTPRetriever{BaseURL: srv.URL}
	idx, err := h.LoadIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Count(brz, 8, 20))
}

func TestStaggeredIndexedUnderBothPairs(t *testing.T) {
	_, built := buildLayout(t)
	idx := built.Index

	assert.Equal(t, 2, idx.Count(brz, 8, 20), "square and staggered front")
	assert.Equal(t, 1, idx.Count(brz, 9, 15), "staggered back")
	assert.Equal(t, 1, idx.Count(brz, 8.5, 35), "split with identical axles indexed once")
	assert.Equal(t, 1, idx.Count(brz, 9.5, -5))
	assert.Equal(t, 5, idx.Total(brz))
	assert.Empty(t, built.Rejected)
}

func TestSquareIndexedOnce(t *testing.T) {
	b := NewBuilder(false)
	require.NoError(t, b.AddJSON("car", []byte(`[{"wheel": {"width": 8, "offset": 20, "diameter": 18}, "tire": {"width": 225, "aspect": 40}}]`)))
	assert.Equal(t, Index{"car": {"8": {"20": 1}}}, b.Built().Index)
}

func TestStrictRejectsMissingPassThrough(t *testing.T) {
	b := NewBuilder(true)
	require.NoError(t, b.AddJSON("car", []byte(`[{"wheel": {"width": 8, "offset": 20, "diameter": 18}, "tire": {"width": 225, "aspect": 40}}]`)))

	built := b.Built()
	require.Len(t, built.Rejected, 1)
	assert.True(t, errors.Is(built.Rejected[0].Err, fitment.ErrMissingPassThrough))
	assert.Empty(t, built.Index)
}

func TestStrictRejectsMissingImages(t *testing.T) {
	b := NewBuilder(true)
	require.NoError(t, b.AddJSON("car", []byte(`[{"source": "s", "link": "l", "description": "d",
		"wheel": {"width": 8, "offset": 20, "diameter": 18}, "tire": {"width": 225, "aspect": 40}}]`)))

	built := b.Built()
	require.Len(t, built.Rejected, 1)
	assert.ErrorIs(t, built.Rejected[0].Err, fitment.ErrMissingPassThrough)
	assert.Contains(t, built.Rejected[0].Err.Error(), "images")
}

func TestFetchWarnsOnIncompleteExample(t *testing.T) {
	b := NewBuilder(false)
	require.NoError(t, b.AddJSON(brz, []byte(`[{"source": "s", "link": "l", "description": "d",
		"wheel": {"width": 8, "offset": 20, "diameter": 18}, "tire": {"width": 225, "aspect": 40}}]`)))
	dir := filepath.Join(t.TempDir(), "examples")
	require.NoError(t, WriteLayout(dir, b.Built()))

	var logs bytes.Buffer
	idx, err := DirRetriever{Dir: dir}.LoadIndex(context.Background())
	require.NoError(t, err)
	c, err := New(idx, fitment.NewVehicles(fitment.Builtin()), DirRetriever{Dir: dir}, logging.JSON("info", &logs))
	require.NoError(t, err)

	got := c.Fetch(context.Background(), brz, 8, 20)
	require.Len(t, got, 1, "the record is kept")
	assert.Contains(t, logs.String(), "incomplete example")
	assert.Contains(t, logs.String(), "images")
}

func TestFetchMatchesIndexCounts(t *testing.T) {
	dir, built := buildLayout(t)
	c := newCatalog(t, dir, DirRetriever{Dir: dir})
	ctx := context.Background()

	for vehicle, widths := range built.Index {
		for t2 := range built.Shards {
			if t2.Vehicle != vehicle {
				continue
			}
			require.True(t, c.Exists(t2.Vehicle, t2.Width, t2.Offset))
			got := c.Fetch(ctx, t2.Vehicle, t2.Width, t2.Offset)
			assert.Len(t, got, widths[Key(t2.Width)][Key(t2.Offset)], "triple %s", t2)
		}
	}
}

func TestFetchNormalizes(t *testing.T) {
	dir, _ := buildLayout(t)
	c := newCatalog(t, dir, DirRetriever{Dir: dir})

	got := c.Fetch(context.Background(), brz, 9, 15)
	require.Len(t, got, 1)
	assert.Equal(t, 8.0, got[0].Wheel.Front.Width)
	assert.Equal(t, 9.0, got[0].Wheel.Back.Width)
	assert.Equal(t, "None", got[0].Suspension, "suspension defaulted from stock")
}

func TestFetchUnknownVehicleDoesNotRetrieve(t *testing.T) {
	dir, _ := buildLayout(t)
	r := &countingRetriever{inner: DirRetriever{Dir: dir}}
	c := newCatalog(t, dir, r)

	got := c.Fetch(context.Background(), "UnknownVehicle", 8, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, c.Fetch(context.Background(), brz, 8, 21))
	assert.Zero(t, r.calls.Load())

	c.Fetch(context.Background(), brz, 8, 20)
	assert.EqualValues(t, 1, r.calls.Load())
}

func TestFetchDegradesOnMissingShard(t *testing.T) {
	dir, _ := buildLayout(t)
	rel, err := ShardPath(Triple{Vehicle: brz, Width: 9.5, Offset: -5})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, rel)))

	var buf bytes.Buffer
	idx, err := DirRetriever{Dir: dir}.LoadIndex(context.Background())
	require.NoError(t, err)
	c, err := New(idx, nil, DirRetriever{Dir: dir}, logging.JSON("debug", &buf))
	require.NoError(t, err)

	assert.Empty(t, c.Fetch(context.Background(), brz, 9.5, -5))
	assert.Contains(t, buf.String(), "indexed shard missing")
}

func TestFetchDegradesOnMalformedShard(t *testing.T) {
	dir, _ := buildLayout(t)
	rel, err := ShardPath(Triple{Vehicle: brz, Width: 9, Offset: 15})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte("{not json"), 0o644))

	var buf bytes.Buffer
	idx, err := DirRetriever{Dir: dir}.LoadIndex(context.Background())
	require.NoError(t, err)
	c, err := New(idx, nil, DirRetriever{Dir: dir}, logging.JSON("debug", &buf))
	require.NoError(t, err)

	assert.Empty(t, c.Fetch(context.Background(), brz, 9, 15))
	assert.Contains(t, buf.String(), "could not parse shard")
}

func TestHTTPRetriever(t *testing.T) {
	dir, _ := buildLayout(t)

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
	}))
	defer srv.Close()

	h := NewHTTPRetriever(srv.URL+"/", 0)
	idx, err := h.LoadIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Count(brz, 9.5, -5))

	c, err := New(idx, fitment.NewVehicles(fitment.Builtin()), h, logging.Discard())
	require.NoError(t, err)
	assert.Len(t, c.Fetch(context.Background(), brz, 8.5, 35), 1)

	require.Len(t, paths, 2)
	assert.Equal(t, "/Subaru%20BRZ%2C%20Toyota%2086%2C%20Scion%20FR-S%20%2813-20%29/8.5/35.json", paths[1])

	_, err = h.Retrieve(context.Background(), Triple{Vehicle: brz, Width: 1, Offset: 1})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFetchLatestDropsStale(t *testing.T) {
	dir, _ := buildLayout(t)
	c := newCatalog(t, dir, DirRetriever{Dir: dir})
	ctx := context.Background()

	first := c.Begin()
	second := c.Begin()

	_, ok := c.FetchLatest(ctx, first, brz, 8, 20)
	assert.False(t, ok)

	got, ok := c.FetchLatest(ctx, second, brz, 8, 20)
	assert.True(t, ok)
	assert.Len(t, got, 2)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "8", Key(8))
	assert.Equal(t, "8.5", Key(8.5))
	assert.Equal(t, "-5", Key(-5))
	assert.Equal(t, "0", Key(math.Copysign(0, -1)))
}

func TestOffsets(t *testing.T) {
	_, built := buildLayout(t)
	got := built.Index.Offsets(brz)
	assert.Equal(t, []float64{20}, got[8])
	assert.Equal(t, []float64{-5}, got[9.5])
	assert.Len(t, got, 4)
}

func TestShardPathRejectsSeparators(t *testing.T) {
	_, err := ShardPath(Triple{Vehicle: "a/b", Width: 8, Offset: 1})
	assert.True(t, errors.Is(err, ErrBadVehicleName))
}
