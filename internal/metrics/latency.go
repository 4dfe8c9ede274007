package metrics

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/go-chi/chi/v5"
)

// Histogram range in microseconds: 1µs to 60s, 3 significant figures.
const (
	minLatencyMicros = 1
	maxLatencyMicros = 60 * 1000 * 1000
	sigFigs          = 3
)

// RouteLatency summarizes one route. Durations are in milliseconds.
type RouteLatency struct {
	Route  string  `json:"route"`
	Count  int64   `json:"count"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// Recorder keeps one latency histogram per route pattern.
type Recorder struct {
	mu         sync.Mutex
	histograms map[string]*hdrhistogram.Histogram
}

func NewRecorder() *Recorder {
	return &Recorder{histograms: make(map[string]*hdrhistogram.Histogram)}
}

// Record adds one observation. Values outside the histogram range are clamped.
func (r *Recorder) Record(route string, d time.Duration) {
	v := d.Microseconds()
	if v < minLatencyMicros {
		v = minLatencyMicros
	}
	if v > maxLatencyMicros {
		v = maxLatencyMicros
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histograms[route]
	if !ok {
		h = hdrhistogram.New(minLatencyMicros, maxLatencyMicros, sigFigs)
		r.histograms[route] = h
	}
	_ = h.RecordValue(v)
}

// Snapshot returns a summary per route, sorted by route.
func (r *Recorder) Snapshot() []RouteLatency {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RouteLatency, 0, len(r.histograms))
	for route, h := range r.histograms {
		out = append(out, RouteLatency{
			Route:  route,
			Count:  h.TotalCount(),
			MeanMs: h.Mean() / 1000,
			P50Ms:  float64(h.ValueAtQuantile(50)) / 1000,
			P95Ms:  float64(h.ValueAtQuantile(95)) / 1000,
			P99Ms:  float64(h.ValueAtQuantile(99)) / 1000,
			MaxMs:  float64(h.Max()) / 1000,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// Middleware times each request under its chi route pattern ("METHOD /path").
// Requests that match no route are grouped as "unmatched".
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = req.Method + " " + rctx.RoutePattern()
		}
		r.Record(route, time.Since(start))
	})
}
