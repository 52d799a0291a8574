// Package status maps the aggregated snapshot to a discrete player status
// with confidence and trend.
package status

import (
	"math"
	"sync"
	"time"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/scoring"
	"github.com/okian/biosense/pkg/ring"
	"gonum.org/v1/gonum/stat"
)

// Default classifier configuration constants.
const (
	defaultHistorySize     = 50
	defaultTrendWindow     = 10
	defaultMargin          = 0.05
	defaultChangeThreshold = 0.1

	trendDelta           = 0.05
	sparsePenalty        = 0.7
	elevatedPenalty      = 0.9
	singleMetricConsist  = 0.5
	minMetricsForConsist = 2
)

// Outcome is the result of one classification.
type Outcome struct {
	State    model.PlayerState
	Previous model.PlayerState
	// Changed is true when the status differs from the last published state
	// or the score moved by more than the change threshold since then.
	Changed bool
	Score   scoring.Result
}

// Classifier computes PlayerState from snapshots. Calls to Classify are
// serialized internally, so history stays totally ordered.
type Classifier struct {
	mu              sync.RWMutex
	scorer          *scoring.Scorer
	history         *ring.Ring[model.PlayerState]
	current         model.PlayerState
	published       model.PlayerState
	historySize     int
	trendWindow     int
	margin          float64
	changeThreshold float64
}

// New creates a Classifier in the initial disconnected state.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		scorer:          scoring.New(),
		current:         model.InitialState(),
		published:       model.InitialState(),
		historySize:     defaultHistorySize,
		trendWindow:     defaultTrendWindow,
		margin:          defaultMargin,
		changeThreshold: defaultChangeThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.history = ring.New[model.PlayerState](c.historySize)
	return c
}

// Classify recomputes the state for snap. quality is the overall data
// quality at ts.
func (c *Classifier) Classify(snap model.Snapshot, quality float64, ts time.Time) Outcome {
	res := c.scorer.Score(snap)

	c.mu.Lock()
	defer c.mu.Unlock()

	next := model.PlayerState{
		Metrics:    snap.Clone(),
		LastUpdate: ts,
	}
	if len(res.Available) == 0 {
		next.Status = model.StatusDisconnected
	} else {
		next.ArousalScore = clamp01(res.Score)
		next.Status = withHysteresis(c.current.Status, next.ArousalScore, c.margin)
		next.Confidence = confidence(res, next.Status, quality)
	}

	next.Trend = c.trend(next.ArousalScore)
	c.history.Push(next)

	out := Outcome{State: next, Previous: c.current, Score: res}
	c.current = next
	if next.Status != c.published.Status || math.Abs(next.ArousalScore-c.published.ArousalScore) > c.changeThreshold {
		out.Changed = true
		c.published = next
	}
	return out
}

// Current returns the latest computed state.
func (c *Classifier) Current() model.PlayerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// History returns the retained states, oldest first.
func (c *Classifier) History() []model.PlayerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Values()
}

// trend compares the mean score of the older and newer halves of the
// window ending with latest. Callers hold c.mu.
func (c *Classifier) trend(latest float64) model.Trend {
	recent := c.history.Tail(c.trendWindow - 1)
	scores := make([]float64, 0, len(recent)+1)
	for _, s := range recent {
		scores = append(scores, s.ArousalScore)
	}
	scores = append(scores, latest)
	if len(scores) < 2 {
		return model.TrendStable
	}
	half := len(scores) / 2
	diff := stat.Mean(scores[half:], nil) - stat.Mean(scores[:half], nil)
	switch {
	case diff > trendDelta:
		return model.TrendIncreasing
	case diff < -trendDelta:
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

func confidence(res scoring.Result, s model.Status, quality float64) float64 {
	conf := quality
	if len(res.Available) < minMetricsForConsist {
		conf *= sparsePenalty
	}
	if s.Elevated() {
		conf *= elevatedPenalty
	}
	return clamp01(conf * consistency(res))
}

// consistency is one minus the coefficient of variation of the component
// levels. A single metric gets a flat factor.
func consistency(res scoring.Result) float64 {
	if len(res.Available) < minMetricsForConsist {
		return singleMetricConsist
	}
	levels := make([]float64, len(res.Available))
	for i, m := range res.Available {
		levels[i] = res.Components[m]
	}
	mean, std := stat.PopMeanStdDev(levels, nil)
	if mean == 0 {
		return 1
	}
	return math.Max(0, 1-std/mean)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
