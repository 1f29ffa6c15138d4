// Package ensemble combines the loaded base models into one calibrated
// prediction: fan out inference under a per-model timeout, renormalize the
// weights of whoever answered, and attach confidence, explanation and data
// quality.
package ensemble

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/predictor"
)

// syntheticPenalty scales confidence down once per synthetic feature group
const syntheticPenalty = 0.85

// Combiner merges base model outputs into a PredictionResult
type Combiner struct {
	manager *predictor.Manager
	cfg     config.EnsembleConfig
	cache   *PredictionCache
	logger  *logrus.Entry
}

// NewCombiner creates an ensemble combiner. cache may be nil to disable
// result caching.
func NewCombiner(manager *predictor.Manager, cfg config.EnsembleConfig, cache *PredictionCache, logger *logrus.Entry) *Combiner {
	return &Combiner{manager: manager, cfg: cfg, cache: cache, logger: logger}
}

// modelResponse is one base model's answer, or its failure
type modelResponse struct {
	family string
	prob   float64
	err    error
}

// Predict combines every loaded model's probability for the matchup. It
// returns a result as long as at least one model answers in budget; it
// errors only when no model is loaded or none respond.
func (c *Combiner) Predict(ctx context.Context, gf *features.GameFeatures) (*models.PredictionResult, error) {
	start := time.Now()

	families := c.manager.ActiveFamilies()
	if len(families) == 0 {
		return nil, models.ErrNoModelsAvailable
	}

	version := c.ensembleVersion(families)
	if cached := c.cache.Get(gf.GameID, version); cached != nil {
		return cached, nil
	}

	responses := make(chan modelResponse, len(families))
	for _, family := range families {
		go c.inferOne(family, gf, responses)
	}

	weights := c.cfg.ModelWeights(families)
	breakdown := make([]models.ModelBreakdown, 0, len(families))
	responded := make(map[string]float64, len(families))

	timeout := time.NewTimer(c.cfg.PerModelTimeout())
	defer timeout.Stop()

	pending := len(families)
collect:
	for pending > 0 {
		select {
		case resp := <-responses:
			pending--
			if resp.err != nil {
				metrics.RecordModelFailure(resp.family, "inference_error")
				c.logger.WithError(resp.err).WithField("model_type", resp.family).Warn("Base model failed, excluding from ensemble")
				breakdown = append(breakdown, models.ModelBreakdown{ModelType: resp.family, Weight: weights[resp.family]})
				continue
			}
			responded[resp.family] = resp.prob
			breakdown = append(breakdown, models.ModelBreakdown{
				ModelType:   resp.family,
				Probability: resp.prob,
				Weight:      weights[resp.family],
				Responded:   true,
			})
		case <-timeout.C:
			// Whoever has not answered loses its slot
			break collect
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(responded) == 0 {
		return nil, fmt.Errorf("%w: no base model responded", models.ErrNoModelsAvailable)
	}

	for _, family := range families {
		if _, ok := responded[family]; ok {
			continue
		}
		if !breakdownContains(breakdown, family) {
			metrics.RecordModelFailure(family, "timeout")
			c.logger.WithField("model_type", family).Warn("Base model missed its inference slot")
			breakdown = append(breakdown, models.ModelBreakdown{ModelType: family, Weight: weights[family]})
		}
	}

	// Renormalize the responders' weights to sum to 1
	totalWeight := 0.0
	for family := range responded {
		totalWeight += weights[family]
	}
	prob := 0.0
	for family, p := range responded {
		prob += p * weights[family] / totalWeight
	}
	prob = math.Min(1, math.Max(0, prob))

	for i := range breakdown {
		if breakdown[i].Responded {
			breakdown[i].Weight = weights[breakdown[i].ModelType] / totalWeight
		} else {
			breakdown[i].Weight = 0
		}
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].ModelType < breakdown[j].ModelType })

	result := &models.PredictionResult{
		MatchupID:          gf.GameID,
		HomeWinProbability: prob,
		AwayWinProbability: 1 - prob,
		Winner:             c.classify(prob, responded),
		Confidence:         c.confidence(prob, gf, len(responded), len(families)),
		PerModelBreakdown:  breakdown,
		TopFactors:         c.topFactors(gf),
		DataQuality:        gf.Quality,
		ModelVersion:       version,
		GeneratedAt:        time.Now().UTC(),
	}

	c.cache.Set(gf.GameID, version, result)
	metrics.RecordPrediction(result.Winner, result.DataQuality.Degraded(), time.Since(start).Seconds())
	return result, nil
}

// inferOne runs one base model on its variant vector
func (c *Combiner) inferOne(family string, gf *features.GameFeatures, out chan<- modelResponse) {
	p, _, ok := c.manager.Get(family)
	if !ok {
		out <- modelResponse{family: family, err: models.ErrNoModelsAvailable}
		return
	}

	vec, err := gf.VectorFor(family)
	if err != nil {
		out <- modelResponse{family: family, err: err}
		return
	}

	start := time.Now()
	prob, err := p.Predict(features.DifferenceVector(vec, family))
	metrics.ModelInferenceLatency.WithLabelValues(family).Observe(time.Since(start).Seconds())
	out <- modelResponse{family: family, prob: prob, err: err}
}

// classify picks the winner, or declares no play when the weighted average
// sits near a coin flip while the models genuinely disagree.
func (c *Combiner) classify(prob float64, responded map[string]float64) string {
	if math.Abs(prob-0.5) < c.cfg.NoPlayMargin && spread(responded) >= c.cfg.DisagreementSpread {
		return models.WinnerNoPlay
	}
	if prob >= 0.5 {
		return models.WinnerHome
	}
	return models.WinnerAway
}

// spread returns max minus min of the responding probabilities
func spread(responded map[string]float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range responded {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// confidence derives a [0,1] score from the probability margin, discounted
// for synthetic inputs and missing models.
func (c *Combiner) confidence(prob float64, gf *features.GameFeatures, respondedCount, loadedCount int) float64 {
	conf := math.Abs(prob-0.5) * 2
	for range gf.Quality.SyntheticGroups {
		conf *= syntheticPenalty
	}
	if loadedCount > 0 {
		conf *= float64(respondedCount) / float64(loadedCount)
	}
	return math.Min(1, math.Max(0, conf))
}

// topFactors surfaces up to three of the largest-magnitude difference
// features as human-readable strings.
func (c *Combiner) topFactors(gf *features.GameFeatures) []string {
	vec, err := gf.VectorFor(models.ModelNeuralNet)
	if err != nil {
		return nil
	}
	factors := features.DifferenceFactors(features.DifferenceVector(vec, models.ModelNeuralNet), models.ModelNeuralNet)
	sort.Slice(factors, func(i, j int) bool {
		return math.Abs(factors[i].Value) > math.Abs(factors[j].Value)
	})

	out := make([]string, 0, 3)
	for _, f := range factors {
		if len(out) == 3 || f.Value == 0 {
			break
		}
		side := "home"
		if f.Value < 0 {
			side = "away"
		}
		out = append(out, fmt.Sprintf("%s favors %s (%+.2f)", f.Name, side, f.Value))
	}
	return out
}

// ensembleVersion identifies the serving ensemble as the composite of active
// model versions
func (c *Combiner) ensembleVersion(families []string) string {
	parts := make([]string, 0, len(families))
	for _, family := range families {
		parts = append(parts, family+"="+c.manager.Version(family))
	}
	return strings.Join(parts, ",")
}

func breakdownContains(breakdown []models.ModelBreakdown, family string) bool {
	for _, b := range breakdown {
		if b.ModelType == family {
			return true
		}
	}
	return false
}
