// Package selection orchestrates the end-to-end recommendation
// pipeline: market context gathering, chain processing, spread
// generation, analysis, risk validation and ranking.
package selection

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"

	"spyfly/internal/analysis/blackscholes"
	"spyfly/internal/analysis/chain"
	"spyfly/internal/analysis/ranking"
	"spyfly/internal/analysis/spread"
	"spyfly/internal/config"
	apperrors "spyfly/internal/errors"
	"spyfly/internal/market"
	"spyfly/internal/models"
	"spyfly/internal/risk"
	"spyfly/pkg/utils"
)

// oneTradingDay is the time to expiry fed into Black-Scholes for a
// same-day expiration, in years.
const oneTradingDay = 1.0 / 252

// maxRecommendationsLimit bounds the caller-supplied truncation.
const maxRecommendationsLimit = 10

// marketContext is the joined result of the concurrent collaborator
// reads. Local to one call; never shared across invocations.
type marketContext struct {
	spot      float64
	vix       float64
	sentiment float64
}

// skippedSpread records one combination dropped during analysis, with
// the reason. Skips never abort the batch.
type skippedSpread struct {
	LongStrike  float64
	ShortStrike float64
	Reason      string
}

// Service drives the recommendation pipeline. All working data is
// local to a single GetRecommendations call; the only shared state is
// immutable configuration, so concurrent calls with different account
// sizes are safe.
type Service struct {
	cfg       *config.Config
	provider  market.DataProvider
	processor *chain.Processor
	generator *spread.Generator
	calc      *blackscholes.Calculator
	validator *risk.Validator
	ranker    *ranking.Engine
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService wires the pipeline components from configuration. Fails
// fast when the ranking weights are inconsistent.
func NewService(cfg *config.Config, provider market.DataProvider, logger zerolog.Logger) (*Service, error) {
	ranker, err := ranking.NewEngineWithWeights(ranking.Weights{
		Probability: cfg.Ranking.ProbabilityWeight,
		RiskReward:  cfg.Ranking.RiskRewardWeight,
		Sentiment:   cfg.Ranking.SentimentWeight,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:       cfg,
		provider:  provider,
		processor: chain.NewProcessor(logger),
		generator: spread.NewGenerator(logger),
		calc:      blackscholes.NewCalculator(),
		validator: risk.NewValidatorWithLimits(logger, cfg.Risk.MaxBuyingPowerPct, cfg.Risk.MinRiskRewardRatio),
		ranker:    ranker,
		logger:    logger.With().Str("component", "selection").Logger(),
		now:       time.Now,
	}, nil
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetRecommendations runs one full selection pass and returns the
// ranked recommendations. An unsuitable market or an empty pipeline
// stage yields a successful empty result with a reason; only invalid
// arguments and collaborator failures error.
func (s *Service) GetRecommendations(ctx context.Context, accountSize float64, maxRecommendations int) (*models.ScanResult, error) {
	if accountSize <= 0 {
		return nil, apperrors.NewValidationError("accountSize", accountSize, "must be positive")
	}
	if maxRecommendations < 1 {
		maxRecommendations = 1
	} else if maxRecommendations > maxRecommendationsLimit {
		maxRecommendations = maxRecommendationsLimit
	}

	started := s.now()
	result := &models.ScanResult{Timestamp: started}

	// Gather market context from the collaborators concurrently.
	mc, err := s.gatherContext(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMarketContextUnavailable) {
			result.Reason = "market context unavailable"
			return result, nil
		}
		return nil, err
	}
	result.SpotPrice = mc.spot
	result.VolatilityProxy = mc.vix
	result.SentimentScore = mc.sentiment

	// Suitability gate. Short-circuits before any chain fetch.
	if reason, suitable := s.checkSuitability(mc); !suitable {
		result.Reason = reason
		s.logger.Info().Str("reason", reason).Msg("Market unsuitable, no scan")
		return result, nil
	}

	// Fetch today's 0-DTE call chain.
	quotes, err := s.provider.GetOptionChain(ctx, s.now(), market.Call)
	if err != nil {
		return nil, apperrors.NewCollaboratorError("chain", "GetOptionChain", err)
	}

	// Normalize and filter the chain.
	rows := s.processor.Parse(quotes, chain.ParseOptions{
		Now:                s.now(),
		FilterZeroDTE:      true,
		ApplyMoneyness:     true,
		Spot:               mc.spot,
		MinOTMPoints:       s.cfg.Chain.MinOTMPoints,
		MaxOTMPoints:       s.cfg.Chain.MaxOTMPoints,
		MinVolume:          s.cfg.Chain.MinVolume,
		MinOpenInterest:    s.cfg.Chain.MinOpenInterest,
		RequireBoth:        s.cfg.Chain.RequireBothLiquidity,
		MaxBidAskSpreadPct: s.cfg.Chain.MaxBidAskSpreadPct,
	})
	if len(rows) == 0 {
		result.Reason = "no qualifying chain rows"
		return result, nil
	}

	// Generate and pre-filter combinations.
	combos, err := s.generator.Generate(rows, true)
	if err != nil {
		return nil, err
	}
	combos = spread.FilterByRiskReward(combos, s.cfg.Spread.MinRiskRewardRatio)
	combos = spread.FilterByWidth(combos, s.cfg.Spread.MinWidth, s.cfg.Spread.MaxWidth)
	combos = spread.FilterByLiquidity(combos, s.cfg.Spread.MinLiquidityScore, 0)
	if len(combos) == 0 {
		result.Reason = "no qualifying spreads"
		return result, nil
	}

	// Analyze each surviving combination; failures skip the item.
	recs, skipped := s.analyzeCombinations(combos, mc, accountSize)
	for _, sk := range skipped {
		s.logger.Debug().
			Float64("long_strike", sk.LongStrike).
			Float64("short_strike", sk.ShortStrike).
			Str("reason", sk.Reason).
			Msg("Spread skipped during analysis")
	}

	// Probability floor.
	filtered := make([]models.Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.ProbabilityOfProfit >= s.cfg.Selection.MinProbabilityOfProfit {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		result.Reason = "no spreads above probability floor"
		return result, nil
	}

	// Rank and truncate.
	ranked := s.ranker.Rank(filtered)
	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}
	result.Recommendations = ranked
	result.Reason = fmt.Sprintf("%d recommendations", len(ranked))

	s.logCandidateDistribution(filtered)
	s.logger.Info().
		Int("candidates", len(filtered)).
		Int("recommendations", len(ranked)).
		Dur("duration", s.now().Sub(started)).
		Msg("Selection pass complete")

	return result, nil
}

// gatherContext issues the independent collaborator reads concurrently
// under one timeout with unified cancellation. A read error is
// propagated as a CollaboratorError; an unusable value degrades to
// ErrMarketContextUnavailable, which the caller maps to an empty,
// successful result.
func (s *Service) gatherContext(ctx context.Context) (marketContext, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Selection.ContextTimeout)
	defer cancel()

	type read struct {
		name  string
		value float64
		err   error
	}
	results := make(chan read, 3)

	go func() {
		quote, err := s.provider.GetSpotQuote(ctx)
		results <- read{name: "spot", value: quote.Price, err: err}
	}()
	go func() {
		vix, err := s.provider.GetVolatilityProxy(ctx)
		results <- read{name: "volatility", value: vix, err: err}
	}()
	go func() {
		sentiment, err := s.provider.GetSentimentScore(ctx)
		results <- read{name: "sentiment", value: sentiment, err: err}
	}()

	var mc marketContext
	for i := 0; i < 3; i++ {
		r := <-results
		if r.err != nil {
			cancel() // stop the remaining in-flight reads
			return marketContext{}, apperrors.NewCollaboratorError(r.name, "gather", r.err)
		}
		switch r.name {
		case "spot":
			mc.spot = r.value
		case "volatility":
			mc.vix = r.value
		case "sentiment":
			mc.sentiment = r.value
		}
	}

	if mc.spot <= 0 || math.IsNaN(mc.spot) ||
		mc.vix <= 0 || math.IsNaN(mc.vix) ||
		mc.sentiment < -1 || mc.sentiment > 1 || math.IsNaN(mc.sentiment) {
		return marketContext{}, apperrors.ErrMarketContextUnavailable
	}
	return mc, nil
}

// checkSuitability applies the weekend and extreme-volatility gates.
func (s *Service) checkSuitability(mc marketContext) (string, bool) {
	if utils.IsWeekend(s.now()) {
		return "market closed (weekend)", false
	}
	if mc.vix > s.cfg.Selection.ExtremeVolatilityThreshold {
		return fmt.Sprintf("volatility %.1f above extreme threshold %.1f", mc.vix, s.cfg.Selection.ExtremeVolatilityThreshold), false
	}
	return "", true
}

// analyzeCombinations is a fallible map over the candidates: it
// returns the successfully analyzed recommendations and the skipped
// items with their reasons.
func (s *Service) analyzeCombinations(combos []models.SpreadCombination, mc marketContext, accountSize float64) ([]models.Recommendation, []skippedSpread) {
	sigma := mc.vix / 100
	recs := make([]models.Recommendation, 0, len(combos))
	var skipped []skippedSpread

	skip := func(c models.SpreadCombination, reason string) {
		skipped = append(skipped, skippedSpread{
			LongStrike:  c.LongStrike,
			ShortStrike: c.ShortStrike,
			Reason:      reason,
		})
	}

	for _, c := range combos {
		size, err := s.validator.CalculatePositionSize(accountSize, c.NetDebit, s.cfg.Risk.MaxBuyingPowerPct)
		if err != nil {
			skip(c, err.Error())
			continue
		}

		// Probability of finishing above breakeven, the modeled
		// proxy for "any profit" on the capped payoff.
		pop, err := s.calc.ProbabilityOfProfit(mc.spot, c.Breakeven, oneTradingDay, sigma)
		if err != nil {
			skip(c, err.Error())
			continue
		}

		ev, err := s.ranker.ExpectedValue(pop, c.MaxProfit, c.MaxRisk)
		if err != nil {
			skip(c, err.Error())
			continue
		}

		score, err := s.ranker.Score(pop, c.RiskRewardRatio, mc.sentiment)
		if err != nil {
			skip(c, err.Error())
			continue
		}

		greeks, err := s.calc.Greeks(mc.spot, c.LongStrike, oneTradingDay, sigma)
		if err != nil {
			skip(c, err.Error())
			continue
		}

		rec := models.Recommendation{
			SpreadCombination:   c,
			ProbabilityOfProfit: pop,
			ExpectedValue:       ev,
			SentimentScore:      mc.sentiment,
			RankingScore:        score,
			ContractsToTrade:    size.Contracts,
			TotalCost:           size.TotalCost,
			BuyingPowerUsedPct:  size.RiskPct,
			LongGreeks:          greeks,
			Timestamp:           s.now(),
		}

		res, err := s.validator.ValidateSpread(rec, accountSize)
		if err != nil {
			skip(c, err.Error())
			continue
		}
		if !res.IsValid {
			skip(c, fmt.Sprintf("risk validation failed: %v", res.Reasons))
			continue
		}

		recs = append(recs, rec)
	}
	return recs, skipped
}

// logCandidateDistribution logs summary statistics over the surviving
// candidates, for scan diagnostics.
func (s *Service) logCandidateDistribution(recs []models.Recommendation) {
	if len(recs) == 0 {
		return
	}
	pops := make([]float64, len(recs))
	scores := make([]float64, len(recs))
	for i, r := range recs {
		pops[i] = r.ProbabilityOfProfit
		scores[i] = r.RankingScore
	}

	meanPop, err1 := stats.Mean(pops)
	medianPop, err2 := stats.Median(pops)
	meanScore, err3 := stats.Mean(scores)
	if err1 != nil || err2 != nil || err3 != nil {
		return
	}
	s.logger.Debug().
		Float64("mean_pop", meanPop).
		Float64("median_pop", medianPop).
		Float64("mean_score", meanScore).
		Int("candidates", len(recs)).
		Msg("Candidate distribution")
}
