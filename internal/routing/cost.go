package routing

// tierProfile is a per-model-name cost/latency estimate used to populate
// RoutingDecision.EstimatedCost/EstimatedLatencyMS. Costs are dollars per
// request at a nominal token count; latencies are the model's typical
// round-trip time. Unknown model names fall back to the medium-coder
// profile, a deliberately unsurprising default.
type tierProfile struct {
	costPerRequest float64
	latencyMS      int64
}

var tierProfiles = map[string]tierProfile{
	"small-fast":    {costPerRequest: 0.0005, latencyMS: 400},
	"medium-coder":  {costPerRequest: 0.004, latencyMS: 1200},
	"large-general": {costPerRequest: 0.02, latencyMS: 2500},
	"premium-fast":  {costPerRequest: 0.03, latencyMS: 1800},
	"premium-best":  {costPerRequest: 0.08, latencyMS: 4000},
}

// estimateCostAndLatency returns the cost/latency profile for model,
// falling back to the medium-coder profile for a model name the registry
// doesn't carry an estimate for.
func estimateCostAndLatency(model string) (cost float64, latencyMS int64) {
	profile, ok := tierProfiles[model]
	if !ok {
		profile = tierProfiles["medium-coder"]
	}
	return profile.costPerRequest, profile.latencyMS
}
