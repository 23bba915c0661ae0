package ai

// Per-token cost estimates in USD. Approximations for reporting only.
var modelCostPerToken = map[string]float64{
	"gpt-4o-mini":                0.00015 / 1000,
	"gpt-4o":                     0.0025 / 1000,
	"gpt-4.1-mini":               0.00015 / 1000,
	"gpt-4.1":                    0.0025 / 1000,
	"o3":                         0.015 / 1000,
	"o3-pro":                     0.03 / 1000,
	"o4-mini":                    0.003 / 1000,
	"claude-3-5-haiku-20241022":  0.001 / 1000,
	"claude-3-5-sonnet-20241022": 0.003 / 1000,
	"claude-3-7-sonnet-20250219": 0.003 / 1000,
	"claude-sonnet-4-20250514":   0.003 / 1000,
	"claude-opus-4-20250514":     0.015 / 1000,
}

const fallbackCostPerToken = 0.002 / 1000

// EstimateTokens approximates the token count of text at four
// characters per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// EstimateCost approximates the combined USD cost of a prompt and
// response for the given model.
func EstimateCost(prompt, response, model string) float64 {
	tokens := EstimateTokens(prompt) + EstimateTokens(response)
	cost, ok := modelCostPerToken[model]
	if !ok {
		cost = fallbackCostPerToken
	}
	return float64(tokens) * cost
}
