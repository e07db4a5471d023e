package openai

import "strings"

// Token parameter spellings across model generations.
const (
	TokenParamMaxTokens           = "max_tokens"
	TokenParamMaxCompletionTokens = "max_completion_tokens"
)

// ModelCapabilities drives per-model request shaping. The zero policy
// for unknown models is the documented default below.
type ModelCapabilities struct {
	SupportsTemperature bool
	TokenParam          string
}

// defaultCapabilities applies to any model with no table or prefix
// entry: temperature supported, legacy max_tokens parameter.
var defaultCapabilities = ModelCapabilities{
	SupportsTemperature: true,
	TokenParam:          TokenParamMaxTokens,
}

// capabilityTable holds exact model ids (lowercased).
var capabilityTable = map[string]ModelCapabilities{
	"gpt-4o":      {SupportsTemperature: true, TokenParam: TokenParamMaxTokens},
	"gpt-4o-mini": {SupportsTemperature: true, TokenParam: TokenParamMaxTokens},
	"gpt-4.1":     {SupportsTemperature: true, TokenParam: TokenParamMaxCompletionTokens},
}

// capabilityPrefixes is consulted after the exact table; first match
// wins in declaration order.
var capabilityPrefixes = []struct {
	prefix string
	caps   ModelCapabilities
}{
	{prefix: "o1", caps: ModelCapabilities{SupportsTemperature: false, TokenParam: TokenParamMaxCompletionTokens}},
	{prefix: "o3", caps: ModelCapabilities{SupportsTemperature: false, TokenParam: TokenParamMaxCompletionTokens}},
	{prefix: "gpt-5", caps: ModelCapabilities{SupportsTemperature: false, TokenParam: TokenParamMaxCompletionTokens}},
}

func capabilitiesFor(model string) ModelCapabilities {
	m := strings.ToLower(strings.TrimSpace(model))
	if m == "" {
		return defaultCapabilities
	}
	if caps, ok := capabilityTable[m]; ok {
		return caps
	}
	for _, entry := range capabilityPrefixes {
		if strings.HasPrefix(m, entry.prefix) {
			return entry.caps
		}
	}
	return defaultCapabilities
}
