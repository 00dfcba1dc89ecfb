// Package cost estimates the USD cost of a call from its token usage.
//
// Prices change often and differ per account, so nothing is built in: a
// [Pricing] table is filled from configuration (see [ParsePricing]) and
// looked up by model name.
package cost

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/leofalp/cascade/providers/ai"
)

// ModelCost is the price of one model in USD per million tokens.
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:  3.00,
//	    OutputCostPerMillion: 15.00,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million input tokens
	InputCostPerMillion float64 `json:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million output tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million"`
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// Estimate returns the cost of usage.
func (mc ModelCost) Estimate(usage ai.Usage) float64 {
	return mc.CalculateInputCost(usage.InputTokens) + mc.CalculateOutputCost(usage.OutputTokens)
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.2f/M, Output: $%.2f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// FormatUSD renders an amount with enough precision for sub-cent calls.
func FormatUSD(amount float64) string {
	if amount < 0.01 {
		return fmt.Sprintf("$%.4f", amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// Pricing maps a model name, or a model name prefix, to its price.
type Pricing map[string]ModelCost

// Lookup returns the price of model. An exact entry wins; otherwise the
// longest key that prefixes model is used, so "claude-sonnet" covers
// "claude-sonnet-4-5".
func (p Pricing) Lookup(model string) (ModelCost, bool) {
	if mc, ok := p[model]; ok {
		return mc, true
	}

	keys := make([]string, 0, len(p))
	for key := range p {
		if strings.HasPrefix(model, key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ModelCost{}, false
	}
	longest := slices.MaxFunc(keys, func(a, b string) int { return len(a) - len(b) })
	return p[longest], true
}

// ParsePricing reads entries of the form "model=input:output", separated by
// commas or semicolons, e.g. "gpt-4o-mini=0.15:0.6;claude-sonnet=3:15".
func ParsePricing(s string) (Pricing, error) {
	pricing := Pricing{}
	for _, entry := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		model, prices, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("pricing entry %q: expected model=input:output", entry)
		}
		in, out, ok := strings.Cut(prices, ":")
		if !ok {
			return nil, fmt.Errorf("pricing entry %q: expected model=input:output", entry)
		}

		inCost, err := parsePrice(in)
		if err != nil {
			return nil, fmt.Errorf("pricing entry %q: %w", entry, err)
		}
		outCost, err := parsePrice(out)
		if err != nil {
			return nil, fmt.Errorf("pricing entry %q: %w", entry, err)
		}

		pricing[strings.TrimSpace(model)] = ModelCost{InputCostPerMillion: inCost, OutputCostPerMillion: outCost}
	}
	return pricing, nil
}

func parsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return v, nil
}
