package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AnalysisPrompts carries versioned base templates so prompt changes can be
// rolled out (and rolled back) without a code change.
type AnalysisPrompts struct {
	CurrentVersion string            `mapstructure:"currentVersion"`
	Versions       map[string]string `mapstructure:"versions"`
}

// ModelRate is USD per one million tokens.
type ModelRate struct {
	InputPerMTokens  float64 `mapstructure:"inputPerMTokens"`
	OutputPerMTokens float64 `mapstructure:"outputPerMTokens"`
}

type Prompts struct {
	Analysis AnalysisPrompts      `mapstructure:"analysis"`
	Pricing  map[string]ModelRate `mapstructure:"pricing"`
}

const defaultAnalysisPrompt = `You are an expert web accessibility auditor reviewing recorded evidence of an accessibility audit. Identify every accessibility issue you can observe, citing WCAG 2.2 success criteria, axe-core rule ids where applicable, and ARIA APG pattern ids where a widget deviates from its pattern. Respond with JSON only.`

// LoadPrompts reads the prompt/pricing YAML. A missing file is not an error;
// coded defaults apply.
func LoadPrompts(configPath, configName string) (*Prompts, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	v.SetDefault("analysis.currentVersion", "default-v1")
	v.SetDefault("analysis.versions.default-v1", defaultAnalysisPrompt)
	v.SetDefault("pricing.default.inputPerMTokens", 0.30)
	v.SetDefault("pricing.default.outputPerMTokens", 2.50)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading prompt config: %w", err)
		}
	}

	var p Prompts
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("parsing prompt config: %w", err)
	}
	return &p, nil
}

// AnalysisTemplate returns the template for the configured current version,
// falling back to the built-in default when the version is missing.
func (p *Prompts) AnalysisTemplate() (text, version string) {
	key := p.Analysis.CurrentVersion
	if t, ok := p.Analysis.Versions[key]; ok && t != "" {
		return t, key
	}
	return defaultAnalysisPrompt, "default-v1"
}

// Rate resolves the pricing entry for a model name, matching the longest
// configured prefix, then the "default" entry, then zero rates.
func (p *Prompts) Rate(model string) ModelRate {
	model = strings.ToLower(model)
	var best string
	for name := range p.Pricing {
		n := strings.ToLower(name)
		if n != "default" && strings.HasPrefix(model, n) && len(n) > len(best) {
			best = name
		}
	}
	if best != "" {
		return p.Pricing[best]
	}
	if r, ok := p.Pricing["default"]; ok {
		return r
	}
	return ModelRate{}
}

// Cost converts token counts into USD for the given model.
func (p *Prompts) Cost(model string, inputTokens, outputTokens int64) float64 {
	r := p.Rate(model)
	return float64(inputTokens)*r.InputPerMTokens/1e6 + float64(outputTokens)*r.OutputPerMTokens/1e6
}
