// Package scoring computes a value/priority heuristic for leads. The result
// orders the bulk reconciliation queue and is persisted for operator
// visibility; it never changes eligibility or coverage outcomes.
package scoring

import (
	_ "embed"
	"fmt"
	"strings"

	"leadrouter/internal/routing/domain"

	"gopkg.in/yaml.v3"
)

//go:embed values.yaml
var valuesYAML []byte

const (
	completenessRequiredWeight = 0.7
	completenessOptionalWeight = 0.3

	urgencyPerKeyword = 0.3

	priorityUrgencyWeight      = 0.4
	priorityCompletenessWeight = 0.3
	priorityValueWeight        = 0.3

	// Estimated values are normalized against this cap when computing priority.
	valueNormalizationCap = 10000.0
)

type valueTables struct {
	DefaultBaseValue float64            `yaml:"default_base_value"`
	BaseValues       map[string]float64 `yaml:"base_values"`
	UrgencyKeywords  []string           `yaml:"urgency_keywords"`
}

// Result holds the scoring outcome for a single lead.
type Result struct {
	EstimatedValue float64
	Priority       float64
	Urgency        float64
	Completeness   float64
}

// Scorer scores leads against tables loaded from an embedded YAML document.
type Scorer struct {
	defaultBaseValue float64
	baseValues       map[string]float64
	urgencyKeywords  []string
}

// NewScorer loads the embedded value tables.
func NewScorer() (*Scorer, error) {
	var t valueTables
	if err := yaml.Unmarshal(valuesYAML, &t); err != nil {
		return nil, fmt.Errorf("parse scoring tables: %w", err)
	}
	if t.DefaultBaseValue <= 0 {
		return nil, fmt.Errorf("scoring tables: default_base_value must be positive")
	}

	s := &Scorer{
		defaultBaseValue: t.DefaultBaseValue,
		baseValues:       make(map[string]float64, len(t.BaseValues)),
	}
	for category, value := range t.BaseValues {
		s.baseValues[strings.ToLower(category)] = value
	}
	for _, kw := range t.UrgencyKeywords {
		s.urgencyKeywords = append(s.urgencyKeywords, strings.ToLower(strings.TrimSpace(kw)))
	}
	return s, nil
}

// Score computes the estimated value and retry priority of a lead.
//
//	estimated_value = base(category) × (1 + 0.5 × completeness)
//	priority        = 0.4×urgency + 0.3×completeness + 0.3×min(value/10000, 1)
func (s *Scorer) Score(lead domain.Lead) Result {
	completeness := s.completeness(lead)
	urgency := s.urgency(lead)

	base := s.defaultBaseValue
	if v, ok := s.baseValues[strings.ToLower(lead.CanonicalCategory)]; ok {
		base = v
	}
	estimatedValue := base * (1 + 0.5*completeness)

	normalizedValue := estimatedValue / valueNormalizationCap
	if normalizedValue > 1 {
		normalizedValue = 1
	}

	priority := priorityUrgencyWeight*urgency +
		priorityCompletenessWeight*completeness +
		priorityValueWeight*normalizedValue

	return Result{
		EstimatedValue: estimatedValue,
		Priority:       priority,
		Urgency:        urgency,
		Completeness:   completeness,
	}
}

// completeness = 0.7 × required_present/required_total + 0.3 × optional_present/optional_total
func (s *Scorer) completeness(lead domain.Lead) float64 {
	required := []bool{
		strings.TrimSpace(lead.ContactName) != "",
		strings.TrimSpace(lead.ContactEmail) != "" || strings.TrimSpace(lead.ContactPhone) != "",
		strings.TrimSpace(lead.Location.Zip) != "",
		strings.TrimSpace(lead.SpecificService) != "",
	}
	optional := []bool{
		strings.TrimSpace(lead.Location.County) != "",
		strings.TrimSpace(lead.Location.State) != "",
		strings.TrimSpace(lead.Details) != "",
		strings.TrimSpace(lead.ContactEmail) != "" && strings.TrimSpace(lead.ContactPhone) != "",
	}

	return completenessRequiredWeight*ratio(required) + completenessOptionalWeight*ratio(optional)
}

// urgency = min(0.3 × matched_keyword_count, 1.0) over the lead's free text.
func (s *Scorer) urgency(lead domain.Lead) float64 {
	text := strings.ToLower(lead.SpecificService + " " + lead.Details)
	matched := 0
	for _, kw := range s.urgencyKeywords {
		if kw != "" && strings.Contains(text, kw) {
			matched++
		}
	}
	urgency := urgencyPerKeyword * float64(matched)
	if urgency > 1 {
		urgency = 1
	}
	return urgency
}

func ratio(present []bool) float64 {
	if len(present) == 0 {
		return 0
	}
	count := 0
	for _, p := range present {
		if p {
			count++
		}
	}
	return float64(count) / float64(len(present))
}
