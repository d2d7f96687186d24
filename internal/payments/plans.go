// Package payments implements the mocked payment flow that sits in front of
// the billable studio action, plus the subscription plans catalog.
package payments

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"pegasusedge/internal/access"
)

//go:embed plans.yaml
var plansYAML []byte

// PlanID identifies a subscription plan.
type PlanID string

const (
	PlanMonthly   PlanID = "monthly"
	PlanLifetime  PlanID = "lifetime"
	PlanPayPerUse PlanID = "pay-per-use"
)

// Plan is one entry of the subscription catalog.
type Plan struct {
	ID        PlanID      `yaml:"id"`
	Name      string      `yaml:"name"`
	Price     int         `yaml:"price"`
	Frequency string      `yaml:"frequency"`
	Tier      access.Tier `yaml:"tier"`
	Highlight bool        `yaml:"highlight"`
	CTA       string      `yaml:"cta"`
	Features  []string    `yaml:"features"`
}

// PriceLabel renders the plan price for display, e.g. "$20/month".
func (p Plan) PriceLabel() string {
	if p.Frequency == "one-time" {
		return fmt.Sprintf("$%d one-time", p.Price)
	}
	return fmt.Sprintf("$%d%s", p.Price, p.Frequency)
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadPlans parses the embedded catalog.
func LoadPlans() ([]Plan, error) {
	var file catalogFile
	if err := yaml.Unmarshal(plansYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plans catalog: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plans catalog is empty")
	}
	return file.Plans, nil
}

// FindPlan returns the plan with the given id.
func FindPlan(plans []Plan, id PlanID) (Plan, error) {
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("unknown plan %q", id)
}
