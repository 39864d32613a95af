package site

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentFS embed.FS

// Billing selects which price column a plan shows.
type Billing string

const (
	BillingMonthly Billing = "monthly"
	BillingYearly  Billing = "yearly"
)

type Brand struct {
	Name    string `yaml:"name" json:"name"`
	Tagline string `yaml:"tagline" json:"tagline"`
}

type Feature struct {
	ID          string `yaml:"id" json:"id"`
	Step        string `yaml:"step" json:"step"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type HowItWorksStep struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type Testimonial struct {
	Name   string `yaml:"name" json:"name"`
	Metric string `yaml:"metric" json:"metric"`
	Quote  string `yaml:"quote" json:"quote"`
	Sub    string `yaml:"sub" json:"sub"`
}

// Plan is a pricing tier with both price columns.
type Plan struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Monthly     int      `yaml:"monthly" json:"monthly"`
	Yearly      int      `yaml:"yearly" json:"yearly"`
	Badge       string   `yaml:"badge,omitempty" json:"badge,omitempty"`
	CTA         string   `yaml:"cta" json:"cta"`
	Footnote    string   `yaml:"footnote" json:"footnote"`
	Features    []string `yaml:"features" json:"features"`
}

type Pricing struct {
	SetupFee         int    `yaml:"setup_fee" json:"setup_fee"`
	TrialDays        int    `yaml:"trial_days" json:"trial_days"`
	YearlySavingsPct int    `yaml:"yearly_savings_pct" json:"yearly_savings_pct"`
	Plans            []Plan `yaml:"plans" json:"plans"`
}

// DemoForm holds the select options of the strategy-call form. The first
// entry of each list is the default selection.
type DemoForm struct {
	CalendarSystems []string `yaml:"calendar_systems" json:"calendar_systems"`
	PatientVolumes  []string `yaml:"patient_volumes" json:"patient_volumes"`
}

// Catalog is the static marketing content of the landing page.
type Catalog struct {
	Brand        Brand            `yaml:"brand" json:"brand"`
	Features     []Feature        `yaml:"features" json:"features"`
	HowItWorks   []HowItWorksStep `yaml:"how_it_works" json:"how_it_works"`
	Testimonials []Testimonial    `yaml:"testimonials" json:"testimonials"`
	Pricing      Pricing          `yaml:"pricing" json:"pricing"`
	DemoForm     DemoForm         `yaml:"demo_form" json:"demo_form"`
}

// PricedPlan is a plan resolved for one billing period.
type PricedPlan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PricePerMo   int      `json:"price_per_month"`
	BillingLabel string   `json:"billing_label"`
	Badge        string   `json:"badge,omitempty"`
	CTA          string   `json:"cta"`
	Footnote     string   `json:"footnote"`
	Features     []string `json:"features"`
}

// PricingView is what the pricing toggle renders.
type PricingView struct {
	Billing          Billing      `json:"billing"`
	SetupFee         int          `json:"setup_fee"`
	TrialDays        int          `json:"trial_days"`
	YearlySavingsPct int          `json:"yearly_savings_pct"`
	Plans            []PricedPlan `json:"plans"`
}

// LoadContent reads the catalog from path, or the embedded copy when path is empty.
func LoadContent(path string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if path = strings.TrimSpace(path); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = contentFS.ReadFile("content.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("site: read content: %w", err)
	}
	return ParseContent(data)
}

// ParseContent decodes and validates catalog YAML.
func ParseContent(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("site: parse content: %w", err)
	}
	if len(c.Pricing.Plans) == 0 {
		return nil, fmt.Errorf("site: content has no pricing plans")
	}
	if len(c.DemoForm.CalendarSystems) == 0 || len(c.DemoForm.PatientVolumes) == 0 {
		return nil, fmt.Errorf("site: demo form options missing")
	}
	return &c, nil
}

// ParseBilling maps the query value; empty means monthly.
func ParseBilling(raw string) (Billing, error) {
	switch Billing(strings.ToLower(strings.TrimSpace(raw))) {
	case "", BillingMonthly:
		return BillingMonthly, nil
	case BillingYearly:
		return BillingYearly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBilling, raw)
	}
}

// PricingFor resolves every plan for billing.
func (c *Catalog) PricingFor(billing Billing) (PricingView, error) {
	label := ""
	switch billing {
	case BillingMonthly:
		label = "Billed Monthly"
	case BillingYearly:
		label = "Billed Yearly"
	default:
		return PricingView{}, fmt.Errorf("%w: %q", ErrUnknownBilling, billing)
	}

	plans := make([]PricedPlan, 0, len(c.Pricing.Plans))
	for _, p := range c.Pricing.Plans {
		price := p.Monthly
		if billing == BillingYearly {
			price = p.Yearly
		}
		plans = append(plans, PricedPlan{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			PricePerMo:   price,
			BillingLabel: label,
			Badge:        p.Badge,
			CTA:          p.CTA,
			Footnote:     p.Footnote,
			Features:     append([]string(nil), p.Features...),
		})
	}
	return PricingView{
		Billing:          billing,
		SetupFee:         c.Pricing.SetupFee,
		TrialDays:        c.Pricing.TrialDays,
		YearlySavingsPct: c.Pricing.YearlySavingsPct,
		Plans:            plans,
	}, nil
}
