// Package supplychain is the C10 automation backing the SupplierRiskScore
// + SupplierRiskFactor + DisruptionPrediction + SupplyChainAlert domain
// tables (spec.md §3, §4.5's "vendor risk scoring" and "re-check
// degradation windows for vendors"). It scores a supplier's risk from a
// weighted set of factors, derives a disruption likelihood from that
// score, and raises an alert once risk crosses a configured threshold.
// AutomationType "supplychain".
package supplychain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

const AutomationType = "supplychain"

const (
	AlertSeverityLow      = "low"
	AlertSeverityMedium   = "medium"
	AlertSeverityHigh     = "high"
	defaultAlertThreshold = 70.0
)

// Factor is one SupplierRiskFactor row: a named, weighted contributor to
// a supplier's composite risk score. Weights need not sum to 1.0 — each
// factor's value is already expressed on a 0-100 risk scale, so the
// composite is a weighted average, not a probability mix.
type Factor struct {
	Name   string
	Weight float64
	Value  float64
}

// Score is the SupplierRiskScore parent record.
type Score struct {
	SupplierID int64
	Composite  float64
	Factors    []Factor
	ComputedAt time.Time
}

// RiskScore computes the weighted-average composite from factors,
// clamped to [0, 100]. A supplier with no factors scores 0 (no known
// risk signal, not "safe").
func RiskScore(factors []Factor) float64 {
	var weighted, totalWeight float64
	for _, f := range factors {
		weighted += f.Weight * f.Value
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	score := weighted / totalWeight
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Prediction is the DisruptionPrediction row derived from a risk score.
type Prediction struct {
	SupplierID int64
	Likelihood float64
	Reasoning  string
}

// Predict derives a disruption likelihood directly from the composite
// risk score (score/100), annotated with which factors drove it.
func Predict(score Score) Prediction {
	worst := ""
	worstValue := -1.0
	for _, f := range score.Factors {
		if f.Value > worstValue {
			worstValue = f.Value
			worst = f.Name
		}
	}
	reasoning := fmt.Sprintf("composite risk %.1f, primary driver: %s", score.Composite, worst)
	return Prediction{SupplierID: score.SupplierID, Likelihood: score.Composite / 100.0, Reasoning: reasoning}
}

// Alert is the SupplyChainAlert row raised once a supplier's risk
// crosses the alert threshold.
type Alert struct {
	SupplierID int64
	Severity   string
	Message    string
	CreatedAt  time.Time
}

func severityFor(score float64) string {
	switch {
	case score >= 90:
		return AlertSeverityHigh
	case score >= defaultAlertThreshold:
		return AlertSeverityMedium
	default:
		return AlertSeverityLow
	}
}

// Store holds the latest score and any open alert per supplier. Only the
// latest score is kept per supplier (spec.md's "status field and
// timestamps" pattern, not a full history table), since the scheduled
// scan recomputes the full picture on every run.
type Store struct {
	mu     sync.Mutex
	scores map[int64]*Score
	alerts map[int64]*Alert
}

func NewStore() *Store {
	return &Store{scores: make(map[int64]*Score), alerts: make(map[int64]*Alert)}
}

func (s *Store) put(score Score) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := score
	s.scores[score.SupplierID] = &cp
}

func (s *Store) setAlert(a *Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a == nil {
		return
	}
	s.alerts[a.SupplierID] = a
}

func (s *Store) clearAlert(supplierID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerts, supplierID)
}

func (s *Store) GetScore(supplierID int64) (*Score, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scores[supplierID]
	return sc, ok
}

func (s *Store) GetAlert(supplierID int64) (*Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[supplierID]
	return a, ok
}

// Automation recomputes supplier risk from ERP-reported delivery/quality
// metrics.
type Automation struct {
	erp       erpclient.Client
	store     *Store
	threshold float64
}

func New(erp erpclient.Client, store *Store) *Automation {
	return &Automation{erp: erp, store: store, threshold: defaultAlertThreshold}
}

func (a *Automation) AutomationType() string                      { return AutomationType }
func (a *Automation) WatchedModels() []string                     { return nil }
func (a *Automation) Handlers() map[string]automation.HandlerFunc { return map[string]automation.HandlerFunc{} }

func factorsFromSupplier(rec erpclient.Record) []Factor {
	lateRate, _ := rec["late_delivery_rate"].(float64)
	rejectRate, _ := rec["quality_reject_rate"].(float64)
	financial, _ := rec["financial_distress_score"].(float64)
	return []Factor{
		{Name: "late_deliveries", Weight: 0.4, Value: lateRate},
		{Name: "quality_rejects", Weight: 0.35, Value: rejectRate},
		{Name: "financial_distress", Weight: 0.25, Value: financial},
	}
}

// ScoreSupplier recomputes one supplier's risk score and, crossing the
// threshold, raises (or re-states) an alert; falling back below it
// clears any open alert (re-checking a "degradation window" in both
// directions, per spec.md §4.5).
func (a *Automation) ScoreSupplier(ctx context.Context, supplierID int64) (Score, error) {
	records, err := a.erp.Read(ctx, "res.partner", []int64{supplierID}, []string{"late_delivery_rate", "quality_reject_rate", "financial_distress_score"})
	if err != nil {
		return Score{}, fmt.Errorf("read supplier %d risk fields: %w", supplierID, err)
	}
	if len(records) == 0 {
		return Score{}, fmt.Errorf("supplier %d not found", supplierID)
	}

	factors := factorsFromSupplier(records[0])
	score := Score{SupplierID: supplierID, Composite: RiskScore(factors), Factors: factors, ComputedAt: time.Now()}
	a.store.put(score)

	if score.Composite >= a.threshold {
		a.store.setAlert(&Alert{SupplierID: supplierID, Severity: severityFor(score.Composite), Message: Predict(score).Reasoning, CreatedAt: time.Now()})
	} else {
		a.store.clearAlert(supplierID)
	}
	return score, nil
}

// ScanSupplierRisk re-scores every supplier with risk fields configured,
// matching pkg/scheduler.JobFunc's shape for cron registration.
func (a *Automation) ScanSupplierRisk(ctx context.Context) (string, error) {
	ids, err := a.erp.Search(ctx, "res.partner",
		erpclient.Domain{erpclient.Triple{Field: "is_supplier", Operator: "=", Value: true}},
		erpclient.SearchOptions{})
	if err != nil {
		return "", fmt.Errorf("list suppliers for risk scan: %w", err)
	}

	alerts := 0
	for _, id := range ids {
		score, err := a.ScoreSupplier(ctx, id)
		if err != nil {
			return "", err
		}
		if score.Composite >= a.threshold {
			alerts++
		}
	}
	return fmt.Sprintf("%d suppliers scored, %d over threshold", len(ids), alerts), nil
}
