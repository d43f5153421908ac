// Package credit is the C10 credit-limit gate named in spec.md §4.8 and
// exercised by seed scenario 3: it reads a customer's credit exposure from
// the ERP, decides whether a new order clears their limit, and on a
// breach puts the order on credit hold. AutomationType "credit".
package credit

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

const AutomationType = "credit"

// Profile is a customer's credit standing, read from res.partner.
type Profile struct {
	CustomerID      int64
	CreditLimit     float64
	CurrentExposure float64
	HoldActive      bool
}

// CheckResult is the verdict for one order against a Profile (spec.md
// §4.8's `check(order_amount)` operation, seed scenario 3).
type CheckResult struct {
	Allowed     bool
	OverLimitBy float64
}

// Check applies the credit gate: an order is allowed only when the
// customer has no active hold and the order would not push exposure past
// the credit limit.
func Check(p Profile, orderAmount float64) CheckResult {
	projected := p.CurrentExposure + orderAmount
	overBy := projected - p.CreditLimit
	if overBy < 0 {
		overBy = 0
	}
	return CheckResult{
		Allowed:     !p.HoldActive && overBy <= 0,
		OverLimitBy: overBy,
	}
}

// Automation wires Check into the C5 dispatch pipeline: a new sales order
// triggers a gate check, and a breach places the order on hold.
type Automation struct {
	erp erpclient.Client
}

func New(erp erpclient.Client) *Automation {
	return &Automation{erp: erp}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"sale.order"} }

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:sale.order": a.handleNewOrder,
	}
}

func (a *Automation) handleNewOrder(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	partnerID, _ := ev.Payload["partner_id"].(int64)
	orderAmount, _ := ev.Payload["amount_total"].(float64)
	orderID, _ := ev.Payload["id"].(int64)
	if orderID == 0 {
		if id, err := parseRecordID(ev.RecordID); err == nil {
			orderID = id
		}
	}

	profile, err := a.loadProfile(ctx, partnerID)
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("load credit profile for partner %d: %w", partnerID, err)
	}

	result := Check(profile, orderAmount)
	reasoning := fmt.Sprintf("exposure %.2f + order %.2f vs limit %.2f", profile.CurrentExposure, orderAmount, profile.CreditLimit)

	if result.Allowed {
		return automation.AutomationResult{
			Success:    true,
			ActionName: "credit_check_passed",
			Model:      "sale.order",
			RecordID:   ev.RecordID,
			Confidence: 1.0,
			Reasoning:  reasoning,
		}, nil
	}

	changes := map[string]interface{}{"state": "credit_hold", "over_limit_by": result.OverLimitBy}
	return automation.AutomationResult{
		ActionName:  "credit_hold_applied",
		Model:       "sale.order",
		RecordID:    ev.RecordID,
		Confidence:  1.0,
		Reasoning:   reasoning,
		ChangesMade: changes,
		Apply: func(ctx context.Context) error {
			return a.erp.Write(ctx, "sale.order", []int64{orderID}, erpclient.Record{"state": "credit_hold"})
		},
	}, nil
}

// Profile loads customerID's current credit standing, for GET
// /api/credit/{customer_id} and POST /api/credit/check.
func (a *Automation) Profile(ctx context.Context, customerID int64) (Profile, error) {
	return a.loadProfile(ctx, customerID)
}

func (a *Automation) loadProfile(ctx context.Context, partnerID int64) (Profile, error) {
	records, err := a.erp.Read(ctx, "res.partner", []int64{partnerID}, []string{"credit_limit", "current_exposure", "credit_hold_active"})
	if err != nil {
		return Profile{}, err
	}
	if len(records) == 0 {
		return Profile{}, fmt.Errorf("partner %d not found", partnerID)
	}
	rec := records[0]
	limit, _ := rec["credit_limit"].(float64)
	exposure, _ := rec["current_exposure"].(float64)
	hold, _ := rec["credit_hold_active"].(bool)
	return Profile{CustomerID: partnerID, CreditLimit: limit, CurrentExposure: exposure, HoldActive: hold}, nil
}

// ScanRecalculate re-derives hold_active for every partner with a credit
// limit configured, the batch-recalculate scan spec.md §6's
// POST /api/credit/batch-recalculate triggers (spec.md §4.5's "batch
// recalculations" scheduler hook). Idempotent: re-running it the same day
// against unchanged exposures writes the same hold_active value again.
func (a *Automation) ScanRecalculate(ctx context.Context) (int, error) {
	records, err := a.erp.SearchRead(ctx, "res.partner",
		erpclient.Domain{erpclient.Triple{Field: "credit_limit", Operator: ">", Value: 0.0}},
		[]string{"id", "credit_limit", "current_exposure"},
		erpclient.SearchOptions{},
	)
	if err != nil {
		return 0, fmt.Errorf("scan recalculate credit: %w", err)
	}

	updated := 0
	for _, rec := range records {
		id, _ := rec["id"].(int64)
		limit, _ := rec["credit_limit"].(float64)
		exposure, _ := rec["current_exposure"].(float64)
		hold := exposure > limit
		if err := a.erp.Write(ctx, "res.partner", []int64{id}, erpclient.Record{"credit_hold_active": hold}); err != nil {
			return updated, fmt.Errorf("update credit hold for partner %d: %w", id, err)
		}
		updated++
	}
	return updated, nil
}

func parseRecordID(s string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(s, "%d", &id)
	return id, err
}
