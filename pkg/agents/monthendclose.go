package agents

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
)

// MonthEndCloseName is the agent name MonthEndCloseGraph registers under.
const MonthEndCloseName = "month_end_close"

// severityByStep is the per-step-name map into {critical, high, medium,
// low} spec.md §4.6 names. Steps absent from the map default to medium.
var severityByStep = map[string]string{
	"bank_reconciliation": "critical",
	"tax_filing":          "critical",
	"ar_aging":            "high",
	"ap_aging":            "high",
	"inventory_valuation": "medium",
	"fixed_assets":        "medium",
	"payroll_accrual":     "medium",
	"misc_cleanup":        "low",
	"documentation":       "low",
}

var detectAnomaliesTool = llmclient.ToolDescriptor{
	Name:        "detect_anomalies",
	Description: "Flag closing issues whose numbers look anomalous",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"anomalies": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"issue_id": map[string]interface{}{"type": "integer"},
						"score":    map[string]interface{}{"type": "number"},
					},
				},
			},
		},
	},
}

var generateReportTool = llmclient.ToolDescriptor{
	Name:        "generate_close_report",
	Description: "Summarize month-end closing readiness for finance leadership",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"summary": map[string]interface{}{"type": "string"},
		},
		"required": []string{"summary"},
	},
}

// MonthEndCloseGraph builds the closing-readiness agent: scan issues ->
// anomaly detection -> severity classification -> auto-resolve low ->
// readiness score -> LLM report -> notify (spec.md §4.6).
func MonthEndCloseGraph(erp erpclient.Client, llm llmclient.Client, sender notify.Sender) *agent.Graph {
	g := agent.NewGraph(MonthEndCloseName, "scan_issues")

	g.AddNode("scan_issues", scanIssuesNode(erp)).AddEdge("scan_issues", "anomaly_detection")
	g.AddNode("anomaly_detection", anomalyDetectionNode(llm)).AddEdge("anomaly_detection", "classify_severity")
	g.AddNode("classify_severity", classifySeverityNode).AddEdge("classify_severity", "auto_resolve_low")
	g.AddNode("auto_resolve_low", autoResolveLowNode(erp)).AddEdge("auto_resolve_low", "calculate_readiness_score")
	g.AddNode("calculate_readiness_score", calculateReadinessScoreNode).AddEdge("calculate_readiness_score", "generate_report")
	g.AddNode("generate_report", generateReportNode(llm)).AddEdge("generate_report", "notify")
	g.AddNode("notify", notifyNode(sender, "Month-end close readiness report")).AddEdge("notify", agent.End)

	return g
}

func scanIssuesNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		period, _ := s["period"].(string)
		records, err := erp.SearchRead(ctx, "close.issue", erpclient.Domain{
			erpclient.Triple{Field: "period", Operator: "=", Value: period},
			erpclient.Triple{Field: "state", Operator: "=", Value: "open"},
		}, []string{"id", "closing_step", "description"}, erpclient.SearchOptions{})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("scan issues for period %q: %w", period, err)
		}
		issues := make([]interface{}, len(records))
		for i, r := range records {
			issues[i] = r
		}
		return agent.NodeResult{Partial: agent.State{
			"issues":       issues,
			"total_issues": len(issues),
		}}, nil
	}
}

func anomalyDetectionNode(llm llmclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		issues, _ := s["issues"].([]interface{})
		if len(issues) == 0 {
			return agent.NodeResult{Partial: agent.State{"anomalies": []interface{}{}}}, nil
		}
		result, err := llm.Analyze(ctx, llmclient.AnalyzeRequest{
			SystemPrompt: "You review month-end closing issues for an accounting automation and flag anomalous ones.",
			UserMessage:  fmt.Sprintf("%d open closing issues: %v", len(issues), issues),
			Tools:        []llmclient.ToolDescriptor{detectAnomaliesTool},
		})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("anomaly detection: %w", err)
		}
		anomalies := extractAnomalies(result)
		return agent.NodeResult{Partial: agent.State{"anomalies": anomalies}, TokensUsed: result.TokensUsed}, nil
	}
}

func extractAnomalies(result *llmclient.AnalyzeResult) []interface{} {
	for _, call := range result.ToolCalls {
		if call.Name != detectAnomaliesTool.Name {
			continue
		}
		if list, ok := call.Input["anomalies"].([]interface{}); ok {
			return list
		}
	}
	return []interface{}{}
}

func classifySeverityNode(_ context.Context, s agent.State) (agent.NodeResult, error) {
	issues, _ := s["issues"].([]interface{})
	classified := map[string][]interface{}{"critical": {}, "high": {}, "medium": {}, "low": {}}
	for _, raw := range issues {
		rec, ok := raw.(erpclient.Record)
		if !ok {
			continue
		}
		step, _ := rec["closing_step"].(string)
		severity, known := severityByStep[step]
		if !known {
			severity = "medium"
		}
		classified[severity] = append(classified[severity], rec)
	}
	return agent.NodeResult{Partial: agent.State{"classified": classified}}, nil
}

func autoResolveLowNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		classified, _ := s["classified"].(map[string][]interface{})
		low := classified["low"]
		ids := make([]int64, 0, len(low))
		for _, raw := range low {
			rec, ok := raw.(erpclient.Record)
			if !ok {
				continue
			}
			if id, ok := rec["id"].(int64); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			if err := erp.Write(ctx, "close.issue", ids, erpclient.Record{"state": "resolved"}); err != nil {
				return agent.NodeResult{}, fmt.Errorf("auto-resolve low severity issues: %w", err)
			}
		}
		totalIssues := intOf(s["total_issues"])
		pendingReview := totalIssues - len(ids)
		return agent.NodeResult{Partial: agent.State{
			"auto_resolved_count": len(ids),
			"pending_review":      pendingReview,
		}}, nil
	}
}

func calculateReadinessScoreNode(_ context.Context, s agent.State) (agent.NodeResult, error) {
	classified, _ := s["classified"].(map[string][]interface{})
	anomalies, _ := s["anomalies"].([]interface{})

	score := MonthEndReadinessScore(
		intOf(s["total_issues"]),
		intOf(s["pending_review"]),
		len(anomalies),
		len(classified["critical"]),
		len(classified["high"]),
	)
	return agent.NodeResult{Partial: agent.State{"readiness_score": score}}, nil
}

// MonthEndReadinessScore is the pure readiness-score formula spec.md
// §4.6 names: base 100 minus 20 per critical issue, 10 per high issue, 5
// per anomaly, and 20 times the pending/total ratio, clamped to [0,100].
func MonthEndReadinessScore(totalIssues, pendingReview, anomalyCount, criticalCount, highCount int) float64 {
	if totalIssues == 0 {
		return 100.0
	}
	score := 100.0 -
		20.0*float64(criticalCount) -
		10.0*float64(highCount) -
		5.0*float64(anomalyCount) -
		20.0*(float64(pendingReview)/float64(totalIssues))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func generateReportNode(llm llmclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		score, _ := s["readiness_score"].(float64)
		result, err := llm.Analyze(ctx, llmclient.AnalyzeRequest{
			SystemPrompt: "You write a one-paragraph month-end closing readiness report for finance leadership.",
			UserMessage:  fmt.Sprintf("Readiness score: %.1f. Classified issues: %v. Anomalies: %v.", score, s["classified"], s["anomalies"]),
			Tools:        []llmclient.ToolDescriptor{generateReportTool},
		})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("generate report: %w", err)
		}
		summary := result.Text
		for _, call := range result.ToolCalls {
			if call.Name == generateReportTool.Name {
				if s, ok := call.Input["summary"].(string); ok {
					summary = s
				}
			}
		}
		return agent.NodeResult{Partial: agent.State{"report": summary}, TokensUsed: result.TokensUsed}, nil
	}
}
