// Package project is the C10 domain automation for the "project" slice
// of spec.md §2's "CRM/sales/purchase/HR/project" bucket, grounded on
// original_source/ai_service/app/automations/project.py: it estimates a
// new task's duration, assigns it to a team member when none is set, and
// checks overall project health when a task's stage changes.
// AutomationType "project".
package project

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

const AutomationType = "project"

var estimateTool = llmclient.ToolDescriptor{
	Name:        "estimate_duration",
	Description: "Estimate task duration based on historical data and task characteristics",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"estimated_hours": map[string]interface{}{"type": "number"},
			"confidence":      map[string]interface{}{"type": "number"},
			"reasoning":       map[string]interface{}{"type": "string"},
		},
		"required": []string{"estimated_hours", "confidence"},
	},
}

var assignTool = llmclient.ToolDescriptor{
	Name:        "assign_task",
	Description: "Assign a project task to the best-fit team member",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"user_ids":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}},
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"user_ids", "confidence"},
	},
}

var riskTool = llmclient.ToolDescriptor{
	Name:        "detect_project_risk",
	Description: "Analyze a project for risks and generate a status summary",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"overall_health": map[string]interface{}{"type": "string", "enum": []string{"on_track", "at_risk", "critical"}},
			"summary":        map[string]interface{}{"type": "string"},
			"confidence":     map[string]interface{}{"type": "number"},
			"reasoning":      map[string]interface{}{"type": "string"},
		},
		"required": []string{"overall_health", "confidence"},
	},
}

// Automation estimates task duration, assigns unassigned tasks, and
// checks project health on stage changes.
type Automation struct {
	erp erpclient.Client
	llm llmclient.Client
}

func New(erp erpclient.Client, llm llmclient.Client) *Automation {
	return &Automation{erp: erp, llm: llm}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"project.task"} }

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:project.task": a.handleNewTask,
		"write:project.task":  a.handleTaskChanged,
	}
}

// handleNewTask mirrors project.py's on_create_project_task: estimate
// duration always, assign a user only when none is set yet.
func (a *Automation) handleNewTask(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	taskID, _ := ev.Payload["id"].(int64)
	projectID, _ := ev.Payload["project_id"].(int64)
	hasAssignee, _ := ev.Payload["user_ids"].([]interface{})

	estimatedHours, estConfidence, estReasoning, err := a.estimateDuration(ctx, projectID)
	if err != nil {
		return automation.AutomationResult{}, err
	}

	if len(hasAssignee) > 0 {
		return automation.AutomationResult{
			ActionName: "estimate_duration", Model: "project.task", RecordID: ev.RecordID,
			Confidence:  estConfidence,
			Reasoning:   estReasoning,
			ChangesMade: map[string]interface{}{"estimated_hours": estimatedHours},
			Apply: func(ctx context.Context) error {
				return a.erp.Write(ctx, "project.task", []int64{taskID}, erpclient.Record{"planned_hours": estimatedHours})
			},
		}, nil
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You assign a project task to the best-fit team member based on workload and past patterns.",
		UserMessage:  fmt.Sprintf("Unassigned task in project %d, estimated at %.1f hours.", projectID, estimatedHours),
		Tools:        []llmclient.ToolDescriptor{assignTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("assign task: %w", err)
	}

	var userIDs []interface{}
	var confidence float64
	var reasoning string
	for _, call := range result.ToolCalls {
		if call.Name != assignTool.Name {
			continue
		}
		userIDs, _ = call.Input["user_ids"].([]interface{})
		confidence, _ = call.Input["confidence"].(float64)
		reasoning, _ = call.Input["reasoning"].(string)
	}

	return automation.AutomationResult{
		ActionName: "assign_task", Model: "project.task", RecordID: ev.RecordID,
		Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
		ChangesMade: map[string]interface{}{"user_ids": userIDs, "estimated_hours": estimatedHours},
		Apply: func(ctx context.Context) error {
			values := erpclient.Record{"user_ids": userIDs}
			if estimatedHours > 0 {
				values["planned_hours"] = estimatedHours
			}
			return a.erp.Write(ctx, "project.task", []int64{taskID}, values)
		},
	}, nil
}

func (a *Automation) estimateDuration(ctx context.Context, projectID int64) (hours, confidence float64, reasoning string, err error) {
	completed, err := a.erp.SearchRead(ctx, "project.task",
		erpclient.Domain{
			erpclient.Triple{Field: "project_id", Operator: "=", Value: projectID},
			erpclient.Triple{Field: "stage_id.fold", Operator: "=", Value: true},
		},
		[]string{"planned_hours", "effective_hours"}, erpclient.SearchOptions{Limit: 30})
	if err != nil {
		return 0, 0, "", fmt.Errorf("read completed tasks for project %d: %w", projectID, err)
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You estimate project task durations from historical completion data.",
		UserMessage:  fmt.Sprintf("Project %d has %d completed tasks for reference.", projectID, len(completed)),
		Tools:        []llmclient.ToolDescriptor{estimateTool},
	})
	if err != nil {
		return 0, 0, "", fmt.Errorf("estimate duration: %w", err)
	}
	for _, call := range result.ToolCalls {
		if call.Name != estimateTool.Name {
			continue
		}
		hours, _ = call.Input["estimated_hours"].(float64)
		confidence, _ = call.Input["confidence"].(float64)
		reasoning, _ = call.Input["reasoning"].(string)
	}
	return hours, confidence, reasoning, nil
}

// handleTaskChanged mirrors project.py's on_write_project_task: a stage
// change triggers a project health check, anything else is a no-op.
func (a *Automation) handleTaskChanged(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	if _, changed := ev.Payload["stage_id"]; !changed {
		return automation.AutomationResult{
			Success: true, ActionName: "no_action", Model: "project.task", RecordID: ev.RecordID,
			Confidence: 1.0, Reasoning: "no stage change",
		}, nil
	}

	projectID, _ := ev.Payload["project_id"].(int64)
	if projectID == 0 {
		return automation.AutomationResult{
			Success: true, ActionName: "no_action", Model: "project.task", RecordID: ev.RecordID,
			Confidence: 1.0, Reasoning: "task updated, no project to check",
		}, nil
	}
	return a.checkProjectHealth(ctx, projectID)
}

func (a *Automation) checkProjectHealth(ctx context.Context, projectID int64) (automation.AutomationResult, error) {
	tasks, err := a.erp.SearchRead(ctx, "project.task",
		erpclient.Domain{erpclient.Triple{Field: "project_id", Operator: "=", Value: projectID}},
		[]string{"stage_id", "date_deadline", "planned_hours", "effective_hours"}, erpclient.SearchOptions{Limit: 100})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("read tasks for project %d health check: %w", projectID, err)
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You assess a project's overall health from its task list and flag risks.",
		UserMessage:  fmt.Sprintf("Project %d has %d tasks.", projectID, len(tasks)),
		Tools:        []llmclient.ToolDescriptor{riskTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("check project health: %w", err)
	}

	for _, call := range result.ToolCalls {
		if call.Name != riskTool.Name {
			continue
		}
		health, _ := call.Input["overall_health"].(string)
		summary, _ := call.Input["summary"].(string)
		confidence, _ := call.Input["confidence"].(float64)
		reasoning, _ := call.Input["reasoning"].(string)
		return automation.AutomationResult{
			Success: true, ActionName: "project_health_check", Model: "project.project", RecordID: fmt.Sprintf("%d", projectID),
			Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
			ChangesMade:   map[string]interface{}{"overall_health": health, "summary": summary},
			NeedsApproval: health == "critical",
		}, nil
	}
	return automation.AutomationResult{
		Success: false, ActionName: "project_health_check", Model: "project.project", RecordID: fmt.Sprintf("%d", projectID),
		Reasoning: "health check produced no result",
	}, nil
}
