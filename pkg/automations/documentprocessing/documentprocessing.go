// Package documentprocessing is the C10 automation backing the
// DocumentProcessingJob + ExtractionCorrection domain tables (spec.md §3,
// §6's POST /api/documents/process and POST /api/documents/{id}/correct).
// It extracts structured fields from an uploaded document via the LLM
// port's tool-call contract, the same idiom pkg/automations/accounting
// uses for classification, and records every operator correction as its
// own append-only row rather than silently overwriting the original
// extraction. AutomationType "documentprocessing".
package documentprocessing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

const AutomationType = "documentprocessing"

const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

var extractTool = llmclient.ToolDescriptor{
	Name:        "extract_invoice_fields",
	Description: "Extract structured fields from an invoice or bill document",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"vendor_name":    map[string]interface{}{"type": "string"},
			"invoice_number": map[string]interface{}{"type": "string"},
			"amount":         map[string]interface{}{"type": "number"},
			"due_date":       map[string]interface{}{"type": "string"},
			"confidence":     map[string]interface{}{"type": "number"},
		},
		"required": []string{"vendor_name", "amount"},
	},
}

// ExtractionCorrection is one operator edit to a previously extracted
// field, kept as its own row so the original extraction is never
// rewritten (spec.md §3's append-mostly cross-entity rule).
type ExtractionCorrection struct {
	Field         string
	OriginalValue interface{}
	CorrectedValue interface{}
	CorrectedAt   time.Time
}

// Job is the DocumentProcessingJob parent record.
type Job struct {
	ID              string
	FileName        string
	Status          string
	ExtractedFields map[string]interface{}
	Confidence      float64
	Corrections     []ExtractionCorrection
	TokensUsed      int
	CreatedAt       time.Time
}

// FinalValue returns the field's value after corrections: the most
// recent correction wins, else the original extraction.
func (j *Job) FinalValue(field string) interface{} {
	for i := len(j.Corrections) - 1; i >= 0; i-- {
		if j.Corrections[i].Field == field {
			return j.Corrections[i].CorrectedValue
		}
	}
	return j.ExtractedFields[field]
}

// Store holds processing jobs in memory, append-only per job.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	seq  int
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

func (s *Store) create(fileName string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	job := &Job{ID: fmt.Sprintf("doc-%d", s.seq), FileName: fileName, Status: JobProcessing, CreatedAt: time.Now()}
	s.jobs[job.ID] = job
	return job
}

func (s *Store) Get(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

func (s *Store) complete(id string, fields map[string]interface{}, confidence float64, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return
	}
	j.Status = JobCompleted
	j.ExtractedFields = fields
	j.Confidence = confidence
	j.TokensUsed = tokens
}

func (s *Store) fail(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = JobFailed
	}
}

func (s *Store) correct(id, field string, corrected interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("document job %s not found", id)
	}
	j.Corrections = append(j.Corrections, ExtractionCorrection{
		Field: field, OriginalValue: j.ExtractedFields[field], CorrectedValue: corrected, CorrectedAt: time.Now(),
	})
	return nil
}

// Automation extracts document fields via the LLM port. It has no
// watched ERP models: documents arrive via the multipart upload endpoint,
// not an ERP webhook.
type Automation struct {
	llm   llmclient.Client
	store *Store
}

func New(llm llmclient.Client, store *Store) *Automation {
	return &Automation{llm: llm, store: store}
}

func (a *Automation) AutomationType() string                               { return AutomationType }
func (a *Automation) WatchedModels() []string                              { return nil }
func (a *Automation) Handlers() map[string]automation.HandlerFunc          { return map[string]automation.HandlerFunc{} }

// Process extracts structured fields from a document's text content
// (OCR/text-extraction is an external concern this module does not own,
// per spec.md's scope note that it "does not store raw documents").
func (a *Automation) Process(ctx context.Context, fileName, textContent string) (*Job, error) {
	job := a.store.create(fileName)

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You extract structured invoice fields from document text.",
		UserMessage:  fmt.Sprintf("Document %q content:\n%s", fileName, textContent),
		Tools:        []llmclient.ToolDescriptor{extractTool},
	})
	if err != nil {
		a.store.fail(job.ID)
		return nil, fmt.Errorf("extract fields from %s: %w", fileName, err)
	}

	for _, call := range result.ToolCalls {
		if call.Name != extractTool.Name {
			continue
		}
		confidence, _ := call.Input["confidence"].(float64)
		fields := make(map[string]interface{}, len(call.Input))
		for k, v := range call.Input {
			if k == "confidence" {
				continue
			}
			fields[k] = v
		}
		a.store.complete(job.ID, fields, confidence, result.TokensUsed)
		return a.mustGet(job.ID), nil
	}

	a.store.fail(job.ID)
	return nil, fmt.Errorf("extract fields from %s: no tool call returned", fileName)
}

// Correct records an operator's correction to a previously extracted
// field.
func (a *Automation) Correct(jobID, field string, correctedValue interface{}) (*Job, error) {
	if err := a.store.correct(jobID, field, correctedValue); err != nil {
		return nil, err
	}
	return a.mustGet(jobID), nil
}

// Get returns a job by ID, for GET /api/documents/{id}.
func (a *Automation) Get(id string) (*Job, bool) {
	return a.store.Get(id)
}

func (a *Automation) mustGet(id string) *Job {
	j, _ := a.store.Get(id)
	return j
}
