package documentprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

func TestProcessExtractsFieldsFromToolCall(t *testing.T) {
	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{
		TokensUsed: 420,
		ToolCalls: []llmclient.ToolCall{{
			Name: extractTool.Name,
			Input: map[string]interface{}{
				"vendor_name": "Acme Supplies", "invoice_number": "INV-900", "amount": 1250.0, "confidence": 0.92,
			},
		}},
	})

	a := New(llm, NewStore())
	job, err := a.Process(context.Background(), "invoice.pdf", "Acme Supplies, total due 1250.00")
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, "Acme Supplies", job.ExtractedFields["vendor_name"])
	assert.InDelta(t, 0.92, job.Confidence, 0.001)
	assert.Equal(t, 420, job.TokensUsed)
}

func TestProcessFailsWithNoToolCall(t *testing.T) {
	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{Text: "I could not read this document."})

	a := New(llm, NewStore())
	_, err := a.Process(context.Background(), "blank.pdf", "")
	require.Error(t, err)
}

func TestCorrectOverridesFinalValueWithoutMutatingOriginal(t *testing.T) {
	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{
		ToolCalls: []llmclient.ToolCall{{
			Name:  extractTool.Name,
			Input: map[string]interface{}{"vendor_name": "Acme Supplie", "amount": 1250.0, "confidence": 0.6},
		}},
	})
	a := New(llm, NewStore())
	job, err := a.Process(context.Background(), "invoice.pdf", "blurry scan")
	require.NoError(t, err)

	corrected, err := a.Correct(job.ID, "vendor_name", "Acme Supplies")
	require.NoError(t, err)
	require.Len(t, corrected.Corrections, 1)
	assert.Equal(t, "Acme Supplie", corrected.Corrections[0].OriginalValue)
	assert.Equal(t, "Acme Supplies", corrected.FinalValue("vendor_name"))
	assert.Equal(t, "Acme Supplie", corrected.ExtractedFields["vendor_name"])
}
