package reportbuilder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

func TestExecuteQueryColumnSetEqualsFieldsUnionGroupBy(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("sale.order", 1, erpclient.Record{"amount_total": 500.0, "state": "done", "partner_id": int64(7)})
	erp.Seed("sale.order", 2, erpclient.Record{"amount_total": 250.0, "state": "draft", "partner_id": int64(7)})

	pq, err := ParseQuery(Query{Model: "sale.order", Fields: []string{"amount_total"}, GroupBy: []string{"state"}})
	require.NoError(t, err)

	rows, err := ExecuteQuery(context.Background(), erp, pq)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		cols := make([]string, 0, len(row))
		for c := range row {
			cols = append(cols, c)
		}
		assert.ElementsMatch(t, pq.Columns(), cols)
	}
}

func TestParseQueryRejectsMissingModel(t *testing.T) {
	_, err := ParseQuery(Query{Fields: []string{"amount_total"}})
	require.Error(t, err)
}

func TestParseQueryBuildsEqualityDomainFromFilters(t *testing.T) {
	pq, err := ParseQuery(Query{Model: "sale.order", Fields: []string{"amount_total"}, Filters: map[string]interface{}{"state": "done"}})
	require.NoError(t, err)
	require.Len(t, pq.Domain, 1)
	triple := pq.Domain[0].(erpclient.Triple)
	assert.Equal(t, "state", triple.Field)
	assert.Equal(t, "done", triple.Value)
}

func TestRunPersistsCompletedReportJob(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("sale.order", 1, erpclient.Record{"amount_total": 500.0})

	a := New(erp, NewStore())
	job, err := a.Run(context.Background(), Query{Model: "sale.order", Fields: []string{"amount_total"}})
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, job.Status)
	assert.Len(t, job.Rows, 1)
}
