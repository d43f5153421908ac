package api

// webhookRequest is the inbound ERP change notification body (spec.md §6).
type webhookRequest struct {
	EventType string                 `json:"event_type" binding:"required"`
	Model     string                 `json:"model" binding:"required"`
	RecordID  int64                  `json:"record_id" binding:"required"`
	Values    map[string]interface{} `json:"values"`
	OldValues map[string]interface{} `json:"old_values"`
	Timestamp string                 `json:"timestamp"`
	UserID    int64                  `json:"user_id"`
}

type startCloseRequest struct {
	Period string `json:"period" binding:"required"`
}

type startReconciliationRequest struct {
	JournalID int64 `json:"journal_id" binding:"required"`
	UserID    int64 `json:"user_id"`
}

type matchRequest struct {
	BankLineID int64 `json:"bank_line_id" binding:"required"`
	EntryID    int64 `json:"entry_id" binding:"required"`
}

type dedupScanRequest struct {
	ScanType string `json:"scan_type" binding:"required"`
}

type dedupMergeRequest struct {
	MasterRecordID int64 `json:"master_record_id" binding:"required"`
}

type creditCheckRequest struct {
	CustomerID  int64   `json:"customer_id" binding:"required"`
	OrderAmount float64 `json:"order_amount"`
}

type forecastScenarioRequest struct {
	Name        string         `json:"name" binding:"required"`
	Adjustments map[string]int `json:"adjustments"`
}

type documentCorrectRequest struct {
	Field          string      `json:"field" binding:"required"`
	CorrectedValue interface{} `json:"corrected_value"`
}

type agentRunRequest struct {
	AgentType    string                 `json:"agent_type" binding:"required"`
	InitialState map[string]interface{} `json:"initial_state"`
}

// agentResumeRequest carries the suspension being resumed alongside its
// event_data; spec.md §6's endpoint list is representative, not
// exhaustive, and Resume needs the suspension ID to know which paused
// node to continue from.
type agentResumeRequest struct {
	SuspensionID string                 `json:"suspension_id" binding:"required"`
	EventData    map[string]interface{} `json:"event_data"`
}

type reportQueryRequest struct {
	Model   string                 `json:"model" binding:"required"`
	Fields  []string               `json:"fields"`
	GroupBy []string               `json:"group_by"`
	Filters map[string]interface{} `json:"filters"`
}

type ruleUpsertRequest struct {
	EventType                  string  `json:"event_type" binding:"required"`
	Model                      string  `json:"model"`
	Enabled                    bool    `json:"enabled"`
	DefaultConfidenceThreshold float64 `json:"default_confidence_threshold"`
	AutoApproveThreshold       float64 `json:"auto_approve_threshold"`
}

type approvalRequest struct {
	AuditLogID string `json:"audit_log_id" binding:"required"`
	Approved   bool   `json:"approved"`
	ApprovedBy string `json:"approved_by"`
}
