package api

// envelope wraps every successful API response, the single-envelope
// contract spec.md §7 requires ("every API response includes either the
// successful result envelope or a {error, message} object").
type envelope struct {
	Data interface{} `json:"data"`
}

// errorBody is returned in place of envelope on failure; no stack traces
// leak (spec.md §7).
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func ok(data interface{}) envelope {
	return envelope{Data: data}
}

// acceptedWebhook is the inbound-webhook success body spec.md §6 names
// verbatim: {accepted, audit_log_id?, run_id?}.
type acceptedWebhook struct {
	Accepted   bool    `json:"accepted"`
	AuditLogID *string `json:"audit_log_id,omitempty"`
	RunID      *string `json:"run_id,omitempty"`
}
