package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldUserID      = "user_id"
	FieldCategory    = "category"
	FieldConfidence  = "confidence"
	FieldTier        = "tier"
	FieldAmountCents = "amount_cents"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentCategorize  = "categorize"
	ComponentAnalytics   = "analytics"
	ComponentInsights    = "insights"
	ComponentRateLimit   = "rate_limit"
	ComponentTrace       = "trace"
)
