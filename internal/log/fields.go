package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldBillID      = "bill_id"
	FieldBillStatus  = "bill_status"
	FieldTxID        = "transaction_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldTable       = "table"
	FieldStrategy    = "strategy"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentBills        = "bills"
	ComponentTransactions = "transactions"
	ComponentStorage      = "storage"
	ComponentRemote       = "remote"
	ComponentAMQP         = "amqp"
	ComponentWorker       = "worker"
	ComponentExport       = "export"
	ComponentNotify       = "notify"
	ComponentBackend      = "backend"
)
