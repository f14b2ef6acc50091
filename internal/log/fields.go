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
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldReportType  = "report_type"
	FieldExpenseID   = "expense_id"
	FieldCategoryID  = "category_id"
	FieldAmountCents = "amount_cents"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAnalytics = "analytics"
	ComponentExpense   = "expense"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpList     = "list"
	OpReport   = "report"
	OpMirror   = "mirror"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields is a small builder for structured log attributes.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

func (f Fields) WithUser(userID string) Fields {
	f[FieldUserID] = userID
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithExpense adds the identifying fields of an expense record.
func (f Fields) WithExpense(id, categoryID string, amountCents int64) Fields {
	f[FieldExpenseID] = id
	f[FieldCategoryID] = categoryID
	f[FieldAmountCents] = amountCents
	return f
}

// ToSlice converts Fields to key/value pairs for slog.
func (f Fields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
