package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRunID       = "run_id"
	FieldCommand     = "command"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldExpenseID   = "expense_id"
	FieldDescription = "description"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldMonthKey    = "month_key"
	FieldPath        = "path"
	FieldBackend     = "backend"
	FieldCount       = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentExpense = "expense"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpList    = "list"
	OpSummary = "summary"
	OpExport  = "export"
	OpBudget  = "budget"
)
