// ABOUTME: Data models for trades-business entities
// ABOUTME: Defines Client, Job, Quote, Invoice, Payment, Booking and settings structs
package models

import "time"

// Kind identifies a replicated collection.
type Kind string

const (
	KindClients  Kind = "clients"
	KindJobs     Kind = "jobs"
	KindQuotes   Kind = "quotes"
	KindInvoices Kind = "invoices"
	KindPayments Kind = "payments"
	KindBookings Kind = "bookings"
)

// Kinds lists every replicated collection, in cascade order.
var Kinds = []Kind{KindClients, KindJobs, KindQuotes, KindInvoices, KindPayments, KindBookings}

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Job workflow statuses.
const (
	JobStatusQuotePending  = "quote_pending"
	JobStatusQuoteApproved = "quote_approved"
	JobStatusScheduled     = "scheduled"
	JobStatusInProgress    = "in_progress"
	JobStatusCompleted     = "completed"
	JobStatusOnHold        = "on_hold"
	JobStatusCancelled     = "cancelled"
)

type Job struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"clientId"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Status          string    `json:"status"`
	EstimatedValue  float64   `json:"estimatedValue,omitempty"`
	Subtotal        float64   `json:"subtotal"`
	VATAmount       float64   `json:"vatAmount"`
	Total           float64   `json:"total"`
	VATEnabled      bool      `json:"vatEnabled"`
	VATRate         float64   `json:"vatRate,omitempty"`
	CISEnabled      bool      `json:"cisEnabled,omitempty"`
	CISRate         float64   `json:"cisRate,omitempty"`
	OriginalQuoteID string    `json:"originalQuoteId,omitempty"`
	QuoteID         string    `json:"quoteId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Quote statuses.
const (
	QuoteStatusDraft     = "draft"
	QuoteStatusSent      = "sent"
	QuoteStatusApproved  = "approved"
	QuoteStatusRejected  = "rejected"
	QuoteStatusExpired   = "expired"
	QuoteStatusConverted = "converted"
)

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type Quote struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	JobID       string     `json:"jobId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Items       []LineItem `json:"items,omitempty"`
	Subtotal    float64    `json:"subtotal"`
	VATAmount   float64    `json:"vatAmount"`
	Total       float64    `json:"total"`
	VATEnabled  bool       `json:"vatEnabled"`
	VATRate     float64    `json:"vatRate,omitempty"`
	CISEnabled  bool       `json:"cisEnabled,omitempty"`
	CISRate     float64    `json:"cisRate,omitempty"`
	Status      string     `json:"status"`
	// ConvertedJobID records the job produced by conversion. JobID is also
	// set at conversion time so older data that only carried jobId still
	// resolves the link in either direction.
	ConvertedJobID string    `json:"convertedJobId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Converted reports whether the quote has already produced a job.
func (q *Quote) Converted() bool {
	return q.Status == QuoteStatusConverted
}

// Invoice bill types.
const (
	BillTypeDeposit   = "deposit"
	BillTypeRemaining = "remaining"
	BillTypeFull      = "full"
)

// Invoice statuses. Draft/sent/overdue/pending are assigned by callers;
// part-paid and paid are derived from recorded payments.
const (
	InvoiceStatusDraft    = "draft"
	InvoiceStatusSent     = "sent"
	InvoiceStatusPartPaid = "part-paid"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusOverdue  = "overdue"
	InvoiceStatusPending  = "pending"
)

type Invoice struct {
	ID         string     `json:"id"`
	ClientID   string     `json:"clientId"`
	JobID      string     `json:"jobId,omitempty"`
	Items      []LineItem `json:"items,omitempty"`
	Subtotal   float64    `json:"subtotal"`
	VATAmount  float64    `json:"vatAmount"`
	Total      float64    `json:"total"`
	VATEnabled bool       `json:"vatEnabled"`
	VATRate    float64    `json:"vatRate,omitempty"`
	BillType   string     `json:"billType,omitempty"`
	Status     string     `json:"status"`
	// PreviousStatus is the status the invoice held before payments moved
	// it to part-paid/paid; deleting the last payment restores it.
	PreviousStatus string    `json:"previousStatus,omitempty"`
	PaidAmount     float64   `json:"paidAmount,omitempty"`
	PaidAt         int64     `json:"paidAt,omitempty"`    // unix millis, set on transition to paid
	PaidAtISO      string    `json:"paidAtISO,omitempty"` // RFC 3339, set on transition to paid
	DueDate        string    `json:"dueDate,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Payment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoiceId"`
	JobID     string    `json:"jobId,omitempty"`    // denormalized from the invoice
	ClientID  string    `json:"clientId,omitempty"` // denormalized from the invoice
	Amount    float64   `json:"amount"`
	Method    string    `json:"method,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Booking struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId,omitempty"`
	JobID     string    `json:"jobId,omitempty"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // YYYY-MM-DD
	StartTime string    `json:"startTime,omitempty"`
	EndTime   string    `json:"endTime,omitempty"`
	AllDay    bool      `json:"allDay,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Singleton settings names.
const (
	SettingBranding        = "branding"
	SettingBusinessDetails = "business-details"
	SettingBankDetails     = "bank-details"
	SettingNotifications   = "notification-preferences"
)

type Branding struct {
	LogoURL        string `json:"logoUrl,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	AccentColor    string `json:"accentColor,omitempty"`
}

type BusinessDetails struct {
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Website   string `json:"website,omitempty"`
	VATNumber string `json:"vatNumber,omitempty"`
	CISNumber string `json:"cisNumber,omitempty"`
}

type BankDetails struct {
	AccountName   string `json:"accountName,omitempty"`
	SortCode      string `json:"sortCode,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	PaymentTerms  string `json:"paymentTerms,omitempty"`
}

type NotificationPreferences struct {
	EmailEnabled     bool `json:"emailEnabled"`
	SMSEnabled       bool `json:"smsEnabled"`
	BookingReminders bool `json:"bookingReminders"`
	InvoiceReminders bool `json:"invoiceReminders"`
}
