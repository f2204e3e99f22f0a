// ABOUTME: CRUD handlers, cascade deletes, quote conversion, payment derivation
// ABOUTME: Entities are stored as JSON blobs; business rules run on decoded models
package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldfolio/fieldfolio/models"
)

// handler produces a payload (or an error message) for an envelope writer.
type handler func(c *gin.Context, account string) (data any, status int, errMsg string)

// envelopeFn shapes the response body for one endpoint family.
type envelopeFn func(c *gin.Context, status int, data any, errMsg string)

func flatEnvelope(c *gin.Context, status int, data any, errMsg string) {
	body := gin.H{"success": errMsg == ""}
	if data != nil {
		body["data"] = data
	}
	if errMsg != "" {
		body["error"] = errMsg
	}
	c.JSON(status, body)
}

func orgEnvelope(c *gin.Context, status int, data any, errMsg string) {
	inner := gin.H{
		"success": errMsg == "",
		"metadata": gin.H{
			"source":    "org",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if data != nil {
		inner["data"] = data
	}
	body := gin.H{"success": errMsg == "", "data": inner}
	if errMsg != "" {
		body["error"] = errMsg
		inner["error"] = errMsg
	}
	c.JSON(status, body)
}

func (s *Server) wrap(env envelopeFn, h handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.GetString("account")
		data, status, errMsg := h(c, account)
		env(c, status, data, errMsg)
	}
}

var resources = map[string]bool{
	"clients": true, "jobs": true, "quotes": true,
	"invoices": true, "payments": true, "bookings": true,
}

var settingNames = map[string]bool{
	models.SettingBranding:        true,
	models.SettingBusinessDetails: true,
	models.SettingBankDetails:     true,
	models.SettingNotifications:   true,
}

func newEntityID() string {
	suffix := uuid.NewString()
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix[:8])
}

// list returns the whole collection for the account. Settings names are
// top-level resources holding a single document.
func (s *Server) list(c *gin.Context, account string) (any, int, string) {
	resource := c.Param("resource")
	if settingNames[resource] {
		return s.getSetting(account, resource)
	}
	if !resources[resource] {
		return nil, http.StatusNotFound, "unknown resource"
	}
	var rows []record
	if err := s.db.Where("account = ? AND resource = ?", account, resource).Order("id").Find(&rows).Error; err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	items := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, json.RawMessage(row.Data))
	}
	return items, http.StatusOK, ""
}

// get returns a single entity.
func (s *Server) get(c *gin.Context, account string) (any, int, string) {
	resource, id := c.Param("resource"), c.Param("id")
	if !resources[resource] {
		return nil, http.StatusNotFound, "unknown resource"
	}
	row, err := s.find(account, resource, id)
	if err != nil {
		return nil, http.StatusNotFound, resource + " not found"
	}
	return json.RawMessage(row.Data), http.StatusOK, ""
}

// createOrUpdate handles POST /{resource}: creates when the body has no id
// or an unknown one, updates otherwise (the org family updates this way).
func (s *Server) createOrUpdate(c *gin.Context, account string) (any, int, string) {
	resource := c.Param("resource")
	if settingNames[resource] {
		return s.putSetting(c, account, resource)
	}
	if !resources[resource] {
		return nil, http.StatusNotFound, "unknown resource"
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, "invalid JSON body"
	}

	if id, _ := body["id"].(string); id != "" {
		if row, err := s.find(account, resource, id); err == nil {
			return s.applyUpdate(account, resource, row, body)
		}
	}
	return s.create(c, account, resource, body)
}

// upsertByPath handles POST /org-data/{resource}/{id}.
func (s *Server) upsertByPath(c *gin.Context, account string) (any, int, string) {
	resource, id := c.Param("resource"), c.Param("id")
	if !resources[resource] {
		return nil, http.StatusNotFound, "unknown resource"
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, "invalid JSON body"
	}
	body["id"] = id
	if row, err := s.find(account, resource, id); err == nil {
		return s.applyUpdate(account, resource, row, body)
	}
	return s.create(c, account, resource, body)
}

// updateByPath handles PUT /{resource}/{id} for the legacy family.
func (s *Server) updateByPath(c *gin.Context, account string) (any, int, string) {
	resource, id := c.Param("resource"), c.Param("id")
	if !resources[resource] {
		return nil, http.StatusNotFound, "unknown resource"
	}
	row, err := s.find(account, resource, id)
	if err != nil {
		return nil, http.StatusNotFound, resource + " not found"
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, "invalid JSON body"
	}
	body["id"] = id
	return s.applyUpdate(account, resource, row, body)
}

func (s *Server) create(c *gin.Context, account, resource string, body map[string]any) (any, int, string) {
	if errMsg := validateCreate(resource, body); errMsg != "" {
		return nil, http.StatusBadRequest, errMsg
	}
	id, _ := body["id"].(string)
	if id == "" {
		id = newEntityID()
		body["id"] = id
	}
	now := time.Now().UTC()
	body["createdAt"] = now
	body["updatedAt"] = now

	if resource == "payments" {
		return s.recordPayment(account, body)
	}
	deriveTotals(resource, body)
	if resource == "jobs" {
		if status, _ := body["status"].(string); status == "" {
			body["status"] = models.JobStatusQuotePending
		}
	}
	if resource == "quotes" {
		if status, _ := body["status"].(string); status == "" {
			body["status"] = models.QuoteStatusDraft
		}
	}
	if resource == "invoices" {
		if status, _ := body["status"].(string); status == "" {
			body["status"] = models.InvoiceStatusDraft
		}
		if bt, _ := body["billType"].(string); bt == "" {
			body["billType"] = models.BillTypeFull
		}
	}

	if err := s.save(account, resource, id, body); err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	return body, http.StatusCreated, ""
}

func (s *Server) applyUpdate(account, resource string, row record, patch map[string]any) (any, int, string) {
	var current map[string]any
	if err := json.Unmarshal(row.Data, &current); err != nil {
		current = map[string]any{}
	}
	for k, v := range patch {
		if k == "createdAt" {
			continue
		}
		current[k] = v
	}
	current["updatedAt"] = time.Now().UTC()
	deriveTotals(resource, current)
	if err := s.save(account, resource, row.ID, current); err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	return current, http.StatusOK, ""
}

// remove deletes an entity and runs the same cascades the client performs
// offline, so both modes converge on the same end state.
func (s *Server) remove(c *gin.Context, account string) (any, int, string) {
	resource, id := c.Param("resource"), c.Param("id")
	if !resources[resource] {
		return nil, http.StatusNotFound, "unknown resource"
	}
	row, err := s.find(account, resource, id)
	if err != nil {
		return nil, http.StatusNotFound, resource + " not found"
	}

	switch resource {
	case "quotes":
		var q models.Quote
		if json.Unmarshal(row.Data, &q) == nil && q.Converted() {
			return nil, http.StatusConflict, "cannot delete a converted quote"
		}
	case "payments":
		var p models.Payment
		if json.Unmarshal(row.Data, &p) == nil {
			defer s.rederiveInvoice(account, p.InvoiceID, p.ID)
		}
	}

	if err := s.db.Delete(&record{}, "account = ? AND resource = ? AND id = ?", account, resource, id).Error; err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}

	cascaded := s.cascade(account, resource, row)
	result := gin.H{"success": true, "message": resource + " deleted"}
	if len(cascaded) > 0 {
		result["cascaded"] = cascaded
	}
	return result, http.StatusOK, ""
}

// convertQuote promotes a quote into a job exactly once.
func (s *Server) convertQuote(c *gin.Context, account string) (any, int, string) {
	if c.Param("resource") != "quotes" {
		return nil, http.StatusNotFound, "unknown resource"
	}
	id := c.Param("id")
	row, err := s.find(account, "quotes", id)
	if err != nil {
		return nil, http.StatusNotFound, "quote not found"
	}
	var quote models.Quote
	if err := json.Unmarshal(row.Data, &quote); err != nil {
		return nil, http.StatusInternalServerError, "stored quote is corrupt"
	}
	if quote.Converted() {
		return nil, http.StatusConflict, "quote already converted"
	}

	now := time.Now().UTC()
	totals := models.TotalsFromSubtotal(quote.Subtotal, quote.VATEnabled, quote.VATRate)
	job := models.Job{
		ID:              newEntityID(),
		ClientID:        quote.ClientID,
		Title:           quote.Title,
		Description:     quote.Description,
		Status:          models.JobStatusQuoteApproved,
		Subtotal:        totals.Subtotal,
		VATAmount:       totals.VATAmount,
		Total:           totals.Total,
		VATEnabled:      quote.VATEnabled,
		VATRate:         quote.VATRate,
		CISEnabled:      quote.CISEnabled,
		CISRate:         quote.CISRate,
		OriginalQuoteID: quote.ID,
		QuoteID:         quote.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	quote.Status = models.QuoteStatusConverted
	quote.JobID = job.ID
	quote.ConvertedJobID = job.ID
	quote.UpdatedAt = now

	if err := s.save(account, "jobs", job.ID, job); err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	if err := s.save(account, "quotes", quote.ID, quote); err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	return job, http.StatusOK, ""
}

// recordPayment stores the payment and re-derives the invoice's status.
func (s *Server) recordPayment(account string, body map[string]any) (any, int, string) {
	raw, _ := json.Marshal(body)
	var payment models.Payment
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, http.StatusBadRequest, "invalid payment body"
	}
	invRow, err := s.find(account, "invoices", payment.InvoiceID)
	if err != nil {
		return nil, http.StatusNotFound, "invoice not found"
	}
	var invoice models.Invoice
	if err := json.Unmarshal(invRow.Data, &invoice); err != nil {
		return nil, http.StatusInternalServerError, "stored invoice is corrupt"
	}
	payment.JobID = invoice.JobID
	payment.ClientID = invoice.ClientID

	if err := s.save(account, "payments", payment.ID, payment); err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}

	payments := append(s.paymentsForInvoice(account, invoice.ID, payment.ID), payment)
	status, paid := models.DeriveInvoiceStatus(invoice.Status, invoice.Total, payments)
	wasPaid := invoice.Status == models.InvoiceStatusPaid
	if invoice.Status != models.InvoiceStatusPaid && invoice.Status != models.InvoiceStatusPartPaid {
		invoice.PreviousStatus = invoice.Status
	}
	invoice.Status = status
	invoice.PaidAmount = paid
	invoice.UpdatedAt = time.Now().UTC()
	if status == models.InvoiceStatusPaid && !wasPaid {
		now := time.Now().UTC()
		invoice.PaidAt = now.UnixMilli()
		invoice.PaidAtISO = now.Format(time.RFC3339)
	}
	if err := s.save(account, "invoices", invoice.ID, invoice); err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	return payment, http.StatusCreated, ""
}

// rederiveInvoice recomputes an invoice's status after a payment removal.
// excludeID skips the row being deleted in the same transaction.
func (s *Server) rederiveInvoice(account, invoiceID, excludeID string) {
	invRow, err := s.find(account, "invoices", invoiceID)
	if err != nil {
		return
	}
	var invoice models.Invoice
	if json.Unmarshal(invRow.Data, &invoice) != nil {
		return
	}
	payments := s.paymentsForInvoice(account, invoiceID, excludeID)
	base := invoice.PreviousStatus
	if base == "" {
		base = models.InvoiceStatusSent
	}
	status, paid := models.DeriveInvoiceStatus(base, invoice.Total, payments)
	invoice.Status = status
	invoice.PaidAmount = paid
	if status != models.InvoiceStatusPaid {
		invoice.PaidAt = 0
		invoice.PaidAtISO = ""
	}
	invoice.UpdatedAt = time.Now().UTC()
	_ = s.save(account, "invoices", invoice.ID, invoice)
}

func (s *Server) paymentsForInvoice(account, invoiceID, excludeID string) []models.Payment {
	var rows []record
	s.db.Where("account = ? AND resource = ?", account, "payments").Find(&rows)
	var payments []models.Payment
	for _, row := range rows {
		if row.ID == excludeID {
			continue
		}
		var p models.Payment
		if json.Unmarshal(row.Data, &p) == nil && p.InvoiceID == invoiceID {
			payments = append(payments, p)
		}
	}
	return payments
}

// cascade removes dependents of a deleted client or job.
func (s *Server) cascade(account, resource string, row record) map[string]int {
	counts := map[string]int{}
	switch resource {
	case "clients":
		var client models.Client
		if json.Unmarshal(row.Data, &client) != nil {
			return counts
		}
		for _, dep := range []string{"jobs", "quotes", "invoices", "payments", "bookings"} {
			counts[dep] = s.removeMatching(account, dep, func(data []byte) bool {
				return fieldEquals(data, "clientId", client.ID)
			})
		}
	case "jobs":
		counts["quotes"] = s.removeMatching(account, "quotes", func(data []byte) bool {
			return fieldEquals(data, "jobId", row.ID) || fieldEquals(data, "convertedJobId", row.ID)
		})
		for _, dep := range []string{"invoices", "payments", "bookings"} {
			counts[dep] = s.removeMatching(account, dep, func(data []byte) bool {
				return fieldEquals(data, "jobId", row.ID)
			})
		}
	case "invoices":
		counts["payments"] = s.removeMatching(account, "payments", func(data []byte) bool {
			return fieldEquals(data, "invoiceId", row.ID)
		})
	}
	for dep, n := range counts {
		if n == 0 {
			delete(counts, dep)
		}
	}
	return counts
}

func fieldEquals(data []byte, key, value string) bool {
	var m map[string]any
	if json.Unmarshal(data, &m) != nil {
		return false
	}
	s, ok := m[key].(string)
	return ok && s == value
}

func (s *Server) removeMatching(account, resource string, match func([]byte) bool) int {
	var rows []record
	s.db.Where("account = ? AND resource = ?", account, resource).Find(&rows)
	removed := 0
	for _, row := range rows {
		if match(row.Data) {
			if s.db.Delete(&record{}, "account = ? AND resource = ? AND id = ?", account, resource, row.ID).Error == nil {
				removed++
			}
		}
	}
	return removed
}

func (s *Server) find(account, resource, id string) (record, error) {
	var row record
	err := s.db.Where("account = ? AND resource = ? AND id = ?", account, resource, id).First(&row).Error
	return row, err
}

func (s *Server) save(account, resource, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	row := record{ID: id, Account: account, Resource: resource, Data: data, UpdatedAt: time.Now().UTC()}
	return s.db.Save(&row).Error
}

func (s *Server) getSetting(account, name string) (any, int, string) {
	if !settingNames[name] {
		return nil, http.StatusNotFound, "unknown setting"
	}
	var row settingRow
	err := s.db.Where("account = ? AND name = ?", account, name).First(&row).Error
	if err != nil {
		return nil, http.StatusNotFound, "setting not found"
	}
	return json.RawMessage(row.Data), http.StatusOK, ""
}

// saveSettingByPath handles PUT /{name}, the legacy settings save.
func (s *Server) saveSettingByPath(c *gin.Context, account string) (any, int, string) {
	name := c.Param("resource")
	if !settingNames[name] {
		return nil, http.StatusNotFound, "unknown resource"
	}
	return s.putSetting(c, account, name)
}

func (s *Server) putSetting(c *gin.Context, account, name string) (any, int, string) {
	if !settingNames[name] {
		return nil, http.StatusNotFound, "unknown setting"
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, "invalid JSON body"
	}
	data, _ := json.Marshal(body)
	row := settingRow{Account: account, Name: name, Data: data, UpdatedAt: time.Now().UTC()}
	if err := s.db.Save(&row).Error; err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	return body, http.StatusOK, ""
}

// deriveTotals recomputes subtotal/vatAmount/total on quote, invoice and
// job writes so stored money fields never drift from their inputs.
func deriveTotals(resource string, body map[string]any) {
	switch resource {
	case "quotes", "invoices":
		raw, _ := json.Marshal(body)
		var doc struct {
			Items      []models.LineItem `json:"items"`
			Subtotal   float64           `json:"subtotal"`
			VATEnabled bool              `json:"vatEnabled"`
			VATRate    float64           `json:"vatRate"`
		}
		if json.Unmarshal(raw, &doc) != nil {
			return
		}
		var totals models.Totals
		if len(doc.Items) > 0 {
			totals = models.ComputeTotals(doc.Items, doc.VATEnabled, doc.VATRate)
		} else {
			totals = models.TotalsFromSubtotal(doc.Subtotal, doc.VATEnabled, doc.VATRate)
		}
		body["subtotal"] = totals.Subtotal
		body["vatAmount"] = totals.VATAmount
		body["total"] = totals.Total
	case "jobs":
		raw, _ := json.Marshal(body)
		var doc struct {
			Subtotal       float64 `json:"subtotal"`
			EstimatedValue float64 `json:"estimatedValue"`
			VATEnabled     bool    `json:"vatEnabled"`
			VATRate        float64 `json:"vatRate"`
		}
		if json.Unmarshal(raw, &doc) != nil {
			return
		}
		subtotal := doc.Subtotal
		if subtotal == 0 {
			subtotal = doc.EstimatedValue
		}
		totals := models.TotalsFromSubtotal(subtotal, doc.VATEnabled, doc.VATRate)
		body["subtotal"] = totals.Subtotal
		body["vatAmount"] = totals.VATAmount
		body["total"] = totals.Total
	}
}

// validateCreate enforces the same required fields the local engine does.
func validateCreate(resource string, body map[string]any) string {
	str := func(key string) string {
		v, _ := body[key].(string)
		return v
	}
	num := func(key string) float64 {
		v, _ := body[key].(float64)
		return v
	}
	switch resource {
	case "clients":
		if str("name") == "" {
			return "client name is required"
		}
	case "jobs":
		if str("clientId") == "" {
			return "job clientId is required"
		}
	case "quotes":
		if str("clientId") == "" {
			return "quote clientId is required"
		}
	case "invoices":
		if str("clientId") == "" {
			return "invoice clientId is required"
		}
	case "payments":
		if str("invoiceId") == "" {
			return "payment invoiceId is required"
		}
		if num("amount") <= 0 {
			return "payment amount must be positive"
		}
	case "bookings":
		if str("title") == "" || str("date") == "" {
			return "booking title and date are required"
		}
	}
	return ""
}
