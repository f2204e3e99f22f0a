// ABOUTME: Partial-update patch types for entity mutations
// ABOUTME: Pointer fields distinguish "not provided" from zero values
package models

type ClientPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func (p ClientPatch) Apply(c *Client) {
	setStr(p.Name, &c.Name)
	setStr(p.Email, &c.Email)
	setStr(p.Phone, &c.Phone)
	setStr(p.Address, &c.Address)
	setStr(p.Notes, &c.Notes)
}

type JobPatch struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Status         *string  `json:"status,omitempty"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`
	Subtotal       *float64 `json:"subtotal,omitempty"`
	VATEnabled     *bool    `json:"vatEnabled,omitempty"`
	VATRate        *float64 `json:"vatRate,omitempty"`
	CISEnabled     *bool    `json:"cisEnabled,omitempty"`
	CISRate        *float64 `json:"cisRate,omitempty"`
}

func (p JobPatch) Apply(j *Job) {
	setStr(p.Title, &j.Title)
	setStr(p.Description, &j.Description)
	setStr(p.Status, &j.Status)
	setF64(p.EstimatedValue, &j.EstimatedValue)
	setF64(p.Subtotal, &j.Subtotal)
	setBool(p.VATEnabled, &j.VATEnabled)
	setF64(p.VATRate, &j.VATRate)
	setBool(p.CISEnabled, &j.CISEnabled)
	setF64(p.CISRate, &j.CISRate)
	// Monetary fields are derived, never patched directly.
	t := TotalsFromSubtotal(firstNonZero(j.Subtotal, j.EstimatedValue), j.VATEnabled, j.VATRate)
	j.Subtotal, j.VATAmount, j.Total = t.Subtotal, t.VATAmount, t.Total
}

type QuotePatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *string     `json:"status,omitempty"`
	Items       *[]LineItem `json:"items,omitempty"`
	VATEnabled  *bool       `json:"vatEnabled,omitempty"`
	VATRate     *float64    `json:"vatRate,omitempty"`
	CISEnabled  *bool       `json:"cisEnabled,omitempty"`
	CISRate     *float64    `json:"cisRate,omitempty"`
}

func (p QuotePatch) Apply(q *Quote) {
	setStr(p.Title, &q.Title)
	setStr(p.Description, &q.Description)
	setStr(p.Status, &q.Status)
	if p.Items != nil {
		q.Items = *p.Items
	}
	setBool(p.VATEnabled, &q.VATEnabled)
	setF64(p.VATRate, &q.VATRate)
	setBool(p.CISEnabled, &q.CISEnabled)
	setF64(p.CISRate, &q.CISRate)
	if len(q.Items) > 0 {
		t := ComputeTotals(q.Items, q.VATEnabled, q.VATRate)
		q.Subtotal, q.VATAmount, q.Total = t.Subtotal, t.VATAmount, t.Total
	} else {
		t := TotalsFromSubtotal(q.Subtotal, q.VATEnabled, q.VATRate)
		q.Subtotal, q.VATAmount, q.Total = t.Subtotal, t.VATAmount, t.Total
	}
}

type InvoicePatch struct {
	Status     *string     `json:"status,omitempty"`
	BillType   *string     `json:"billType,omitempty"`
	Items      *[]LineItem `json:"items,omitempty"`
	VATEnabled *bool       `json:"vatEnabled,omitempty"`
	VATRate    *float64    `json:"vatRate,omitempty"`
	DueDate    *string     `json:"dueDate,omitempty"`
}

func (p InvoicePatch) Apply(i *Invoice) {
	setStr(p.Status, &i.Status)
	setStr(p.BillType, &i.BillType)
	if p.Items != nil {
		i.Items = *p.Items
	}
	setBool(p.VATEnabled, &i.VATEnabled)
	setF64(p.VATRate, &i.VATRate)
	setStr(p.DueDate, &i.DueDate)
	if len(i.Items) > 0 {
		t := ComputeTotals(i.Items, i.VATEnabled, i.VATRate)
		i.Subtotal, i.VATAmount, i.Total = t.Subtotal, t.VATAmount, t.Total
	} else {
		t := TotalsFromSubtotal(i.Subtotal, i.VATEnabled, i.VATRate)
		i.Subtotal, i.VATAmount, i.Total = t.Subtotal, t.VATAmount, t.Total
	}
}

type PaymentPatch struct {
	Amount *float64 `json:"amount,omitempty"`
	Method *string  `json:"method,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

func (p PaymentPatch) Apply(pm *Payment) {
	setF64(p.Amount, &pm.Amount)
	setStr(p.Method, &pm.Method)
	setStr(p.Note, &pm.Note)
}

type BookingPatch struct {
	Title     *string `json:"title,omitempty"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	AllDay    *bool   `json:"allDay,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (p BookingPatch) Apply(b *Booking) {
	setStr(p.Title, &b.Title)
	setStr(p.Date, &b.Date)
	setStr(p.StartTime, &b.StartTime)
	setStr(p.EndTime, &b.EndTime)
	setBool(p.AllDay, &b.AllDay)
	setStr(p.Notes, &b.Notes)
}

func setStr(src *string, dst *string) {
	if src != nil {
		*dst = *src
	}
}

func setF64(src *float64, dst *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(src *bool, dst *bool) {
	if src != nil {
		*dst = *src
	}
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
