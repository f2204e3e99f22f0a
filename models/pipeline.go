// ABOUTME: Derived job pipeline status for approved jobs
// ABOUTME: Job.Status is authoritative; billing state only refines quote_approved
package models

// Display statuses derived on top of the job workflow enum.
const (
	PipelineReadyToInvoice = "ready_to_invoice"
	PipelineDepositPending = "deposit_pending"
)

// DerivePipelineStatus resolves the job's display status. Precedence is
// fixed: the job's own workflow status wins outright; only a job sitting at
// quote_approved is refined by billing state — an unpaid deposit invoice
// yields deposit_pending, no invoice at all yields ready_to_invoice. Whether
// the originating quote still exists never changes the answer.
func DerivePipelineStatus(job *Job, invoices []Invoice) string {
	if job.Status != JobStatusQuoteApproved {
		return job.Status
	}
	var jobInvoices []Invoice
	for _, inv := range invoices {
		if inv.JobID == job.ID {
			jobInvoices = append(jobInvoices, inv)
		}
	}
	if len(jobInvoices) == 0 {
		return PipelineReadyToInvoice
	}
	for _, inv := range jobInvoices {
		if inv.BillType == BillTypeDeposit && inv.Status != InvoiceStatusPaid {
			return PipelineDepositPending
		}
	}
	return job.Status
}
