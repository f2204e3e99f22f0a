// ABOUTME: Job operations, including quote conversion and pipeline status
package api

import (
	"context"
	"fmt"

	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/remote"
)

// Jobs lists every job.
func (s *Service) Jobs(ctx context.Context) []models.Job {
	return fetchList(ctx, s, "jobs", models.KindJobs, s.engine.Jobs)
}

// Job resolves a single job, nil when it does not exist.
func (s *Service) Job(ctx context.Context, id string) *models.Job {
	return fetchOne(ctx, s, "jobs", id, func() *models.Job {
		return s.engine.Job(id)
	})
}

// CreateJob creates a job.
func (s *Service) CreateJob(ctx context.Context, j models.Job) (*models.Job, error) {
	return createOp(ctx, s, "jobs", models.KindJobs, j, func() (*models.Job, error) {
		return s.engine.CreateJob(j)
	})
}

// UpdateJob applies a partial update.
func (s *Service) UpdateJob(ctx context.Context, id string, patch models.JobPatch) (*models.Job, error) {
	return updateOp(ctx, s, "jobs", models.KindJobs, id, patch, func() *models.Job {
		return s.engine.UpdateJob(id, patch)
	})
}

// DeleteJob removes a job and its related records.
func (s *Service) DeleteJob(ctx context.Context, id string) local.DeleteResult {
	return deleteOp(ctx, s, "jobs", models.KindJobs, id, func() local.DeleteResult {
		return s.engine.DeleteJob(id)
	})
}

// ConvertQuoteToJob promotes an approved quote into a job. The quote is
// marked converted and linked both ways; converting twice is refused.
func (s *Service) ConvertQuoteToJob(ctx context.Context, quoteID string) (*models.Job, error) {
	if s.UsingLocalFallback() {
		return s.engine.ConvertQuoteToJob(quoteID)
	}

	for _, path := range []string{
		remote.OrgPath("quotes", quoteID+"/convert"),
		remote.LegacyPath("quotes", quoteID+"/convert"),
	} {
		resp, err := s.gw.Post(ctx, path, nil)
		if err == nil && resp.OK {
			// Conversion touches both collections.
			s.store.Invalidate(models.KindQuotes)
			s.store.Invalidate(models.KindJobs)
			job, derr := remote.Decode[models.Job](resp)
			if derr != nil {
				return nil, fmt.Errorf("convert quote: decode response: %w", derr)
			}
			return &job, nil
		}
		if remote.IsTransport(resp, err) {
			s.degrade("convert quote " + quoteID)
			return s.engine.ConvertQuoteToJob(quoteID)
		}
		if resp.NotFound() {
			continue
		}
		return nil, fmt.Errorf("convert quote rejected: %s", resp.Err)
	}
	return nil, nil
}

// JobPipelineStatus reports the job's derived display status, refining the
// raw status with billing progress where invoices exist.
func (s *Service) JobPipelineStatus(ctx context.Context, id string) (string, error) {
	job := s.Job(ctx, id)
	if job == nil {
		return "", local.ErrNotFound
	}
	invoices := s.Invoices(ctx)
	related := invoices[:0:0]
	for _, inv := range invoices {
		if inv.JobID == id {
			related = append(related, inv)
		}
	}
	return models.DerivePipelineStatus(job, related), nil
}
