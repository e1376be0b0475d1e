package jobs

import (
	"context"

	"tooldepot-backend/internal/config"
	"tooldepot-backend/internal/logger"
	"tooldepot-backend/internal/repository"
	"tooldepot-backend/internal/service"
)

// JobRunner holds the dependencies shared by all scheduled jobs.
type JobRunner struct {
	store     repository.Store
	fineSvc   service.FineService
	damageSvc service.DamageService
	cfg       *config.Config
}

func NewJobRunner(store repository.Store, fineSvc service.FineService, damageSvc service.DamageService, cfg *config.Config) *JobRunner {
	return &JobRunner{store: store, fineSvc: fineSvc, damageSvc: damageSvc, cfg: cfg}
}

// Config returns the application configuration
func (j *JobRunner) Config() *config.Config {
	return j.cfg
}

// RefreshClientRestrictions re-derives the ACTIVE/RESTRICTED flag for every
// client that could have drifted overnight: clients holding active loans
// (a loan may have become overdue since yesterday) and clients currently
// restricted (their last fine may have been paid out-of-band).
func (j *JobRunner) RefreshClientRestrictions() {
	ctx := context.Background()
	logger.Info("Starting RefreshClientRestrictions job")

	ids, err := j.store.Clients().ListWithActiveLoans(ctx)
	if err != nil {
		logger.Error("Failed to list clients with active loans", "error", err)
		return
	}
	restricted, err := j.store.Clients().ListRestricted(ctx)
	if err != nil {
		logger.Error("Failed to list restricted clients", "error", err)
		return
	}

	seen := make(map[int32]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, c := range restricted {
		if !seen[c.ID] {
			ids = append(ids, c.ID)
			seen[c.ID] = true
		}
	}

	var refreshed, failed int
	for _, clientID := range ids {
		if _, err := j.fineSvc.RecomputeClientStatus(ctx, clientID); err != nil {
			logger.Error("Failed to refresh client status", "client_id", clientID, "error", err)
			failed++
			continue
		}
		refreshed++
	}

	logger.Info("RefreshClientRestrictions job completed", "refreshed", refreshed, "failed", failed)
}

// FlagUrgentDamages surfaces damage cases that have sat too long in any
// stage: unassessed reports, stagnant assessments and overdue repairs.
// The job only reports; escalation remains a human decision.
func (j *JobRunner) FlagUrgentDamages() {
	ctx := context.Background()
	logger.Info("Starting FlagUrgentDamages job")

	urgent, err := j.damageSvc.Urgent(ctx)
	if err != nil {
		logger.Error("Failed to list urgent damages", "error", err)
		return
	}
	for _, d := range urgent {
		logger.Warn("Urgent damage pending", "damage_id", d.ID, "reference", d.Reference,
			"status", d.Status, "reported_at", d.ReportedAt.Format("2006-01-02"))
	}

	overdue, err := j.damageSvc.OverdueRepairs(ctx)
	if err != nil {
		logger.Error("Failed to list overdue repairs", "error", err)
		return
	}
	for _, d := range overdue {
		logger.Warn("Repair overdue", "damage_id", d.ID, "reference", d.Reference,
			"instance_id", d.InstanceID)
	}

	logger.Info("FlagUrgentDamages job completed", "urgent", len(urgent), "overdue_repairs", len(overdue))
}
