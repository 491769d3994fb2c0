// Package consistency implements the periodic scan that checks file
// records against stored artifacts. Every live record must have exactly
// one artifact at its storage path and every artifact must belong to a
// live record; the scanner reports divergence in both directions so a
// failed compensation or partial delete never goes unnoticed.
package consistency

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/code19m/errx"

	"github.com/geodepot/geodepot/blobstore"
	"github.com/geodepot/geodepot/observability/alert"
	log "github.com/geodepot/geodepot/observability/logger"
	"github.com/geodepot/geodepot/record"
)

// CodeStorageDivergence is the alert code raised when a scan cycle
// finds records and artifacts out of sync.
const CodeStorageDivergence = "STORAGE_DIVERGENCE"

const (
	operationScan   = "consistency_scan"
	shutdownTimeout = 10 * time.Second
)

// Report summarizes one scan cycle.
type Report struct {
	RecordsScanned   int
	ArtifactsScanned int

	// MissingArtifacts lists storage paths of records whose artifact is
	// absent from storage.
	MissingArtifacts []string

	// OrphanArtifacts lists artifacts with no record pointing at them.
	OrphanArtifacts []string
}

// Clean reports whether the cycle found no divergence.
func (r *Report) Clean() bool {
	return len(r.MissingArtifacts) == 0 && len(r.OrphanArtifacts) == 0
}

// Scanner periodically compares file records against stored artifacts.
type Scanner struct {
	cfg     Config
	logger  log.Logger
	records record.Repo
	store   blobstore.Store
	alerts  alert.Provider

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewScanner(
	cfg Config,
	logger log.Logger,
	records record.Repo,
	store blobstore.Store,
	alerts alert.Provider,
) *Scanner {
	return &Scanner{
		cfg:       cfg,
		logger:    logger.Named("consistency"),
		records:   records,
		store:     store,
		alerts:    alerts,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start runs scan cycles on the configured interval until Stop is
// called or ctx is cancelled.
func (s *Scanner) Start(ctx context.Context) error {
	s.logger.With("interval", s.cfg.Interval.String()).Info("Starting consistency scanner")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Consistency scanner context cancelled")
			return nil
		case <-s.stopCh:
			close(s.stoppedCh)
			return nil
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				s.logger.WithContext(ctx).Errorx(err)
			}
		}
	}
}

// Stop gracefully shuts down the scanner.
func (s *Scanner) Stop() error {
	s.logger.Info("Stopping consistency scanner")
	close(s.stopCh)

	select {
	case <-s.stoppedCh:
		return nil
	case <-time.After(shutdownTimeout):
		return errx.New("consistency scanner shutdown timeout exceeded")
	}
}

// Scan runs a single cycle: list all records and all artifacts, log
// every divergence with its storage path, and raise one alert for the
// cycle when anything diverged.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	started := time.Now()

	records, err := s.records.List(ctx, record.Filter{})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	paths, err := s.store.List(ctx, "")
	if err != nil {
		return nil, errx.Wrap(err)
	}

	recorded := make(map[string]struct{}, len(records))
	for _, rec := range records {
		recorded[rec.StoragePath] = struct{}{}
	}
	present := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		present[p] = struct{}{}
	}

	report := &Report{
		RecordsScanned:   len(records),
		ArtifactsScanned: len(paths),
	}

	for _, rec := range records {
		if _, ok := present[rec.StoragePath]; !ok {
			report.MissingArtifacts = append(report.MissingArtifacts, rec.StoragePath)
			s.logger.WithContext(ctx).With(
				"record_id", rec.ID.String(),
				"institution_id", rec.InstitutionID.String(),
				"storage_path", rec.StoragePath,
			).Error("Record has no artifact in storage")
		}
	}

	for _, p := range paths {
		if _, ok := recorded[p]; !ok {
			report.OrphanArtifacts = append(report.OrphanArtifacts, p)
			s.logger.WithContext(ctx).With(
				"storage_path", p,
			).Error("Artifact has no record")
		}
	}

	sort.Strings(report.MissingArtifacts)
	sort.Strings(report.OrphanArtifacts)

	cycleLog := s.logger.WithContext(ctx).With(
		"records_scanned", report.RecordsScanned,
		"artifacts_scanned", report.ArtifactsScanned,
		"missing_artifacts", len(report.MissingArtifacts),
		"orphan_artifacts", len(report.OrphanArtifacts),
		"duration", time.Since(started).String(),
	)

	if report.Clean() {
		cycleLog.Debug("Consistency scan cycle clean")
		return report, nil
	}

	cycleLog.Warn("Consistency scan cycle found divergence")
	s.raiseAlert(ctx, report)

	return report, nil
}

func (s *Scanner) raiseAlert(ctx context.Context, report *Report) {
	err := s.alerts.SendError(ctx, CodeStorageDivergence, "storage and records diverged", operationScan, map[string]string{
		"missing_artifacts": strconv.Itoa(len(report.MissingArtifacts)),
		"orphan_artifacts":  strconv.Itoa(len(report.OrphanArtifacts)),
	})
	if err != nil {
		s.logger.WithContext(ctx).With("alert_code", CodeStorageDivergence).Errorx(errx.Wrap(err))
	}
}
