package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"issue-analyzer/internal/classifier"
	"issue-analyzer/internal/duplicates"
	"issue-analyzer/internal/logger"
	"issue-analyzer/internal/models"
	"issue-analyzer/internal/repositories"
	"issue-analyzer/internal/risk"
	"issue-analyzer/internal/sources"
	"issue-analyzer/internal/textproc"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalysisOptions tunes how a repository run is executed.
type AnalysisOptions struct {
	Concurrency     int
	RunTimeout      time.Duration
	ExtractKeywords bool
	KeywordLimit    int
}

// DefaultAnalysisOptions mirrors the configuration defaults.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Concurrency:     4,
		RunTimeout:      5 * time.Minute,
		ExtractKeywords: true,
		KeywordLimit:    5,
	}
}

// PersistenceError reports that results were computed but the result set
// could not be stored. The computed results are returned alongside it, and
// the previously stored set is left in place.
type PersistenceError struct {
	RepositoryID string
	Total        int
	Err          error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %d results for %s: %v", e.Total, e.RepositoryID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Timeout reports whether persistence stopped because the run deadline passed.
func (e *PersistenceError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// PipelineResult is everything one RunPipeline call produced.
type PipelineResult struct {
	Run         models.AnalysisRun
	Assessments []models.RiskAssessment
	Duplicates  []models.DuplicatePair
}

// AnalysisService drives classification, risk scoring and duplicate
// detection over the issues held in the store.
type AnalysisService struct {
	store      repositories.Store
	source     sources.IssueSource
	classifier *classifier.Classifier
	scorer     *risk.Scorer
	detector   *duplicates.Detector
	keywords   *textproc.KeywordExtractor
	opts       AnalysisOptions
	logger     *logger.Logger
	newID      func() string
	now        func() time.Time
}

// NewAnalysisService creates a new analysis service. source may be nil when
// the caller never syncs.
func NewAnalysisService(
	store repositories.Store,
	source sources.IssueSource,
	clf *classifier.Classifier,
	scorer *risk.Scorer,
	detector *duplicates.Detector,
	opts AnalysisOptions,
	log *logger.Logger,
) *AnalysisService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultAnalysisOptions().RunTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &AnalysisService{
		store:      store,
		source:     source,
		classifier: clf,
		scorer:     scorer,
		detector:   detector,
		keywords:   textproc.NewKeywordExtractor(),
		opts:       opts,
		logger:     log,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Classify predicts the priority of free text.
func (s *AnalysisService) Classify(text string) models.PredictionResult {
	return s.classifier.Predict(text)
}

// ScoreRisk turns a prediction into an assessment and attaches keywords when
// enabled. Keyword failures only cost the keywords.
func (s *AnalysisService) ScoreRisk(issue models.Issue, prediction models.PredictionResult) models.RiskAssessment {
	assessment := s.scorer.Score(issue, prediction)
	if !s.opts.ExtractKeywords {
		return assessment
	}

	words, err := s.keywords.ExtractWords(issue, s.opts.KeywordLimit)
	if err != nil {
		s.logger.Warn("keyword extraction failed", "issue_id", issue.ID, "error", err)
		return assessment
	}
	assessment.Keywords = words
	return assessment
}

// FindDuplicates runs the detector over an arbitrary issue set.
func (s *AnalysisService) FindDuplicates(issues []models.Issue) []models.DuplicatePair {
	return s.detector.Detect(issues)
}

// AnalyzeRepository assesses every stored issue of a repository and persists
// the assessments. On a persistence failure the computed assessments are
// returned together with a *PersistenceError.
func (s *AnalysisService) AnalyzeRepository(ctx context.Context, repoID string) ([]models.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RunTimeout)
	defer cancel()
	return s.analyze(ctx, repoID, "")
}

// DetectDuplicates finds and persists duplicate pairs within one repository.
func (s *AnalysisService) DetectDuplicates(ctx context.Context, repoID string) ([]models.DuplicatePair, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RunTimeout)
	defer cancel()
	return s.detect(ctx, repoID)
}

// SyncRepository fetches the repository's issues from the source and stores
// them together with the repository record. It returns the issue count.
func (s *AnalysisService) SyncRepository(ctx context.Context, repo models.Repository) (int, error) {
	if s.source == nil {
		return 0, errors.New("no issue source configured")
	}
	log := s.logger.With("repository_id", repo.ID)

	issues, err := s.source.FetchIssues(ctx, repo)
	if err != nil {
		return 0, fmt.Errorf("sync %s: %w", repo.ID, err)
	}

	existing, err := s.store.FindRepository(ctx, repo.ID)
	switch {
	case err == nil:
		if repo.AnalyzedAt == nil {
			repo.AnalyzedAt = existing.AnalyzedAt
		}
	case repositories.IsNotFound(err):
	default:
		return 0, fmt.Errorf("sync %s: %w", repo.ID, err)
	}

	if err := s.store.SaveRepository(ctx, &repo); err != nil {
		return 0, fmt.Errorf("sync %s: %w", repo.ID, err)
	}
	if err := s.store.SaveIssues(ctx, repo.ID, issues); err != nil {
		return 0, fmt.Errorf("sync %s: %w", repo.ID, err)
	}

	log.Info("repository synced", "issues", len(issues))
	return len(issues), nil
}

// RunPipeline analyzes and deduplicates a repository and records the run in
// its history. The run is only recorded when both stages persisted cleanly.
func (s *AnalysisService) RunPipeline(ctx context.Context, repoID string) (*PipelineResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RunTimeout)
	defer cancel()

	run := models.AnalysisRun{
		ID:           s.newID(),
		RepositoryID: repoID,
		StartedAt:    s.now(),
	}
	result := &PipelineResult{}

	assessments, err := s.analyze(ctx, repoID, run.ID)
	result.Assessments = assessments
	if err != nil {
		return result, err
	}

	pairs, err := s.detect(ctx, repoID)
	result.Duplicates = pairs
	if err != nil {
		return result, err
	}

	for _, a := range assessments {
		run.Count(a)
	}
	run.DuplicatePairs = len(pairs)
	run.CompletedAt = s.now()
	result.Run = run

	if err := s.store.SaveAnalysisRun(ctx, run); err != nil {
		return result, &PersistenceError{RepositoryID: repoID, Total: 1, Err: err}
	}

	s.logger.Info("analysis run recorded",
		"repository_id", repoID,
		"run_id", run.ID,
		"issues", run.TotalIssues,
		"high", run.HighCount,
		"medium", run.MediumCount,
		"low", run.LowCount,
		"duplicate_pairs", run.DuplicatePairs,
		"duration", run.CompletedAt.Sub(run.StartedAt).String(),
	)
	return result, nil
}

func (s *AnalysisService) analyze(ctx context.Context, repoID, runID string) ([]models.RiskAssessment, error) {
	issues, err := s.loadIssues(ctx, repoID)
	if err != nil {
		return nil, err
	}

	assessments := make([]models.RiskAssessment, len(issues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, issue := range issues {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := s.ScoreRisk(issue, s.Classify(issue.Text()))
			a.RepositoryID = repoID
			a.RunID = runID
			assessments[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", repoID, err)
	}

	if err := s.persist(ctx, func() error {
		return s.store.ReplaceRiskAssessments(ctx, repoID, assessments)
	}); err != nil {
		return assessments, &PersistenceError{RepositoryID: repoID, Total: len(assessments), Err: err}
	}

	s.logger.Debug("repository analyzed", "repository_id", repoID, "issues", len(assessments))
	return assessments, nil
}

func (s *AnalysisService) detect(ctx context.Context, repoID string) ([]models.DuplicatePair, error) {
	issues, err := s.loadIssues(ctx, repoID)
	if err != nil {
		return nil, err
	}

	pairs := s.detector.Detect(issues)
	for i := range pairs {
		pairs[i].RepositoryID = repoID
	}
	if err := s.persist(ctx, func() error {
		return s.store.ReplaceDuplicatePairs(ctx, repoID, pairs)
	}); err != nil {
		return pairs, &PersistenceError{RepositoryID: repoID, Total: len(pairs), Err: err}
	}

	s.logger.Debug("duplicates detected", "repository_id", repoID, "issues", len(issues), "pairs", len(pairs))
	return pairs, nil
}

// persist runs one replace of a result set unless the run deadline already
// passed. A replace is all or nothing, so a failure saved none of the set.
func (s *AnalysisService) persist(ctx context.Context, replace func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return replace()
}

// loadIssues returns store errors unmodified so callers can match them,
// ErrNotFound included.
func (s *AnalysisService) loadIssues(ctx context.Context, repoID string) ([]models.Issue, error) {
	if _, err := s.store.FindRepository(ctx, repoID); err != nil {
		return nil, err
	}
	return s.store.GetIssues(ctx, repoID)
}
