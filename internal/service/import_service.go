package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/cache"
	"github.com/blog-comment-moderation/internal/config"
	"github.com/blog-comment-moderation/internal/metrics"
	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
	"github.com/blog-comment-moderation/internal/repository"
	"github.com/blog-comment-moderation/internal/validation"
)

// UnrecordedRejectionReason is stored for legacy rejections that carried no reason
const UnrecordedRejectionReason = "Motivo no registrado"

// maxReportedErrors caps the validation errors kept in an ImportResult
const maxReportedErrors = 1000

// importService is the concrete implementation of ImportService
type importService struct {
	repos     *repository.Repositories
	cache     *cache.Cache
	batchSize int
	log       zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, c *cache.Cache, cfg config.ImportConfig, log zerolog.Logger) *importService {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &importService{
		repos:     repos,
		cache:     c,
		batchSize: batchSize,
		log:       log.With().Str("service", "import").Logger(),
	}
}

// pendingRecord is a validated legacy line waiting for its batch
type pendingRecord struct {
	line    int
	comment *models.Comment
}

// importRun accumulates the outcome of one ImportLegacyComments call
type importRun struct {
	result *models.ImportResult
	seen   map[string]bool
	batch  []pendingRecord
}

func (r *importRun) fail(line int, field, message string, value interface{}) {
	r.result.FailedCount++
	metrics.ImportedRecords.WithLabelValues("failed").Inc()
	if len(r.result.Errors) < maxReportedErrors {
		r.result.Errors = append(r.result.Errors, models.ValidationError{
			Line: line, Field: field, Message: message, Value: value,
		})
	}
}

// ImportLegacyComments reads an NDJSON dump of the old comment table, maps the legacy
// approval flag onto the three-state enum and inserts the valid records in batches.
func (s *importService) ImportLegacyComments(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	startTime := time.Now()
	run := &importRun{
		result: &models.ImportResult{},
		seen:   make(map[string]bool),
	}

	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		run.result.TotalRecords++

		// Respect context cancellation for long-running imports
		if lineNum%1000 == 0 {
			select {
			case <-ctx.Done():
				return run.result, ctx.Err()
			default:
			}
		}

		var rec models.LegacyCommentNDJSON
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			run.fail(lineNum, "json", fmt.Sprintf("invalid JSON: %v", err), nil)
			continue
		}

		comment, normalized, errs := convertLegacyComment(&rec)
		if len(errs) > 0 {
			run.result.FailedCount++
			metrics.ImportedRecords.WithLabelValues("failed").Inc()
			for _, e := range errs {
				if len(run.result.Errors) < maxReportedErrors {
					e.Line = lineNum
					run.result.Errors = append(run.result.Errors, e)
				}
			}
			continue
		}
		if run.seen[comment.ID] {
			run.fail(lineNum, "id", "duplicate id in import", comment.ID)
			continue
		}
		run.seen[comment.ID] = true
		if normalized {
			run.result.Normalized++
		}

		run.batch = append(run.batch, pendingRecord{line: lineNum, comment: comment})
		if len(run.batch) >= s.batchSize {
			if err := s.flush(ctx, run); err != nil {
				return run.result, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return run.result, fmt.Errorf("failed to read import: %w", err)
	}

	if err := s.flush(ctx, run); err != nil {
		return run.result, err
	}

	if run.result.SuccessfulCount > 0 && s.cache != nil {
		s.cache.Purge()
	}

	run.result.DurationMs = time.Since(startTime).Milliseconds()

	var errorRate float64
	if run.result.TotalRecords > 0 {
		errorRate = float64(run.result.FailedCount) / float64(run.result.TotalRecords) * 100
	}
	s.log.Info().
		Int("total", run.result.TotalRecords).
		Int("successful", run.result.SuccessfulCount).
		Int("failed", run.result.FailedCount).
		Int("normalized", run.result.Normalized).
		Float64("error_rate_pct", errorRate).
		Int64("duration_ms", run.result.DurationMs).
		Msg("Legacy import completed")

	return run.result, nil
}

// flush checks the foreign keys of the current batch and copies the surviving rows
func (s *importService) flush(ctx context.Context, run *importRun) error {
	if len(run.batch) == 0 {
		return nil
	}
	defer func() { run.batch = run.batch[:0] }()

	userIDs := make([]string, 0, len(run.batch))
	postIDs := make([]string, 0, len(run.batch))
	for _, p := range run.batch {
		userIDs = append(userIDs, p.comment.AuthorID)
		if p.comment.ModeratedBy != nil {
			userIDs = append(userIDs, *p.comment.ModeratedBy)
		}
		postIDs = append(postIDs, p.comment.PostID)
	}

	users, err := s.repos.User.ExistingIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	posts, err := s.repos.Post.ExistingIDs(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("failed to check posts: %w", err)
	}

	rows := make([]*models.Comment, 0, len(run.batch))
	for _, p := range run.batch {
		c := p.comment
		switch {
		case !posts[c.PostID]:
			run.fail(p.line, "post_id", "post does not exist", c.PostID)
			continue
		case !users[c.AuthorID]:
			run.fail(p.line, "usuario_id", "user does not exist", c.AuthorID)
			continue
		}
		if c.ModeratedBy != nil && !users[*c.ModeratedBy] {
			// Moderators removed since the dump keep their decision without attribution
			c.ModeratedBy = nil
			c.ModeratedAt = nil
		}
		rows = append(rows, c)
	}

	inserted, err := s.repos.Comment.BatchInsert(ctx, rows)
	if err != nil {
		s.log.Error().Err(err).Int("batch_size", len(rows)).Msg("Batch insert failed")
		for _, p := range run.batch {
			if posts[p.comment.PostID] && users[p.comment.AuthorID] {
				run.fail(p.line, "batch", "batch insert failed", nil)
			}
		}
		return nil
	}

	run.result.SuccessfulCount += inserted
	metrics.ImportedRecords.WithLabelValues("imported").Add(float64(inserted))

	s.log.Debug().Int("inserted", inserted).Int("total", run.result.SuccessfulCount).Msg("Batch processed")
	return nil
}

// convertLegacyComment validates a legacy record and maps it onto a Comment.
// normalized reports that the state was derived from the boolean flag.
func convertLegacyComment(rec *models.LegacyCommentNDJSON) (*models.Comment, bool, []models.ValidationError) {
	if errs := validation.ValidateLegacyComment(rec); len(errs) > 0 {
		return nil, false, errs
	}

	state, normalized, ok := legacyState(rec)
	if !ok {
		return nil, false, []models.ValidationError{{Field: "estado", Message: "unknown state", Value: rec.Estado}}
	}

	content := validation.NormalizeContent(rec.Content)
	if content == "" {
		return nil, false, []models.ValidationError{{Field: "contenido", Message: "contenido is empty after sanitising"}}
	}

	createdAt, _ := time.Parse(time.RFC3339, rec.CreatedAt)
	c := &models.Comment{
		ID:         rec.ID,
		PostID:     rec.PostID,
		AuthorID:   rec.UserID,
		AuthorName: rec.Author,
		Content:    content,
		State:      state,
		Version:    1,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	if state == models.CommentStateRejected {
		c.RejectionReason = strings.TrimSpace(rec.MotivoRechazo)
		if c.RejectionReason == "" {
			c.RejectionReason = UnrecordedRejectionReason
		}
	}

	// Moderator references that are not user ids (old integer keys) are dropped
	// like unknown moderators.
	if state != models.CommentStatePending && rec.ModeradoPor != nil && validation.ValidateID(*rec.ModeradoPor) == nil {
		by := *rec.ModeradoPor
		at := createdAt
		if rec.FechaModeracion != "" {
			at, _ = time.Parse(time.RFC3339, rec.FechaModeracion)
		}
		c.ModeratedBy = &by
		c.ModeratedAt = &at
	}

	if err := moderation.CheckInvariants(*c); err != nil {
		return nil, false, []models.ValidationError{{Field: "estado", Message: err.Error()}}
	}
	return c, normalized, nil
}

// legacyState resolves the state of a legacy record. "estado" wins over "aprobado";
// records with neither are treated as pending.
func legacyState(rec *models.LegacyCommentNDJSON) (models.CommentState, bool, bool) {
	if estado := strings.ToLower(strings.TrimSpace(rec.Estado)); estado != "" {
		switch estado {
		case "pendiente", "pending":
			return models.CommentStatePending, false, true
		case "aprobado", "approved":
			return models.CommentStateApproved, false, true
		case "rechazado", "rejected":
			return models.CommentStateRejected, false, true
		default:
			return "", false, false
		}
	}
	if rec.Aprobado != nil && *rec.Aprobado {
		return models.CommentStateApproved, true, true
	}
	return models.CommentStatePending, true, true
}
