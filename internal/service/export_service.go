package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/repository"
)

// ErrUnsupportedFormat is returned for export formats other than ndjson, json and csv
var ErrUnsupportedFormat = fmt.Errorf("unsupported export format")

const exportFlushEvery = 100

// commentEncoder writes one export format around a stream of comments
type commentEncoder interface {
	begin() error
	encode(c *models.Comment) error
	end() error
}

type exportFormat struct {
	contentType string
	extension   string
	newEncoder  func(w io.Writer) commentEncoder
}

var exportFormats = map[string]exportFormat{
	"ndjson": {"application/x-ndjson", "ndjson", newNDJSONEncoder},
	"json":   {"application/json", "json", newJSONArrayEncoder},
	"csv":    {"text/csv", "csv", newCSVEncoder},
}

type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamComments writes every comment in the requested format. Callers enforce staff access.
func (s *exportService) StreamComments(ctx context.Context, w http.ResponseWriter, format string) error {
	if format == "" {
		format = "ndjson"
	}
	f, ok := exportFormats[format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=comments."+f.extension)

	start := time.Now()
	flusher, _ := w.(http.Flusher)
	enc := f.newEncoder(w)
	if err := enc.begin(); err != nil {
		return err
	}

	count := 0
	err := s.repos.Comment.StreamAll(ctx, func(c *models.Comment) error {
		if err := enc.encode(c); err != nil {
			return err
		}
		count++
		if count%exportFlushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("format", format).Int("count", count).Msg("Comments export aborted")
		return err
	}
	if err := enc.end(); err != nil {
		return err
	}

	s.log.Info().
		Str("format", format).
		Int("count", count).
		Dur("duration", time.Since(start)).
		Msg("Comments export completed")
	return nil
}

type ndjsonEncoder struct{ enc *json.Encoder }

func newNDJSONEncoder(w io.Writer) commentEncoder { return &ndjsonEncoder{enc: json.NewEncoder(w)} }

func (e *ndjsonEncoder) begin() error                   { return nil }
func (e *ndjsonEncoder) encode(c *models.Comment) error { return e.enc.Encode(c) }
func (e *ndjsonEncoder) end() error                     { return nil }

type jsonArrayEncoder struct {
	w     io.Writer
	first bool
}

func newJSONArrayEncoder(w io.Writer) commentEncoder { return &jsonArrayEncoder{w: w, first: true} }

func (e *jsonArrayEncoder) begin() error {
	_, err := io.WriteString(e.w, "[")
	return err
}

func (e *jsonArrayEncoder) encode(c *models.Comment) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if !e.first {
		if _, err := io.WriteString(e.w, ","); err != nil {
			return err
		}
	}
	e.first = false
	_, err = e.w.Write(data)
	return err
}

func (e *jsonArrayEncoder) end() error {
	_, err := io.WriteString(e.w, "]")
	return err
}

var csvHeader = []string{
	"id", "post_id", "author_id", "author_name", "state", "rejection_reason",
	"moderated_by", "moderated_at", "version", "created_at", "content",
}

type csvEncoder struct{ w *csv.Writer }

func newCSVEncoder(w io.Writer) commentEncoder { return &csvEncoder{w: csv.NewWriter(w)} }

func (e *csvEncoder) begin() error { return e.w.Write(csvHeader) }

func (e *csvEncoder) encode(c *models.Comment) error {
	var moderatedBy, moderatedAt string
	if c.ModeratedBy != nil {
		moderatedBy = *c.ModeratedBy
	}
	if c.ModeratedAt != nil {
		moderatedAt = c.ModeratedAt.Format(time.RFC3339)
	}
	return e.w.Write([]string{
		c.ID, c.PostID, c.AuthorID, c.AuthorName, string(c.State), c.RejectionReason,
		moderatedBy, moderatedAt, strconv.Itoa(c.Version), c.CreatedAt.Format(time.RFC3339), c.Content,
	})
}

func (e *csvEncoder) end() error {
	e.w.Flush()
	return e.w.Error()
}
