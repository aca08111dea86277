package validation

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/microcosm-cc/bluemonday"

	"github.com/blog-comment-moderation/internal/models"
)

var (
	stripPolicy = bluemonday.StrictPolicy()

	validStates = []interface{}{
		models.CommentStatePending,
		models.CommentStateApproved,
		models.CommentStateRejected,
	}
	validReactions = []interface{}{
		models.ReactionLike,
		models.ReactionLove,
		models.ReactionWow,
		models.ReactionSad,
		models.ReactionAngry,
	}
)

// CommentInput is the payload of a new or edited comment
type CommentInput struct {
	Content string `json:"content"`
}

// ModerationInput is the payload of a moderation request
type ModerationInput struct {
	State           models.CommentState `json:"state"`
	Reason          string              `json:"reason,omitempty"`
	ExpectedVersion *int                `json:"expected_version,omitempty"`
}

// ReactionInput is the payload of a reaction request
type ReactionInput struct {
	Type models.ReactionType `json:"type"`
}

// NormalizeContent strips markup and surrounding whitespace from submitted text and
// stores it as plain text. The length rules apply to the normalised value.
func NormalizeContent(raw string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(raw)))
}

// Validate checks the comment content bounds (10 to 1000 characters)
func (in CommentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content,
			validation.Required.Error("El comentario no puede estar vacío."),
			validation.By(lengthRule(models.MinCommentLength, models.MaxCommentLength)),
		),
	)
}

// Validate only checks the shape of the request; whether a reason is present for
// a rejection is decided by the state machine.
func (in ModerationInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.State,
			validation.Required.Error("state_required"),
			validation.In(validStates...).Error("invalid_state"),
		),
		validation.Field(&in.Reason, validation.Length(0, 2000).Error("reason_too_long")),
		validation.Field(&in.ExpectedVersion, validation.Min(1).Error("invalid_expected_version")),
	)
}

// Validate checks the reaction type
func (in ReactionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type,
			validation.Required.Error("type_required"),
			validation.In(validReactions...).Error("invalid_reaction_type"),
		),
	)
}

// ValidateID checks that s is a UUID
func ValidateID(s string) error {
	return validation.Validate(s, validation.Required, is.UUID)
}

// ValidateLegacyComment validates one record of a legacy dump after its state
// was normalised. Content bounds are not re-applied to historical comments.
func ValidateLegacyComment(c *models.LegacyCommentNDJSON) []models.ValidationError {
	var errs []models.ValidationError

	err := validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required.Error("id is required"), is.UUID.Error("invalid UUID format")),
		validation.Field(&c.PostID, validation.Required.Error("post_id is required"), is.UUID.Error("invalid UUID format")),
		validation.Field(&c.UserID, validation.Required.Error("usuario_id is required"), is.UUID.Error("invalid UUID format")),
		validation.Field(&c.Author, validation.Required.Error("autor is required"), validation.Length(1, 100).Error("autor exceeds 100 characters")),
		validation.Field(&c.Content, validation.Required.Error("contenido is required")),
		validation.Field(&c.CreatedAt, validation.Required.Error("fecha_creacion is required"), validation.Date(time.RFC3339).Error("invalid ISO 8601 date format")),
		validation.Field(&c.FechaModeracion, validation.Date(time.RFC3339).Error("invalid ISO 8601 date format")),
	)
	errs = append(errs, toValidationErrors(err, c)...)

	return errs
}

// FieldErrors flattens ozzo errors into field/message pairs for API responses
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validation.Errors); ok {
		for field, fieldErr := range ve {
			out[field] = fieldErr.Error()
		}
		return out
	}
	if err != nil {
		out["_"] = err.Error()
	}
	return out
}

func toValidationErrors(err error, c *models.LegacyCommentNDJSON) []models.ValidationError {
	if err == nil {
		return nil
	}
	values := map[string]interface{}{
		"id":               c.ID,
		"post_id":          c.PostID,
		"usuario_id":       c.UserID,
		"autor":            c.Author,
		"fecha_creacion":   c.CreatedAt,
		"fecha_moderacion": c.FechaModeracion,
	}
	var out []models.ValidationError
	for field, msg := range FieldErrors(err) {
		out = append(out, models.ValidationError{Field: field, Message: msg, Value: values[field]})
	}
	return out
}

func lengthRule(min, max int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		n := utf8.RuneCountInString(s)
		if n < min {
			return validation.NewError("content_too_short", "El comentario debe tener al menos 10 caracteres.")
		}
		if n > max {
			return validation.NewError("content_too_long", "El comentario no puede exceder los 1000 caracteres.")
		}
		return nil
	}
}

// ValidateFilter checks the optional state of a staff listing filter
func ValidateFilter(f models.CommentFilter) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.State, validation.In(validStates...).Error("invalid_state")),
		validation.Field(&f.Author, validation.Length(0, 100).Error("author_too_long")),
	)
}
