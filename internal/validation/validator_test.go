package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blog-comment-moderation/internal/models"
)

func TestCommentInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "valid comment", content: "Qué lindo es Bariloche en otoño", wantErr: false},
		{name: "exactly ten characters", content: "0123456789", wantErr: false},
		{name: "too short", content: "corto", wantErr: true},
		{name: "empty", content: "", wantErr: true},
		{name: "exactly the maximum", content: strings.Repeat("a", 1000), wantErr: false},
		{name: "too long", content: strings.Repeat("a", 1001), wantErr: true},
		{name: "multibyte counts runes", content: strings.Repeat("ñ", 1000), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CommentInput{Content: tt.content}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, FieldErrors(err), "content")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "hola mundo", NormalizeContent("  <b>hola</b> mundo  "))
	assert.Equal(t, "", NormalizeContent("<script>alert(1)</script>"))
}

func TestModerationInput_Validate(t *testing.T) {
	version := 3
	zero := 0

	assert.NoError(t, ModerationInput{State: models.CommentStateApproved}.Validate())
	assert.NoError(t, ModerationInput{State: models.CommentStateRejected, Reason: "spam", ExpectedVersion: &version}.Validate())
	// reason emptiness is decided by the state machine, not here
	assert.NoError(t, ModerationInput{State: models.CommentStateRejected}.Validate())

	err := ModerationInput{State: "aprobado"}.Validate()
	assert.Equal(t, "invalid_state", FieldErrors(err)["state"])

	err = ModerationInput{}.Validate()
	assert.Equal(t, "state_required", FieldErrors(err)["state"])

	err = ModerationInput{State: models.CommentStatePending, ExpectedVersion: &zero}.Validate()
	assert.Contains(t, FieldErrors(err), "expected_version")
}

func TestReactionInput_Validate(t *testing.T) {
	assert.NoError(t, ReactionInput{Type: models.ReactionLove}.Validate())
	err := ReactionInput{Type: "meh"}.Validate()
	assert.Equal(t, "invalid_reaction_type", FieldErrors(err)["type"])
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("550e8400-e29b-41d4-a716-446655440000"))
	assert.Error(t, ValidateID("not-a-uuid"))
	assert.Error(t, ValidateID(""))
}

func TestValidateLegacyComment(t *testing.T) {
	valid := func() *models.LegacyCommentNDJSON {
		return &models.LegacyCommentNDJSON{
			ID:        "550e8400-e29b-41d4-a716-446655440000",
			PostID:    "550e8400-e29b-41d4-a716-446655440001",
			UserID:    "550e8400-e29b-41d4-a716-446655440002",
			Author:    "ulises",
			Content:   "Un comentario de la versión anterior",
			CreatedAt: "2024-03-01T10:00:00Z",
		}
	}

	tests := []struct {
		name       string
		mutate     func(c *models.LegacyCommentNDJSON)
		wantFields []string
	}{
		{name: "valid record", mutate: func(c *models.LegacyCommentNDJSON) {}},
		{name: "missing id", mutate: func(c *models.LegacyCommentNDJSON) { c.ID = "" }, wantFields: []string{"id"}},
		{name: "bad post id", mutate: func(c *models.LegacyCommentNDJSON) { c.PostID = "12" }, wantFields: []string{"post_id"}},
		{name: "bad date", mutate: func(c *models.LegacyCommentNDJSON) { c.CreatedAt = "16/12/2025" }, wantFields: []string{"fecha_creacion"}},
		{name: "bad moderation date", mutate: func(c *models.LegacyCommentNDJSON) { c.FechaModeracion = "ayer" }, wantFields: []string{"fecha_moderacion"}},
		{name: "author too long", mutate: func(c *models.LegacyCommentNDJSON) { c.Author = strings.Repeat("x", 101) }, wantFields: []string{"autor"}},
		{
			name:       "several fields",
			mutate:     func(c *models.LegacyCommentNDJSON) { c.Content = ""; c.UserID = "" },
			wantFields: []string{"contenido", "usuario_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			errs := ValidateLegacyComment(c)

			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestNormalizeContent_KeepsPunctuation(t *testing.T) {
	assert.Equal(t, "don't miss Tom & Jerry's café", NormalizeContent("don't miss Tom & Jerry's café"))
}
