package moderation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-comment-moderation/internal/models"
	"github.com/blog-comment-moderation/internal/moderation"
)

var now = time.Date(2025, 12, 16, 18, 7, 19, 0, time.UTC)

func fixtures() (author, reader, collaborator, otherCollaborator, staff, superuser *models.User) {
	author = &models.User{ID: "author", Username: "ana"}
	reader = &models.User{ID: "reader", Username: "ulises"}
	collaborator = &models.User{ID: "collab", Username: "carla", IsCollaborator: true}
	otherCollaborator = &models.User{ID: "collab-2", Username: "ciro", IsCollaborator: true}
	staff = &models.User{ID: "staff", Username: "sofia", IsStaff: true}
	superuser = &models.User{ID: "root", Username: "root", IsSuperuser: true}
	return
}

func TestNewComment_PendingForRegularUser(t *testing.T) {
	author, reader, _, _, _, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: author.ID}

	c := moderation.NewComment("c-1", post, reader, "Qué buen viaje a Cusco", now)

	assert.Equal(t, models.CommentStatePending, c.State)
	assert.Nil(t, c.ModeratedBy)
	assert.Nil(t, c.ModeratedAt)
	assert.Equal(t, "ulises", c.AuthorName)
	assert.Equal(t, 1, c.Version)
	require.NoError(t, moderation.CheckInvariants(c))
}

func TestNewComment_AutoApprovedForCollaboratorOnOwnPost(t *testing.T) {
	_, _, collaborator, _, _, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: collaborator.ID}

	c := moderation.NewComment("c-1", post, collaborator, "Gracias por leer la guía", now)

	assert.Equal(t, models.CommentStateApproved, c.State)
	require.NotNil(t, c.ModeratedBy)
	assert.Equal(t, collaborator.ID, *c.ModeratedBy)
	require.NotNil(t, c.ModeratedAt)
	assert.True(t, c.ModeratedAt.Equal(now))
	require.NoError(t, moderation.CheckInvariants(c))
}

func TestNewComment_CollaboratorOnForeignPostStaysPending(t *testing.T) {
	author, _, collaborator, _, _, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: author.ID}

	c := moderation.NewComment("c-1", post, collaborator, "Muy útil, gracias", now)

	assert.Equal(t, models.CommentStatePending, c.State)
}

func TestNewComment_StaffAutoApprovedAnywhere(t *testing.T) {
	author, _, _, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: author.ID}

	c := moderation.NewComment("c-1", post, staff, "Comentario del equipo", now)

	assert.Equal(t, models.CommentStateApproved, c.State)
	assert.Equal(t, staff.ID, *c.ModeratedBy)
}

func TestCapabilities(t *testing.T) {
	author, reader, collaborator, otherCollaborator, staff, superuser := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: collaborator.ID}
	comment := &models.Comment{ID: "c-1", PostID: post.ID, AuthorID: reader.ID, State: models.CommentStatePending}

	tests := []struct {
		name   string
		viewer *models.User
		want   []moderation.Capability
	}{
		{name: "anonymous", viewer: nil, want: []moderation.Capability{}},
		{name: "comment author", viewer: reader, want: []moderation.Capability{moderation.CapabilityEdit, moderation.CapabilityDelete}},
		{name: "unrelated user", viewer: author, want: []moderation.Capability{}},
		{name: "collaborator owning the post", viewer: collaborator, want: []moderation.Capability{moderation.CapabilityDelete, moderation.CapabilityModerate}},
		{name: "collaborator on another post", viewer: otherCollaborator, want: []moderation.Capability{}},
		{name: "staff", viewer: staff, want: []moderation.Capability{moderation.CapabilityDelete, moderation.CapabilityModerate}},
		{name: "superuser", viewer: superuser, want: []moderation.Capability{moderation.CapabilityDelete, moderation.CapabilityModerate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moderation.Capabilities(tt.viewer, comment, post)
			assert.Equal(t, tt.want, got.List())
		})
	}
}

func TestCapabilities_NonPrivilegedPostOwnerCannotModerate(t *testing.T) {
	author, reader, _, _, _, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: author.ID}
	comment := &models.Comment{ID: "c-1", PostID: post.ID, AuthorID: reader.ID}

	caps := moderation.Capabilities(author, comment, post)
	assert.False(t, caps.Has(moderation.CapabilityModerate))
	assert.False(t, caps.Has(moderation.CapabilityDelete))
}

func TestTransition_AllowedMoves(t *testing.T) {
	_, reader, _, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: "someone"}

	states := []models.CommentState{models.CommentStatePending, models.CommentStateApproved, models.CommentStateRejected}
	for _, from := range states {
		for _, to := range states {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				c := moderation.NewComment("c-1", post, reader, "Hermosas fotos de Salta", now)
				if from != models.CommentStatePending {
					var err error
					c, err = moderation.Transition(c, from, staff, post, "spam", now)
					require.NoError(t, err)
				}

				next, err := moderation.Transition(c, to, staff, post, "contenido inapropiado", now.Add(time.Minute))
				require.NoError(t, err)
				assert.Equal(t, to, next.State)
				require.NoError(t, moderation.CheckInvariants(next))

				switch to {
				case models.CommentStatePending:
					assert.Nil(t, next.ModeratedBy)
					assert.Nil(t, next.ModeratedAt)
					assert.Empty(t, next.RejectionReason)
				case models.CommentStateApproved:
					require.NotNil(t, next.ModeratedBy)
					assert.Equal(t, staff.ID, *next.ModeratedBy)
					assert.Empty(t, next.RejectionReason)
				case models.CommentStateRejected:
					assert.Equal(t, "contenido inapropiado", next.RejectionReason)
					require.NotNil(t, next.ModeratedBy)
				}
			})
		}
	}
}

func TestTransition_RejectWithoutReason(t *testing.T) {
	_, reader, _, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: "someone"}
	c := moderation.NewComment("c-1", post, reader, "Un comentario cualquiera", now)

	for _, reason := range []string{"", "   \n\t"} {
		next, err := moderation.Transition(c, models.CommentStateRejected, staff, post, reason, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, moderation.ErrInvalidTransition))
		assert.Equal(t, c, next)
	}
}

func TestTransition_UnknownTarget(t *testing.T) {
	_, reader, _, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: "someone"}
	c := moderation.NewComment("c-1", post, reader, "Un comentario cualquiera", now)

	_, err := moderation.Transition(c, models.CommentState("aprobado"), staff, post, "", now)
	assert.ErrorIs(t, err, moderation.ErrInvalidTransition)
}

func TestTransition_Unauthorized(t *testing.T) {
	author, reader, _, otherCollaborator, _, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: author.ID}
	c := moderation.NewComment("c-1", post, reader, "Un comentario cualquiera", now)

	for _, actor := range []*models.User{nil, reader, author, otherCollaborator} {
		_, err := moderation.Transition(c, models.CommentStateApproved, actor, post, "", now)
		assert.ErrorIs(t, err, moderation.ErrUnauthorized)
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	_, reader, _, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: "someone"}
	c := moderation.NewComment("c-1", post, reader, "Un comentario cualquiera", now)
	approved, err := moderation.Transition(c, models.CommentStateApproved, staff, post, "", now)
	require.NoError(t, err)

	_, err = moderation.Transition(approved, models.CommentStatePending, staff, post, "", now)
	require.NoError(t, err)

	assert.Equal(t, models.CommentStateApproved, approved.State)
	require.NotNil(t, approved.ModeratedBy)
	assert.Equal(t, staff.ID, *approved.ModeratedBy)
}

func TestTransition_SameStateIsIdempotent(t *testing.T) {
	_, reader, collaborator, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: collaborator.ID}
	c := moderation.NewComment("c-1", post, reader, "Un comentario cualquiera", now)

	approved, err := moderation.Transition(c, models.CommentStateApproved, collaborator, post, "", now)
	require.NoError(t, err)

	again, err := moderation.Transition(approved, models.CommentStateApproved, staff, post, "", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, approved, again)

	pendingAgain, err := moderation.Transition(c, models.CommentStatePending, staff, post, "", now)
	require.NoError(t, err)
	assert.Equal(t, c, pendingAgain)
}

func TestTransition_RejectAgainReplacesReason(t *testing.T) {
	_, reader, _, _, staff, superuser := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: "someone"}
	c := moderation.NewComment("c-1", post, reader, "Un comentario cualquiera", now)

	rejected, err := moderation.Transition(c, models.CommentStateRejected, staff, post, "spam", now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	again, err := moderation.Transition(rejected, models.CommentStateRejected, superuser, post, "lenguaje inapropiado", later)
	require.NoError(t, err)
	assert.Equal(t, "lenguaje inapropiado", again.RejectionReason)
	assert.Equal(t, superuser.ID, *again.ModeratedBy)
	assert.True(t, again.ModeratedAt.Equal(later))
	assert.Equal(t, "spam", rejected.RejectionReason)
}

func TestEdit_ApprovedGoesBackToPending(t *testing.T) {
	_, reader, collaborator, _, _, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: collaborator.ID}
	c := moderation.NewComment("c-1", post, reader, "Primera versión del texto", now)
	approved, err := moderation.Transition(c, models.CommentStateApproved, collaborator, post, "", now)
	require.NoError(t, err)

	edited, err := moderation.Edit(approved, reader, post, "Segunda versión del texto", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.CommentStatePending, edited.State)
	assert.Equal(t, "Segunda versión del texto", edited.Content)
	assert.Nil(t, edited.ModeratedBy)
	assert.Nil(t, edited.ModeratedAt)
	require.NoError(t, moderation.CheckInvariants(edited))
}

func TestEdit_RejectedLosesReason(t *testing.T) {
	_, reader, _, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: "someone"}
	c := moderation.NewComment("c-1", post, reader, "Primera versión del texto", now)
	rejected, err := moderation.Transition(c, models.CommentStateRejected, staff, post, "spam", now)
	require.NoError(t, err)

	edited, err := moderation.Edit(rejected, reader, post, "Texto corregido y amable", now)
	require.NoError(t, err)
	assert.Equal(t, models.CommentStatePending, edited.State)
	assert.Empty(t, edited.RejectionReason)
}

func TestEdit_OnlyAuthor(t *testing.T) {
	_, reader, collaborator, _, staff, _ := fixtures()
	post := &models.Post{ID: "post-1", AuthorID: collaborator.ID}
	c := moderation.NewComment("c-1", post, reader, "Primera versión del texto", now)

	for _, actor := range []*models.User{nil, staff, collaborator} {
		_, err := moderation.Edit(c, actor, post, "Texto ajeno modificado", now)
		assert.ErrorIs(t, err, moderation.ErrUnauthorized)
	}
}

func TestCheckInvariants(t *testing.T) {
	by := "staff"
	at := now

	assert.Error(t, moderation.CheckInvariants(models.Comment{State: models.CommentStateRejected}))
	assert.Error(t, moderation.CheckInvariants(models.Comment{State: models.CommentStateApproved, RejectionReason: "x", ModeratedBy: &by, ModeratedAt: &at}))
	assert.Error(t, moderation.CheckInvariants(models.Comment{State: models.CommentStatePending, ModeratedBy: &by, ModeratedAt: &at}))
	assert.Error(t, moderation.CheckInvariants(models.Comment{State: models.CommentStateApproved, ModeratedBy: &by}))
	assert.Error(t, moderation.CheckInvariants(models.Comment{State: ""}))
	assert.NoError(t, moderation.CheckInvariants(models.Comment{State: models.CommentStateRejected, RejectionReason: "spam", ModeratedBy: &by, ModeratedAt: &at}))
}
