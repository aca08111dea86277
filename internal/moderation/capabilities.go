package moderation

import (
	"github.com/blog-comment-moderation/internal/models"
)

// Capability is something a viewer may do to a comment
type Capability string

const (
	CapabilityEdit     Capability = "edit"
	CapabilityDelete   Capability = "delete"
	CapabilityModerate Capability = "moderate"
)

// CapabilitySet is the set of capabilities a viewer holds over one comment
type CapabilitySet map[Capability]bool

// Has reports whether the set contains c
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// List returns the capabilities in a stable order
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s))
	for _, c := range []Capability{CapabilityEdit, CapabilityDelete, CapabilityModerate} {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

// CanModeratePost reports whether viewer moderates comments on post: staff and
// superusers everywhere, collaborators only on posts they wrote.
func CanModeratePost(viewer *models.User, post *models.Post) bool {
	if viewer == nil {
		return false
	}
	if viewer.IsStaff || viewer.IsSuperuser {
		return true
	}
	return viewer.IsCollaborator && post != nil && post.AuthorID == viewer.ID
}

// Capabilities resolves what viewer may do with comment c on post. It never fails;
// a missing capability is simply absent from the set.
func Capabilities(viewer *models.User, c *models.Comment, post *models.Post) CapabilitySet {
	set := CapabilitySet{}
	if viewer == nil || c == nil {
		return set
	}

	isAuthor := c.AuthorID == viewer.ID
	if isAuthor {
		set[CapabilityEdit] = true
	}
	if CanModeratePost(viewer, post) {
		set[CapabilityModerate] = true
	}
	if isAuthor || set[CapabilityModerate] {
		set[CapabilityDelete] = true
	}
	return set
}
