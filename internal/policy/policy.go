// Package policy decides who may mutate which content. Decisions are plain
// booleans; callers turn a denial into a redirect.
package policy

import (
	"net/url"
	"strings"

	"inkwell/internal/models"
)

// LoginPath is where anonymous requesters are sent for auth-required actions.
const LoginPath = "/auth/login/"

// CanEdit reports whether identity may edit post. Only the author may.
func CanEdit(identity models.Identity, post *models.Post) bool {
	return post != nil && identity.Authenticated && identity.UserID == post.AuthorID
}

// CanCreatePost reports whether identity may publish a post.
func CanCreatePost(identity models.Identity) bool {
	return identity.Authenticated
}

// CanComment reports whether identity may comment on a post.
func CanComment(identity models.Identity) bool {
	return identity.Authenticated
}

// CanFollow reports whether identity may follow author. Users never follow themselves.
func CanFollow(identity models.Identity, author *models.User) bool {
	return author != nil && identity.Authenticated && identity.UserID != author.ID
}

// LoginURL returns the login redirect that resumes at path afterwards.
func LoginURL(path string) string {
	next := strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
	return LoginPath + "?next=" + next
}

// ProfilePath returns the profile page of username.
func ProfilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// EditDeniedRedirect is where a requester lands after trying to edit a post
// they do not own: their own profile.
func EditDeniedRedirect(identity models.Identity) string {
	if !identity.Authenticated {
		return LoginPath
	}
	return ProfilePath(identity.Username)
}
