package server

import (
	"net/http"
	"strings"

	"github.com/abhisek/examprep/internal/lesson"
)

// authenticate reads the bearer token and attaches the caller's identity
// to the request context. The dev server treats the token itself as
// "<role>:<learnerId>".
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "provide Authorization header with Bearer token")
			return
		}
		id, ok := ParseToken(token)
		if !ok {
			s.log.Warn("invalid token", "token", token, "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, "unauthorized", "token must be <role>:<learnerId>")
			return
		}
		next.ServeHTTP(w, r.WithContext(lesson.WithIdentity(r.Context(), id)))
	})
}

// requireRole rejects callers without the given role.
func requireRole(role lesson.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := lesson.IdentityFrom(r.Context())
			if !ok || id.Role != role {
				respondError(w, http.StatusForbidden, "forbidden", "requires role "+string(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(h)
}

// ParseToken splits a dev token into an identity. Role names are
// case-insensitive.
func ParseToken(token string) (lesson.Identity, bool) {
	role, learner, ok := strings.Cut(token, ":")
	if !ok || strings.TrimSpace(learner) == "" {
		return lesson.Identity{}, false
	}
	switch r := lesson.Role(strings.ToUpper(strings.TrimSpace(role))); r {
	case lesson.RoleTeacher, lesson.RoleStudent:
		return lesson.Identity{LearnerID: strings.TrimSpace(learner), Role: r}, true
	}
	return lesson.Identity{}, false
}

// Token formats an identity as a dev token.
func Token(id lesson.Identity) string {
	return strings.ToLower(string(id.Role)) + ":" + id.LearnerID
}
