package api

import (
	"net/http"

	"github.com/glossaryhq/glossary/pkg/httputil"
	"github.com/glossaryhq/glossary/pkg/observability"
)

// listLikes handles GET /api/v1/glossary/{id}/likes. An entry with no
// likes, or an unknown entry, yields an empty list.
func (s *Server) listLikes(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	likes, err := s.store.ListLikes(r.Context(), id)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	httputil.WriteList(w, likes, len(likes))
}

// addLike handles POST /api/v1/glossary/{id}/likes. Liking an entry that
// does not exist is a 409.
func (s *Server) addLike(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	who := httputil.AuthenticatedUser(r)
	like, err := s.store.AddLike(r.Context(), id, who)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.LikesAddedTotal.Inc()
	}
	observability.FromContext(r.Context()).
		WithField("glossary_id", id).
		WithField("like_id", like.ID).
		Info("like added")
	httputil.WriteJSON(w, http.StatusOK, like)
}

// removeLike handles DELETE /api/v1/glossary/{id}/likes. Without a like id
// the most recently created like is removed; removing from an entry with
// no likes is still a success.
func (s *Server) removeLike(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.RemoveOneLike(r.Context(), id, nil); err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.LikesRemovedTotal.Inc()
	}
	httputil.WriteMessage(w, "ok")
}

// removeLikeByID handles DELETE /api/v1/glossary/{id}/likes/{likeID}
func (s *Server) removeLikeByID(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}
	likeID, ok := httputil.ParsePathUUIDOrError(w, r, "likeID")
	if !ok {
		return
	}

	if err := s.store.RemoveOneLike(r.Context(), id, &likeID); err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.LikesRemovedTotal.Inc()
	}
	httputil.WriteMessage(w, "ok")
}
