package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lyrics-service/internal/api/dto"
	"github.com/spec-kit/lyrics-service/internal/auth"
	"github.com/spec-kit/lyrics-service/internal/domain"
	"github.com/spec-kit/lyrics-service/internal/service"
	apperrors "github.com/spec-kit/lyrics-service/pkg/util"
)

// CommentsHandler exposes lyric and track comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// ListLyricComments handles GET /api/lyriccomments/:trackId/:lyricId.
func (h *CommentsHandler) ListLyricComments(c *fiber.Ctx) error {
	comments, err := h.comments.ListLyricComments(c.Context(), c.Params("trackId"), c.Params("lyricId"))
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := make([]dto.LyricCommentResponse, 0, len(comments))
	for _, comment := range comments {
		resp = append(resp, lyricCommentResponse(comment))
	}
	return c.JSON(fiber.Map{"comments": resp})
}

// PostLyricComment handles POST /api/postlyriccomments (protected).
func (h *CommentsHandler) PostLyricComment(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token provided")
	}

	var req dto.LyricCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	comment, err := h.comments.AddLyricComment(c.Context(), userID, req.TrackID, req.LyricID, req.CommentText)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(lyricCommentResponse(domain.LyricCommentWithAuthor{LyricComment: *comment}))
}

// ListTrackComments handles GET /api/trackcomments/:trackId.
func (h *CommentsHandler) ListTrackComments(c *fiber.Ctx) error {
	comments, err := h.comments.ListTrackComments(c.Context(), c.Params("trackId"))
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := make([]dto.TrackCommentResponse, 0, len(comments))
	for _, comment := range comments {
		resp = append(resp, trackCommentResponse(comment))
	}
	return c.JSON(resp)
}

// PostTrackComment handles POST /api/trackcomments (protected).
func (h *CommentsHandler) PostTrackComment(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token provided")
	}

	var req dto.TrackCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	comment, err := h.comments.AddTrackComment(c.Context(), userID, req.TrackID, req.CommentText)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(trackCommentResponse(*comment))
}

func lyricCommentResponse(comment domain.LyricCommentWithAuthor) dto.LyricCommentResponse {
	return dto.LyricCommentResponse{
		ID:        comment.ID,
		TrackID:   comment.TrackID,
		LyricID:   comment.LyricID,
		UserID:    comment.UserID,
		Username:  comment.Username,
		Comment:   comment.Body,
		Likes:     comment.Likes,
		CreatedAt: comment.CreatedAt,
	}
}

func trackCommentResponse(comment domain.TrackComment) dto.TrackCommentResponse {
	return dto.TrackCommentResponse{
		ID:        comment.ID,
		TrackID:   comment.TrackID,
		UserID:    comment.UserID,
		Comment:   comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}
