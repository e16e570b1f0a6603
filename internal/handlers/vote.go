package handlers

import (
	"context"
	"net/http"

	"kkmk/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VoteHandler 点赞与投票
type VoteHandler struct {
	svc *services.ForumService
	log *zap.Logger
}

func NewVoteHandler(svc *services.ForumService, log *zap.Logger) *VoteHandler {
	return &VoteHandler{svc: svc, log: log}
}

// 缺省 increment 视为点赞
type likeRequest struct {
	Increment *bool `json:"increment"`
}

func (r likeRequest) increment() bool {
	return r.Increment == nil || *r.Increment
}

// LikePost POST /posts/:postId/like
func (h *VoteHandler) LikePost(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	var req likeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	post, err := h.svc.TogglePostLike(c.Request.Context(), postID, currentUser(c).ID, req.increment())
	if err != nil {
		respondError(c, h.log, err, "Failed to update post like")
		return
	}
	c.JSON(http.StatusOK, post)
}

// LikeComment POST /posts/:postId/comments/:commentId/like
func (h *VoteHandler) LikeComment(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	var req likeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	comment, err := h.svc.ToggleCommentLike(c.Request.Context(), postID, commentID, currentUser(c).ID, req.increment())
	if err != nil {
		respondError(c, h.log, err, "Failed to update comment like")
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Vote POST /posts/:postId/vote/:optionId
func (h *VoteHandler) Vote(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	optionID, ok := paramID(c, "optionId")
	if !ok {
		return
	}

	poll, err := h.svc.CastPollVote(c.Request.Context(), postID, optionID, currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err, "Failed to record vote")
		return
	}
	c.JSON(http.StatusOK, poll)
}

func (h *VoteHandler) LikedPosts(c *gin.Context) {
	h.listIDs(c, h.svc.LikedPostIDs, "Failed to fetch liked posts")
}

func (h *VoteHandler) LikedComments(c *gin.Context) {
	h.listIDs(c, h.svc.LikedCommentIDs, "Failed to fetch liked comments")
}

func (h *VoteHandler) VotedPolls(c *gin.Context) {
	h.listIDs(c, h.svc.VotedPollPostIDs, "Failed to fetch voted polls")
}

// listIDs GET /user-*/:userId 返回 ID 数组
func (h *VoteHandler) listIDs(c *gin.Context, fetch func(context.Context, uint) ([]uint, error), fallback string) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	ids, err := fetch(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, fallback)
		return
	}
	c.JSON(http.StatusOK, ids)
}
