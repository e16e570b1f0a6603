package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"kkmk/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ForumHandler struct {
	svc   *services.ForumService
	media services.MediaStore
	log   *zap.Logger
}

func NewForumHandler(svc *services.ForumService, media services.MediaStore, log *zap.Logger) *ForumHandler {
	return &ForumHandler{svc: svc, media: media, log: log}
}

type createPostRequest struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Category string          `json:"category"`
	Type     string          `json:"type"`
	Poll     json.RawMessage `json:"poll"`
}

type updatePostRequest struct {
	Title    *string         `json:"title"`
	Content  *string         `json:"content"`
	Category *string         `json:"category"`
	Poll     json.RawMessage `json:"poll"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListPosts GET /posts?category=&page=&per_page=
func (h *ForumHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))

	posts, err := h.svc.ListPosts(c.Request.Context(), services.ListPostsOptions{
		Category: c.Query("category"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *ForumHandler) GetPost(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	post, err := h.svc.GetPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost 支持 multipart（image 文件 + poll JSON 字符串）和 JSON 两种请求体。
// 图片在校验通过后才保存
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req createPostRequest
	multipartBody := c.ContentType() == gin.MIMEMultipartPOSTForm

	if multipartBody {
		req = createPostRequest{
			Title:    c.PostForm("title"),
			Content:  c.PostForm("content"),
			Category: c.PostForm("category"),
			Type:     c.PostForm("type"),
			Poll:     json.RawMessage(c.PostForm("poll")),
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	poll, err := services.ParsePollPayload(req.Poll)
	if err != nil {
		respondError(c, h.log, err, "Failed to create post")
		return
	}
	in := services.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Type:     req.Type,
		AuthorID: currentUser(c).ID,
		Poll:     poll,
	}
	if err := h.svc.ValidatePost(c.Request.Context(), &in); err != nil {
		respondError(c, h.log, err, "Failed to create post")
		return
	}

	if multipartBody {
		if header, err := c.FormFile("image"); err == nil {
			file, err := header.Open()
			if err != nil {
				badRequest(c, "Failed to read image")
				return
			}
			defer file.Close()

			ref, err := h.media.Save(c.Request.Context(), file, header.Filename)
			if err != nil {
				respondError(c, h.log, err, "Failed to upload image")
				return
			}
			in.ImageURL = &ref
		}
	}

	post, err := h.svc.CreatePost(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err, "Failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *ForumHandler) UpdatePost(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	poll, err := services.ParsePollPayload(req.Poll)
	if err != nil {
		respondError(c, h.log, err, "Failed to update post")
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), postID, currentUser(c).ID, services.UpdatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Poll:     poll,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to update post")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ForumHandler) DeletePost(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), postID, currentUser(c).ID); err != nil {
		respondError(c, h.log, err, "Failed to delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ForumHandler) AddComment(c *gin.Context) {
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), postID, services.AddCommentInput{
		Content:  req.Content,
		AuthorID: currentUser(c).ID,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}
