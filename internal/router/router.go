package router

import (
	"net/http"

	"kkmk/internal/handlers"
	"kkmk/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Forum        *handlers.ForumHandler
	Vote         *handlers.VoteHandler
	Notification *handlers.NotificationHandler
	Category     *handlers.CategoryHandler
}

// RegisterRoutes 注册 /api/forum 下的全部路由。
// 调用前需已挂载 sessions 与 middleware.LoadUser。
func RegisterRoutes(r *gin.Engine, h Handlers, limiter *middleware.RateLimiter) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/forum")

	// 公共路由 (Public Routes)
	api.GET("/posts", h.Forum.ListPosts)                    // 帖子列表（含评论、投票）
	api.GET("/posts/:postId", h.Forum.GetPost)              // 单个帖子
	api.GET("/categories", h.Category.List)                 // 分类列表
	api.GET("/user-liked-posts/:userId", h.Vote.LikedPosts) // 用户点赞过的帖子 ID
	api.GET("/user-likes/:userId", h.Vote.LikedComments)    // 用户点赞过的评论 ID
	api.GET("/user-voted-polls/:userId", h.Vote.VotedPolls) // 用户投过票的帖子 ID

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/notifications", h.Notification.List) // 当前用户的通知
	}

	// 写操作额外限流
	mutations := authorized.Group("")
	mutations.Use(limiter.Middleware())
	{
		mutations.POST("/posts", h.Forum.CreatePost)                                  // 发帖（可带图片/投票）
		mutations.PUT("/posts/:postId", h.Forum.UpdatePost)                           // 编辑帖子
		mutations.DELETE("/posts/:postId", h.Forum.DeletePost)                        // 删除帖子（级联）
		mutations.POST("/posts/:postId/comments", h.Forum.AddComment)                 // 发表评论
		mutations.POST("/posts/:postId/like", h.Vote.LikePost)                        // 点赞/取消点赞帖子
		mutations.POST("/posts/:postId/comments/:commentId/like", h.Vote.LikeComment) // 点赞/取消点赞评论
		mutations.POST("/posts/:postId/vote/:optionId", h.Vote.Vote)                  // 投票
	}
}
