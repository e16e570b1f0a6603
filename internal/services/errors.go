package services

import (
	"errors"
	"fmt"
)

// 错误分类：调用方用 errors.Is 判断类别，其余错误一律视为存储故障。
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// forumError 的 Error() 只返回面向用户的消息，Unwrap 指向所属类别
type forumError struct {
	kind error
	msg  string
}

func (e *forumError) Error() string { return e.msg }
func (e *forumError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &forumError{kind: kind, msg: msg}
}

var (
	ErrTitleRequired   = newError(ErrValidation, "Title is required")
	ErrContentRequired = newError(ErrValidation, "Content is required")
	ErrInvalidCategory = newError(ErrValidation, "Unknown category")
	ErrInvalidPostType = newError(ErrValidation, "Post type must be discussion or poll")
	ErrInvalidPoll     = newError(ErrValidation, "Invalid poll")
	ErrProfanity       = newError(ErrValidation, "Your post contains inappropriate language")

	ErrNotPostAuthor = newError(ErrForbidden, "Unauthorized to change this post")

	ErrAlreadyLiked        = newError(ErrConflict, "User already liked this")
	ErrAlreadyLikedPost    = newError(ErrAlreadyLiked, "User already liked this post")
	ErrAlreadyLikedComment = newError(ErrAlreadyLiked, "User already liked this comment")
	ErrAlreadyVoted        = newError(ErrConflict, "User has already voted on this poll")
	ErrPollLocked          = newError(ErrConflict, "Cannot edit poll after votes have been cast")

	ErrPostNotFound    = newError(ErrNotFound, "Post not found")
	ErrCommentNotFound = newError(ErrNotFound, "Comment not found")
	ErrPollNotFound    = newError(ErrNotFound, "Poll not found")
	ErrOptionNotFound  = newError(ErrNotFound, "Poll option not found")
	ErrUserNotFound    = newError(ErrNotFound, "User not found")
)

// invalidPoll 给 ErrInvalidPoll 附加原因
func invalidPoll(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPoll, fmt.Sprintf(format, args...))
}
