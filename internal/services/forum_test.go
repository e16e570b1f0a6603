package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kkmk/internal/db/dbtest"
	"kkmk/internal/models"

	"gorm.io/gorm"
)

type fixture struct {
	svc   *ForumService
	db    *gorm.DB
	alice *models.User
	bob   *models.User
	carol *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	return &fixture{
		svc:   NewForumService(conn, NewWordFilter(), nil),
		db:    conn,
		alice: dbtest.CreateUser(t, conn, "Alice"),
		bob:   dbtest.CreateUser(t, conn, "Bob"),
		carol: dbtest.CreateUser(t, conn, "Carol"),
	}
}

func (f *fixture) discussion(t *testing.T, author *models.User, title string) *models.Post {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), CreatePostInput{
		Title:    title,
		Content:  "Body of " + title,
		AuthorID: author.ID,
	})
	if err != nil {
		t.Fatalf("CreatePost(%q): %v", title, err)
	}
	return post
}

func (f *fixture) poll(t *testing.T, author *models.User, title string, options ...string) *models.Post {
	t.Helper()
	in := &PollInput{}
	for _, o := range options {
		in.Options = append(in.Options, PollOptionInput{Text: o})
	}
	post, err := f.svc.CreatePost(context.Background(), CreatePostInput{
		Title:    title,
		Type:     models.PostTypePoll,
		AuthorID: author.ID,
		Poll:     in,
	})
	if err != nil {
		t.Fatalf("CreatePost(poll %q): %v", title, err)
	}
	return post
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

// checkCounters 计数器必须等于事实表统计
func (f *fixture) checkCounters(t *testing.T) {
	t.Helper()

	var posts []models.Post
	f.db.Find(&posts)
	for _, p := range posts {
		if n := f.count(t, &models.PostLike{}, "post_id = ?", p.ID); int64(p.Likes) != n {
			t.Errorf("post %d likes = %d, fact rows = %d", p.ID, p.Likes, n)
		}
	}

	var comments []models.Comment
	f.db.Find(&comments)
	for _, c := range comments {
		if n := f.count(t, &models.CommentLike{}, "comment_id = ?", c.ID); int64(c.Likes) != n {
			t.Errorf("comment %d likes = %d, fact rows = %d", c.ID, c.Likes, n)
		}
	}

	var polls []models.Poll
	f.db.Preload("Options").Find(&polls)
	for _, p := range polls {
		sum := 0
		for _, o := range p.Options {
			sum += o.Votes
			if n := f.count(t, &models.PollVote{}, "option_id = ?", o.ID); int64(o.Votes) != n {
				t.Errorf("option %d votes = %d, fact rows = %d", o.ID, o.Votes, n)
			}
		}
		n := f.count(t, &models.PollVote{}, "poll_id = ?", p.ID)
		if p.TotalVotes != sum || int64(p.TotalVotes) != n {
			t.Errorf("poll %d total_votes = %d, sum(options) = %d, fact rows = %d", p.ID, p.TotalVotes, sum, n)
		}
	}
}

func TestCreateDiscussionPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, CreatePostInput{
		Title:    "  Welcome  ",
		Content:  "Hello **everyone**",
		Category: "announcements",
		AuthorID: f.alice.ID,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if post.ID == 0 || post.Title != "Welcome" {
		t.Errorf("Unexpected post %+v", post)
	}
	if post.Category != "Announcements" {
		t.Errorf("Expected canonical category Announcements, got %q", post.Category)
	}
	if post.Type != models.PostTypeDiscussion || post.Likes != 0 || post.Poll != nil {
		t.Errorf("Expected a fresh discussion, got type=%s likes=%d poll=%v", post.Type, post.Likes, post.Poll)
	}
	if post.AuthorName != "Alice" || post.AuthorAvatar != f.alice.ProfilePhoto {
		t.Errorf("Expected author snapshot, got %q %q", post.AuthorName, post.AuthorAvatar)
	}
	if post.Comments == nil || len(post.Comments) != 0 {
		t.Errorf("Expected empty comments slice, got %v", post.Comments)
	}
	if post.ContentHTML == "" {
		t.Errorf("Expected rendered content")
	}

	defaulted := f.discussion(t, f.bob, "No category")
	if defaulted.Category != DefaultCategory {
		t.Errorf("Expected default category, got %q", defaulted.Category)
	}
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreatePostInput
		want error
	}{
		{"missing title", CreatePostInput{Content: "x", AuthorID: f.alice.ID}, ErrTitleRequired},
		{"missing content", CreatePostInput{Title: "x", AuthorID: f.alice.ID}, ErrContentRequired},
		{"unknown type", CreatePostInput{Title: "x", Content: "y", Type: "survey", AuthorID: f.alice.ID}, ErrInvalidPostType},
		{"unknown category", CreatePostInput{Title: "x", Content: "y", Category: "Memes", AuthorID: f.alice.ID}, ErrInvalidCategory},
		{"unknown author", CreatePostInput{Title: "x", Content: "y", AuthorID: 999}, ErrUserNotFound},
		{"profane title", CreatePostInput{Title: "what the fuck", Content: "y", AuthorID: f.alice.ID}, ErrProfanity},
		{"poll without payload", CreatePostInput{Title: "x", Type: models.PostTypePoll, AuthorID: f.alice.ID}, ErrInvalidPoll},
		{"poll with one option", CreatePostInput{
			Title: "x", Type: models.PostTypePoll, AuthorID: f.alice.ID,
			Poll: &PollInput{Options: []PollOptionInput{{Text: "Only"}, {Text: "   "}}},
		}, ErrInvalidPoll},
		{"profane option", CreatePostInput{
			Title: "x", Type: models.PostTypePoll, AuthorID: f.alice.ID,
			Poll: &PollInput{Options: []PollOptionInput{{Text: "fine"}, {Text: "shit"}}},
		}, ErrProfanity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreatePost(ctx, tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, err)
			}
			if tc.want != ErrUserNotFound && !errors.Is(err, ErrValidation) {
				t.Errorf("Expected a validation failure, got %v", err)
			}
		})
	}

	for _, model := range []any{&models.Post{}, &models.Poll{}, &models.PollOption{}} {
		if n := f.count(t, model, ""); n != 0 {
			t.Errorf("Expected no %T rows after rejected creates, got %d", model, n)
		}
	}
}

func TestCreatePollPost(t *testing.T) {
	f := newFixture(t)

	post := f.poll(t, f.alice, "Best fruit?", "Apple", " Banana ", "")
	if post.Poll == nil {
		t.Fatalf("Expected poll on post")
	}
	if post.Poll.Question != "Best fruit?" {
		t.Errorf("Expected question to fall back to the title, got %q", post.Poll.Question)
	}
	if post.Poll.TotalVotes != 0 || len(post.Poll.Options) != 2 {
		t.Fatalf("Expected 2 zero-vote options, got %+v", post.Poll)
	}
	if post.Poll.Options[1].Text != "Banana" || post.Poll.Options[1].Votes != 0 {
		t.Errorf("Unexpected option %+v", post.Poll.Options[1])
	}
	if n := f.count(t, &models.PollOption{}, "poll_id = ?", post.Poll.ID); n != 2 {
		t.Errorf("Expected 2 stored options, got %d", n)
	}
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.discussion(t, f.alice, "Hello")

	comment, err := f.svc.AddComment(ctx, post.ID, AddCommentInput{Content: "Nice post", AuthorID: f.bob.ID})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.Likes != 0 || comment.AuthorName != "Bob" || comment.PostID != post.ID {
		t.Errorf("Unexpected comment %+v", comment)
	}

	var notes []models.Notification
	f.db.Where("user_id = ?", f.alice.ID).Find(&notes)
	if len(notes) != 1 {
		t.Fatalf("Expected 1 notification for the author, got %d", len(notes))
	}
	n := notes[0]
	if n.Type != models.NotificationTypeNewComment || n.Content != "Bob commented on your post" ||
		n.RelatedID != post.ID || n.ActorID != f.bob.ID || n.ActorName != "Bob" {
		t.Errorf("Unexpected notification %+v", n)
	}

	// 自己评论自己的帖子不产生通知
	if _, err := f.svc.AddComment(ctx, post.ID, AddCommentInput{Content: "Thanks", AuthorID: f.alice.ID}); err != nil {
		t.Fatalf("AddComment self: %v", err)
	}
	if got := f.count(t, &models.Notification{}, ""); got != 1 {
		t.Errorf("Expected no self-notification, got %d notifications", got)
	}

	_, err = f.svc.AddComment(ctx, 999, AddCommentInput{Content: "Hello?", AuthorID: f.bob.ID})
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got %v", err)
	}
	if got := f.count(t, &models.Comment{}, ""); got != 2 {
		t.Errorf("Expected 2 comments, got %d", got)
	}
}

func TestTogglePostLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.discussion(t, f.alice, "Hello")

	liked, err := f.svc.TogglePostLike(ctx, post.ID, f.bob.ID, true)
	if err != nil {
		t.Fatalf("TogglePostLike: %v", err)
	}
	if liked.Likes != 1 {
		t.Errorf("Expected 1 like, got %d", liked.Likes)
	}

	_, err = f.svc.TogglePostLike(ctx, post.ID, f.bob.ID, true)
	if !errors.Is(err, ErrAlreadyLiked) || !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrAlreadyLiked conflict, got %v", err)
	}
	if err.Error() != "User already liked this post" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	var notes []models.Notification
	f.db.Where("type = ?", models.NotificationTypePostLike).Find(&notes)
	if len(notes) != 1 {
		t.Fatalf("Expected exactly 1 like notification, got %d", len(notes))
	}
	if notes[0].Content != `Bob liked your post "Hello"` || notes[0].UserID != f.alice.ID {
		t.Errorf("Unexpected notification %+v", notes[0])
	}

	// 作者给自己点赞：计数增加但不通知
	if liked, err = f.svc.TogglePostLike(ctx, post.ID, f.alice.ID, true); err != nil {
		t.Fatalf("self like: %v", err)
	}
	if liked.Likes != 2 {
		t.Errorf("Expected 2 likes, got %d", liked.Likes)
	}
	if got := f.count(t, &models.Notification{}, ""); got != 1 {
		t.Errorf("Expected no self-notification, got %d", got)
	}

	for i := 0; i < 2; i++ {
		unliked, err := f.svc.TogglePostLike(ctx, post.ID, f.bob.ID, false)
		if err != nil {
			t.Fatalf("unlike #%d: %v", i+1, err)
		}
		if unliked.Likes != 1 {
			t.Errorf("unlike #%d: expected 1 like, got %d", i+1, unliked.Likes)
		}
	}

	_, err = f.svc.TogglePostLike(ctx, 999, f.bob.ID, true)
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got %v", err)
	}
	f.checkCounters(t)
}

func TestToggleCommentLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.discussion(t, f.alice, "Hello")
	other := f.discussion(t, f.alice, "Other")
	comment, err := f.svc.AddComment(ctx, post.ID, AddCommentInput{Content: "First", AuthorID: f.bob.ID})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	liked, err := f.svc.ToggleCommentLike(ctx, post.ID, comment.ID, f.carol.ID, true)
	if err != nil {
		t.Fatalf("ToggleCommentLike: %v", err)
	}
	if liked.Likes != 1 || liked.AuthorName != "Bob" {
		t.Errorf("Unexpected comment %+v", liked)
	}

	var n models.Notification
	if err := f.db.Where("type = ?", models.NotificationTypeCommentLike).First(&n).Error; err != nil {
		t.Fatalf("Expected a comment like notification: %v", err)
	}
	if n.UserID != f.bob.ID || n.RelatedID != post.ID || n.Content != `Carol liked your comment on "Hello"` {
		t.Errorf("Unexpected notification %+v", n)
	}

	_, err = f.svc.ToggleCommentLike(ctx, post.ID, comment.ID, f.carol.ID, true)
	if !errors.Is(err, ErrAlreadyLikedComment) {
		t.Errorf("Expected ErrAlreadyLikedComment, got %v", err)
	}

	_, err = f.svc.ToggleCommentLike(ctx, other.ID, comment.ID, f.carol.ID, true)
	if !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("Expected ErrCommentNotFound for a comment on another post, got %v", err)
	}

	unliked, err := f.svc.ToggleCommentLike(ctx, post.ID, comment.ID, f.carol.ID, false)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.Likes != 0 {
		t.Errorf("Expected 0 likes, got %d", unliked.Likes)
	}
	f.checkCounters(t)
}

func TestCastPollVote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.poll(t, f.alice, "Best fruit?", "Apple", "Banana")
	apple, banana := post.Poll.Options[0], post.Poll.Options[1]

	poll, err := f.svc.CastPollVote(ctx, post.ID, apple.ID, f.bob.ID)
	if err != nil {
		t.Fatalf("CastPollVote: %v", err)
	}
	if poll.TotalVotes != 1 || poll.Options[0].Votes != 1 || poll.Options[1].Votes != 0 {
		t.Errorf("Unexpected poll after vote %+v", poll)
	}

	_, err = f.svc.CastPollVote(ctx, post.ID, banana.ID, f.bob.ID)
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("Expected ErrAlreadyVoted, got %v", err)
	}

	if poll, err = f.svc.CastPollVote(ctx, post.ID, banana.ID, f.carol.ID); err != nil {
		t.Fatalf("second voter: %v", err)
	}
	if poll.TotalVotes != 2 {
		t.Errorf("Expected 2 votes, got %d", poll.TotalVotes)
	}

	otherPoll := f.poll(t, f.alice, "Best color?", "Red", "Blue")
	_, err = f.svc.CastPollVote(ctx, post.ID, otherPoll.Poll.Options[0].ID, f.alice.ID)
	if !errors.Is(err, ErrOptionNotFound) {
		t.Errorf("Expected ErrOptionNotFound for a foreign option, got %v", err)
	}

	discussion := f.discussion(t, f.alice, "Not a poll")
	_, err = f.svc.CastPollVote(ctx, discussion.ID, apple.ID, f.alice.ID)
	if !errors.Is(err, ErrPollNotFound) {
		t.Errorf("Expected ErrPollNotFound, got %v", err)
	}
	f.checkCounters(t)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.discussion(t, f.alice, "Draft")
	title, category := "Final", "questions"

	_, err := f.svc.UpdatePost(ctx, post.ID, f.bob.ID, UpdatePostInput{Title: &title})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
	_, err = f.svc.UpdatePost(ctx, 999, f.alice.ID, UpdatePostInput{Title: &title})
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("Expected ErrPostNotFound, got %v", err)
	}

	updated, err := f.svc.UpdatePost(ctx, post.ID, f.alice.ID, UpdatePostInput{Title: &title, Category: &category})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.Title != "Final" || updated.Category != "Questions" || updated.Content != post.Content {
		t.Errorf("Unexpected post after update %+v", updated)
	}

	empty := " "
	_, err = f.svc.UpdatePost(ctx, post.ID, f.alice.ID, UpdatePostInput{Content: &empty})
	if !errors.Is(err, ErrContentRequired) {
		t.Errorf("Expected ErrContentRequired, got %v", err)
	}

	// 讨论帖不能带投票数据
	renamed := "Renamed"
	_, err = f.svc.UpdatePost(ctx, post.ID, f.alice.ID, UpdatePostInput{
		Title: &renamed,
		Poll:  &PollInput{Options: []PollOptionInput{{ID: 99, Text: "Nope"}}},
	})
	if !errors.Is(err, ErrInvalidPoll) {
		t.Errorf("Expected ErrInvalidPoll for a discussion post, got %v", err)
	}
	stored, err := f.svc.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if stored.Title != "Final" || stored.Poll != nil {
		t.Errorf("Expected discussion post unchanged, got title %q poll %+v", stored.Title, stored.Poll)
	}
}

func TestUpdatePollLockedAfterVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.poll(t, f.alice, "Best fruit?", "Apple", "Banana")
	apple, banana := post.Poll.Options[0], post.Poll.Options[1]

	// 无人投票时可以改问题和选项
	updated, err := f.svc.UpdatePost(ctx, post.ID, f.alice.ID, UpdatePostInput{Poll: &PollInput{
		Question: "Favourite fruit?",
		Options:  []PollOptionInput{{ID: apple.ID, Text: "Green apple"}},
	}})
	if err != nil {
		t.Fatalf("UpdatePost before votes: %v", err)
	}
	if updated.Poll.Question != "Favourite fruit?" || updated.Poll.Options[0].Text != "Green apple" {
		t.Errorf("Unexpected poll %+v", updated.Poll)
	}

	if _, err := f.svc.CastPollVote(ctx, post.ID, apple.ID, f.bob.ID); err != nil {
		t.Fatalf("CastPollVote: %v", err)
	}

	title := "Renamed"
	_, err = f.svc.UpdatePost(ctx, post.ID, f.alice.ID, UpdatePostInput{
		Title: &title,
		Poll:  &PollInput{Question: "Something else?"},
	})
	if !errors.Is(err, ErrPollLocked) {
		t.Fatalf("Expected ErrPollLocked for question change, got %v", err)
	}

	_, err = f.svc.UpdatePost(ctx, post.ID, f.alice.ID, UpdatePostInput{Poll: &PollInput{
		Options: []PollOptionInput{{ID: apple.ID, Text: "Red apple"}},
	}})
	if !errors.Is(err, ErrPollLocked) {
		t.Fatalf("Expected ErrPollLocked for a voted option, got %v", err)
	}

	// 零票选项仍可修改
	updated, err = f.svc.UpdatePost(ctx, post.ID, f.alice.ID, UpdatePostInput{Poll: &PollInput{
		Options: []PollOptionInput{{ID: banana.ID, Text: "Ripe banana"}},
	}})
	if err != nil {
		t.Fatalf("UpdatePost zero-vote option: %v", err)
	}
	if updated.Poll.Options[1].Text != "Ripe banana" {
		t.Errorf("Expected zero-vote option to change, got %q", updated.Poll.Options[1].Text)
	}

	stored, err := f.svc.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if stored.Title != "Best fruit?" {
		t.Errorf("Expected rejected update to roll back the title, got %q", stored.Title)
	}
	if stored.Poll.Question != "Favourite fruit?" || stored.Poll.Options[0].Text != "Green apple" {
		t.Errorf("Expected voted poll unchanged, got %+v", stored.Poll)
	}
	f.checkCounters(t)
}

func TestDeletePostCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.poll(t, f.alice, "Best fruit?", "Apple", "Banana")
	keep := f.discussion(t, f.bob, "Keep me")
	comment, err := f.svc.AddComment(ctx, post.ID, AddCommentInput{Content: "Apple!", AuthorID: f.bob.ID})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := f.svc.ToggleCommentLike(ctx, post.ID, comment.ID, f.carol.ID, true); err != nil {
		t.Fatalf("ToggleCommentLike: %v", err)
	}
	if _, err := f.svc.TogglePostLike(ctx, post.ID, f.bob.ID, true); err != nil {
		t.Fatalf("TogglePostLike: %v", err)
	}
	if _, err := f.svc.TogglePostLike(ctx, keep.ID, f.alice.ID, true); err != nil {
		t.Fatalf("TogglePostLike: %v", err)
	}
	if _, err := f.svc.CastPollVote(ctx, post.ID, post.Poll.Options[0].ID, f.carol.ID); err != nil {
		t.Fatalf("CastPollVote: %v", err)
	}
	notes := f.count(t, &models.Notification{}, "")

	if err := f.svc.DeletePost(ctx, post.ID, f.bob.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
	if n := f.count(t, &models.PostLike{}, "post_id = ?", post.ID); n != 1 {
		t.Fatalf("Expected rejected delete to leave likes intact, got %d", n)
	}

	if err := f.svc.DeletePost(ctx, post.ID, f.alice.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	checks := []struct {
		model any
		want  int64
	}{
		{&models.Post{}, 1},
		{&models.PostLike{}, 1},
		{&models.Comment{}, 0},
		{&models.CommentLike{}, 0},
		{&models.Poll{}, 0},
		{&models.PollOption{}, 0},
		{&models.PollVote{}, 0},
	}
	for _, c := range checks {
		if n := f.count(t, c.model, ""); n != c.want {
			t.Errorf("%T: expected %d rows, got %d", c.model, c.want, n)
		}
	}
	if n := f.count(t, &models.Notification{}, ""); n != notes {
		t.Errorf("Expected notifications to be kept, got %d want %d", n, notes)
	}

	if err := f.svc.DeletePost(ctx, post.ID, f.alice.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound on second delete, got %v", err)
	}
	f.checkCounters(t)
}

// failInserts 让指定表的 INSERT 在事务中途失败
func failInserts(t *testing.T, conn *gorm.DB, table string) {
	t.Helper()
	err := conn.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errors.New("insert into " + table + " refused"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func TestCreatePollRollsBackOnOptionFailure(t *testing.T) {
	f := newFixture(t)
	failInserts(t, f.db, "forum_poll_options")

	_, err := f.svc.CreatePost(context.Background(), CreatePostInput{
		Title:    "Best fruit?",
		Type:     models.PostTypePoll,
		AuthorID: f.alice.ID,
		Poll:     &PollInput{Options: []PollOptionInput{{Text: "Apple"}, {Text: "Banana"}}},
	})
	if err == nil {
		t.Fatal("Expected option insert failure to surface")
	}
	if n := f.count(t, &models.Post{}, ""); n != 0 {
		t.Errorf("Expected no posts after rollback, got %d", n)
	}
	if n := f.count(t, &models.Poll{}, ""); n != 0 {
		t.Errorf("Expected no polls after rollback, got %d", n)
	}
	if n := f.count(t, &models.PollOption{}, ""); n != 0 {
		t.Errorf("Expected no poll options after rollback, got %d", n)
	}
}

func TestNotificationFailureRollsBackCause(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.discussion(t, f.alice, "Hello")
	comment, err := f.svc.AddComment(ctx, post.ID, AddCommentInput{Content: "Mine", AuthorID: f.alice.ID})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	failInserts(t, f.db, "notifications")

	if _, err := f.svc.AddComment(ctx, post.ID, AddCommentInput{Content: "Hi", AuthorID: f.bob.ID}); err == nil {
		t.Error("Expected AddComment to fail when its notification cannot be written")
	}
	if _, err := f.svc.TogglePostLike(ctx, post.ID, f.bob.ID, true); err == nil {
		t.Error("Expected TogglePostLike to fail when its notification cannot be written")
	}
	if _, err := f.svc.ToggleCommentLike(ctx, post.ID, comment.ID, f.bob.ID, true); err == nil {
		t.Error("Expected ToggleCommentLike to fail when its notification cannot be written")
	}

	if n := f.count(t, &models.Comment{}, ""); n != 1 {
		t.Errorf("Expected only the author's own comment, got %d comments", n)
	}
	if n := f.count(t, &models.PostLike{}, ""); n != 0 {
		t.Errorf("Expected no post likes after rollback, got %d", n)
	}
	if n := f.count(t, &models.CommentLike{}, ""); n != 0 {
		t.Errorf("Expected no comment likes after rollback, got %d", n)
	}
	if n := f.count(t, &models.Notification{}, ""); n != 0 {
		t.Errorf("Expected no notifications, got %d", n)
	}
	f.checkCounters(t)
}

func TestProfanityWithPunctuationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePost(ctx, CreatePostInput{Title: "What the shit!", Content: "fine", AuthorID: f.alice.ID})
	if !errors.Is(err, ErrProfanity) {
		t.Errorf("Expected ErrProfanity for title, got %v", err)
	}
	_, err = f.svc.CreatePost(ctx, CreatePostInput{Title: "Fine", Content: "fuck!", AuthorID: f.alice.ID})
	if !errors.Is(err, ErrProfanity) {
		t.Errorf("Expected ErrProfanity for content, got %v", err)
	}
	if n := f.count(t, &models.Post{}, ""); n != 0 {
		t.Fatalf("Expected no posts stored, got %d", n)
	}

	post := f.discussion(t, f.alice, "Clean")
	_, err = f.svc.AddComment(ctx, post.ID, AddCommentInput{Content: "bullshit!", AuthorID: f.bob.ID})
	if !errors.Is(err, ErrProfanity) {
		t.Errorf("Expected ErrProfanity for comment, got %v", err)
	}
	if n := f.count(t, &models.Comment{}, ""); n != 0 {
		t.Errorf("Expected no comments stored, got %d", n)
	}
	if err != nil && !strings.Contains(err.Error(), "inappropriate") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
