package service

import (
	"context"
	"sync"
	"testing"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forumFixture struct {
	posts    *PostService
	comments *CommentService
	likes    *LikeService
	postRepo *fakePostRepo
	likeRepo *fakeLikeRepo
}

func newForumFixture() *forumFixture {
	postRepo := newFakePostRepo()
	likeRepo := newFakeLikeRepo()
	postRepo.likes = likeRepo
	commentRepo := newFakeCommentRepo()
	return &forumFixture{
		posts:    NewPostService(postRepo, nopLog),
		comments: NewCommentService(commentRepo, postRepo, fakeTx{}, nopLog),
		likes:    NewLikeService(likeRepo, postRepo, fakeTx{}),
		postRepo: postRepo,
		likeRepo: likeRepo,
	}
}

func (f *forumFixture) newPost(t *testing.T, author int64) *model.PostPayload {
	t.Helper()
	p, err := f.posts.CreatePost(context.Background(), author, CreatePostRequest{
		Title: "Which section of CS101?", Content: "Morning or evening?", Tags: []string{"cs", "cs", " intro "},
	})
	require.NoError(t, err)
	return p
}

func (f *forumFixture) reply(t *testing.T, author int64, postID string, parent *string) *model.CommentPayload {
	t.Helper()
	c, err := f.comments.CreateComment(context.Background(), author, CreateCommentRequest{PostID: postID, Content: "hi", ParentID: parent})
	require.NoError(t, err)
	return c
}

func TestCreatePost(t *testing.T) {
	f := newForumFixture()
	p := f.newPost(t, 7)
	assert.Equal(t, "7", p.Author.ID)
	assert.Equal(t, []string{"cs", "intro"}, p.Tags)
	assert.Contains(t, p.Slug, "which-section-of-cs101")
	assert.Zero(t, p.Likes)

	_, err := f.posts.CreatePost(context.Background(), 7, CreatePostRequest{Title: "  ", Content: "x"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPostAuthorOnlyMutations(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	p := f.newPost(t, 1)

	title := "edited"
	_, err := f.posts.UpdatePost(ctx, 2, p.ID, UpdatePostRequest{Title: &title})
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.ErrorIs(t, f.posts.DeletePost(ctx, 2, p.ID), common.ErrForbidden)

	updated, err := f.posts.UpdatePost(ctx, 1, p.ID, UpdatePostRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Title)

	require.NoError(t, f.posts.DeletePost(ctx, 1, p.ID))
	_, err = f.posts.GetPost(ctx, p.ID, 0)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.posts.GetPost(ctx, "not-a-uuid", 0)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCommentThreadRootAtAnyDepth(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	post := f.newPost(t, 1)

	root := f.reply(t, 1, post.ID, nil)
	assert.Nil(t, root.MainCommentID)
	assert.Nil(t, root.ParentID)

	a := f.reply(t, 2, post.ID, &root.ID)
	b := f.reply(t, 3, post.ID, &a.ID)

	for _, c := range []*model.CommentPayload{a, b} {
		require.NotNil(t, c.MainCommentID)
		assert.Equal(t, root.ID, *c.MainCommentID)
	}
	require.NotNil(t, b.ParentID)
	assert.Equal(t, a.ID, *b.ParentID)
	require.NotNil(t, b.ReplyToUser)
	assert.Equal(t, "2", b.ReplyToUser.ID)

	size, err := f.comments.ThreadSize(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, size.RootID)
	assert.Equal(t, 2, size.ThreadSize)

	fromLeaf, err := f.comments.ThreadSize(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, size, fromLeaf)

	_, err = f.comments.ThreadSize(ctx, uuid.NewString())
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.comments.ThreadSize(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := f.comments.GetComment(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RepliesCount)
}

func TestCommentParentMustShareThePost(t *testing.T) {
	f := newForumFixture()
	p1 := f.newPost(t, 1)
	p2 := f.newPost(t, 1)
	foreign := f.reply(t, 1, p2.ID, nil)

	_, err := f.comments.CreateComment(context.Background(), 1, CreateCommentRequest{PostID: p1.ID, Content: "x", ParentID: &foreign.ID})
	assert.ErrorIs(t, err, common.ErrParentNotFound)
	assert.ErrorIs(t, err, common.ErrNotFound)

	missing := "7f0c2b0e-7c57-4d8e-8d2c-3d1f1e2a9b10"
	_, err = f.comments.CreateComment(context.Background(), 1, CreateCommentRequest{PostID: p1.ID, Content: "x", ParentID: &missing})
	assert.ErrorIs(t, err, common.ErrParentNotFound)

	_, err = f.comments.CreateComment(context.Background(), 1, CreateCommentRequest{PostID: missing, Content: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListCommentsFilters(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	post := f.newPost(t, 1)
	root := f.reply(t, 1, post.ID, nil)
	f.reply(t, 2, post.ID, &root.ID)
	other := f.reply(t, 3, post.ID, nil)

	page := common.NewPagination(1, 0, 12, 100)
	isMain := true
	mains, err := f.comments.ListComments(ctx, model.CommentFilter{PostID: post.ID, OnlyMain: &isMain}, page)
	require.NoError(t, err)
	require.Equal(t, 2, mains.Count)
	assert.Equal(t, other.ID, mains.Results[0].ID, "newest first")

	replies, err := f.comments.ListComments(ctx, model.CommentFilter{MainCommentID: root.ID}, page)
	require.NoError(t, err)
	assert.Equal(t, 1, replies.Count)

	_, err = f.comments.ListComments(ctx, model.CommentFilter{PostID: "abc"}, page)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCommentAuthorOnlyAndSoftDelete(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	post := f.newPost(t, 1)
	c := f.reply(t, 5, post.ID, nil)

	_, err := f.comments.UpdateComment(ctx, 6, c.ID, UpdateCommentRequest{Content: "hijack"})
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.ErrorIs(t, f.comments.DeleteComment(ctx, 6, c.ID), common.ErrForbidden)

	require.NoError(t, f.comments.DeleteComment(ctx, 5, c.ID))
	got, err := f.comments.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Empty(t, got.Content)

	// replies to a deleted comment still resolve the thread
	child := f.reply(t, 6, post.ID, &c.ID)
	assert.Equal(t, c.ID, *child.MainCommentID)
}

func TestLikeIsIdempotent(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	post := f.newPost(t, 1)

	p, err := f.likes.Like(ctx, post.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Likes)
	assert.True(t, p.IsLiked)

	p, err = f.likes.Like(ctx, post.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Likes)

	p, err = f.likes.Unlike(ctx, post.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Likes)
	assert.False(t, p.IsLiked)

	p, err = f.likes.Unlike(ctx, post.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Likes)

	_, err = f.likes.Like(ctx, "7f0c2b0e-7c57-4d8e-8d2c-3d1f1e2a9b10", 9)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestConcurrentLikesMatchRows(t *testing.T) {
	f := newForumFixture()
	post := f.newPost(t, 1)

	var wg sync.WaitGroup
	for user := int64(1); user <= 20; user++ {
		for attempt := 0; attempt < 3; attempt++ {
			wg.Add(1)
			go func(u int64) {
				defer wg.Done()
				_, _ = f.likes.Like(context.Background(), post.ID, u)
			}(user)
		}
	}
	wg.Wait()

	rows, err := f.likeRepo.Count(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, rows)
	assert.Equal(t, rows, f.likeRepo.counter(post.ID))
}

func TestListPostsClampsPageSize(t *testing.T) {
	f := newForumFixture()
	for i := 0; i < 3; i++ {
		f.newPost(t, 1)
	}
	page, err := f.posts.ListPosts(context.Background(), model.PostFilter{}, common.NewPagination(1, 1000, 12, 100))
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 3, page.Count)
	assert.Len(t, page.Results, 3)
}
