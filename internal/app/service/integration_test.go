package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/database"
	"coursehub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresConcurrentRegisterSingleWinner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	txm := database.NewTxManager(db)
	mailer := &fakeMailer{}
	verification := NewVerificationService(repository.NewPgVerificationRepository(db), txm, mailer,
		VerificationPolicy{TTL: 15 * time.Minute, Throttle: time.Minute}, nopLog)
	identity := NewIdentityService(repository.NewPgUserRepository(db), plainHasher{}, nopLog)
	auth := NewAuthService(identity, verification, txm, nopLog)
	auth.issueToken = func(int64) (string, error) { return "token", nil }

	ctx := context.Background()
	require.NoError(t, auth.SendCode(ctx, SendCodeRequest{Email: "race@example.com"}))
	assert.ErrorIs(t, auth.SendCode(ctx, SendCodeRequest{Email: "race@example.com"}), common.ErrThrottled)
	code := mailer.last("race@example.com")

	var wg sync.WaitGroup
	var successes int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := auth.Register(ctx, RegisterRequest{Nickname: "racer", Email: "race@example.com", VerificationCode: code, Password: "pw"})
			if err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), successes)

	var users int
	require.NoError(t, db.Get(&users, `SELECT COUNT(*) FROM users WHERE email = 'race@example.com'`))
	assert.Equal(t, 1, users)
}

func TestPostgresConcurrentLikesMatchRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	txm := database.NewTxManager(db)
	likeRepo := repository.NewPgForumLikeRepository(db)
	likes := NewLikeService(likeRepo, repository.NewPgForumPostRepository(db), txm)

	author := testutil.CreateUser(t, db, "Author")
	post := testutil.CreatePost(t, db, author, "Popular")
	users := make([]int64, 10)
	for i := range users {
		users[i] = testutil.CreateUser(t, db, "Fan")
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for _, u := range users {
		for attempt := 0; attempt < 3; attempt++ {
			wg.Add(2)
			go func(u int64) {
				defer wg.Done()
				_, _ = likes.Like(ctx, post, u)
			}(u)
			go func(u int64) {
				defer wg.Done()
				_, _ = likes.Unlike(ctx, post, u)
			}(u)
		}
	}
	wg.Wait()

	rows, err := likeRepo.Count(ctx, post)
	require.NoError(t, err)
	var counter int
	require.NoError(t, db.Get(&counter, `SELECT likes_count FROM forum_posts WHERE id = $1`, post))
	assert.Equal(t, rows, counter)
}

func TestPostgresCommentThread(t *testing.T) {
	db := testutil.SetupTestDB(t)
	txm := database.NewTxManager(db)
	postRepo := repository.NewPgForumPostRepository(db)
	comments := NewCommentService(repository.NewPgForumCommentRepository(db), postRepo, txm, nopLog)

	u := testutil.CreateUser(t, db, "Grace")
	post := testutil.CreatePost(t, db, u, "Deep threads")
	other := testutil.CreatePost(t, db, u, "Elsewhere")
	ctx := context.Background()

	root, err := comments.CreateComment(ctx, u, CreateCommentRequest{PostID: post, Content: "R"})
	require.NoError(t, err)
	parent := root.ID
	for depth := 0; depth < 4; depth++ {
		c, err := comments.CreateComment(ctx, u, CreateCommentRequest{PostID: post, Content: "reply", ParentID: &parent})
		require.NoError(t, err)
		require.NotNil(t, c.MainCommentID)
		assert.Equal(t, root.ID, *c.MainCommentID)
		parent = c.ID
	}

	size, err := comments.ThreadSize(ctx, parent)
	require.NoError(t, err)
	assert.Equal(t, root.ID, size.RootID)
	assert.Equal(t, 4, size.ThreadSize)

	_, err = comments.CreateComment(ctx, u, CreateCommentRequest{PostID: other, Content: "x", ParentID: &parent})
	assert.ErrorIs(t, err, common.ErrParentNotFound)
}
