package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// fakeTx runs fn without a real transaction. Repositories in this file
// ignore the tx argument.
type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

var nopLog = zap.NewNop().Sugar()

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (plainHasher) Verify(hash, pw string) bool    { return hash == "hashed:"+pw }

type fakeMailer struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[string][]string{}
	}
	m.sent[email] = append(m.sent[email], code)
	return nil
}

func (m *fakeMailer) last(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := m.sent[email]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[int64]model.User
	profiles map[int64]model.Profile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]model.User{}, profiles: map[int64]model.Profile{}}
}

func (r *fakeUserRepo) Create(_ context.Context, _ *sqlx.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return common.ErrDuplicateEmail
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) CreateProfile(_ context.Context, _ *sqlx.Tx, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = *p
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, _ *sqlx.Tx, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindProfile(_ context.Context, userID int64) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = *p
	return nil
}

type fakeVerificationRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.EmailVerification
}

func (r *fakeVerificationRepo) LockEmail(context.Context, *sqlx.Tx, string) error { return nil }

func (r *fakeVerificationRepo) newestUnused(email string, notBefore time.Time) *model.EmailVerification {
	for i := len(r.rows) - 1; i >= 0; i-- {
		v := r.rows[i]
		if v.Email == email && !v.IsUsed && !v.CreatedAt.Before(notBefore) {
			return &v
		}
	}
	return nil
}

func (r *fakeVerificationRepo) LatestUnused(_ context.Context, _ *sqlx.Tx, email string) (*model.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v := r.newestUnused(email, time.Time{}); v != nil {
		return v, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeVerificationRepo) Create(_ context.Context, _ *sqlx.Tx, v *model.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	r.rows = append(r.rows, *v)
	return nil
}

func (r *fakeVerificationRepo) InvalidateUnused(_ context.Context, _ *sqlx.Tx, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].Email == email {
			r.rows[i].IsUsed = true
		}
	}
	return nil
}

func (r *fakeVerificationRepo) LockLatestValid(_ context.Context, _ *sqlx.Tx, email string, notBefore time.Time) (*model.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v := r.newestUnused(email, notBefore); v != nil {
		return v, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeVerificationRepo) MarkUsed(_ context.Context, _ *sqlx.Tx, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && !r.rows[i].IsUsed {
			r.rows[i].IsUsed = true
			return nil
		}
	}
	return common.ErrInvalidOrExpiredCode
}

func (r *fakeVerificationRepo) unusedCount(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.rows {
		if v.Email == email && !v.IsUsed {
			n++
		}
	}
	return n
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]model.ForumPost
	likes *fakeLikeRepo
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]model.ForumPost{}}
}

func (r *fakePostRepo) Create(_ context.Context, p *model.ForumPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = *p
	return nil
}

func (r *fakePostRepo) Update(_ context.Context, p *model.ForumPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return common.ErrNotFound
	}
	r.posts[p.ID] = *p
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) FindByID(_ context.Context, _ *sqlx.Tx, id string, viewer int64) (*model.ForumPost, error) {
	r.mu.Lock()
	p, ok := r.posts[id]
	r.mu.Unlock()
	if !ok {
		return nil, common.ErrNotFound
	}
	if r.likes != nil {
		p.LikesCount = r.likes.counter(id)
		p.IsLiked = viewer != 0 && r.likes.has(id, viewer)
	}
	return &p, nil
}

func (r *fakePostRepo) Exists(_ context.Context, _ *sqlx.Tx, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.posts[id]
	return ok, nil
}

func (r *fakePostRepo) List(_ context.Context, _ model.PostFilter, limit, offset int) ([]model.ForumPost, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.ForumPost, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return window(all, limit, offset), len(all), nil
}

type likeKey struct {
	postID string
	userID int64
}

type fakeLikeRepo struct {
	mu       sync.Mutex
	rows     map[likeKey]struct{}
	counters map[string]int
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{rows: map[likeKey]struct{}{}, counters: map[string]int{}}
}

func (r *fakeLikeRepo) Insert(_ context.Context, _ *sqlx.Tx, postID string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{postID, userID}
	if _, ok := r.rows[k]; ok {
		return false, nil
	}
	r.rows[k] = struct{}{}
	return true, nil
}

func (r *fakeLikeRepo) Delete(_ context.Context, _ *sqlx.Tx, postID string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{postID, userID}
	if _, ok := r.rows[k]; !ok {
		return false, nil
	}
	delete(r.rows, k)
	return true, nil
}

func (r *fakeLikeRepo) IncrementPostLikes(_ context.Context, _ *sqlx.Tx, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[postID]++
	return nil
}

func (r *fakeLikeRepo) DecrementPostLikes(_ context.Context, _ *sqlx.Tx, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counters[postID] > 0 {
		r.counters[postID]--
	}
	return nil
}

func (r *fakeLikeRepo) Count(_ context.Context, postID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.rows {
		if k.postID == postID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLikeRepo) counter(postID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[postID]
}

func (r *fakeLikeRepo) has(postID string, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[likeKey{postID, userID}]
	return ok
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]model.ForumComment
	order    []string
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string]model.ForumComment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, _ *sqlx.Tx, c *model.ForumComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// stands in for the users join
	c.AuthorUsername = fmt.Sprintf("user%d", c.AuthorID)
	if c.ReplyToUserID.Valid {
		c.ReplyToUsername = sql.NullString{String: fmt.Sprintf("user%d", c.ReplyToUserID.Int64), Valid: true}
	}
	r.comments[c.ID] = *c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *fakeCommentRepo) withReplies(c model.ForumComment) model.ForumComment {
	c.RepliesCount = 0
	for _, other := range r.comments {
		if other.MainCommentID.Valid && other.MainCommentID.String == c.ID {
			c.RepliesCount++
		}
	}
	return c
}

func (r *fakeCommentRepo) FindByID(_ context.Context, _ *sqlx.Tx, id string) (*model.ForumComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c = r.withReplies(c)
	return &c, nil
}

func (r *fakeCommentRepo) List(_ context.Context, f model.CommentFilter, limit, offset int) ([]model.ForumComment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ForumComment
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.comments[r.order[i]]
		if f.PostID != "" && c.PostID != f.PostID {
			continue
		}
		if f.ParentID != "" && c.ParentID.String != f.ParentID {
			continue
		}
		if f.MainCommentID != "" && c.MainCommentID.String != f.MainCommentID {
			continue
		}
		if f.OnlyMain != nil && *f.OnlyMain != c.IsMain() {
			continue
		}
		out = append(out, r.withReplies(c))
	}
	return window(out, limit, offset), len(out), nil
}

func (r *fakeCommentRepo) CountInThread(_ context.Context, rootID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.withReplies(model.ForumComment{ID: rootID}).RepliesCount, nil
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, id, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return common.ErrNotFound
	}
	c.Content = content
	r.comments[id] = c
	return nil
}

func (r *fakeCommentRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return common.ErrNotFound
	}
	c.IsDeleted = true
	r.comments[id] = c
	return nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
