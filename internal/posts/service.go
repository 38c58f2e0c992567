package posts

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/models"
	"github.com/ayush/inkwell/backend/internal/slug"
)

// PostStore defines the interface for post document persistence.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) error
	Find(ctx context.Context, titleContains string) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Replace(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// Directory resolves author and category references for display.
type Directory interface {
	UsersByID(ctx context.Context, ids []string) (map[string]models.User, error)
	CategoriesByID(ctx context.Context, ids []string) (map[string]models.Category, error)
}

// Locker serialises read-modify-write cycles on a single post.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// FileStore defines the interface for uploaded image storage.
type FileStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Service implements the post, comment and reply operations.
type Service struct {
	posts PostStore
	dir   Directory
	locks Locker
	files FileStore
	now   func() time.Time
}

func NewService(posts PostStore, dir Directory, locks Locker, files FileStore) *Service {
	return &Service{posts: posts, dir: dir, locks: locks, files: files, now: time.Now}
}

// CreatePostInput carries the fields of a new post.
type CreatePostInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Slug     string `json:"slug"`
	// FeaturedImage is a path returned by a prior upload.
	FeaturedImage string  `json:"featuredImage"`
	Image         *Upload `json:"-"`
}

func (in CreatePostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("Title is required")),
		validation.Field(&in.Content, validation.Required.Error("Content is required")),
		validation.Field(&in.Author, validation.Required.Error("Author is required")),
		validation.Field(&in.Category, validation.Required.Error("Category is required")),
	)
}

// UpdatePostInput carries a partial update. Nil fields are left untouched.
type UpdatePostInput struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Author        *string `json:"author"`
	Category      *string `json:"category"`
	Slug          *string `json:"slug"`
	FeaturedImage *string `json:"featuredImage"`
	Image         *Upload `json:"-"`
}

func (in UpdatePostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty.Error("Title cannot be empty")),
		validation.Field(&in.Content, validation.NilOrNotEmpty.Error("Content cannot be empty")),
		validation.Field(&in.Author, validation.NilOrNotEmpty.Error("Author cannot be empty")),
		validation.Field(&in.Category, validation.NilOrNotEmpty.Error("Category cannot be empty")),
		validation.Field(&in.Slug, validation.NilOrNotEmpty.Error("Slug cannot be empty")),
	)
}

// CommentInput carries a new comment or reply. UserID is the authenticated
// caller, empty for guests; Name is only used for guests.
type CommentInput struct {
	UserID  string
	Name    string
	Content string
}

func (in CommentInput) validate(kind string) error {
	if strings.TrimSpace(in.Content) == "" || (in.UserID == "" && strings.TrimSpace(in.Name) == "") {
		return apperr.Validation("Name and content are required for guest " + kind + ".")
	}
	return nil
}

// ListPosts runs the search pipeline and returns one page of results.
func (s *Service) ListPosts(ctx context.Context, q ListQuery) (*Page, error) {
	q = q.normalized()

	// Coarse title prefilter at the store; the in-memory filter is authoritative.
	stored, err := s.posts.Find(ctx, q.Search)
	if err != nil {
		return nil, apperr.Internal("find posts", err)
	}
	views, err := s.populate(ctx, stored)
	if err != nil {
		return nil, err
	}

	views = filterPosts(views, q.Search, q.Category)
	sortNewestFirst(views)

	total := len(views)
	return &Page{
		Posts: paginate(views, q.Page, q.Limit),
		Total: total,
		Page:  q.Page,
		Pages: pageCount(total, q.Limit),
	}, nil
}

// GetPost returns a post with its author and category resolved.
func (s *Service) GetPost(ctx context.Context, id string) (*PostView, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.populate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreatePost validates and stores a new post, deriving its slug from the
// title when none is given.
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := apperr.FromValidation(in.Validate()); err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Author:        in.Author,
		Category:      in.Category,
		FeaturedImage: in.FeaturedImage,
		Comments:      []models.Comment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.Slug == "" {
		post.Slug = slug.Generate(in.Title)
	}

	var uploaded string
	if in.Image != nil {
		path, err := s.UploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		uploaded, post.FeaturedImage = path, path
	}

	if err := s.posts.Insert(ctx, post); err != nil {
		s.removeImage(uploaded)
		return nil, apperr.Internal("insert post", err)
	}
	return post, nil
}

// UpdatePost applies a partial update. Any authenticated caller may update
// any post.
func (s *Service) UpdatePost(ctx context.Context, id string, in UpdatePostInput) (*models.Post, error) {
	if err := apperr.FromValidation(in.Validate()); err != nil {
		return nil, err
	}

	// Uploads run before the post lock is taken.
	var newImage string
	if in.Image != nil {
		path, err := s.UploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		newImage = path
	}

	post, err := s.mutate(ctx, id, func(p *models.Post) error {
		setIfPresent(&p.Title, in.Title)
		setIfPresent(&p.Content, in.Content)
		setIfPresent(&p.Author, in.Author)
		setIfPresent(&p.Category, in.Category)
		setIfPresent(&p.Slug, in.Slug)
		setIfPresent(&p.FeaturedImage, in.FeaturedImage)
		if newImage != "" {
			p.FeaturedImage = newImage
		}
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		s.removeImage(newImage)
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post and everything embedded in it. Only the post's
// author may do so.
func (s *Service) DeletePost(ctx context.Context, id, callerID string) error {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if post.Author != callerID {
		return apperr.Forbidden("You are not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return apperr.NotFound("Post not found")
		}
		return apperr.Internal("delete post", err)
	}
	s.removeImage(post.FeaturedImage)
	return nil
}

// AddComment appends a comment and returns the post's full comment list.
func (s *Service) AddComment(ctx context.Context, postID string, in CommentInput) ([]models.Comment, error) {
	if err := in.validate("comments"); err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, postID, func(p *models.Post) error {
		c := models.Comment{
			ID:        primitive.NewObjectID(),
			Content:   in.Content,
			Replies:   []models.Reply{},
			CreatedAt: s.now(),
		}
		c.User, c.Name = author(in)
		p.Comments = append(p.Comments, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// AddReply appends a reply to one comment and returns that comment's replies.
func (s *Service) AddReply(ctx context.Context, postID, commentID string, in CommentInput) ([]models.Reply, error) {
	if err := in.validate("replies"); err != nil {
		return nil, err
	}

	var replies []models.Reply
	_, err := s.mutate(ctx, postID, func(p *models.Post) error {
		i, err := findComment(p, commentID)
		if err != nil {
			return err
		}
		r := models.Reply{
			ID:        primitive.NewObjectID(),
			Content:   in.Content,
			CreatedAt: s.now(),
		}
		r.User, r.Name = author(in)
		p.Comments[i].Replies = append(p.Comments[i].Replies, r)
		replies = p.Comments[i].Replies
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// DeleteComment removes a comment. The caller must be the post's author,
// whoever wrote the comment. Missing ids are reported before ownership.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID, callerID string) error {
	_, err := s.mutate(ctx, postID, func(p *models.Post) error {
		i, err := findComment(p, commentID)
		if err != nil {
			return err
		}
		if p.Author != callerID {
			return apperr.Forbidden("You are not authorized to delete comments on this post")
		}
		p.Comments = slices.Delete(p.Comments, i, i+1)
		return nil
	})
	return err
}

// DeleteReply removes a reply under the same rules as DeleteComment.
func (s *Service) DeleteReply(ctx context.Context, postID, commentID, replyID, callerID string) error {
	_, err := s.mutate(ctx, postID, func(p *models.Post) error {
		i, err := findComment(p, commentID)
		if err != nil {
			return err
		}
		j, err := findReply(&p.Comments[i], replyID)
		if err != nil {
			return err
		}
		if p.Author != callerID {
			return apperr.Forbidden("You are not authorized to delete replies on this post")
		}
		p.Comments[i].Replies = slices.Delete(p.Comments[i].Replies, j, j+1)
		return nil
	})
	return err
}

// mutate runs fn on a freshly loaded copy of the post under the post lock
// and writes the whole document back if fn succeeds.
func (s *Service) mutate(ctx context.Context, id string, fn func(p *models.Post) error) (*models.Post, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(post); err != nil {
		return nil, err
	}

	if err := s.posts.Replace(ctx, post); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, apperr.Internal("replace post", err)
	}
	post.Normalize()
	return post, nil
}

func (s *Service) lock(ctx context.Context, id string) (func(), error) {
	unlock, err := s.locks.Lock(ctx, "post:"+id)
	if err != nil {
		return nil, apperr.Internal("lock post", err)
	}
	return unlock, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, apperr.Internal("get post", err)
	}
	post.Normalize()
	return post, nil
}

func (s *Service) populate(ctx context.Context, posts []models.Post) ([]PostView, error) {
	var userIDs, categoryIDs []string
	for _, p := range posts {
		if p.Author != "" && !slices.Contains(userIDs, p.Author) {
			userIDs = append(userIDs, p.Author)
		}
		if p.Category != "" && !slices.Contains(categoryIDs, p.Category) {
			categoryIDs = append(categoryIDs, p.Category)
		}
	}

	users, err := s.dir.UsersByID(ctx, userIDs)
	if err != nil {
		return nil, apperr.Internal("resolve authors", err)
	}
	categories, err := s.dir.CategoriesByID(ctx, categoryIDs)
	if err != nil {
		return nil, apperr.Internal("resolve categories", err)
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = newPostView(p, users, categories)
	}
	return views, nil
}

func findComment(p *models.Post, commentID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return -1, apperr.NotFound("Comment not found")
	}
	i := p.CommentIndex(oid)
	if i < 0 {
		return -1, apperr.NotFound("Comment not found")
	}
	return i, nil
}

func findReply(c *models.Comment, replyID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(replyID)
	if err != nil {
		return -1, apperr.NotFound("Reply not found")
	}
	j := c.ReplyIndex(oid)
	if j < 0 {
		return -1, apperr.NotFound("Reply not found")
	}
	return j, nil
}

// author picks the registered user when present, otherwise the guest name.
func author(in CommentInput) (user, name string) {
	if in.UserID != "" {
		return in.UserID, ""
	}
	return "", strings.TrimSpace(in.Name)
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (s *Service) removeImage(path string) {
	key, ok := uploadKey(path)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.files.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("remove uploaded image")
	}
}
