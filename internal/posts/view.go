package posts

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/inkwell/backend/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 5
)

// CategoryRef is the category projection embedded in a PostView.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// AuthorRef is the author projection embedded in a PostView.
type AuthorRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PostView is a post with its author and category references resolved.
// Dangling references resolve to nil.
type PostView struct {
	ID            primitive.ObjectID `json:"_id"`
	Title         string             `json:"title"`
	Slug          string             `json:"slug"`
	Content       string             `json:"content"`
	Category      *CategoryRef       `json:"category"`
	Author        *AuthorRef         `json:"author"`
	FeaturedImage string             `json:"featuredImage,omitempty"`
	Comments      []models.Comment   `json:"comments"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`

	categoryID string
}

func newPostView(p models.Post, users map[string]models.User, categories map[string]models.Category) PostView {
	p.Normalize()
	v := PostView{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		FeaturedImage: p.FeaturedImage,
		Comments:      p.Comments,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		categoryID:    p.Category,
	}
	if u, ok := users[p.Author]; ok {
		v.Author = &AuthorRef{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	if c, ok := categories[p.Category]; ok {
		v.Category = &CategoryRef{ID: c.ID, Name: c.Name}
	}
	return v
}

// ListQuery holds the list parameters taken from the query string.
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	return q
}

// Page is one page of list results.
type Page struct {
	Posts []PostView `json:"posts"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
}

func pageCount(total, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}
