package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a single blog post stored in MongoDB. Comments and their replies
// are embedded; the document is always written back whole.
type Post struct {
	ID            primitive.ObjectID `json:"_id"                     bson:"_id,omitempty"`
	Title         string             `json:"title"                   bson:"title"`
	Slug          string             `json:"slug"                    bson:"slug"`
	Content       string             `json:"content"                 bson:"content"`
	Category      string             `json:"category"                bson:"category"`
	Author        string             `json:"author"                  bson:"author"`
	FeaturedImage string             `json:"featuredImage,omitempty" bson:"featured_image,omitempty"`
	Comments      []Comment          `json:"comments"                bson:"comments"`
	CreatedAt     time.Time          `json:"createdAt"               bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt"               bson:"updated_at"`
}

// Comment is feedback embedded in a Post. Exactly one of User and Name is set.
type Comment struct {
	ID        primitive.ObjectID `json:"_id"            bson:"_id"`
	Content   string             `json:"content"        bson:"content"`
	User      string             `json:"user,omitempty" bson:"user,omitempty"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Replies   []Reply            `json:"replies"        bson:"replies"`
	CreatedAt time.Time          `json:"createdAt"      bson:"created_at"`
}

// Reply is feedback embedded in a Comment. Exactly one of User and Name is set.
type Reply struct {
	ID        primitive.ObjectID `json:"_id"            bson:"_id"`
	Content   string             `json:"content"        bson:"content"`
	User      string             `json:"user,omitempty" bson:"user,omitempty"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt time.Time          `json:"createdAt"      bson:"created_at"`
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (p *Post) CommentIndex(id primitive.ObjectID) int {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// ReplyIndex returns the position of the reply with the given id, or -1.
func (c *Comment) ReplyIndex(id primitive.ObjectID) int {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate embedded sequences freely.
func (p Post) Clone() Post {
	out := p
	out.Comments = make([]Comment, len(p.Comments))
	for i, c := range p.Comments {
		c.Replies = append([]Reply{}, c.Replies...)
		out.Comments[i] = c
	}
	return out
}

// Normalize replaces nil embedded sequences with empty ones so they encode as [].
func (p *Post) Normalize() {
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	for i := range p.Comments {
		if p.Comments[i].Replies == nil {
			p.Comments[i].Replies = []Reply{}
		}
	}
}
