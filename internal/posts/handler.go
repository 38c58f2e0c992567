package posts

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/middleware"
	"github.com/ayush/inkwell/backend/internal/models"
)

// formMemory is how much of a multipart body is buffered before spilling to disk.
const formMemory = 8 << 20

// Handler holds post HTTP handlers.
type Handler struct {
	svc       *Service
	maxUpload int64
}

func NewHandler(svc *Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

// List returns a filtered, paginated page of posts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.svc.ListPosts(r.Context(), ListQuery{
		Page:     page,
		Limit:    limit,
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, res)
}

// Get returns a single post with author and category resolved.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, post)
}

// Create stores a new post from a multipart form or a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := h.readPostForm(w, r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	defer form.close()

	post, err := h.svc.CreatePost(r.Context(), CreatePostInput{
		Title:         deref(form.fields.Title),
		Content:       deref(form.fields.Content),
		Author:        deref(form.fields.Author),
		Category:      deref(form.fields.Category),
		Slug:          deref(form.fields.Slug),
		FeaturedImage: deref(form.fields.FeaturedImage),
		Image:         form.image,
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, post)
}

// Update applies a partial update from a multipart form or a JSON body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	form, err := h.readPostForm(w, r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	defer form.close()

	in := form.fields
	in.Image = form.image
	post, err := h.svc.UpdatePost(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, post)
}

// Delete removes a post owned by the caller.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFrom(r.Context())
	if caller == nil {
		apperr.Write(w, r, apperr.Unauthenticated("not authenticated"))
		return
	}
	if err := h.svc.DeletePost(r.Context(), chi.URLParam(r, "id"), caller.UserID); err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// AddComment appends a comment from a registered user or a named guest.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	in, err := commentInput(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	comments, err := h.svc.AddComment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, comments)
}

// AddReply appends a reply to a comment.
func (h *Handler) AddReply(w http.ResponseWriter, r *http.Request) {
	in, err := commentInput(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	replies, err := h.svc.AddReply(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "commentId"), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, replies)
}

// DeleteComment removes a comment; only the post's author may.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFrom(r.Context())
	if caller == nil {
		apperr.Write(w, r, apperr.Unauthenticated("not authenticated"))
		return
	}
	err := h.svc.DeleteComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "commentId"), caller.UserID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

// DeleteReply removes a reply; only the post's author may.
func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFrom(r.Context())
	if caller == nil {
		apperr.Write(w, r, apperr.Unauthenticated("not authenticated"))
		return
	}
	err := h.svc.DeleteReply(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "commentId"), chi.URLParam(r, "replyId"), caller.UserID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Reply deleted"})
}

// Upload stores a single image and returns its path.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		apperr.Write(w, r, apperr.Validation("No file uploaded"))
		return
	}
	form, err := h.readPostForm(w, r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	defer form.close()

	url, err := h.svc.UploadImage(r.Context(), form.image)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

// ServeUpload streams a stored image back to the client.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.svc.OpenUpload(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}

// postForm is a decoded create/update request. close releases the
// uploaded file and any temporary files backing the form.
type postForm struct {
	fields UpdatePostInput
	image  *Upload
	close  func()
}

func (h *Handler) readPostForm(w http.ResponseWriter, r *http.Request) (*postForm, error) {
	form := &postForm{close: func() {}}
	if !isMultipart(r) {
		if err := apperr.DecodeJSON(r, &form.fields); err != nil {
			return nil, err
		}
		return form, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formMemory)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("File too large")
		}
		return nil, apperr.Validation("invalid multipart form")
	}
	closers := []func(){func() { r.MultipartForm.RemoveAll() }}
	form.close = func() {
		for _, c := range closers {
			c()
		}
	}

	values := r.MultipartForm.Value
	form.fields.Title = formValue(values, "title")
	form.fields.Content = formValue(values, "content")
	form.fields.Author = formValue(values, "author")
	form.fields.Category = formValue(values, "category")
	form.fields.Slug = formValue(values, "slug")
	form.fields.FeaturedImage = formValue(values, "featuredImage")

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		form.close()
		return nil, apperr.Validation("invalid image upload")
	default:
		if header.Size > h.maxUpload {
			file.Close()
			form.close()
			return nil, apperr.Validation("File too large")
		}
		closers = append(closers, func() { file.Close() })
		form.image = uploadFrom(file, header)
	}
	return form, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *Upload {
	return &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func commentInput(r *http.Request) (CommentInput, error) {
	var req models.CommentRequest
	if err := apperr.DecodeJSON(r, &req); err != nil {
		return CommentInput{}, err
	}
	in := CommentInput{Name: req.Name, Content: req.Content}
	if caller := middleware.IdentityFrom(r.Context()); caller != nil {
		in.UserID = caller.UserID
	}
	return in, nil
}

func formValue(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	return &v[0]
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
