// Package mock provides in-memory implementations of the store interfaces
// for tests.
package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/inkwell/backend/internal/models"
)

// RelationalStore stands in for the PostgreSQL store: users and categories
// with unique constraints.
type RelationalStore struct {
	mutex      sync.RWMutex
	users      map[string]models.User
	categories map[string]models.Category
}

func NewRelationalStore() *RelationalStore {
	return &RelationalStore{
		users:      make(map[string]models.User),
		categories: make(map[string]models.Category),
	}
}

func (m *RelationalStore) CreateUser(_ context.Context, username, email, hashedPw string) (*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return nil, fmt.Errorf("create user: %w", models.ErrDuplicate)
		}
	}
	u := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  hashedPw,
		CreatedAt: time.Now(),
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *RelationalStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *RelationalStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Password = ""
	return &u, nil
}

func (m *RelationalStore) UsersByID(_ context.Context, ids []string) (map[string]models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			u.Password = ""
			out[id] = u
		}
	}
	return out, nil
}

func (m *RelationalStore) CreateCategory(_ context.Context, name string) (*models.Category, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, c := range m.categories {
		if c.Name == name {
			return nil, fmt.Errorf("create category: %w", models.ErrDuplicate)
		}
	}
	c := models.Category{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	m.categories[c.ID] = c
	return &c, nil
}

func (m *RelationalStore) ListCategories(context.Context) ([]models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *RelationalStore) CategoriesByID(_ context.Context, ids []string) (map[string]models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make(map[string]models.Category, len(ids))
	for _, id := range ids {
		if c, ok := m.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// PostStore stands in for the MongoDB store. Documents are deep-copied on
// the way in and out, as a real document store would.
type PostStore struct {
	mutex sync.RWMutex
	posts map[primitive.ObjectID]models.Post

	// Replaces counts whole-document writes.
	Replaces int
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[primitive.ObjectID]models.Post)}
}

func (m *PostStore) Insert(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	m.posts[post.ID] = post.Clone()
	return nil
}

func (m *PostStore) Find(_ context.Context, titleContains string) ([]models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	needle := strings.ToLower(titleContains)
	var out []models.Post
	for _, p := range m.posts {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *PostStore) GetByID(_ context.Context, id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	p, ok := m.posts[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	p = p.Clone()
	return &p, nil
}

func (m *PostStore) Replace(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.posts[post.ID]; !ok {
		return models.ErrNotFound
	}
	m.posts[post.ID] = post.Clone()
	m.Replaces++
	return nil
}

func (m *PostStore) Delete(_ context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	if _, ok := m.posts[oid]; !ok {
		return models.ErrNotFound
	}
	delete(m.posts, oid)
	return nil
}

// Locker is an in-process keyed mutex.
type Locker struct {
	mutex sync.Mutex
	keys  map[string]*sync.Mutex
}

func NewLocker() *Locker {
	return &Locker{keys: make(map[string]*sync.Mutex)}
}

func (l *Locker) Lock(_ context.Context, key string) (func(), error) {
	l.mutex.Lock()
	km, ok := l.keys[key]
	if !ok {
		km = &sync.Mutex{}
		l.keys[key] = km
	}
	l.mutex.Unlock()

	km.Lock()
	return km.Unlock, nil
}

// FileStore keeps uploaded objects in memory.
type FileStore struct {
	mutex   sync.RWMutex
	objects map[string]object
}

type object struct {
	data        []byte
	contentType string
}

func NewFileStore() *FileStore {
	return &FileStore{objects: make(map[string]object)}
}

func (m *FileStore) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.objects[key] = object{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (m *FileStore) Download(_ context.Context, key string) ([]byte, string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, "", models.ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

func (m *FileStore) Remove(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.objects, key)
	return nil
}

// Keys lists stored object keys in sorted order.
func (m *FileStore) Keys() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
