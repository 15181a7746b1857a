package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"threaded_comments/internal/domain/comment/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reactionKey struct {
	commentID string
	userID    string
}

// memoryStore 内存版存储，同时实现 CommentRepository 和 ReactionRepository
type memoryStore struct {
	mu         sync.Mutex
	comments   map[string]model.Comment
	reactions  map[reactionKey]model.Reaction
	usernames  map[string]string
	clock      time.Time
	countCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		comments:  make(map[string]model.Comment),
		reactions: make(map[reactionKey]model.Reaction),
		usernames: make(map[string]string),
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryStore) addUser(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.usernames[id] = name
	return id
}

func (m *memoryStore) withAuthor(c model.Comment) model.Comment {
	c.User = model.Author{ID: c.UserID, Username: m.usernames[c.UserID]}
	return c
}

func (m *memoryStore) Create(ctx context.Context, comment *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if _, ok := m.usernames[comment.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if comment.ParentID != nil {
		if _, ok := m.comments[*comment.ParentID]; !ok {
			return gorm.ErrForeignKeyViolated
		}
	}
	m.clock = m.clock.Add(time.Second)
	comment.CreatedAt = m.clock
	comment.UpdatedAt = m.clock
	m.comments[comment.ID] = *comment
	return nil
}

func (m *memoryStore) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = m.withAuthor(c)
	return &c, nil
}

func (m *memoryStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.comments[id]
	return ok, nil
}

func (m *memoryStore) countLocked(id string, t model.ReactionType) int {
	n := 0
	for k, r := range m.reactions {
		if k.commentID == id && r.ReactionType == t {
			n++
		}
	}
	return n
}

func (m *memoryStore) ListRoots(ctx context.Context, s model.Sort, offset, limit int) ([]model.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var roots []model.Comment
	for _, c := range m.comments {
		if c.ParentID == nil {
			roots = append(roots, m.withAuthor(c))
		}
	}

	sort.Slice(roots, func(i, j int) bool {
		switch s {
		case model.SortMostLiked, model.SortMostDisliked:
			t := model.ReactionLike
			if s == model.SortMostDisliked {
				t = model.ReactionDislike
			}
			ci, cj := m.countLocked(roots[i].ID, t), m.countLocked(roots[j].ID, t)
			if ci != cj {
				return ci > cj
			}
		}
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})

	total := int64(len(roots))
	if offset >= len(roots) {
		return []model.Comment{}, total, nil
	}
	end := offset + limit
	if end > len(roots) {
		end = len(roots)
	}
	return roots[offset:end], total, nil
}

func (m *memoryStore) ListReplies(ctx context.Context, parentIDs []string) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parents := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	var replies []model.Comment
	for _, c := range m.comments {
		if c.ParentID != nil && parents[*c.ParentID] {
			replies = append(replies, m.withAuthor(c))
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})
	return replies, nil
}

func (m *memoryStore) UpdateContent(ctx context.Context, id, userID, content string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	m.clock = m.clock.Add(time.Second)
	c.Content = content
	c.UpdatedAt = m.clock
	m.comments[id] = c
	return true, nil
}

func (m *memoryStore) DeleteTree(ctx context.Context, id, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.comments[id]
	if !ok || root.UserID != userID {
		return 0, nil
	}

	tree := map[string]bool{id: true}
	for grew := true; grew; {
		grew = false
		for cid, c := range m.comments {
			if c.ParentID != nil && tree[*c.ParentID] && !tree[cid] {
				tree[cid] = true
				grew = true
			}
		}
	}

	for k := range m.reactions {
		if tree[k.commentID] {
			delete(m.reactions, k)
		}
	}
	for cid := range tree {
		delete(m.comments, cid)
	}
	return int64(len(tree)), nil
}

func (m *memoryStore) Upsert(ctx context.Context, reaction *model.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[reaction.CommentID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if _, ok := m.usernames[reaction.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	key := reactionKey{reaction.CommentID, reaction.UserID}
	m.clock = m.clock.Add(time.Second)
	if existing, ok := m.reactions[key]; ok {
		reaction.CreatedAt = existing.CreatedAt
	} else {
		reaction.CreatedAt = m.clock
	}
	reaction.UpdatedAt = m.clock
	m.reactions[key] = *reaction
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, commentID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reactionKey{commentID, userID}
	_, ok := m.reactions[key]
	delete(m.reactions, key)
	return ok, nil
}

func (m *memoryStore) Get(ctx context.Context, commentID, userID string) (*model.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reactions[reactionKey{commentID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memoryStore) CountByComments(ctx context.Context, commentIDs []string) (map[string]model.Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++

	counts := make(map[string]model.Counts, len(commentIDs))
	for _, id := range commentIDs {
		counts[id] = model.Counts{
			Likes:    int64(m.countLocked(id, model.ReactionLike)),
			Dislikes: int64(m.countLocked(id, model.ReactionDislike)),
		}
	}
	return counts, nil
}

// rowsFor 某个 (comment, user) 组合的 reaction 行数
func (m *memoryStore) rowsFor(commentID, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.reactions {
		if k.commentID == commentID && k.userID == userID {
			n++
		}
	}
	return n
}
