package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vnkhanh/notes-backend/models"
	"github.com/vnkhanh/notes-backend/repositories"
)

// memNoteRepo là NoteRepository trong bộ nhớ, đếm số lần ghi
type memNoteRepo struct {
	mu        sync.Mutex
	notes     map[uint]models.Note
	nextID    uint
	clock     time.Time
	writes    int
	createErr error
	updateErr error
	findErr   error
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{notes: map[uint]models.Note{}, clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memNoteRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memNoteRepo) seed(n models.Note) models.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if n.ID == 0 {
		n.ID = m.nextID
	}
	now := m.tick()
	n.CreatedAt, n.UpdatedAt = now, now
	m.notes[n.ID] = n
	return n
}

func (m *memNoteRepo) get(id uint) (models.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	return n, ok
}

func (m *memNoteRepo) FindByUser(ctx context.Context, userID string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []models.Note
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memNoteRepo) FindByID(ctx context.Context, id uint) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, repositories.ErrNoteNotFound
	}
	return &n, nil
}

func (m *memNoteRepo) Create(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	for _, taken := m.notes[m.nextID]; taken; _, taken = m.notes[m.nextID] {
		m.nextID++
	}
	note.ID = m.nextID
	now := m.tick()
	note.CreatedAt, note.UpdatedAt = now, now
	m.notes[note.ID] = *note
	return nil
}

func (m *memNoteRepo) Update(ctx context.Context, id uint, changes repositories.NoteChanges) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, repositories.ErrNoteNotFound
	}
	n.Title, n.Content = changes.Title, changes.Content
	if changes.SetImage {
		n.ImageURL = changes.ImageURL
	}
	n.UpdatedAt = m.tick()
	m.notes[id] = n
	return &n, nil
}

func (m *memNoteRepo) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.notes[id]; !ok {
		return repositories.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *memNoteRepo) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memUserRepo struct {
	users map[string]models.User
	err   error
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: map[string]models.User{}} }

func (m *memUserRepo) Upsert(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.ID]; !ok {
		m.users[user.ID] = *user
	}
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

// fakeStorage ghi lại các lần gọi storage
type fakeStorage struct {
	mu        sync.Mutex
	uploads   []string
	removed   []string
	uploadErr error
	signErr   map[string]error
	removeErr error
}

func (f *fakeStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := f.signErr[path]; err != nil {
		return "", err
	}
	return fmt.Sprintf("https://cdn.example/sign/%s?ttl=%d&token=t", path, int(ttl.Seconds())), nil
}

func (f *fakeStorage) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type memOrphans struct {
	paths []string
}

func (m *memOrphans) Record(ctx context.Context, path, reason string) error {
	m.paths = append(m.paths, path)
	return nil
}
func (m *memOrphans) List(ctx context.Context, limit int) ([]models.OrphanedImage, error) {
	return nil, nil
}
func (m *memOrphans) Resolve(ctx context.Context, id uint) error     { return nil }
func (m *memOrphans) MarkAttempt(ctx context.Context, id uint) error { return nil }

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingNotifier) NotesChanged(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

var errDBDown = errors.New("db down")

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func strPtr(s string) *string { return &s }
