package notesync

import (
	"context"
	"sync"
	"time"

	"github.com/vnkhanh/notes-backend/models"
)

// fakeTransport giữ "server truth" trong bộ nhớ; các gate cho phép giữ request lại
type fakeTransport struct {
	mu        sync.Mutex
	notes     []models.Note
	nextID    uint
	listCalls int

	listGate chan struct{}
	mutGate  chan struct{}

	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeTransport(notes ...models.Note) *fakeTransport {
	f := &fakeTransport{notes: notes}
	for _, n := range notes {
		if n.ID > f.nextID {
			f.nextID = n.ID
		}
	}
	return f
}

func (f *fakeTransport) wait(gate chan struct{}) {
	if gate != nil {
		<-gate
	}
}

// ListNotes chụp dữ liệu lúc bắt đầu rồi mới chờ gate, mô phỏng response cũ về muộn
func (f *fakeTransport) ListNotes(ctx context.Context) ([]models.Note, error) {
	f.mu.Lock()
	f.listCalls++
	snapshot := append([]models.Note(nil), f.notes...)
	err := f.listErr
	gate := f.listGate
	f.mu.Unlock()

	f.wait(gate)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *fakeTransport) CreateNote(ctx context.Context, form NoteForm) (*models.Note, error) {
	f.wait(f.gate())
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	n := models.Note{ID: f.nextID, UserID: "u1", Title: form.Title, Content: form.Content, CreatedAt: time.Now()}
	f.notes = append([]models.Note{n}, f.notes...)
	return &n, nil
}

func (f *fakeTransport) UpdateNote(ctx context.Context, id uint, form NoteForm) (*models.Note, error) {
	f.wait(f.gate())
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Title, f.notes[i].Content = form.Title, form.Content
			n := f.notes[i]
			return &n, nil
		}
	}
	return nil, &APIError{Status: 403, Message: "bạn không có quyền cập nhật ghi chú này"}
}

func (f *fakeTransport) DeleteNote(ctx context.Context, id uint) error {
	f.wait(f.gate())
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: 403, Message: "bạn không có quyền xoá ghi chú này"}
}

func (f *fakeTransport) gate() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutGate
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type notice struct {
	level Level
	msg   string
}

// recorder thu lại các thông báo
type recorder struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recorder) notifier() Notifier {
	return NotifierFunc(func(level Level, msg string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.notices = append(r.notices, notice{level, msg})
	})
}

func (r *recorder) all() []notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notice(nil), r.notices...)
}

func titles(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}
