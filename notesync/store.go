package notesync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/vnkhanh/notes-backend/models"
)

// State là trạng thái cache danh sách ghi chú
type State int

const (
	StateIdle State = iota
	StateFetching
	StatePopulated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StatePopulated:
		return "populated"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	MsgNoteCreated = "Đã tạo ghi chú mới"
	MsgNoteDeleted = "Đã xoá ghi chú"

	DefaultStaleTime = time.Minute
)

// ErrSuperseded: lần fetch đã bị huỷ bởi fetch mới hơn hoặc một cập nhật lạc quan
var ErrSuperseded = errors.New("fetch đã bị thay thế")

// Store là cache ghi chú phía client, các mutation chạy độc lập và đồng thời
type Store struct {
	transport Transport
	notifier  Notifier
	staleTime time.Duration
	now       func() time.Time

	mu          sync.Mutex
	state       State
	loaded      bool
	notes       []models.Note
	err         error
	fetchedAt   time.Time
	fetchSeq    uint64
	cancelFetch context.CancelFunc

	adding   int
	updating int
	deleting int

	wg sync.WaitGroup
}

type StoreOption func(*Store)

func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithInitialNotes nạp sẵn danh sách (ví dụ từ lần render đầu) để khỏi fetch ngay
func WithInitialNotes(notes []models.Note) StoreOption {
	return func(s *Store) {
		s.notes = cloneNotes(notes)
		s.loaded = true
		s.state = StatePopulated
		s.fetchedAt = s.now()
	}
}

func WithStaleTime(d time.Duration) StoreOption {
	return func(s *Store) { s.staleTime = d }
}

func NewStore(t Transport, opts ...StoreOption) *Store {
	s := &Store{
		transport: t,
		notifier:  LogNotifier{},
		staleTime: DefaultStaleTime,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notes trả về bản sao danh sách đang cache
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNotes(s.notes)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err là lỗi của lần fetch gần nhất khi State là StateFailed
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Store) IsAdding() bool   { return s.pending(&s.adding) }
func (s *Store) IsUpdating() bool { return s.pending(&s.updating) }
func (s *Store) IsDeleting() bool { return s.pending(&s.deleting) }

func (s *Store) pending(n *int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *n > 0
}

// Load chỉ fetch khi chưa có dữ liệu hoặc dữ liệu đã cũ hơn staleTime
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	fresh := s.loaded && s.state == StatePopulated && s.now().Sub(s.fetchedAt) < s.staleTime
	s.mu.Unlock()
	if fresh {
		return nil
	}
	return s.Fetch(ctx)
}

// Fetch tải lại danh sách và chờ kết quả; fetch đang chạy trước đó bị huỷ
func (s *Store) Fetch(ctx context.Context) error {
	ctx, seq := s.beginFetch(ctx)
	notes, err := s.transport.ListNotes(ctx)
	return s.finishFetch(seq, notes, err)
}

// Invalidate đánh dấu cache cũ và fetch lại ở background
func (s *Store) Invalidate() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Fetch(context.Background()); err != nil && !errors.Is(err, ErrSuperseded) {
			log.Printf("[notes] tải lại danh sách lỗi: %v", err)
		}
	}()
}

// Wait chờ mọi mutation và fetch background kết thúc
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) beginFetch(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.fetchSeq++
	ctx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.state = StateFetching
	return ctx, s.fetchSeq
}

func (s *Store) finishFetch(seq uint64, notes []models.Note, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		return ErrSuperseded
	}
	s.cancelFetch()
	s.cancelFetch = nil

	if err != nil {
		s.state = StateFailed
		s.err = err
		return err
	}
	s.notes = cloneNotes(notes)
	s.loaded = true
	s.err = nil
	s.state = StatePopulated
	s.fetchedAt = s.now()
	return nil
}

// cancelFetchesLocked huỷ fetch đang chạy để kết quả cũ không ghi đè bản vá lạc quan
func (s *Store) cancelFetchesLocked() {
	if s.cancelFetch == nil {
		return
	}
	s.cancelFetch()
	s.cancelFetch = nil
	s.fetchSeq++
	switch {
	case s.err != nil:
		s.state = StateFailed
	case s.loaded:
		s.state = StatePopulated
	default:
		s.state = StateIdle
	}
}

// Mutation theo dõi một thao tác ghi đang chạy
type Mutation struct {
	done chan struct{}
	note *models.Note
	err  error
}

func newMutation() *Mutation {
	return &Mutation{done: make(chan struct{})}
}

func (m *Mutation) finish(note *models.Note, err error) {
	m.note, m.err = note, err
	close(m.done)
}

// Wait chờ request kết thúc, trả về ghi chú server trả (nếu có) và lỗi
func (m *Mutation) Wait() (*models.Note, error) {
	<-m.done
	return m.note, m.err
}

func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// AddNote gửi request tạo; không chèn tạm vào cache, thành công thì tải lại danh sách.
// Request đã gửi thì không huỷ được: ctx chỉ mang giá trị, không mang deadline.
func (s *Store) AddNote(ctx context.Context, form NoteForm) *Mutation {
	ctx = context.WithoutCancel(ctx)
	m := newMutation()

	s.mu.Lock()
	s.adding++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		note, err := s.transport.CreateNote(ctx, form)

		s.mu.Lock()
		s.adding--
		s.mu.Unlock()

		if err != nil {
			s.notifier.Error(err.Error())
		} else {
			s.notifier.Success(MsgNoteCreated)
			s.Invalidate()
		}
		m.finish(note, err)
	}()
	return m
}

// UpdateNote vá title/content vào cache ngay khi gọi, lỗi thì khôi phục snapshot.
// Dù thành công hay lỗi đều tải lại danh sách để khớp với server.
func (s *Store) UpdateNote(ctx context.Context, id uint, form NoteForm) *Mutation {
	ctx = context.WithoutCancel(ctx)
	m := newMutation()

	s.mu.Lock()
	s.cancelFetchesLocked()
	snapshot := cloneNotes(s.notes)
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes[i].Title = form.Title
			s.notes[i].Content = form.Content
		}
	}
	s.updating++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		note, err := s.transport.UpdateNote(ctx, id, form)

		s.mu.Lock()
		s.updating--
		if err != nil {
			s.notes = snapshot
		}
		s.mu.Unlock()

		if err != nil {
			s.notifier.Error(err.Error())
		}
		s.Invalidate()
		m.finish(note, err)
	}()
	return m
}

// DeleteNote không xoá lạc quan; thành công mới tải lại danh sách
func (s *Store) DeleteNote(ctx context.Context, id uint) *Mutation {
	ctx = context.WithoutCancel(ctx)
	m := newMutation()

	s.mu.Lock()
	s.deleting++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.transport.DeleteNote(ctx, id)

		s.mu.Lock()
		s.deleting--
		s.mu.Unlock()

		if err != nil {
			s.notifier.Error(err.Error())
		} else {
			s.notifier.Success(MsgNoteDeleted)
			s.Invalidate()
		}
		m.finish(nil, err)
	}()
	return m
}

func cloneNotes(notes []models.Note) []models.Note {
	if notes == nil {
		return nil
	}
	out := make([]models.Note, len(notes))
	copy(out, notes)
	return out
}
