package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roomcheck/roomcheck/internal/fault"
	"github.com/roomcheck/roomcheck/internal/validate"
)

type FileStatus string

const (
	StatusPending    FileStatus = "pending"
	StatusProcessing FileStatus = "processing"
	StatusSuccess    FileStatus = "success"
	StatusError      FileStatus = "error"
)

// Item is one queued upload.
type Item struct {
	Name        string
	ContentType string
	Data        []byte
	SkipFiles   bool
}

// FileState is the externally visible status of one file in a batch.
type FileState struct {
	Name    string     `json:"name"`
	Status  FileStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// Snapshot is a point-in-time view of a batch.
type Snapshot struct {
	ID        string      `json:"id"`
	Files     []FileState `json:"files"`
	Done      bool        `json:"done"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// ProcessFunc runs one file's full round trip. The returned error's message
// becomes the file's status message.
type ProcessFunc func(ctx context.Context, item Item) error

type batch struct {
	id    string
	items []Item
	files []FileState
	done  bool
}

// Queue processes upload batches strictly sequentially: a single worker
// consumes one batch at a time, and within a batch one file's round trip
// completes before the next begins. One file's failure never halts the rest.
type Queue struct {
	mu        sync.Mutex
	batches   map[string]*batch
	ch        chan *batch
	process   ProcessFunc
	retention time.Duration
}

func New(process ProcessFunc, retention time.Duration) *Queue {
	return &Queue{
		batches:   make(map[string]*batch),
		ch:        make(chan *batch, 16),
		process:   process,
		retention: retention,
	}
}

// Start launches the worker loop. It exits when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		slog.Info("queue: worker started")
		for {
			select {
			case <-ctx.Done():
				slog.Info("queue: worker shutting down")
				return
			case b := <-q.ch:
				q.run(ctx, b)
			}
		}
	}()
}

// Enqueue registers a batch and hands it to the worker. Every file starts
// pending.
func (q *Queue) Enqueue(items []Item) (string, error) {
	if len(items) == 0 {
		return "", fault.Validationf("batch contains no files")
	}

	b := &batch{
		id:    uuid.NewString(),
		items: items,
		files: make([]FileState, len(items)),
	}
	for i, item := range items {
		b.files[i] = FileState{Name: item.Name, Status: StatusPending}
	}

	q.mu.Lock()
	q.batches[b.id] = b
	q.mu.Unlock()

	select {
	case q.ch <- b:
		return b.id, nil
	default:
		q.mu.Lock()
		delete(q.batches, b.id)
		q.mu.Unlock()
		return "", fault.Validationf("upload queue is full, try again later")
	}
}

// Get returns a snapshot of a batch, or false when the batch is unknown or
// already cleared.
func (q *Queue) Get(id string) (Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	b, ok := q.batches[id]
	if !ok {
		return Snapshot{}, false
	}
	return q.snapshotLocked(b), true
}

func (q *Queue) snapshotLocked(b *batch) Snapshot {
	snap := Snapshot{
		ID:    b.id,
		Files: make([]FileState, len(b.files)),
		Done:  b.done,
	}
	copy(snap.Files, b.files)
	for _, f := range b.files {
		switch f.Status {
		case StatusSuccess:
			snap.Succeeded++
		case StatusError:
			snap.Failed++
		}
	}
	return snap
}

func (q *Queue) setStatus(b *batch, i int, status FileStatus, message string) {
	q.mu.Lock()
	b.files[i].Status = status
	b.files[i].Message = message
	q.mu.Unlock()
}

func (q *Queue) run(ctx context.Context, b *batch) {
	for i, item := range b.items {
		select {
		case <-ctx.Done():
			q.setStatus(b, i, StatusError, "shutdown before processing")
			continue
		default:
		}

		// Pre-flight rejection: invalid files are marked and skipped
		// without ever reaching the AI service.
		if !validate.VideoContentType(item.ContentType) {
			q.setStatus(b, i, StatusError, "not a supported video type")
			continue
		}
		if msg := validate.UploadSize(int64(len(item.Data))); msg != "" {
			q.setStatus(b, i, StatusError, msg)
			continue
		}

		q.setStatus(b, i, StatusProcessing, "")
		if err := q.process(ctx, item); err != nil {
			q.setStatus(b, i, StatusError, err.Error())
			slog.Warn("queue: file failed", "batch", b.id, "file", item.Name, "error", err)
			continue
		}
		q.setStatus(b, i, StatusSuccess, "")
	}

	q.mu.Lock()
	b.done = true
	snap := q.snapshotLocked(b)
	q.mu.Unlock()

	slog.Info("queue: batch finished", "batch", b.id, "succeeded", snap.Succeeded, "failed", snap.Failed)

	// Finished batches linger long enough for the caller to read the
	// terminal state, then clear themselves.
	time.AfterFunc(q.retention, func() {
		q.mu.Lock()
		delete(q.batches, b.id)
		q.mu.Unlock()
	})
}
