package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roomcheck/roomcheck/internal/validate"
)

func waitForDone(t *testing.T, q *Queue, id string) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap, ok := q.Get(id); ok && snap.Done {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("batch did not reach a terminal state")
	return Snapshot{}
}

func TestBatchPreflightValidation(t *testing.T) {
	var mu sync.Mutex
	var processed []string

	q := New(func(ctx context.Context, item Item) error {
		mu.Lock()
		processed = append(processed, item.Name)
		mu.Unlock()
		return nil
	}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	id, err := q.Enqueue([]Item{
		{Name: "A.mp4", ContentType: "video/mp4", Data: []byte("a")},
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("b")},
		{Name: "C.mp4", ContentType: "video/mp4", Data: []byte("c")},
	})
	if err != nil {
		t.Fatal(err)
	}

	snap := waitForDone(t, q, id)

	if snap.Files[0].Status != StatusSuccess {
		t.Errorf("A status = %s, want success", snap.Files[0].Status)
	}
	if snap.Files[1].Status != StatusError {
		t.Errorf("invalid-type file status = %s, want error", snap.Files[1].Status)
	}
	if snap.Files[2].Status != StatusSuccess {
		t.Errorf("C status = %s, want success", snap.Files[2].Status)
	}
	if snap.Succeeded != 2 || snap.Failed != 1 {
		t.Errorf("aggregate = %d/%d, want 2 succeeded 1 failed", snap.Succeeded, snap.Failed)
	}

	// The rejected file never reached the processor.
	mu.Lock()
	defer mu.Unlock()
	if len(processed) != 2 || processed[0] != "A.mp4" || processed[1] != "C.mp4" {
		t.Errorf("processed = %v, want [A.mp4 C.mp4]", processed)
	}
}

func TestBatchOversizedFile(t *testing.T) {
	q := New(func(ctx context.Context, item Item) error {
		t.Errorf("oversized file %s reached the processor", item.Name)
		return nil
	}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	id, err := q.Enqueue([]Item{
		{Name: "huge.mp4", ContentType: "video/mp4", Data: make([]byte, validate.MaxUploadBytes+1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	snap := waitForDone(t, q, id)
	if snap.Files[0].Status != StatusError {
		t.Fatalf("status = %s, want error", snap.Files[0].Status)
	}
	if !strings.Contains(snap.Files[0].Message, "exceeds limit") {
		t.Errorf("message = %q, want an exceeds-limit message", snap.Files[0].Message)
	}
}

func TestBatchProcessorErrorRecorded(t *testing.T) {
	q := New(func(ctx context.Context, item Item) error {
		if item.Name == "bad.mp4" {
			return errors.New("ffmpeg transcode failed")
		}
		return nil
	}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	id, err := q.Enqueue([]Item{
		{Name: "bad.mp4", ContentType: "video/mp4", Data: []byte("x")},
		{Name: "good.mp4", ContentType: "video/mp4", Data: []byte("y")},
	})
	if err != nil {
		t.Fatal(err)
	}

	snap := waitForDone(t, q, id)
	if snap.Files[0].Status != StatusError || snap.Files[0].Message == "" {
		t.Errorf("failed file = %+v, want error with message", snap.Files[0])
	}
	if snap.Files[1].Status != StatusSuccess {
		t.Errorf("good file status = %s, want success", snap.Files[1].Status)
	}
}

func TestBatchRetention(t *testing.T) {
	q := New(func(ctx context.Context, item Item) error { return nil }, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	id, err := q.Enqueue([]Item{{Name: "a.mp4", ContentType: "video/mp4", Data: []byte("x")}})
	if err != nil {
		t.Fatal(err)
	}
	waitForDone(t, q, id)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := q.Get(id); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("finished batch was not cleared after the retention delay")
}

func TestEnqueueEmptyBatch(t *testing.T) {
	q := New(func(ctx context.Context, item Item) error { return nil }, time.Minute)
	if _, err := q.Enqueue(nil); err == nil {
		t.Error("empty batch accepted")
	}
}

func TestGetUnknownBatch(t *testing.T) {
	q := New(func(ctx context.Context, item Item) error { return nil }, time.Minute)
	if _, ok := q.Get("nope"); ok {
		t.Error("unknown batch id returned a snapshot")
	}
}
