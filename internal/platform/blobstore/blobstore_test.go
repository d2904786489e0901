package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
)

func TestUploadDownload(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	meta, err := store.Upload(context.Background(), BlobMetadata{
		FileName:    "scan.pdf",
		ContentType: "application/pdf",
	}, bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ID == "" || meta.Size != 5 || meta.Hash == "" {
		t.Errorf("incomplete metadata: %+v", meta)
	}

	rc, got, err := store.Download(context.Background(), meta.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Errorf("content mismatch: %q", data)
	}
	if got.FileName != "scan.pdf" {
		t.Errorf("metadata mismatch: %+v", got)
	}
}

func TestUpload_Validation(t *testing.T) {
	store := NewInMemoryBlobStore(8)

	if _, err := store.Upload(context.Background(), BlobMetadata{}, bytes.NewReader([]byte("x"))); !errors.Is(err, ErrMissingFileName) {
		t.Errorf("expected ErrMissingFileName, got %v", err)
	}
	if _, err := store.Upload(context.Background(), BlobMetadata{FileName: "a"}, bytes.NewReader(nil)); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
	if _, err := store.Upload(context.Background(), BlobMetadata{FileName: "a"}, bytes.NewReader(make([]byte, 9))); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestDownload_NotFound(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	if _, _, err := store.Download(context.Background(), "nope"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
	if err := store.Delete(context.Background(), "nope"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	meta, err := store.Upload(context.Background(), BlobMetadata{FileName: "a"}, bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(context.Background(), meta.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetMetadata(context.Background(), meta.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound after delete, got %v", err)
	}
}

func TestConcurrentUploads(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Upload(context.Background(),
				BlobMetadata{FileName: fmt.Sprintf("f-%d", i)}, bytes.NewReader([]byte("x")))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
}
