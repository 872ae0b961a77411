package tracker

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gcharanteja/unilogger/domain"
	"github.com/gcharanteja/unilogger/internal/trackertest"
)

func TestUploadMissingFileFailsLocally(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()
	projectID := seedProject(t, s)

	run, err := client.InitRun(ctx, projectID, domain.InitRunRequest{Name: "upload-run"})
	if err != nil {
		t.Fatalf("InitRun failed: %v", err)
	}

	_, err = run.UploadFile(ctx, filepath.Join(t.TempDir(), "missing.csv"), domain.FileTypeOther)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if n := s.RequestCount(http.MethodPost, "/runs/:id/upload-file"); n != 0 {
		t.Fatalf("expected no upload request, got %d", n)
	}
}

func TestUploadListDownload(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()
	projectID := seedProject(t, s)

	run, err := client.InitRun(ctx, projectID, domain.InitRunRequest{Name: "files-run"})
	if err != nil {
		t.Fatalf("InitRun failed: %v", err)
	}

	content := bytes.Repeat([]byte("order_id,status,region\n1,delivered,north\n"), 500)
	src := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		t.Fatalf("write source failed: %v", err)
	}

	uploaded, err := run.UploadFile(ctx, src, domain.FileTypeOther)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if uploaded.Filename != "orders.csv" {
		t.Fatalf("unexpected filename: %q", uploaded.Filename)
	}
	if uploaded.SizeBytes != int64(len(content)) {
		t.Fatalf("expected %d bytes, got %d", len(content), uploaded.SizeBytes)
	}
	if uploaded.FileType != domain.FileTypeOther {
		t.Fatalf("unexpected file type: %q", uploaded.FileType)
	}

	files, err := run.Files(ctx)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 1 || files[0].ID != uploaded.ID {
		t.Fatalf("unexpected file list: %+v", files)
	}

	dst := filepath.Join(t.TempDir(), "downloaded.csv")
	if err := run.DownloadFile(ctx, uploaded.ID, dst); err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read download failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("downloaded bytes differ: %d vs %d", len(got), len(content))
	}
}

func TestUploadUpdatesStorageUsage(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()
	projectID := seedProject(t, s)

	run, err := client.InitRun(ctx, projectID, domain.InitRunRequest{Name: "storage-run"})
	if err != nil {
		t.Fatalf("InitRun failed: %v", err)
	}
	src := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(src, make([]byte, 512*1024), 0o600); err != nil {
		t.Fatalf("write source failed: %v", err)
	}
	if _, err := run.UploadFile(ctx, src, domain.FileTypeModel); err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	if err := run.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if run.StorageUsedMB < 0.49 || run.StorageUsedMB > 0.51 {
		t.Fatalf("expected ~0.5MB, got %v", run.StorageUsedMB)
	}
}

func TestDownloadMissingFileIsAPIError(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()
	projectID := seedProject(t, s)

	run, err := client.InitRun(ctx, projectID, domain.InitRunRequest{Name: "dl-run"})
	if err != nil {
		t.Fatalf("InitRun failed: %v", err)
	}

	err = run.DownloadFile(ctx, 999, filepath.Join(t.TempDir(), "out.bin"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", apiErr.StatusCode)
	}
}

func TestUploadDirectoryRejected(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()
	projectID := seedProject(t, s)

	run, err := client.InitRun(ctx, projectID, domain.InitRunRequest{Name: "dir-run"})
	if err != nil {
		t.Fatalf("InitRun failed: %v", err)
	}
	if _, err := run.UploadFile(ctx, t.TempDir(), domain.FileTypeOther); err == nil {
		t.Fatalf("expected error for directory upload")
	}
}
