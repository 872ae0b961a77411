package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gcharanteja/unilogger/domain"
)

// transferChunkSize bounds the memory used per file transfer.
const transferChunkSize = 8 * 1024

// UploadFile streams a local file to the run as a multipart upload. A missing
// or unreadable local file fails before any request is sent, with the os
// error (fs.ErrNotExist and friends) unwrapped intact.
func (c *Client) UploadFile(ctx context.Context, runID int64, path string, fileType domain.FileType) (*domain.RunFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("upload source %s is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.CopyBuffer(part, f, make([]byte, transferChunkSize)); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	u := fmt.Sprintf("%s/runs/%d/upload-file", c.baseURL, runID)
	if fileType != "" {
		u += "?" + url.Values{"file_type": {string(fileType)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var file domain.RunFile
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &file, nil
}

// ListRunFiles lists the files attached to a run.
func (c *Client) ListRunFiles(ctx context.Context, runID int64) ([]domain.RunFile, error) {
	var files []domain.RunFile
	if err := c.get(ctx, fmt.Sprintf("/runs/%d/files", runID), nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DownloadFile streams an attached file into outputPath in fixed-size
// chunks. The destination is created (or truncated) before the transfer.
func (c *Client) DownloadFile(ctx context.Context, runID, fileID int64, outputPath string) error {
	u := fmt.Sprintf("%s/runs/%d/files/%d/download", c.baseURL, runID, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, respBody)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if _, err := io.CopyBuffer(out, resp.Body, make([]byte, transferChunkSize)); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return out.Close()
}
