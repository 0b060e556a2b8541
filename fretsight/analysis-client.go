package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const analysisTimeout = 10 * time.Minute

// analysisClient talks to the transcription service that turns recorded
// audio into notes, hand positions and bends.
type analysisClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAnalysisClient(baseURL string) analysisClient {
	return analysisClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: analysisTimeout},
	}
}

type analysisErrorResponse struct {
	Detail string `json:"detail"`
}

func (c analysisClient) analyzeFile(ctx context.Context, audioPath string) (*transcription, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return c.analyze(ctx, filepath.Base(audioPath), file)
}

func (c analysisClient) analyze(ctx context.Context, fileName string, audio io.Reader) (*transcription, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	log.Info("uploading audio for analysis", "file", fileName, "bytes", body.Len(), "url", c.baseURL)
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "analysis request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp analysisErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &errResp) == nil && errResp.Detail != "" {
			return nil, errors.Errorf("analysis failed (%d): %s", resp.StatusCode, errResp.Detail)
		}
		return nil, errors.Errorf("analysis failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	tr, err := ParsePayload(resp.Body)
	if err != nil {
		return nil, err
	}
	log.Info("analysis finished", "elapsed", time.Since(started).Round(time.Millisecond), "notes", len(tr.Notes))
	return tr, nil
}
