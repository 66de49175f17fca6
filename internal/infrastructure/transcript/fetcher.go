// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
)

// DefaultClientTimeout is the default HTTP client timeout for transcript
// downloads.
const DefaultClientTimeout = 1 * time.Minute

// maxLineBytes bounds a single transcript line. Utterances are short; a much
// larger line means a corrupt blob.
const maxLineBytes = 1 << 20

// Fetcher downloads JSONL transcripts from the call provider's storage. The
// URLs delivered in webhooks are pre-signed, so no auth header is needed.
type Fetcher struct {
	httpClient *http.Client
}

// Ensure Fetcher implements domain.TranscriptFetcher.
var _ domain.TranscriptFetcher = (*Fetcher)(nil)

// NewFetcher creates a new transcript fetcher.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = DefaultClientTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the transcript and parses one item per JSONL line. Blank
// lines are skipped; a malformed line fails the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]domain.TranscriptItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewInternalError("failed to create transcript request", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError("failed to download transcript", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewUpstreamError(
			fmt.Sprintf("transcript download returned status %d", resp.StatusCode))
	}

	var items []domain.TranscriptItem
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var item domain.TranscriptItem
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, domain.NewUpstreamError(
				fmt.Sprintf("malformed transcript line %d", line), err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewUpstreamError("failed to read transcript body", err)
	}

	return items, nil
}
