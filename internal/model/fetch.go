package model

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxModelBytes caps a single fetched model artifact.
const maxModelBytes = 512 << 20

// Fetcher reads model artifacts from local paths or http(s) URLs.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Exists reports whether location can be fetched. URLs are probed with HEAD.
func (f *Fetcher) Exists(ctx context.Context, location string) bool {
	if !isRemote(location) {
		info, err := os.Stat(location)
		return err == nil && !info.IsDir()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, location, nil)
	if err != nil {
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Locate returns the first candidate that exists.
func (f *Fetcher) Locate(ctx context.Context, candidates []string) (string, bool) {
	for _, c := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if f.Exists(ctx, c) {
			return c, true
		}
	}
	return "", false
}

// Fetch returns the full content at location.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !isRemote(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", location, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", location, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: HTTP status %d", location, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxModelBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	if len(data) > maxModelBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", location, maxModelBytes)
	}
	return data, nil
}

// Resolve locates ref relative to the description found at base.
func Resolve(base, ref string) string {
	if isRemote(ref) || filepath.IsAbs(ref) {
		return ref
	}
	if isRemote(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}
	return filepath.Join(filepath.Dir(base), ref)
}
