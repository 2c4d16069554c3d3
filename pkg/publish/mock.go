package publish

import (
	"context"
	"sync"
)

// MockUploader records uploads without contacting a store. It backs dry runs
// and tests.
type MockUploader struct {
	BaseURL string
	// FailKey makes the upload of that remote key fail with Err.
	FailKey string
	Err     error

	mu       sync.Mutex
	Uploaded map[string]string            // remote key -> local path
	Metadata map[string]map[string]string // remote key -> user metadata
}

func (m *MockUploader) Upload(ctx context.Context, localPath, remoteKey, sum string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.FailKey != "" && remoteKey == m.FailKey {
		return "", m.Err
	}

	metadata, err := objectMetadata(localPath, sum)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Uploaded == nil {
		m.Uploaded = make(map[string]string)
		m.Metadata = make(map[string]map[string]string)
	}
	m.Uploaded[remoteKey] = localPath
	m.Metadata[remoteKey] = metadata

	base := m.BaseURL
	if base == "" {
		base = "https://cdn.example.com"
	}
	return publicURL(base, remoteKey), nil
}
