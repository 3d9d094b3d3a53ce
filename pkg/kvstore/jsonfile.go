// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultMaxFileBytes is the size cap spec.md §6 requires the filesystem
// JSON backend to enforce; writes that would exceed it fail with a
// BackendError-shaped StoreResult rather than growing the file unbounded.
const DefaultMaxFileBytes = 16 * 1024 * 1024

// JSONFileStore implements Store as a single JSON document on disk,
// rewritten wholesale on every write so readers never observe a partial
// write (spec.md §6: "Backends must persist atomically"). Namespace lookups
// and the substring Search use github.com/tidwall/gjson/sjson against the
// document's raw bytes instead of unmarshaling the whole tree on every
// operation, the way the teacher reaches for gjson/sjson wherever it needs
// schemaless JSON access.
type JSONFileStore struct {
	mu      sync.Mutex
	path    string
	maxSize int64
}

// NewJSONFileStore opens (or creates) a JSON file backend at path.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path, maxSize: DefaultMaxFileBytes}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			return nil, fmt.Errorf("failed to initialize json store at %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *JSONFileStore) read() (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read json store: %w", err)
	}
	if len(raw) == 0 {
		return "{}", nil
	}
	return string(raw), nil
}

func (s *JSONFileStore) write(doc string) error {
	if int64(len(doc)) > s.maxSize {
		return fmt.Errorf("json store would exceed max size %d bytes", s.maxSize)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("failed to stage json store write: %w", err)
	}
	// Rename is atomic on POSIX filesystems: readers see either the old or
	// the new whole file, never a partial one.
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to commit json store write: %w", err)
	}
	return nil
}

func jsonPointer(namespace, key string) string {
	return namespace + "." + escapeGJSONKey(key)
}

// escapeGJSONKey escapes characters gjson/sjson treat as path separators so
// arbitrary key strings round-trip safely.
func escapeGJSONKey(key string) string {
	replacer := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return replacer.Replace(key)
}

// Store implements Store.
func (s *JSONFileStore) Store(_ context.Context, key string, value any, namespace string) (StoreResult, error) {
	namespace = normalizeNamespace(namespace)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return StoreResult{Status: "error", Error: err.Error()}, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return StoreResult{Status: "error", Error: err.Error()}, fmt.Errorf("failed to encode value: %w", err)
	}

	updated, err := sjson.SetRawBytes([]byte(doc), jsonPointer(namespace, key), encoded)
	if err != nil {
		return StoreResult{Status: "error", Error: err.Error()}, fmt.Errorf("failed to set value: %w", err)
	}

	if err := s.write(string(updated)); err != nil {
		return StoreResult{Status: "error", Error: err.Error()}, err
	}

	now := time.Now()
	return StoreResult{ID: namespace + "/" + key, Timestamp: now.UnixMilli(), Status: "ok"}, nil
}

// Retrieve implements Store.
func (s *JSONFileStore) Retrieve(_ context.Context, key string, namespace string) (any, error) {
	namespace = normalizeNamespace(namespace)

	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := gjson.Get(doc, jsonPointer(namespace, key))
	if !result.Exists() {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal([]byte(result.Raw), &value); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return value, nil
}

// Search implements Store.
func (s *JSONFileStore) Search(_ context.Context, pattern string, namespace string) (map[string]any, error) {
	namespace = normalizeNamespace(namespace)

	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := make(map[string]any)
	nsResult := gjson.Get(doc, escapeGJSONKey(namespace))
	if !nsResult.Exists() {
		return result, nil
	}

	nsResult.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if pattern == "*" || strings.Contains(key, pattern) {
			var value any
			if err := json.Unmarshal([]byte(v.Raw), &value); err == nil {
				result[key] = value
			}
		}
		return true
	})
	return result, nil
}

// Delete implements Store.
func (s *JSONFileStore) Delete(_ context.Context, key string, namespace string) (bool, error) {
	namespace = normalizeNamespace(namespace)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return false, err
	}

	ptr := jsonPointer(namespace, key)
	if !gjson.Get(doc, ptr).Exists() {
		return false, nil
	}

	updated, err := sjson.Delete(doc, ptr)
	if err != nil {
		return false, fmt.Errorf("failed to delete key: %w", err)
	}
	if err := s.write(updated); err != nil {
		return false, err
	}
	return true, nil
}

// ListNamespaces implements Store.
func (s *JSONFileStore) ListNamespaces(_ context.Context) ([]string, error) {
	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var namespaces []string
	gjson.Parse(doc).ForEach(func(k, _ gjson.Result) bool {
		namespaces = append(namespaces, k.String())
		return true
	})
	return namespaces, nil
}

// Stats implements Store.
func (s *JSONFileStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return Stats{}, err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to stat json store: %w", err)
	}

	entries := 0
	var namespaces []string
	parsed := gjson.Parse(doc)
	parsed.ForEach(func(k, v gjson.Result) bool {
		namespaces = append(namespaces, k.String())
		v.ForEach(func(_, _ gjson.Result) bool {
			entries++
			return true
		})
		return true
	})

	return Stats{
		Entries:      entries,
		SizeBytes:    info.Size(),
		LastModified: info.ModTime().UnixMilli(),
		Namespaces:   namespaces,
	}, nil
}
