package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"remindbot/internal/remind"
	logx "remindbot/pkg/logx"
)

// fileBackend stores the whole reminder set as one JSON document.
//
// Writes go to a temp file in the same directory, are fsynced, then renamed
// over the target, so a crash mid-save leaves the previous document intact.
type fileBackend struct {
	log  logx.Logger
	path string

	mu sync.Mutex
}

type fileDoc struct {
	Users map[string][]record `json:"users"`
}

func openFile(cfg Config, log logx.Logger) (Backend, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileBackend{log: log, path: path}, nil
}

func (b *fileBackend) Load(ctx context.Context) (remind.UserReminderSet, error) {
	_ = ctx
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		b.log.Debug("no prior state", logx.String("path", b.path))
		return remind.UserReminderSet{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}

	set := make(remind.UserReminderSet, len(doc.Users))
	for user, recs := range doc.Users {
		list := make([]remind.Reminder, 0, len(recs))
		for i, rec := range recs {
			r, err := decodeRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("user %s reminder %d: %w", user, i+1, err)
			}
			list = append(list, r)
		}
		set[user] = list
	}
	return set, nil
}

func (b *fileBackend) Save(ctx context.Context, set remind.UserReminderSet) error {
	_ = ctx
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := fileDoc{Users: make(map[string][]record, len(set))}
	for user, list := range set {
		recs := make([]record, 0, len(list))
		for _, r := range list {
			recs = append(recs, encodeRecord(r))
		}
		doc.Users[user] = recs
	}

	// json.Marshal sorts map keys, so saves of the same set are stable.
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, b.path)
}

func (b *fileBackend) Close() error { return nil }
