package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

// AudioStore persists a narration file and returns the reference stored
// on the lesson: a filesystem path for local storage, a public URL for
// bucket storage.
type AudioStore interface {
	Save(filename string, data []byte) (string, error)
}

// LocalAudioStore writes MP3 files under a directory on disk.
type LocalAudioStore struct {
	Dir string
}

func (s *LocalAudioStore) Save(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// SupabaseAudioStore uploads narration files to the uploads bucket and
// returns the public URL.
type SupabaseAudioStore struct {
	URL string
	Key string
}

func (s *SupabaseAudioStore) Save(filename string, data []byte) (string, error) {
	client := storage.NewClient(s.URL+"/storage/v1", s.Key, nil)

	objectPath := fmt.Sprintf("audio/%s", filename)
	contentType := "audio/mpeg"
	_, err := client.UploadFile("uploads", objectPath, bytes.NewBuffer(data), storage.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/storage/v1/object/public/uploads/%s", s.URL, objectPath), nil
}
