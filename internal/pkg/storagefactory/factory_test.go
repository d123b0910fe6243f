package storagefactory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"ikhtibar/internal/config"
)

func TestNewStorage_Local(t *testing.T) {
	tmpDir := t.TempDir()
	baseURL := "http://localhost:8080/storage"

	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr bool
	}{
		{
			name: "valid local storage config",
			cfg: &config.StorageConfig{
				Type: "local",
				Local: &config.LocalConfig{
					BasePath:      tmpDir,
					BaseURL:       baseURL,
					PresignExpiry: 3600,
				},
			},
			wantErr: false,
		},
		{
			name: "missing local config",
			cfg: &config.StorageConfig{
				Type:  "local",
				Local: nil,
			},
			wantErr: true,
		},
		{
			name: "unsupported storage type",
			cfg: &config.StorageConfig{
				Type: "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage, err := NewStorage(ctx, tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewStorage() expected error, got nil")
				}
				if storage != nil {
					t.Errorf("NewStorage() expected nil storage, got %v", storage)
				}
				return
			}

			if err != nil {
				t.Errorf("NewStorage() unexpected error: %v", err)
				return
			}

			if storage == nil {
				t.Errorf("NewStorage() expected storage instance, got nil")
			}
		})
	}
}

func TestLocalStorage_Operations(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &config.StorageConfig{
		Type: "local",
		Local: &config.LocalConfig{
			BasePath:      tmpDir,
			BaseURL:       "http://localhost:8080/storage",
			PresignExpiry: 3600,
		},
	}

	ctx := context.Background()
	store, err := NewStorage(ctx, cfg)
	if err != nil {
		t.Fatalf("NewStorage() error: %v", err)
	}

	key := "media/user-1/test.txt"
	content := []byte("exam attachment")

	url, err := store.Upload(ctx, key, bytes.NewReader(content), "text/plain")
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if url == "" {
		t.Error("Upload() returned empty URL")
	}

	exists, err := store.Exists(ctx, key)
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v; want true, nil", exists, err)
	}

	rc, err := store.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, content) {
		t.Errorf("Download() = %q, want %q", got, content)
	}

	info, err := store.GetFileInfo(ctx, key)
	if err != nil {
		t.Fatalf("GetFileInfo() error: %v", err)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("GetFileInfo() size = %d, want %d", info.Size, len(content))
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	exists, _ = store.Exists(ctx, key)
	if exists {
		t.Error("Exists() after Delete() = true, want false")
	}
}
