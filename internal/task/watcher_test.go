package task

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeclarationWatcher(t *testing.T) {
	dir := t.TempDir()
	var (
		mu    sync.Mutex
		paths []string
	)
	w := NewDeclarationWatcher(dir, 50*time.Millisecond, zap.NewNop(), func(ctx context.Context, path string) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, path)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// 非声明文件被忽略
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	assert.Empty(t, paths)
	mu.Unlock()

	target := filepath.Join(dir, "user.links.menu.yml")
	require.NoError(t, os.WriteFile(target, []byte("user.page:\n  title: Page\n"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range paths {
			if filepath.Base(p) == "user.links.menu.yml" {
				return true
			}
		}
		return false
	}, 3*time.Second, 50*time.Millisecond)
}

func TestDeclarationWatcherMissingDir(t *testing.T) {
	w := NewDeclarationWatcher(filepath.Join(t.TempDir(), "missing"), time.Second, zap.NewNop(), func(context.Context, string) {})
	assert.Error(t, w.Start(context.Background()))
}
