package filestore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/flarecloud/pkg/internal/filestore"
)

func newStore(t *testing.T) *filestore.Store {
	t.Helper()

	s, err := filestore.New(filepath.Join(t.TempDir(), "uploads"), zerolog.Nop())
	require.NoError(t, err)

	return s
}

// age 将文件的修改时间回拨 d.
func age(t *testing.T, s *filestore.Store, name string, d time.Duration) {
	t.Helper()

	old := time.Now().Add(-d)
	require.NoError(t, os.Chtimes(filepath.Join(s.Root(), name), old, old))
}

func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")

	s, err := filestore.New(root, zerolog.Nop())
	require.NoError(t, err)

	fi, err := os.Stat(s.Root())
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.NoError(t, s.Ping())
}

func TestSave_ListStatOpen(t *testing.T) {
	s := newStore(t)

	info, err := s.Save(strings.NewReader("hi"))
	require.NoError(t, err)
	assert.NotEmpty(t, info.Name)
	assert.Equal(t, int64(2), info.Size)
	assert.False(t, info.ModifiedAt.IsZero())
	assert.False(t, info.CreatedAt.IsZero())

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{info.Name}, names)

	st, err := s.Stat(info.Name)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Size)

	f, fi, err := s.Open(info.Name)
	require.NoError(t, err)

	defer f.Close()

	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(body))
	assert.Equal(t, info.Name, fi.Name)
}

func TestSave_BinaryRoundTrip(t *testing.T) {
	s := newStore(t)

	payload := make([]byte, 256*1024)
	for i := range payload {
		payload[i] = byte(i * 31)
	}

	info, err := s.Save(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), info.Size)

	f, _, err := s.Open(info.Name)
	require.NoError(t, err)

	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSave_RemovesPartialFile(t *testing.T) {
	s := newStore(t)

	_, err := s.Save(io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.Error(t, err)

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSave_ConcurrentNamesAreUnique(t *testing.T) {
	s := newStore(t)

	const n = 64

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		names = map[string]string{}
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			content := strings.Repeat("x", i+1)

			info, err := s.Save(strings.NewReader(content))
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			names[info.Name] = content
			mu.Unlock()
		}()
	}

	wg.Wait()
	require.Len(t, names, n)

	for name, content := range names {
		f, _, err := s.Open(name)
		require.NoError(t, err)

		got, err := io.ReadAll(f)
		_ = f.Close()

		require.NoError(t, err)
		assert.Equal(t, content, string(got))
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)

	info, err := s.Save(strings.NewReader("bye"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(info.Name))

	names, err := s.List()
	require.NoError(t, err)
	assert.NotContains(t, names, info.Name)

	assert.ErrorIs(t, s.Delete(info.Name), filestore.ErrNotFound)

	_, err = s.Stat(info.Name)
	assert.ErrorIs(t, err, filestore.ErrNotFound)

	_, _, err = s.Open(info.Name)
	assert.ErrorIs(t, err, filestore.ErrNotFound)
}

func TestPathTraversalIsRejected(t *testing.T) {
	s := newStore(t)

	// 根目录的兄弟文件不能被访问
	secret := filepath.Join(filepath.Dir(s.Root()), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))

	for _, name := range []string{"..", ".", "", "../secret.txt", "..\\secret.txt", "a/../../secret.txt", secret} {
		_, err := s.Resolve(name)
		assert.ErrorIs(t, err, filestore.ErrInvalidName, "resolve %q", name)

		_, _, err = s.Open(name)
		assert.ErrorIs(t, err, filestore.ErrInvalidName, "open %q", name)

		_, err = s.Stat(name)
		assert.ErrorIs(t, err, filestore.ErrInvalidName, "stat %q", name)

		assert.ErrorIs(t, s.Delete(name), filestore.ErrInvalidName, "delete %q", name)
	}

	_, err := os.Stat(secret)
	assert.NoError(t, err, "file outside the root must survive")

	_, err = os.Stat(s.Root())
	assert.NoError(t, err, "root must survive")
}

func TestDirectoryIsNotAStoredFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(s.Root(), "nested"), 0o750))

	names, err := s.List()
	require.NoError(t, err)
	assert.Contains(t, names, "nested")

	_, _, err = s.Open("nested")
	assert.ErrorIs(t, err, filestore.ErrNotFound)

	_, err = s.Stat("nested")
	assert.ErrorIs(t, err, filestore.ErrNotFound)
}

func TestSweep_RemovesOnlyExpiredFiles(t *testing.T) {
	s := newStore(t)

	old, err := s.Save(strings.NewReader("old"))
	require.NoError(t, err)

	fresh, err := s.Save(strings.NewReader("fresh"))
	require.NoError(t, err)

	edge, err := s.Save(strings.NewReader("edge"))
	require.NoError(t, err)

	age(t, s, old.Name, 25*time.Hour)
	age(t, s, edge.Name, 23*time.Hour)

	var purged []string

	var mu sync.Mutex

	res, err := s.Sweep(context.Background(), filestore.SweepOptions{
		MaxAge:      24 * time.Hour,
		Concurrency: 4,
		OnPurged: func(fi filestore.FileInfo) {
			mu.Lock()
			purged = append(purged, fi.Name)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 0, res.Errors)
	assert.Equal(t, []string{old.Name}, purged)

	names, err := s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{fresh.Name, edge.Name}, names)
}

func TestSweep_SkipsDirectories(t *testing.T) {
	s := newStore(t)

	dir := filepath.Join(s.Root(), "keep")
	require.NoError(t, os.Mkdir(dir, 0o750))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(dir, old, old))

	res, err := s.Sweep(context.Background(), filestore.SweepOptions{MaxAge: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 0, res.Errors)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestSweep_UnreadableRootAbortsCycle(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.RemoveAll(s.Root()))

	_, err := s.Sweep(context.Background(), filestore.SweepOptions{MaxAge: time.Hour})
	assert.Error(t, err)
}

func TestSweep_RejectsNonPositiveMaxAge(t *testing.T) {
	s := newStore(t)

	_, err := s.Sweep(context.Background(), filestore.SweepOptions{})
	assert.Error(t, err)
}
