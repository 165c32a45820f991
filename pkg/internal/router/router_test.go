package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/internal/jobs"
	"github.com/yeisme/flarecloud/pkg/internal/router"
	"github.com/yeisme/flarecloud/pkg/internal/storage"
	"github.com/yeisme/flarecloud/pkg/internal/types"
	"github.com/yeisme/flarecloud/pkg/middleware"
	"github.com/yeisme/flarecloud/pkg/scheduler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	engine *gin.Engine
	mgr    *storage.Manager
	sched  *scheduler.Scheduler
	base   string
}

func newServer(t *testing.T, mutate func(*configs.AppConfig)) *server {
	t.Helper()

	base := t.TempDir()

	cfg := configs.Default()
	cfg.Storage.Root = filepath.Join(base, "uploads")
	cfg.Server.StaticDir = filepath.Join(base, "public")
	cfg.Events.Enabled = false

	if mutate != nil {
		mutate(cfg)
	}

	require.NoError(t, os.MkdirAll(cfg.Server.StaticDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.StaticDir, "index.html"), []byte("<h1>flarecloud</h1>"), 0o600))

	mgr, err := storage.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	sched, err := scheduler.NewScheduler(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Shutdown() })

	require.NoError(t, jobs.RegisterRetentionJob(sched, mgr, cfg.Retention))

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.Storage.MaxMultipartMemory
	engine.Use(
		middleware.StorageMiddleware(mgr),
		middleware.SchedulerMiddleware(sched),
	)
	router.Register(engine, cfg)

	return &server{engine: engine, mgr: mgr, sched: sched, base: base}
}

func (s *server) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func (s *server) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *server) delete(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodDelete, path, nil))
}

func uploadRequest(t *testing.T, field, name string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)

	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func (s *server) upload(t *testing.T, name string, content []byte) types.UploadResponse {
	t.Helper()

	w := s.do(uploadRequest(t, "file", name, content))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())

	return resp.Error
}

func TestHelloScenario(t *testing.T) {
	s := newServer(t, nil)

	resp := s.upload(t, "hello.txt", []byte("hi"))
	assert.Equal(t, types.MsgUploaded, resp.Message)
	assert.Equal(t, "file", resp.File.FieldName)
	assert.Equal(t, "hello.txt", resp.File.OriginalName)
	assert.Equal(t, int64(2), resp.File.Size)
	assert.NotEmpty(t, resp.File.FileName)
	assert.NotEqual(t, "hello.txt", resp.File.FileName)

	name := resp.File.FileName

	// 列表包含新文件
	w := s.get("/files")
	require.Equal(t, http.StatusOK, w.Code)

	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Contains(t, names, name)

	// 下载
	w = s.get("/files/" + name)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), name)

	// 详情
	w = s.get("/files/" + name + "/details")
	require.Equal(t, http.StatusOK, w.Code)

	var details map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, name, details["filename"])
	assert.EqualValues(t, 2, details["size"])
	assert.Contains(t, details, "createdAt")
	assert.Contains(t, details, "modifiedAt")

	// 删除
	w = s.delete("/files/" + name)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"File deleted successfully!"}`, w.Body.String())

	// 删除后不可见
	w = s.get("/files/" + name)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, types.MsgFileNotFound, decodeError(t, w))

	w = s.get("/files/" + name + "/details")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.delete("/files/" + name)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.get("/files")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUpload_MissingFile(t *testing.T) {
	s := newServer(t, nil)

	// 字段名错误
	w := s.do(uploadRequest(t, "attachment", "hello.txt", []byte("hi")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, types.MsgNoFile, decodeError(t, w))

	// 非 multipart 请求
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")

	w = s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	names, err := s.mgr.GetStore().List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestUpload_EmptyFile(t *testing.T) {
	s := newServer(t, nil)

	resp := s.upload(t, "empty.txt", nil)
	assert.Equal(t, int64(0), resp.File.Size)

	w := s.get("/files/" + resp.File.FileName)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestUpload_TooLarge(t *testing.T) {
	s := newServer(t, func(cfg *configs.AppConfig) {
		cfg.Storage.MaxUploadSize = 1024
	})

	w := s.do(uploadRequest(t, "file", "big.bin", bytes.Repeat([]byte("x"), 4096)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	names, err := s.mgr.GetStore().List()
	require.NoError(t, err)
	assert.Empty(t, names)

	// 限制以内正常上传
	s.upload(t, "small.txt", []byte("ok"))
}

func TestUpload_Concurrent(t *testing.T) {
	s := newServer(t, nil)

	const n = 32

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		uploads = map[string]string{}
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			content := fmt.Sprintf("payload-%02d", i)

			w := s.do(uploadRequest(t, "file", "same.txt", []byte(content)))
			if !assert.Equal(t, http.StatusOK, w.Code) {
				return
			}

			var resp types.UploadResponse
			if !assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)) {
				return
			}

			mu.Lock()
			uploads[resp.File.FileName] = content
			mu.Unlock()
		}()
	}

	wg.Wait()
	require.Len(t, uploads, n)

	for name, content := range uploads {
		w := s.get("/files/" + name)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, content, w.Body.String())
	}
}

func TestPathTraversal(t *testing.T) {
	s := newServer(t, nil)

	secret := filepath.Join(s.base, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))

	w := s.get("/files/..")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, types.MsgInvalidName, decodeError(t, w))

	w = s.get("/files/../details")
	assert.NotEqual(t, http.StatusOK, w.Code)

	for _, p := range []string{
		"/files/..%2Fsecret.txt",
		"/files/..%2F..%2Fsecret.txt",
		"/files/%2E%2E%2Fsecret.txt",
		"/files/..%5Csecret.txt",
	} {
		w = s.get(p)
		assert.NotEqual(t, http.StatusOK, w.Code, p)
		assert.NotContains(t, w.Body.String(), "top secret", p)

		w = s.get(p + "/details")
		assert.NotEqual(t, http.StatusOK, w.Code, p)

		w = s.delete(p)
		assert.NotEqual(t, http.StatusOK, w.Code, p)
	}

	w = s.delete("/files/..")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, err := os.Stat(secret)
	assert.NoError(t, err, "file outside the storage root must survive")

	_, err = os.Stat(s.mgr.GetStore().Root())
	assert.NoError(t, err, "storage root must survive")
}

func TestListFiles_Gzip(t *testing.T) {
	s := newServer(t, nil)
	s.upload(t, "a.txt", []byte("a"))

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestListFiles_StorageUnavailable(t *testing.T) {
	s := newServer(t, nil)
	require.NoError(t, os.RemoveAll(s.mgr.GetStore().Root()))

	w := s.get("/files")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, types.MsgUnableToList, decodeError(t, w))

	w = s.get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDownload_Range(t *testing.T) {
	s := newServer(t, nil)
	resp := s.upload(t, "digits.txt", []byte("0123456789"))

	req := httptest.NewRequest(http.MethodGet, "/files/"+resp.File.FileName, nil)
	req.Header.Set("Range", "bytes=2-4")

	w := s.do(req)
	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "234", w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)

	w := s.get("/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "uploads", resp.Storage)
	assert.Equal(t, "disabled", resp.Events)
}

func TestSchedulerRoutes(t *testing.T) {
	s := newServer(t, nil)

	w := s.get("/scheduler/jobs")
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.JobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, jobs.JobRetentionSweep, resp.Jobs[0].Name)

	w = s.do(httptest.NewRequest(http.MethodPost, "/scheduler/jobs/missing/run", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedulerRunJob_Sweeps(t *testing.T) {
	s := newServer(t, nil)
	s.sched.Start()

	resp := s.upload(t, "old.txt", []byte("old"))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.mgr.GetStore().Root(), resp.File.FileName), past, past))

	w := s.do(httptest.NewRequest(http.MethodPost, "/scheduler/jobs/"+jobs.JobRetentionSweep+"/run", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		return s.get("/files/"+resp.File.FileName).Code == http.StatusNotFound
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStaticAndNoRoute(t *testing.T) {
	s := newServer(t, nil)

	w := s.get("/")
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "flarecloud")

	w = s.get("/missing.css")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(httptest.NewRequest(http.MethodPut, "/files", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSwaggerRoute(t *testing.T) {
	s := newServer(t, func(cfg *configs.AppConfig) {
		cfg.Server.Swagger = true
	})

	w := s.get("/swagger/doc.json")
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/upload")
	assert.Contains(t, paths, "/files/{filename}/details")
}

func TestSwaggerRoute_Disabled(t *testing.T) {
	s := newServer(t, nil)

	w := s.get("/swagger/doc.json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
