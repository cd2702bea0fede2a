package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rancher/scanconfig/pkg/notify"
	"github.com/rancher/scanconfig/pkg/scan"
	"github.com/rancher/scanconfig/pkg/scanconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type rancherServer struct {
	*httptest.Server
	mu       sync.Mutex
	recorded []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newRancherServer(t *testing.T) *rancherServer {
	s := &rancherServer{routes: map[string]http.HandlerFunc{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.recorded = append(s.recorded, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		handler, ok := s.routes[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if !ok {
			http.Error(w, `{"type":"error","status":404}`, http.StatusNotFound)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(s.Close)

	s.json(http.MethodGet, "/v3/projects", http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{{
			"id":        "c-1:p-sys",
			"name":      "System",
			"clusterId": "c-1",
			"labels":    map[string]string{"authz.management.cattle.io/system-project": "true"},
			"links":     map[string]string{"self": s.URL + "/v3/projects/c-1:p-sys"},
		}},
	})
	return s
}

func (s *rancherServer) json(method, path string, status int, body interface{}) {
	s.routes[method+" "+path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (s *rancherServer) echo(method, path string) {
	s.routes[method+" "+path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.Copy(w, r.Body)
	}
}

func (s *rancherServer) configMaps(items ...map[string]interface{}) {
	if items == nil {
		items = []map[string]interface{}{}
	}
	s.json(http.MethodGet, "/v3/projects/c-1:p-sys/configmaps", http.StatusOK, map[string]interface{}{"data": items})
}

func (s *rancherServer) requests(method string) []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []recordedRequest
	for _, r := range s.recorded {
		if r.Method == method {
			result = append(result, r)
		}
	}
	return result
}

func run(t *testing.T, s *rancherServer, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	global := []string{"scanconfig", "--server", s.URL, "--token", "token-x:y", "--cluster", "c-1", "--locale", "en"}
	err := app.Run(append(global, args...))
	return out.String(), err
}

func storedConfig(data string) map[string]interface{} {
	return map[string]interface{}{
		"id":          "security-scan:security-scan-cfg",
		"type":        "configMap",
		"name":        "security-scan-cfg",
		"namespaceId": "security-scan",
		"data":        map[string]string{"config.json": data},
	}
}

func TestSkipAddCreatesThenSaves(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps()
	s.echo(http.MethodPost, "/v3/projects/c-1:p-sys/configmap")
	s.echo(http.MethodPut, "/v3/projects/c-1:p-sys/configMaps/security-scan:security-scan-cfg")

	_, err := run(t, s, "skip", "add", "1.1.1", "1.2", "1.1.1")
	require.NoError(t, err)

	posts := s.requests(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Contains(t, posts[0].Body, `"config.json":"{\"skip\":[]}"`)

	puts := s.requests(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Contains(t, puts[0].Body, `"config.json":"{\"skip\":[\"1.1.1\",\"1.2\"]}"`)
}

func TestSkipRemove(t *testing.T) {
	s := newRancherServer(t)
	record := storedConfig(`{"skip":["a","b","c"]}`)
	record["links"] = map[string]string{"self": s.URL + "/v3/projects/c-1:p-sys/configMaps/security-scan:security-scan-cfg"}
	s.configMaps(record)
	s.echo(http.MethodPut, "/v3/projects/c-1:p-sys/configMaps/security-scan:security-scan-cfg")

	_, err := run(t, s, "skip", "remove", "b")
	require.NoError(t, err)
	assert.Empty(t, s.requests(http.MethodPost))
	puts := s.requests(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Contains(t, puts[0].Body, `{\"skip\":[\"a\",\"c\"]}`)
}

func TestShow(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps(storedConfig(`{"skip":["4.1.1",7]}`))

	out, err := run(t, s, "show", "-o", "json")
	require.NoError(t, err)

	var view configView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, view.Exists)
	assert.Equal(t, []string{"4.1.1"}, view.Skip)
	assert.False(t, view.Valid)
	assert.NotEmpty(t, view.Error)

	out, err = run(t, s, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "exists: true")
	assert.Contains(t, out, "security-scan-cfg")
}

func TestShowMissing(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps()

	out, err := run(t, s, "show", "-o", "json")
	require.NoError(t, err)
	var view configView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.False(t, view.Exists)
	assert.Empty(t, view.Skip)
	assert.True(t, view.Valid)
}

func TestValidate(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps(storedConfig(`{"skip":"1.1"}`))

	_, err := run(t, s, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error parsing the security scan config")
	assert.True(t, scanconfig.IsConfigFormatError(err))
}

func TestCreateFailureIsReported(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps()
	s.json(http.MethodPost, "/v3/projects/c-1:p-sys/configmap", http.StatusForbidden, map[string]string{"message": "denied"})

	_, err := run(t, s, "skip", "set", "1.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error creating the default security scan config")
	assert.Empty(t, s.requests(http.MethodPut))
}

func TestEdit(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps()
	s.echo(http.MethodPost, "/v3/projects/c-1:p-sys/configmap")
	s.echo(http.MethodPut, "/v3/projects/c-1:p-sys/configMaps/security-scan:security-scan-cfg")

	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("config.json: '{\"skip\":[\"5.1\"]}'\nextra: value\n"), 0o600))

	_, err := run(t, s, "edit", "--data", "--file", path)
	require.NoError(t, err)
	puts := s.requests(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Contains(t, puts[0].Body, `"extra":"value"`)
	assert.Contains(t, puts[0].Body, `{\"skip\":[\"5.1\"]}`)
}

func TestRunScan(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps()
	s.json(http.MethodGet, "/v3/clusterScans", http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	s.json(http.MethodGet, "/v3/clusters/c-1", http.StatusOK, map[string]interface{}{
		"id":      "c-1",
		"actions": map[string]string{"runSecurityScan": s.URL + "/v3/clusters/c-1/run"},
	})
	s.json(http.MethodPost, "/v3/clusters/c-1/run", http.StatusOK, map[string]interface{}{})

	out, err := run(t, s, "run-scan")
	require.NoError(t, err)
	assert.Contains(t, out, "scan requested for cluster c-1")

	posts := s.requests(http.MethodPost)
	require.Len(t, posts, 1)
	assert.JSONEq(t, `{"failuresOnly":false,"skip":[]}`, posts[0].Body)
}

func TestRunScanBlockedByRunningScan(t *testing.T) {
	s := newRancherServer(t)
	s.configMaps()
	s.json(http.MethodGet, "/v3/clusterScans", http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{{"id": "c-1:ss-1", "clusterId": "c-1", "state": "running"}},
	})

	_, err := run(t, s, "run-scan")
	require.Error(t, err)
	assert.ErrorIs(t, err, scan.ErrScanRunning)
	assert.Contains(t, err.Error(), "already running")
	assert.Empty(t, s.requests(http.MethodPost))
}

func TestUnknownBackend(t *testing.T) {
	s := newRancherServer(t)
	_, err := run(t, s, "--backend", "etcd", "show")
	assert.Error(t, err)
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedup([]string{"a", "", "b", "a"}))
	assert.Equal(t, []string{}, dedup(nil))
}

func TestFailureUsesOnlyNewNotifications(t *testing.T) {
	env := &environment{notifications: notify.NewRecorder(nil)}
	env.notifications.FromError("Error loading the security scan config", "earlier step")
	seen := len(env.notifications.Notifications())

	assert.NoError(t, env.failure(seen, nil))

	err := env.failure(seen, scan.ErrScanRunning)
	assert.Same(t, scan.ErrScanRunning, err)

	formatErr := &scanconfig.ConfigFormatError{Err: errors.New("bad skip")}
	env.notifications.FromError("Error parsing the security scan config", formatErr.Error())
	err = env.failure(seen, formatErr)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Error parsing the security scan config: "))
	assert.True(t, scanconfig.IsConfigFormatError(err))
}
