package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/loader"
	"github.com/ekaya-inc/join-advisor/pkg/session"
)

const (
	ordersCSV = "customer_id,amount\nC1,10\nC2,20\nC3,30\n"
	custCSV   = "CustomerID,region\nC1,west\nC2,east\nC9,north\n"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	manager := session.NewManager(config.Default(), nil, logger)

	mux := http.NewServeMux()
	NewHealthHandler(config.Default(), logger).RegisterRoutes(mux)
	NewSessionHandler(manager, loader.New(logger), logger).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body []byte, out interface{}) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	var created map[string]string
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", nil, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created["session_id"])
	return created["session_id"]
}

func TestSessionAPIFullFlow(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	var snap map[string]interface{}
	resp := doJSON(t, http.MethodPost, base+"/tables/left", []byte(ordersCSV), &snap)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, snap["row_count"])

	resp = doJSON(t, http.MethodPost, base+"/tables/right", []byte(custCSV), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detected struct {
		Candidates []struct {
			Pairs []struct {
				Left  string `json:"left"`
				Right string `json:"right"`
			} `json:"pairs"`
		} `json:"candidates"`
	}
	resp = doJSON(t, http.MethodPost, base+"/candidates", nil, &detected)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, detected.Candidates)
	assert.Equal(t, "customer_id", detected.Candidates[0].Pairs[0].Left)

	var scored struct {
		Reports []struct {
			Candidate struct {
				Pairs []struct {
					Left  string `json:"left"`
					Right string `json:"right"`
				} `json:"pairs"`
			} `json:"candidate"`
			Score float64 `json:"score"`
		} `json:"reports"`
	}
	resp = doJSON(t, http.MethodPost, base+"/reports", nil, &scored)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, scored.Reports)
	assert.Greater(t, scored.Reports[0].Score, 0.0)

	candidateID := scored.Reports[0].Candidate.Pairs[0].Left + "=" + scored.Reports[0].Candidate.Pairs[0].Right
	body, _ := json.Marshal(map[string]string{"candidate_id": candidateID})
	resp = doJSON(t, http.MethodPost, base+"/selection", body, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		JoinedRowCount int `json:"joined_row_count"`
		UnmatchedLeft  int `json:"unmatched_left"`
	}
	body, _ = json.Marshal(map[string]string{"join_type": "left_outer"})
	resp = doJSON(t, http.MethodPost, base+"/join", body, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, result.JoinedRowCount)
	assert.Equal(t, 1, result.UnmatchedLeft)

	exportResp, err := http.Get(base + "/export")
	require.NoError(t, err)
	defer exportResp.Body.Close()
	require.Equal(t, http.StatusOK, exportResp.StatusCode)
	assert.Equal(t, "text/csv", exportResp.Header.Get("Content-Type"))

	var sb strings.Builder
	_, err = io.Copy(&sb, exportResp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sb.String(), "customer_id,amount,CustomerID,region\n"))
	assert.Equal(t, 4, strings.Count(sb.String(), "\n"))
}

func TestSessionAPISequenceErrors(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	resp := doJSON(t, http.MethodPost, base+"/candidates", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/reports", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err := http.Get(base + "/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSessionAPIValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/not-a-uuid/candidates", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/sessions/00000000-0000-0000-0000-000000000000/candidates", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	resp = doJSON(t, http.MethodPost, base+"/tables/middle", []byte(ordersCSV), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Zero-row uploads fail profiling.
	resp = doJSON(t, http.MethodPost, base+"/tables/left", []byte("id,name\n"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSessionAPINoCompatibleColumns(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	resp := doJSON(t, http.MethodPost, base+"/tables/left", []byte(ordersCSV), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, base+"/tables/right", []byte("warehouse\nW1\nW2\n"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detected struct {
		Candidates []interface{} `json:"candidates"`
		Warning    string        `json:"warning"`
	}
	resp = doJSON(t, http.MethodPost, base+"/candidates", nil, &detected)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, detected.Candidates)
	assert.NotEmpty(t, detected.Warning)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ping PingResponse
	pingResp := doJSON(t, http.MethodGet, srv.URL+"/ping", nil, &ping)
	assert.Equal(t, http.StatusOK, pingResp.StatusCode)
	assert.Equal(t, "ok", ping.Status)
	assert.Equal(t, "join-advisor", ping.Service)
}

func TestSessionDelete(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp2 := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+id+"/candidates", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
