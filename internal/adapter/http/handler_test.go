package httpadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"meli-automation/internal/adapter/memory"
	"meli-automation/internal/adapter/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := usecase.NewEngine(store.Campaigns(), store.Rules(), store.Schedules(), store.Actions(), logger, nil, usecase.EngineConfig{})
	campaigns := usecase.NewCampaignService(store.Campaigns(), store.Rules(), store.Schedules(), logger)
	srv := httptest.NewServer(NewHandler(campaigns, engine, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func TestCampaignAutomationFlow(t *testing.T) {
	srv := newTestServer(t)

	// simulate a campaign
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/v1/campaigns/simulate", map[string]any{
		"budget_cents":  100000,
		"duration_days": 30,
		"category":      "electronics",
		"keywords":      []string{"notebook"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var campaign struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &campaign))
	require.NotEmpty(t, campaign.ID)
	require.Equal(t, "draft", campaign.Status)

	// attach a rule
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/campaigns/"+campaign.ID+"/rules", map[string]any{
		"metric_type":     "acos",
		"threshold_value": 0.20,
		"action_type":     "pause",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// ingest metrics that cross the threshold
	resp, data = doJSON(t, http.MethodPost, srv.URL+"/api/v1/campaigns/"+campaign.ID+"/metrics", map[string]any{
		"acos": 0.35,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var eval struct {
		Actions []struct {
			ID     string `json:"id"`
			Reason string `json:"reason"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(data, &eval))
	require.Len(t, eval.Actions, 1)
	require.Contains(t, eval.Actions[0].Reason, "ACOS")

	// the action shows up in the pending list
	resp, data = doJSON(t, http.MethodGet, srv.URL+"/api/v1/actions?campaign_id="+campaign.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &pending))
	require.Len(t, pending, 1)

	// approve it; the campaign pauses
	resp, data = doJSON(t, http.MethodPost, srv.URL+"/api/v1/actions/"+pending[0].ID+"/resolve", map[string]any{"approve": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resolved struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &resolved))
	require.Equal(t, "paused", resolved.Status)

	// resolving twice conflicts
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/actions/"+pending[0].ID+"/resolve", map[string]any{"approve": true})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	// unknown campaign -> 404
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/campaigns/CAMP_NONE", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// malformed simulation -> 400
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/campaigns/simulate", map[string]any{
		"budget_cents": -5,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// listing actions for a quiet campaign is empty, not an error
	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/v1/actions?campaign_id=CAMP_NONE", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending []any
	require.NoError(t, json.Unmarshal(data, &pending))
	require.Empty(t, pending)
}

func TestSchedulerTickEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/v1/campaigns/simulate", map[string]any{
		"budget_cents": 1000, "duration_days": 7, "category": "toys",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var campaign struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &campaign))

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/campaigns/"+campaign.ID+"/schedules", map[string]any{
		"day_of_week": 1, "start_hour": 8, "end_hour": 18, "action": "activate",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// on-demand tick at Tuesday 09:00 fires the window once
	resp, data = doJSON(t, http.MethodPost, srv.URL+"/api/v1/scheduler/tick", map[string]any{
		"now": "2026-01-06T09:00:00Z",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tick struct {
		Actions []struct {
			ActionType string `json:"action_type"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(data, &tick))
	require.Len(t, tick.Actions, 1)
	require.Equal(t, "activate", tick.Actions[0].ActionType)

	// same occurrence, nothing more to fire
	resp, data = doJSON(t, http.MethodPost, srv.URL+"/api/v1/scheduler/tick", map[string]any{
		"now": "2026-01-06T09:05:00Z",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &tick))
	require.Empty(t, tick.Actions)
}
