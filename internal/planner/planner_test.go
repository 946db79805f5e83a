package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asapobra/quote-service/internal/catalog"
)

func TestHTTPPlannerPlan(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		reply := `Sugiro cimento para a base.
[SUGESTOES_INICIO]{"suggestions":[{"materialId":1,"quantity":8,"rationale":"base"}]}[SUGESTOES_FIM]`
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	defer srv.Close()

	p := NewHTTPPlanner(Config{Endpoint: srv.URL, APIKey: "sk-test", Model: "planner-1"})
	reply, err := p.Plan(context.Background(), "vou fazer uma laje de 20m2", []catalog.Material{
		{ID: 1, Name: "Cimento CP-II 50kg", Unit: "SC"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "planner-1", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Contains(t, gotReq.Messages[0].Content, "id=1 nome=Cimento CP-II 50kg")
	assert.Equal(t, "vou fazer uma laje de 20m2", gotReq.Messages[1].Content)

	assert.Equal(t, "Sugiro cimento para a base.", reply.Text)
	require.Len(t, reply.Suggestions, 1)
	assert.Equal(t, int64(1), reply.Suggestions[0].MaterialID)
	assert.Equal(t, 8.0, reply.Suggestions[0].Quantity)
}

func TestHTTPPlannerPlanUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHTTPPlanner(Config{Endpoint: srv.URL})
	_, err := p.Plan(context.Background(), "ola", nil)
	assert.Error(t, err)
}
