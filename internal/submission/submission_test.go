package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_SuccessOn2xx(t *testing.T) {
	var received Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL, 5*time.Second)
	payload := Payload{
		AnalyzedStories: []AnalyzedStory{
			{StoryTitle: "t", RelatedNewsIDs: []string{"a1"}, AnalysisSummary: "s", MainCategories: []Category{CategoryMarkets}},
		},
		UngroupedNewsIDs: []string{"a2"},
	}
	err := s.Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, payload.AnalyzedStories[0].StoryTitle, received.AnalyzedStories[0].StoryTitle)
}

func TestSubmit_NonTwoXXReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL, 5*time.Second)
	err := s.Submit(context.Background(), Payload{})
	assert.Error(t, err)
}

func TestSubmit_NetworkErrorReturnsError(t *testing.T) {
	s := NewSubmitter("http://127.0.0.1:0", 1*time.Second)
	err := s.Submit(context.Background(), Payload{})
	assert.Error(t, err)
}

func TestNewSubmitter_DefaultsTimeout(t *testing.T) {
	s := NewSubmitter("http://example.invalid", 0)
	assert.Equal(t, 30*time.Second, s.client.Timeout)
}
