package llm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/temirov/etl-agents/internal/align"
	"github.com/temirov/etl-agents/internal/llm"
)

func completionBody(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + content + `}}]}`
}

func testProblem() align.Problem {
	return align.Problem{
		SourceHeader:   []string{"id", "name"},
		TargetHeader:   []string{"id", "name"},
		SourceCSV:      "id,name\n1,ada\n2,grace\n3,edsger\n",
		TargetCSV:      "id,name\n3,edsger\n1,ada\n2,grace\n",
		SourceRowCount: 3,
		TargetRowCount: 3,
	}
}

func newBackend(server *httptest.Server) llm.ModelBackend {
	return llm.ModelBackend{
		Client:      llm.Client{HTTPBaseURL: server.URL, APIKey: "test-key", HTTPClient: server.Client()},
		BackendName: "gpt-4.1",
		ModelID:     "gpt-4.1",
		MaxTokens:   256,
	}
}

func TestProposeOrderingParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(completionBody(`"{\"order\":[1,2,0],\"confidence\":0.91}"`)))
	}))
	defer server.Close()

	candidate, err := newBackend(server).ProposeOrdering(context.Background(), testProblem())
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if candidate.Backend != "gpt-4.1" {
		t.Fatalf("backend %q", candidate.Backend)
	}
	if len(candidate.Order) != 3 || candidate.Order[0] != 1 || candidate.Order[1] != 2 || candidate.Order[2] != 0 {
		t.Fatalf("order %v", candidate.Order)
	}
	if candidate.Confidence != 0.91 {
		t.Fatalf("confidence %v", candidate.Confidence)
	}
}

func TestProposeOrderingRejectsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(completionBody(`"the best order is 1, 2, 0"`)))
	}))
	defer server.Close()

	_, err := newBackend(server).ProposeOrdering(context.Background(), testProblem())
	if err == nil || !strings.Contains(err.Error(), "parse ordering response") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEvaluateParsesScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(completionBody(`"{\"score\":0.85,\"rationale\":\"rows align\"}"`)))
	}))
	defer server.Close()

	score, err := newBackend(server).Evaluate(context.Background(), testProblem(), align.Candidate{Backend: "m1", Order: []int{1, 2, 0}})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if score.Value != 0.85 || score.Rationale != "rows align" {
		t.Fatalf("score %+v", score)
	}
}

func TestEvaluateRejectsOutOfRangeScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(completionBody(`"{\"score\":1.4,\"rationale\":\"overconfident\"}"`)))
	}))
	defer server.Close()

	_, err := newBackend(server).Evaluate(context.Background(), testProblem(), align.Candidate{Order: []int{0, 1, 2}})
	if err == nil || !strings.Contains(err.Error(), "outside [0,1]") {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	var callCount atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if callCount.Add(1) == 1 {
			writer.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = writer.Write([]byte(completionBody(`"{\"order\":[0,1,2],\"confidence\":0.5}"`)))
	}))
	defer server.Close()

	backend := newBackend(server)
	backend.MaxRetries = 2
	candidate, err := backend.ProposeOrdering(context.Background(), testProblem())
	if err != nil {
		t.Fatalf("propose after retry: %v", err)
	}
	if got := callCount.Load(); got != 2 {
		t.Fatalf("call count %d", got)
	}
	if len(candidate.Order) != 3 {
		t.Fatalf("order %v", candidate.Order)
	}
}
