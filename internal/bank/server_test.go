package bank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizrun/internal/model"
	"quizrun/internal/questions"
	"quizrun/internal/quiz"
)

func newTestServer(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()
	store := newTestStore(t)
	srv := httptest.NewServer(NewServer(store).Routes())
	t.Cleanup(srv.Close)
	return store, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestQuestionsEndpoint(t *testing.T) {
	store, srv := newTestServer(t)
	insertTestQuestion(t, store, model.LevelEasy, "E1?")
	insertTestQuestion(t, store, model.LevelMedium, "M1?")

	var records []model.RawQuestionRecord
	status := getJSON(t, srv.URL+"/api/questions?level=easy&type=multiple-choice", &records)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(records) != 1 || records[0].Question != "E1?" {
		t.Fatalf("unexpected records: %+v", records)
	}

	// No level filter returns everything.
	status = getJSON(t, srv.URL+"/api/questions", &records)
	if status != http.StatusOK || len(records) != 2 {
		t.Fatalf("expected 2 records, got status %d, %d records", status, len(records))
	}

	// An unknown level is an empty array, not null and not an error.
	resp, err := http.Get(srv.URL + "/api/questions?level=impossible")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		t.Fatalf("payload is not a JSON array: %s", raw)
	}
	if len(arr) != 0 {
		t.Errorf("expected empty array, got %s", raw)
	}
}

func TestQuestionsEndpointRejectsUnknownType(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/questions?type=true-false")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLevelsEndpoint(t *testing.T) {
	store, srv := newTestServer(t)

	var levels []model.Level
	status := getJSON(t, srv.URL+"/api/levels", &levels)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(levels) != 0 {
		t.Fatalf("expected no levels, got %v", levels)
	}

	insertTestQuestion(t, store, model.LevelHard, "H1?")
	insertTestQuestion(t, store, model.LevelEasy, "E1?")

	status = getJSON(t, srv.URL+"/api/levels", &levels)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	want := []model.Level{model.LevelEasy, model.LevelHard}
	if len(levels) != 2 || levels[0] != want[0] || levels[1] != want[1] {
		t.Errorf("expected %v, got %v", want, levels)
	}
}

// TestClientAgainstBank drives the real HTTP client and loader against the
// bank server, end to end.
func TestClientAgainstBank(t *testing.T) {
	store, srv := newTestServer(t)
	insertTestQuestion(t, store, model.LevelEasy, "E1?")
	insertTestQuestion(t, store, model.LevelEasy, "E2?")

	loader := quiz.NewLoader(questions.New(srv.URL))
	qs, err := loader.Load(context.Background(), model.LevelEasy)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	for _, q := range qs {
		if len(q.Options) != 3 {
			t.Errorf("question %q: expected 3 options, got %d", q.Text, len(q.Options))
		}
	}

	// A level with nothing in the bank surfaces as a fetch failure.
	_, err = loader.Load(context.Background(), model.LevelHard)
	var fe *questions.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError for empty level, got %v", err)
	}
}
