package gateway

import (
	"encoding/json"
	"testing"
)

func TestAskResultAcceptsStringAnswer(t *testing.T) {
	var r AskResult
	if err := json.Unmarshal([]byte(`{"answer":"plain text","hits":[]}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.Answer != "plain text" || len(r.Sections) != 0 {
		t.Fatalf("result = %+v, want plain answer only", r)
	}
}

func TestAskResultAcceptsStructuredAnswer(t *testing.T) {
	var r AskResult
	body := `{"answer":[{"filename":"notes.pdf","page_index":1,"bullets":["a","b"]}]}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.Answer != "" {
		t.Fatalf("answer = %q, want empty for structured response", r.Answer)
	}
	if len(r.Sections) != 1 || r.Sections[0].Filename != "notes.pdf" || len(r.Sections[0].Bullets) != 2 {
		t.Fatalf("sections = %+v", r.Sections)
	}
}

func TestAskResultAcceptsBareBulletList(t *testing.T) {
	var r AskResult
	if err := json.Unmarshal([]byte(`{"answer":["one","two"]}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(r.Sections) != 1 || len(r.Sections[0].Bullets) != 2 {
		t.Fatalf("sections = %+v, want one section with two bullets", r.Sections)
	}
}

func TestAskResultTolerantOfMissingAnswer(t *testing.T) {
	var r AskResult
	if err := json.Unmarshal([]byte(`{"hits":[{"doc_id":"d1"}]}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.Answer != "" || len(r.Sections) != 0 || len(r.Hits) != 1 {
		t.Fatalf("result = %+v", r)
	}
}
