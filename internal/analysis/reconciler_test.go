package analysis

import (
	"errors"
	"strings"
	"testing"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantSummary   string
		wantAdvice    string
		wantAnomalies int
		wantGroups    int
	}{
		{
			name:        "prose around object",
			raw:         `Sure! Here is the result: {"summary":"ok","anomalies":[],"duplicates":[],"advice":"save more"} Thanks.`,
			wantSummary: "ok",
			wantAdvice:  "save more",
		},
		{
			name:        "pure JSON",
			raw:         `{"summary":"ใช้จ่ายปกติ","anomalies":[],"duplicates":[],"advice":"ออมเงิน"}`,
			wantSummary: "ใช้จ่ายปกติ",
			wantAdvice:  "ออมเงิน",
		},
		{
			name:        "markdown code fence",
			raw:         "```json\n{\"summary\":\"fenced\",\"advice\":\"a\"}\n```",
			wantSummary: "fenced",
			wantAdvice:  "a",
		},
		{
			name:        "braces in prose before payload",
			raw:         `Use {category} as key. {"summary":"real","advice":"b"}`,
			wantSummary: "real",
			wantAdvice:  "b",
		},
		{
			name:        "braces inside strings",
			raw:         `{"summary":"weird {text} here","advice":"}"} trailing {`,
			wantSummary: "weird {text} here",
			wantAdvice:  "}",
		},
		{
			name: "empty object",
			raw:  `{}`,
		},
		{
			name: "unrelated object",
			raw:  `{"foo": 1}`,
		},
		{
			name:        "unrelated object before payload",
			raw:         `Amounts are in {"unit":"THB"}. {"summary":"real","advice":"c"}`,
			wantSummary: "real",
			wantAdvice:  "c",
		},
		{
			name:        "missing optional fields",
			raw:         `{"summary":"only summary"}`,
			wantSummary: "only summary",
		},
		{
			name:          "anomalies and duplicates",
			raw:           `Result: {"summary":"s","anomalies":[{"id":3,"desc":"TV","amount":25000}],"duplicates":[[{"desc":"Grab","date":"2024-03-01","amount":120},{"desc":"Grab","date":"2024-03-01","amount":120}]],"advice":"x"}`,
			wantSummary:   "s",
			wantAdvice:    "x",
			wantAnomalies: 1,
			wantGroups:    1,
		},
		{
			name:        "advice as list of lines",
			raw:         `{"summary":"s","advice":["cook at home","cancel subscriptions"]}`,
			wantSummary: "s",
			wantAdvice:  "cook at home\ncancel subscriptions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.raw)
			if err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}
			if got.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if got.Advice != tt.wantAdvice {
				t.Errorf("Advice = %q, want %q", got.Advice, tt.wantAdvice)
			}
			if got.Anomalies == nil || got.Duplicates == nil {
				t.Fatalf("lists must not be nil: anomalies=%v duplicates=%v", got.Anomalies, got.Duplicates)
			}
			if len(got.Anomalies) != tt.wantAnomalies {
				t.Errorf("len(Anomalies) = %d, want %d", len(got.Anomalies), tt.wantAnomalies)
			}
			if len(got.Duplicates) != tt.wantGroups {
				t.Errorf("len(Duplicates) = %d, want %d", len(got.Duplicates), tt.wantGroups)
			}
		})
	}
}

func TestReconcile_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "I am sorry, I cannot analyze this data."},
		{name: "empty", raw: ""},
		{name: "whitespace", raw: "  \n\t "},
		{name: "JSON array", raw: `[1, 2]`},
		{name: "broken JSON", raw: `{"summary": "unterminated`},
		{name: "JSON string", raw: `"summary"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(tt.raw)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", pe.Raw, tt.raw)
			}
		})
	}
}

func TestReconcile_ParseErrorTruncatesRaw(t *testing.T) {
	raw := strings.Repeat("no json here ", 500)

	_, err := Reconcile(raw)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if len(pe.Raw) != maxParseErrorRaw {
		t.Errorf("len(Raw) = %d, want %d", len(pe.Raw), maxParseErrorRaw)
	}
	if !strings.Contains(err.Error(), "no json here") {
		t.Errorf("error message should quote a raw prefix, got %q", err.Error())
	}
	if len(err.Error()) > maxErrorMessageRaw+200 {
		t.Errorf("error message too long: %d bytes", len(err.Error()))
	}
}

func TestReconcile_TolerantFields(t *testing.T) {
	raw := `{"summary":"s","anomalies":[{"id":"12","description":"Flight","category":"Travel","amount":"1,200.50","reason":"rare"},"Late night taxi"],"duplicates":[[{"description":"Netflix","date":"2024-03-01","amount":"419"}]],"advice":"a"}`

	got, err := Reconcile(raw)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(got.Anomalies) != 2 {
		t.Fatalf("len(Anomalies) = %d, want 2", len(got.Anomalies))
	}

	a := got.Anomalies[0]
	if a.ID == nil || *a.ID != 12 {
		t.Errorf("ID = %v, want 12", a.ID)
	}
	if a.Description != "Flight" || a.Category != "Travel" || a.Reason != "rare" {
		t.Errorf("unexpected anomaly %+v", a)
	}
	if a.Amount != 1200.5 {
		t.Errorf("Amount = %v, want 1200.5", a.Amount)
	}
	if got.Anomalies[1].Description != "Late night taxi" {
		t.Errorf("bare string anomaly = %+v", got.Anomalies[1])
	}

	e := got.Duplicates[0][0]
	if e.Description != "Netflix" || e.Amount != 419 || !e.amountValid {
		t.Errorf("unexpected duplicate entry %+v", e)
	}
}

func TestMatchBrace(t *testing.T) {
	tests := []struct {
		s      string
		start  int
		want   int
		wantOK bool
	}{
		{s: `{}`, start: 0, want: 1, wantOK: true},
		{s: `x{"a":{"b":1}}y`, start: 1, want: 13, wantOK: true},
		{s: `{"a":"}"}`, start: 0, want: 8, wantOK: true},
		{s: `{"a":"\"}"}`, start: 0, want: 10, wantOK: true},
		{s: `{"a":1`, start: 0, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := matchBrace(tt.s, tt.start)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("matchBrace(%q, %d) = %d, %v; want %d, %v", tt.s, tt.start, got, ok, tt.want, tt.wantOK)
		}
	}
}
