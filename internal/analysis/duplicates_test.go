package analysis

import (
	"encoding/json"
	"testing"
)

func TestVerifyDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		group    []DuplicateEntry
		wantKept bool
	}{
		{
			name: "same amount and date",
			group: []DuplicateEntry{
				NewDuplicateEntry("Grab Food", "2024-03-01", 120),
				NewDuplicateEntry("GrabFood", "2024-03-01", 120),
			},
			wantKept: true,
		},
		{
			name: "amounts equal at cents",
			group: []DuplicateEntry{
				NewDuplicateEntry("7-Eleven", "2024-03-01", 59.5),
				NewDuplicateEntry("7-Eleven", "2024-03-01", 59.501),
			},
			wantKept: true,
		},
		{
			name: "amounts differ",
			group: []DuplicateEntry{
				NewDuplicateEntry("7-Eleven", "2024-03-01", 59.5),
				NewDuplicateEntry("7-Eleven", "2024-03-01", 59.51),
			},
			wantKept: false,
		},
		{
			name: "different days",
			group: []DuplicateEntry{
				NewDuplicateEntry("Netflix", "2024-03-01", 419),
				NewDuplicateEntry("Netflix", "2024-04-01", 419),
			},
			wantKept: false,
		},
		{
			name: "timestamp on same day",
			group: []DuplicateEntry{
				NewDuplicateEntry("Shopee", "2024-03-01T09:15:00", 300),
				NewDuplicateEntry("Shopee", "2024-03-01", 300),
			},
			wantKept: true,
		},
		{
			name:     "single entry",
			group:    []DuplicateEntry{NewDuplicateEntry("Taxi", "2024-03-01", 80)},
			wantKept: false,
		},
		{
			name: "unreadable date",
			group: []DuplicateEntry{
				NewDuplicateEntry("Taxi", "yesterday", 80),
				NewDuplicateEntry("Taxi", "yesterday", 80),
			},
			wantKept: false,
		},
		{
			name: "three entries one off",
			group: []DuplicateEntry{
				NewDuplicateEntry("Lotus", "2024-03-02", 250),
				NewDuplicateEntry("Lotus", "2024-03-02", 250),
				NewDuplicateEntry("Lotus", "2024-03-03", 250),
			},
			wantKept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, discarded := VerifyDuplicates([][]DuplicateEntry{tt.group})
			if tt.wantKept && (len(kept) != 1 || discarded != 0) {
				t.Errorf("expected group to be kept, got kept=%d discarded=%d", len(kept), discarded)
			}
			if !tt.wantKept && (len(kept) != 0 || discarded != 1) {
				t.Errorf("expected group to be discarded, got kept=%d discarded=%d", len(kept), discarded)
			}
		})
	}
}

func TestVerifyDuplicates_NonNumericAmountFailsGroup(t *testing.T) {
	var group []DuplicateEntry
	raw := `[{"desc":"Gym","date":"2024-03-05","amount":"about 900"},{"desc":"Gym","date":"2024-03-05","amount":"about 900"}]`
	if err := json.Unmarshal([]byte(raw), &group); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	kept, discarded := VerifyDuplicates([][]DuplicateEntry{group})

	if len(kept) != 0 || discarded != 1 {
		t.Errorf("kept=%d discarded=%d, want 0 and 1", len(kept), discarded)
	}
}

func TestVerifyDuplicates_Empty(t *testing.T) {
	kept, discarded := VerifyDuplicates(nil)
	if kept == nil {
		t.Error("kept should be an empty slice, not nil")
	}
	if discarded != 0 {
		t.Errorf("discarded = %d, want 0", discarded)
	}
}
