package model

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
)

func TestSlideIndexString(t *testing.T) {
	idx := SlideIndex{PlaylistID: 3, EntryIndex: 12, PageIndex: 0}
	if got := idx.String(); got != "3,12,0" {
		t.Fatalf("expected 3,12,0, got %q", got)
	}

	parsed, err := ParseSlideIndex(idx.String())
	if err != nil {
		t.Fatalf("ParseSlideIndex: %v", err)
	}
	if parsed != idx {
		t.Fatalf("expected %v, got %v", idx, parsed)
	}
}

func TestParseSlideIndexErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantNum bool
	}{
		{name: "empty", input: "", wantErr: ErrWrongNumberOfParts},
		{name: "two parts", input: "1,2", wantErr: ErrWrongNumberOfParts},
		{name: "four parts", input: "1,2,3,4", wantErr: ErrWrongNumberOfParts},
		{name: "not a number", input: "a,2,3", wantNum: true},
		{name: "negative entry", input: "1,-2,3", wantNum: true},
		{name: "blank page", input: "1,2,", wantNum: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSlideIndex(tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			var numErr *strconv.NumError
			if tc.wantNum && !errors.As(err, &numErr) {
				t.Fatalf("expected a number parse error, got %v", err)
			}
		})
	}
}

func TestSlideIndexJSON(t *testing.T) {
	type wrapper struct {
		Current *SlideIndex `json:"current"`
	}

	data, err := json.Marshal(wrapper{Current: &SlideIndex{PlaylistID: 1, EntryIndex: 2, PageIndex: 3}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"current":"1,2,3"}` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var decoded wrapper
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Current == nil || *decoded.Current != (SlideIndex{PlaylistID: 1, EntryIndex: 2, PageIndex: 3}) {
		t.Fatalf("unexpected decoded index %v", decoded.Current)
	}

	if err := json.Unmarshal([]byte(`{"current":"1,2"}`), &decoded); !errors.Is(err, ErrWrongNumberOfParts) {
		t.Fatalf("expected ErrWrongNumberOfParts, got %v", err)
	}
}
