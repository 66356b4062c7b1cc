package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/ref"
)

func TestVersesForReference(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedVersion(t, st, "kjv")

	var verses []BibleVerse
	for v := 1; v <= 6; v++ {
		verses = append(verses, BibleVerse{
			VersionID: "kjv", Book: "John", Chapter: 3, Verse: v,
			Text: fmt.Sprintf("verse %d", v),
		})
	}
	if err := st.BulkPutVerses(ctx, verses); err != nil {
		t.Fatalf("BulkPutVerses: %v", err)
	}

	tests := []struct {
		name string
		r    ref.Reference
		want int
	}{
		{"single verse", ref.Reference{Book: "John", Chapter: 3, Verse: 16}, 0},
		{"found verse", ref.Reference{Book: "John", Chapter: 3, Verse: 2}, 1},
		{"range", ref.Reference{Book: "John", Chapter: 3, Verse: 2, VerseEnd: 4}, 3},
		{"whole chapter", ref.Reference{Book: "John", Chapter: 3}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.VersesForReference(ctx, "kjv", tt.r)
			if tt.want == 0 {
				if !errors.Is(err, errors.ErrNotFound) {
					t.Fatalf("err = %v, want ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VersesForReference: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d verses, want %d", len(got), tt.want)
			}
		})
	}
}
