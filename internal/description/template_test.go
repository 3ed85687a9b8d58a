package description

import (
	"errors"
	"strings"
	"testing"

	"descsvc/internal/domain"
)

func sampleInput() RenderInput {
	return RenderInput{
		Subject:      "Novel",
		SourceURL:    "https://example.com/playlist",
		About:        "A",
		WhatToExpect: "B",
		Subscribe:    "C",
		Timestamps:   "00:00 Intro",
		Tags:         "t1, t2",
	}
}

func TestRenderLayout(t *testing.T) {
	want := "Full Playlist: https://example.com/playlist\n\n" +
		"📚 About \"Novel\"\n\nA\n\n" +
		"⭐ What to Expect\n\nB\n\n" +
		"🔔 Subscribe for More\n\nC\n\n" +
		"⏰ Timestamps:\n\n00:00 Intro\n\n" +
		"Tags:\nt1, t2"
	if got := Render(sampleInput()); got != want {
		t.Fatalf("render mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderDeterministic(t *testing.T) {
	if Render(sampleInput()) != Render(sampleInput()) {
		t.Fatalf("render should be deterministic")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Render(sampleInput())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name    string
		text    string
		kind    ValidationKind
		section string
	}{
		{name: "empty", text: "", kind: EmptyDocument},
		{name: "too long", text: strings.Repeat("x", MaxDescriptionLength+1), kind: LengthExceeded},
		{name: "missing playlist", text: "About What to Expect", kind: MissingSection, section: "Full Playlist:"},
		{name: "missing tags", text: "Full Playlist: About What to Expect Subscribe for More Timestamps:", kind: MissingSection, section: "Tags:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.text)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Kind != tc.kind || verr.Section != tc.section {
				t.Fatalf("got %+v, want kind %s section %q", verr, tc.kind, tc.section)
			}
			if !errors.Is(err, domain.ErrItemRenderInvalid) {
				t.Fatalf("error should wrap ErrItemRenderInvalid")
			}
		})
	}
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	body := Render(sampleInput())
	pad := MaxDescriptionLength - len([]rune(body))
	text := body + strings.Repeat("é", pad)
	if err := Validate(text); err != nil {
		t.Fatalf("text at the limit should pass: %v", err)
	}
}

func TestValidateCountsCombiningMarks(t *testing.T) {
	body := Render(sampleInput())
	pad := MaxDescriptionLength - len([]rune(body))
	// Each "e\u0301" is two characters; the text ends two over the limit.
	text := body + strings.Repeat("e\u0301", pad/2+1)
	if pad%2 == 1 {
		text += "x"
	}
	err := Validate(text)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != LengthExceeded {
		t.Fatalf("expected LengthExceeded, got %v", err)
	}
	if verr.Length != len([]rune(text)) {
		t.Fatalf("length = %d, want %d", verr.Length, len([]rune(text)))
	}
}

func TestRenderNormalisesToNFC(t *testing.T) {
	in := sampleInput()
	in.About = "Cafe\u0301"
	got := Render(in)
	if !strings.Contains(got, "Caf\u00e9") || strings.Contains(got, "e\u0301") {
		t.Fatalf("render should compose combining marks: %q", got)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
