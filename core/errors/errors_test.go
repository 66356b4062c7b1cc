package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("verse", "kjv-john-3-16")
	if got := err.Error(); got != "verse not found: kjv-john-3-16" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}

	noID := NewNotFound("version", "")
	if got := noID.Error(); got != "version not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("USFM", "chapter 3", "missing verse marker")
	if got := err.Error(); !strings.Contains(got, "USFM") || !strings.Contains(got, "chapter 3") {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	underlying := stderrors.New("database is locked")
	err := NewStore("bulk put", "bible_verses", underlying)
	if !Is(err, underlying) {
		t.Error("StoreError should unwrap to underlying error")
	}
	if got := err.Error(); !strings.Contains(got, "bible_verses") {
		t.Errorf("Error() = %q", got)
	}
}

func TestStoreErrorQuota(t *testing.T) {
	err := NewStore("bulk put", "bible_verses", ErrQuotaExceeded)
	if !Is(err, ErrQuotaExceeded) {
		t.Error("quota failure should be detectable through StoreError")
	}
}

func TestFetchError(t *testing.T) {
	underlying := stderrors.New("connection refused")
	err := NewFetch("https://example.com/kjv.json", underlying)
	if !Is(err, underlying) {
		t.Error("FetchError should unwrap to underlying error")
	}
	if got := err.Error(); !strings.Contains(got, "example.com") {
		t.Errorf("Error() = %q", got)
	}
}

func TestIngestError(t *testing.T) {
	underlying := stderrors.New("unexpected end of JSON input")
	err := NewIngest("kjv", "decode", underlying)
	if !Is(err, underlying) {
		t.Error("IngestError should unwrap to underlying error")
	}
	if got := err.Error(); !strings.Contains(got, "kjv") || !strings.Contains(got, "decode") {
		t.Errorf("Error() = %q", got)
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("content type", "text/html is not structured data")
	if !Is(err, ErrUnsupported) {
		t.Error("UnsupportedError should unwrap to ErrUnsupported")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	base := stderrors.New("base")
	wrapped := Wrap(base, "context")
	if !Is(wrapped, base) {
		t.Error("wrapped error should match base")
	}
	if wrapped.Error() != "context: base" {
		t.Errorf("Error() = %q", wrapped.Error())
	}

	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
	wrappedF := Wrapf(base, "item %d", 7)
	if wrappedF.Error() != "item 7: base" {
		t.Errorf("Error() = %q", wrappedF.Error())
	}
}

func TestAs(t *testing.T) {
	err := Wrap(NewIngest("web", "normalize", stderrors.New("bad shape")), "download failed")
	var ingestErr *IngestError
	if !As(err, &ingestErr) {
		t.Fatal("As should find IngestError through wrapping")
	}
	if ingestErr.VersionID != "web" {
		t.Errorf("VersionID = %q", ingestErr.VersionID)
	}
}
