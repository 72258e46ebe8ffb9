package citation

import (
	"testing"

	"github.com/vanderheijden86/permitflow/pkg/model"
	"pgregory.net/rapid"
)

func testRecords() []model.CitationRecord {
	return []model.CitationRecord{
		{ID: "MCMC_Guideline", APA: "MCMC. (2021). Guideline.", URL: "https://example.test/g.pdf"},
		{ID: "Penang_Code", APA: "Penang. (2019). Code.", URL: "https://example.test/c.pdf"},
		{ID: "No_URL", APA: "Missing url", URL: ""},
		{ID: "", APA: "anonymous", URL: "https://example.test/a.pdf"},
		{ID: "MCMC_Guideline", APA: "duplicate", URL: "https://example.test/dup.pdf"},
	}
}

func TestResolve(t *testing.T) {
	r := NewRegistry(testRecords())

	tests := []struct {
		key    string
		wantOK bool
	}{
		{"MCMC_Guideline", true},
		{"Penang_Code", true},
		{"No_URL", false},
		{"missing", false},
		{"", false},
	}
	for _, tt := range tests {
		rec, ok := r.Resolve(tt.key)
		if ok != tt.wantOK {
			t.Errorf("Resolve(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
		}
		if ok && (rec.APA == "" || rec.URL == "") {
			t.Errorf("Resolve(%q) returned incomplete record %+v", tt.key, rec)
		}
	}

	rec, _ := r.Resolve("MCMC_Guideline")
	if rec.APA != "MCMC. (2021). Guideline." {
		t.Errorf("duplicate id should keep first record, got %q", rec.APA)
	}
}

func TestResolveCitation_Nil(t *testing.T) {
	r := NewRegistry(testRecords())
	if _, ok := r.ResolveCitation(nil); ok {
		t.Error("nil citation should be a miss")
	}
	if _, ok := r.ResolveCitation(&model.Citation{Source: "Penang_Code", Page: "4"}); !ok {
		t.Error("expected hit for Penang_Code")
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	if _, ok := r.Resolve("x"); ok {
		t.Error("nil registry should miss")
	}
	if r.Len() != 0 || len(r.All()) != 0 {
		t.Error("nil registry should be empty")
	}
}

func TestAll_DeclarationOrder(t *testing.T) {
	r := NewRegistry(testRecords())
	all := r.All()
	want := []string{"MCMC_Guideline", "Penang_Code", "No_URL"}
	if len(all) != len(want) {
		t.Fatalf("All() = %d records, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("All()[%d] = %s, want %s", i, all[i].ID, id)
		}
	}
}

// A hit always carries non-empty APA and URL.
func TestResolve_HitsAreComplete(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		recs := make([]model.CitationRecord, n)
		for i := range recs {
			recs[i] = model.CitationRecord{
				ID:  rapid.StringMatching(`[A-Z]{1,3}`).Draw(t, "id"),
				APA: rapid.SampledFrom([]string{"", " ", "APA text"}).Draw(t, "apa"),
				URL: rapid.SampledFrom([]string{"", "https://example.test/x"}).Draw(t, "url"),
			}
		}
		r := NewRegistry(recs)
		key := rapid.StringMatching(`[A-Z]{1,3}`).Draw(t, "key")
		if rec, ok := r.Resolve(key); ok {
			if rec.APA == "" || rec.URL == "" {
				t.Fatalf("incomplete hit %+v", rec)
			}
		}
	})
}
