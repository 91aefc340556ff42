package rules

import (
	"testing"
)

func TestTaxonomyHasNoDuplicateExtensions(t *testing.T) {
	seen := make(map[string]string)

	for _, cat := range Taxonomy {
		for _, sub := range cat.Subs {
			for _, ext := range sub.Extensions {
				dest := cat.Name + "/" + sub.Name
				if prev, ok := seen[ext]; ok {
					t.Errorf("extension %q appears in both %s and %s", ext, prev, dest)
				}
				seen[ext] = dest
			}
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		wantCat string
		wantSub string
		wantOK  bool
	}{
		{name: "pdf", ext: ".pdf", wantCat: "Documents", wantSub: "PDF", wantOK: true},
		{name: "uppercase extension", ext: ".PDF", wantCat: "Documents", wantSub: "PDF", wantOK: true},
		{name: "image", ext: ".jpg", wantCat: "Media", wantSub: "Images", wantOK: true},
		{name: "source code", ext: ".go", wantCat: "Code", wantSub: "Source", wantOK: true},
		{name: "archive", ext: ".zip", wantCat: "Archives", wantSub: "Compressed", wantOK: true},
		{name: "dataset", ext: ".parquet", wantCat: "Data", wantSub: "Datasets", wantOK: true},
		{name: "unknown", ext: ".xyz", wantOK: false},
		{name: "empty", ext: "", wantOK: false},
		{name: "missing dot", ext: "pdf", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Lookup(tt.ext)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.ext, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if d.Category != tt.wantCat || d.Subcategory != tt.wantSub {
				t.Errorf("Lookup(%q) = %s/%s, want %s/%s", tt.ext, d.Category, d.Subcategory, tt.wantCat, tt.wantSub)
			}
		})
	}
}

func TestLookupIsStable(t *testing.T) {
	first, ok := Lookup(".docx")
	if !ok {
		t.Fatal("expected .docx to be classified")
	}
	for i := 0; i < 100; i++ {
		d, ok := Lookup(".docx")
		if !ok || d != first {
			t.Fatalf("Lookup(.docx) changed between calls: %v vs %v", d, first)
		}
	}
}

func TestIsReserved(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "media", want: true},
		{name: "Media", want: true},
		{name: "DOCUMENTS", want: true},
		{name: "folders", want: true},
		{name: "Folders", want: true},
		{name: "misc", want: true},
		{name: "MISC", want: true},
		{name: "vacation-photos", want: false},
		{name: "Images", want: false},
		{name: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReserved(tt.name); got != tt.want {
				t.Errorf("IsReserved(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDestinations(t *testing.T) {
	dests := Destinations()

	var wantLen int
	for _, cat := range Taxonomy {
		wantLen += len(cat.Subs)
	}
	if len(dests) != wantLen {
		t.Errorf("Destinations() returned %d entries, want %d", len(dests), wantLen)
	}

	if dests[0] != "Media/Images" {
		t.Errorf("first destination = %q, want %q", dests[0], "Media/Images")
	}

	found := false
	for _, d := range dests {
		if d == "Documents/PDF" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Destinations() missing Documents/PDF")
	}
}

func TestDestPath(t *testing.T) {
	d := Dest{Category: "Media", Subcategory: "Audio"}
	if got := d.Path(); got != "Media/Audio" {
		t.Errorf("Path() = %q, want %q", got, "Media/Audio")
	}
}
