package stoplist

import (
	"testing"
)

func TestManagerBasic(t *testing.T) {
	stops := []string{"the", "a", "and"}
	mgr := NewManager(stops)

	if !mgr.IsStop("the") {
		t.Error("'the' should be a stopword")
	}

	if mgr.IsStop("hello") {
		t.Error("'hello' should not be a stopword")
	}
}

func TestManagerNormalizesInput(t *testing.T) {
	mgr := NewManager([]string{" The ", "", "AND"})

	if !mgr.IsStop("the") || !mgr.IsStop("and") {
		t.Error("stop words should be trimmed and lowercased")
	}
	if mgr.Len() != 2 {
		t.Errorf("Expected 2 stopwords, got %d", mgr.Len())
	}
}

func TestManagerAddRemove(t *testing.T) {
	mgr := NewManager([]string{"the"})

	mgr.Add("Test")
	if !mgr.IsStop("test") {
		t.Error("'test' should be stopword after adding")
	}

	mgr.Remove("test")
	if mgr.IsStop("test") {
		t.Error("'test' should not be stopword after removing")
	}
}

func TestManagerAllSorted(t *testing.T) {
	mgr := NewManager([]string{"the", "a", "and"})

	all := mgr.All()
	want := []string{"a", "and", "the"}
	if len(all) != len(want) {
		t.Fatalf("Expected %d stopwords, got %d", len(want), len(all))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, all[i], want[i])
		}
	}
}

func TestEnglishList(t *testing.T) {
	terms := English()
	if len(terms) != 179 {
		t.Errorf("Expected 179 English stop words, got %d", len(terms))
	}

	mgr := NewEnglish()
	for _, w := range []string{"the", "and", "was", "themselves", "wouldn't"} {
		if !mgr.IsStop(w) {
			t.Errorf("%q should be an English stop word", w)
		}
	}
	for _, w := range []string{"murder", "space", "love"} {
		if mgr.IsStop(w) {
			t.Errorf("%q should not be an English stop word", w)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("terms: [unclosed")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
