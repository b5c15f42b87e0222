package config

import (
	"errors"
	"testing"

	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/taxonomy"
	"github.com/cognicore/cinegenre/pkg/cinegenre/textnorm"
)

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{}).Load()
	if err != nil {
		t.Fatalf("Empty loader should succeed: %v", err)
	}

	if comp.Taxonomy.Map("War") != taxonomy.ActionAdventure {
		t.Error("Should use the default taxonomy")
	}

	if got := comp.Normalizer.Normalize("The women and the war", textnorm.Training); got != "woman war" {
		t.Errorf("Normalize = %q, want %q", got, "woman war")
	}

	if comp.Resolver.Len() != 35 {
		t.Errorf("Should use the built-in genre table")
	}
}

func TestLoaderValidFiles(t *testing.T) {
	loader := Loader{
		StoplistPath: writeFile(t, "stoplist.yaml", "terms: [alien]\n"),
		TaxonomyPath: writeFile(t, "taxonomy.yaml", "groups:\n  Space_Opera: [Sci-Fi, Space]\n"),
		LexiconPath:  writeFile(t, "lexicon.yaml", "lemmas:\n  - lemma: robot\n    forms: [robots, droids]\n"),
	}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if comp.Taxonomy.Map("Space") != "Space_Opera" || comp.Taxonomy.Map("War") != taxonomy.Other {
		t.Errorf("Custom taxonomy not applied")
	}

	if got := comp.Normalizer.Normalize("the alien droids", textnorm.Training); got != "the robot" {
		t.Errorf("Normalize = %q, want %q", got, "the robot")
	}

	if comp.Lexicon.Lemma("men") != "man" {
		t.Errorf("Irregular plurals should stay available")
	}
}

func TestLoaderConflictingTaxonomy(t *testing.T) {
	loader := Loader{
		TaxonomyPath: writeFile(t, "taxonomy.yaml", "groups:\n  A: [Drama]\n  B: [Drama]\n"),
	}

	if _, err := loader.Load(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoaderDuplicateTaxonomyGroup(t *testing.T) {
	loader := Loader{
		TaxonomyPath: writeFile(t, "taxonomy.yaml", "groups:\n  \"Dark\": [Noir]\n  \" Dark\": [Gothic]\n"),
	}

	if _, err := loader.Load(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for a repeated group, got %v", err)
	}
}

func TestLoaderNonExistentFiles(t *testing.T) {
	tests := []struct {
		name   string
		loader Loader
	}{
		{"stoplist", Loader{StoplistPath: "/nonexistent/stoplist.yaml"}},
		{"taxonomy", Loader{TaxonomyPath: "/nonexistent/taxonomy.yaml"}},
		{"lexicon", Loader{LexiconPath: "/nonexistent/lexicon.yaml"}},
		{"genre info", Loader{GenreInfoPath: "/nonexistent/genres.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.loader.Load(); err == nil {
				t.Errorf("Should error on nonexistent %s", tt.name)
			}
		})
	}
}
