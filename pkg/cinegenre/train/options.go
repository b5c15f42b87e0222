package train

import (
	"fmt"

	"github.com/cognicore/cinegenre/pkg/cinegenre/dataset"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/taxonomy"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

// Options controls one evaluation run
type Options struct {
	Variant    string
	TestSize   float64
	Seed       uint64
	Folds      int // cross-validation folds; below 2 disables validation
	MinSupport int
	Models     []string
	Vectorizer vectorize.Options

	// Taxonomy maps secondary labels for flexible accuracy.
	Taxonomy *taxonomy.Taxonomy
	Reporter Reporter
}

// DefaultOptions returns the standard evaluation settings for variant.
func DefaultOptions(variant string) Options {
	return Options{
		Variant:    variant,
		TestSize:   0.2,
		Seed:       42,
		Folds:      5,
		MinSupport: dataset.DefaultMinSupport,
		Models:     append([]string(nil), model.DefaultRoster...),
		Vectorizer: vectorize.DefaultOptions(),
		Taxonomy:   taxonomy.Default(),
	}
}

// Validate checks the options before any work starts.
func (o *Options) Validate() error {
	if o.TestSize <= 0 || o.TestSize >= 1 {
		return fmt.Errorf("%w: test size %v outside (0, 1)", internalerr.ErrInvalidConfig, o.TestSize)
	}
	if o.MinSupport < 0 {
		return fmt.Errorf("%w: negative min support", internalerr.ErrInvalidConfig)
	}
	return model.ValidateRoster(o.Models)
}
