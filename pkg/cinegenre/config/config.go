package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/cinegenre/pkg/cinegenre/genreinfo"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/lexicon"
	"github.com/cognicore/cinegenre/pkg/cinegenre/stoplist"
)

// Taxonomy represents the taxonomy configuration. Groups keep the order in
// which the file declares them.
type Taxonomy struct {
	Groups []Group
}

// Group is one named set of raw labels
type Group struct {
	Name   string
	Labels []string
}

// LoadTaxonomy loads taxonomy from a YAML file
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes a document of the form `groups: {name: [labels]}`.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var doc struct {
		Groups yaml.Node `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	tax := &Taxonomy{}
	if doc.Groups.Kind == 0 {
		return tax, nil
	}
	if doc.Groups.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: groups must be a mapping (line %d)", internalerr.ErrInvalidConfig, doc.Groups.Line)
	}

	for i := 0; i+1 < len(doc.Groups.Content); i += 2 {
		key, value := doc.Groups.Content[i], doc.Groups.Content[i+1]
		var labels []string
		if err := value.Decode(&labels); err != nil {
			return nil, fmt.Errorf("%w: group %q: %v", internalerr.ErrInvalidConfig, key.Value, err)
		}
		tax.Groups = append(tax.Groups, Group{Name: key.Value, Labels: labels})
	}
	return tax, nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	terms, err := stoplist.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Stoplist{Terms: terms}, nil
}

// LoadLexicon loads a lemma lexicon from a YAML file
func LoadLexicon(path string) (*lexicon.Lexicon, error) {
	return lexicon.LoadFromYAML(path)
}

// LoadGenreInfo loads genre display metadata from a YAML file
func LoadGenreInfo(path string) (map[string]genreinfo.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return genreinfo.Parse(data)
}
