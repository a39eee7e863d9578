package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Bird is one species in the quiz dataset.
type Bird struct {
	ID             string  `json:"id"`
	JapaneseName   string  `json:"japanese_name"`
	ScientificName string  `json:"scientific_name"`
	Family         string  `json:"family"`
	Order          string  `json:"order"`
	Description    string  `json:"description,omitempty"`
	Habitat        string  `json:"habitat,omitempty"`
	Images         []Image `json:"images,omitempty"`
}

// Image is a photograph of a bird.
type Image struct {
	ID           string `json:"id"`
	BirdID       string `json:"bird_id,omitempty"`
	URL          string `json:"image_url"`
	Photographer string `json:"photographer,omitempty"`
	License      string `json:"license,omitempty"`
	Active       bool   `json:"-"`
}

// Dataset is the import file format: a list of birds with nested images.
type Dataset struct {
	Birds []Bird `json:"birds"`
}

const schemaURL = "schema://birdquiz/dataset.json"

// schemaDoc describes the import file. Unknown keys are rejected so that a
// misspelled field fails the import instead of silently loading empty values.
const schemaDoc = `{
  "type": "object",
  "required": ["birds"],
  "additionalProperties": false,
  "properties": {
    "birds": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "japanese_name", "scientific_name", "family", "order"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "pattern": "^[^:]+$"},
          "japanese_name": {"type": "string", "minLength": 1},
          "scientific_name": {"type": "string"},
          "family": {"type": "string"},
          "order": {"type": "string"},
          "description": {"type": "string"},
          "habitat": {"type": "string"},
          "images": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "image_url"],
              "additionalProperties": false,
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "image_url": {"type": "string", "minLength": 1},
                "photographer": {"type": "string"},
                "license": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

// Parse validates raw JSON against the dataset schema and decodes it.
// Image.BirdID is filled from the enclosing bird and images are marked active.
func Parse(raw []byte) (*Dataset, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	seen := make(map[string]bool, len(ds.Birds))
	for i := range ds.Birds {
		b := &ds.Birds[i]
		b.JapaneseName = strings.TrimSpace(b.JapaneseName)
		b.Family = strings.TrimSpace(b.Family)
		b.Order = strings.TrimSpace(b.Order)
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate bird id %q", b.ID)
		}
		seen[b.ID] = true
		for j := range b.Images {
			b.Images[j].BirdID = b.ID
			b.Images[j].Active = true
		}
	}
	return &ds, nil
}

// Load reads and parses a dataset from r.
func Load(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(raw)
}

// LoadFile reads and parses the dataset file at path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// ImageCount returns the total number of images across all birds.
func (d *Dataset) ImageCount() int {
	n := 0
	for _, b := range d.Birds {
		n += len(b.Images)
	}
	return n
}

func compileSchema() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaDoc), &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
}
