// pkg/registry/schema.go
package registry

// QuestionFile is the on-disk shape of the versioned question registry.
type QuestionFile struct {
	Version     string         `json:"version"`
	LastUpdated string         `json:"lastUpdated"`
	Questions   []QuestionWire `json:"questions"`
}

// QuestionWire is one question entry as stored in the registry file.
type QuestionWire struct {
	ID              string         `json:"id"`
	DisplayName     string         `json:"displayName,omitempty"`
	Section         string         `json:"section"`
	Type            string         `json:"type"`
	Ordinal         map[string]int `json:"ordinal,omitempty"`
	UncertainValues []string       `json:"uncertainValues,omitempty"`
	HardFilterRole  string         `json:"hardFilterRole,omitempty"`
	ScaleMin        float64        `json:"scaleMin,omitempty"`
	ScaleMax        float64        `json:"scaleMax,omitempty"`
}

// questionFileSchema validates the registry file before any entry is parsed.
// A registry that fails this schema is a startup failure, the same class as
// an out-of-range tunable.
const questionFileSchema = `{
  "type": "object",
  "required": ["version", "questions"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "section", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "displayName": {"type": "string"},
          "section": {"type": "string", "enum": ["lifestyle", "personality"]},
          "type": {
            "type": "string",
            "enum": [
              "numeric_interval", "ordinal", "categorical_exact",
              "categorical_set", "multi_select", "age_range",
              "same_similar", "directional", "binary",
              "affection_layers", "conflict_style", "sleep_schedule"
            ]
          },
          "ordinal": {
            "type": "object",
            "additionalProperties": {"type": "integer"}
          },
          "uncertainValues": {
            "type": "array",
            "items": {"type": "string"}
          },
          "hardFilterRole": {"type": "string", "enum": ["gender", "age"]},
          "scaleMin": {"type": "number"},
          "scaleMax": {"type": "number"}
        }
      }
    }
  }
}`
