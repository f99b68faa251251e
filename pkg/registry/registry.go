// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// QuestionType identifies the similarity-calculation strategy for a
// question. Dispatch is by this enum, never by the raw type string, so an
// unknown type is a load-time error instead of a silent fallthrough.
type QuestionType int

const (
	TypeUnknown QuestionType = iota
	TypeNumericInterval
	TypeOrdinal
	TypeCategoricalExact
	TypeCategoricalSet
	TypeMultiSelect
	TypeAgeRange
	TypeSameSimilar
	TypeDirectional
	TypeBinary
	TypeAffectionLayers
	TypeConflictStyle
	TypeSleepSchedule
)

var typeNames = map[string]QuestionType{
	"numeric_interval":  TypeNumericInterval,
	"ordinal":           TypeOrdinal,
	"categorical_exact": TypeCategoricalExact,
	"categorical_set":   TypeCategoricalSet,
	"multi_select":      TypeMultiSelect,
	"age_range":         TypeAgeRange,
	"same_similar":      TypeSameSimilar,
	"directional":       TypeDirectional,
	"binary":            TypeBinary,
	"affection_layers":  TypeAffectionLayers,
	"conflict_style":    TypeConflictStyle,
	"sleep_schedule":    TypeSleepSchedule,
}

// Section tags a question into one of the two weighted questionnaire
// sections.
type Section string

const (
	SectionLifestyle   Section = "lifestyle"
	SectionPersonality Section = "personality"
)

// HardFilterRole marks the two designated population pre-filter questions.
type HardFilterRole string

const (
	RoleNone   HardFilterRole = ""
	RoleGender HardFilterRole = "gender"
	RoleAge    HardFilterRole = "age"
)

// QuestionSpec is the registry entry for one question.
type QuestionSpec struct {
	ID              string
	Section         Section
	Type            QuestionType
	Ordinal         map[string]int
	UncertainValues map[string]bool
	HardFilterRole  HardFilterRole
	ScaleMin        float64
	ScaleMax        float64
}

// HardFilter reports whether the question is enforced as a population
// pre-filter rather than a weighted signal.
func (q QuestionSpec) HardFilter() bool {
	return q.HardFilterRole != RoleNone
}

// OrdinalRange returns the span of the encoded ordinal scale, ignoring
// uncertain sentinel values.
func (q QuestionSpec) OrdinalRange() int {
	min, max, seen := 0, 0, false
	for val, enc := range q.Ordinal {
		if q.UncertainValues[val] {
			continue
		}
		if !seen || enc < min {
			min = enc
		}
		if !seen || enc > max {
			max = enc
		}
		seen = true
	}
	return max - min
}

// Registry is the static question registry for one matching run.
type Registry struct {
	Version   string
	questions map[string]QuestionSpec
	order     []string
}

// Get returns the definition for a question id.
func (r *Registry) Get(id string) (QuestionSpec, bool) {
	q, ok := r.questions[id]
	return q, ok
}

// All returns every question spec in stable id order.
func (r *Registry) All() []QuestionSpec {
	out := make([]QuestionSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.questions[id])
	}
	return out
}

// Len returns the number of registered questions.
func (r *Registry) Len() int { return len(r.order) }

// GenderQuestion returns the id of the designated gender hard-filter
// question, or "" when none is registered.
func (r *Registry) GenderQuestion() string { return r.roleQuestion(RoleGender) }

// AgeQuestion returns the id of the designated age hard-filter question.
func (r *Registry) AgeQuestion() string { return r.roleQuestion(RoleAge) }

func (r *Registry) roleQuestion(role HardFilterRole) string {
	for _, id := range r.order {
		if r.questions[id].HardFilterRole == role {
			return id
		}
	}
	return ""
}

// LoadRegistry reads and validates a question registry file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw registry JSON against the schema and builds the
// Registry.
func Parse(data []byte) (*Registry, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(questionFileSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("registry schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		sort.Strings(msgs)
		return nil, fmt.Errorf("registry file invalid: %v", msgs)
	}

	var file QuestionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry file: %w", err)
	}
	return build(file)
}

func build(file QuestionFile) (*Registry, error) {
	reg := &Registry{
		Version:   file.Version,
		questions: make(map[string]QuestionSpec, len(file.Questions)),
	}

	roles := map[HardFilterRole]string{}
	for _, w := range file.Questions {
		if _, dup := reg.questions[w.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", w.ID)
		}

		qt, ok := typeNames[w.Type]
		if !ok {
			return nil, fmt.Errorf("question %q has unknown type %q", w.ID, w.Type)
		}

		spec := QuestionSpec{
			ID:             w.ID,
			Section:        Section(w.Section),
			Type:           qt,
			HardFilterRole: HardFilterRole(w.HardFilterRole),
			ScaleMin:       w.ScaleMin,
			ScaleMax:       w.ScaleMax,
		}
		if spec.ScaleMin == 0 && spec.ScaleMax == 0 {
			// Fixed Likert default.
			spec.ScaleMin, spec.ScaleMax = 1, 5
		}
		if len(w.Ordinal) > 0 {
			spec.Ordinal = make(map[string]int, len(w.Ordinal))
			for k, v := range w.Ordinal {
				spec.Ordinal[k] = v
			}
		}
		if len(w.UncertainValues) > 0 {
			spec.UncertainValues = make(map[string]bool, len(w.UncertainValues))
			for _, v := range w.UncertainValues {
				spec.UncertainValues[v] = true
			}
		}

		switch qt {
		case TypeOrdinal, TypeSameSimilar:
			if qt == TypeOrdinal && len(spec.Ordinal) == 0 {
				return nil, fmt.Errorf("ordinal question %q has no encoding table", w.ID)
			}
		}

		if spec.HardFilterRole != RoleNone {
			if prev, taken := roles[spec.HardFilterRole]; taken {
				return nil, fmt.Errorf("hard filter role %q claimed by both %q and %q",
					spec.HardFilterRole, prev, w.ID)
			}
			roles[spec.HardFilterRole] = w.ID
		}

		reg.questions[w.ID] = spec
		reg.order = append(reg.order, w.ID)
	}

	sort.Strings(reg.order)
	return reg, nil
}
