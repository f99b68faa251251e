// pkg/registry/registry_test.go
package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Parse and Validation Tests
// ==========================

func validRegistryJSON(questions string) []byte {
	return []byte(fmt.Sprintf(`{"version": "test", "questions": [%s]}`, questions))
}

func TestParse_ValidFile(t *testing.T) {
	data := validRegistryJSON(`
		{"id": "q_a", "section": "lifestyle", "type": "numeric_interval"},
		{"id": "q_b", "section": "personality", "type": "ordinal",
		 "ordinal": {"low": 0, "high": 1}},
		{"id": "q_gender", "section": "lifestyle", "type": "categorical_exact",
		 "hardFilterRole": "gender"}`)

	reg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "test", reg.Version)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, "q_gender", reg.GenderQuestion())

	q, ok := reg.Get("q_a")
	require.True(t, ok)
	assert.Equal(t, TypeNumericInterval, q.Type)
	assert.Equal(t, 1.0, q.ScaleMin, "Likert default applies when no scale is given")
	assert.Equal(t, 5.0, q.ScaleMax)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{
			name:    "not json",
			data:    []byte("question: yes"),
			wantErr: "registry",
		},
		{
			name:    "no questions",
			data:    []byte(`{"version": "v", "questions": []}`),
			wantErr: "registry file invalid",
		},
		{
			name:    "unknown type rejected by schema",
			data:    validRegistryJSON(`{"id": "q_a", "section": "lifestyle", "type": "telepathic"}`),
			wantErr: "registry file invalid",
		},
		{
			name:    "unknown section",
			data:    validRegistryJSON(`{"id": "q_a", "section": "astrology", "type": "binary"}`),
			wantErr: "registry file invalid",
		},
		{
			name: "duplicate ids",
			data: validRegistryJSON(`
				{"id": "q_a", "section": "lifestyle", "type": "binary"},
				{"id": "q_a", "section": "lifestyle", "type": "binary"}`),
			wantErr: "duplicate question id",
		},
		{
			name:    "ordinal without encoding table",
			data:    validRegistryJSON(`{"id": "q_a", "section": "lifestyle", "type": "ordinal"}`),
			wantErr: "no encoding table",
		},
		{
			name: "hard filter role claimed twice",
			data: validRegistryJSON(`
				{"id": "q_a", "section": "lifestyle", "type": "categorical_exact", "hardFilterRole": "gender"},
				{"id": "q_b", "section": "lifestyle", "type": "categorical_exact", "hardFilterRole": "gender"}`),
			wantErr: "claimed by both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// Registry Behavior Tests
// ==========================

func TestRegistry_AllIsSorted(t *testing.T) {
	reg := Default()
	all := reg.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID, "iteration order must be stable")
	}
}

func TestRegistry_OrdinalRangeSkipsUncertain(t *testing.T) {
	reg := Default()
	q, ok := reg.Get("q_smoking")
	require.True(t, ok)

	// never=0 .. regularly=3; prefer_not_to_say=-1 is a sentinel, not a
	// scale position.
	assert.Equal(t, 3, q.OrdinalRange())
	assert.True(t, q.UncertainValues["prefer_not_to_say"])
}

func TestRegistry_HardFilterRoles(t *testing.T) {
	reg := Default()
	assert.Equal(t, "q_gender", reg.GenderQuestion())
	assert.Equal(t, "q_age_pref", reg.AgeQuestion())

	q, _ := reg.Get("q_gender")
	assert.True(t, q.HardFilter())
	q, _ = reg.Get("q_smoking")
	assert.False(t, q.HardFilter())
}
