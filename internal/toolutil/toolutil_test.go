package toolutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		wantMsg  string
	}{
		{"invalid", fmt.Errorf("analyze: %w", roadmap.ErrInvalidInput), KindInvalidInput, "analyze: invalid input"},
		{"not found", fmt.Errorf("career 9: %w", roadmap.ErrNotFound), KindNotFound, "career 9: not found"},
		{"duplicate", fmt.Errorf("skill Go: %w", roadmap.ErrDuplicate), KindConflict, "skill Go: already exists"},
		{"ambiguous", fmt.Errorf("roadmap: %w", engine.ErrExtractionAmbiguous), KindModel, "model returned invalid structure"},
		{"invalid structure", fmt.Errorf("roadmap: %w", engine.ErrInvalidStructure), KindModel, "model returned invalid structure"},
		{"other", errors.New("dial tcp: connection refused"), KindInternal, "roadmap_generate failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("roadmap_generate", tt.err)
			var te *ToolError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.wantKind, te.Kind)
			assert.Equal(t, tt.wantMsg, te.Msg)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyPassthrough(t *testing.T) {
	assert.NoError(t, Classify("x", nil))

	in := Required("title", "")
	assert.Same(t, in, Classify("x", in))
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("title", "Go"))
	err := Required("title", "   ")
	require.Error(t, err)
	assert.Equal(t, "invalid_input: title is required", err.Error())

	assert.NoError(t, RequiredID("career_id", 1))
	assert.EqualError(t, RequiredID("career_id", 0), "invalid_input: career_id must be a positive id")
}

func TestSkillList(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL", "Docker", "k8s"}, SkillList([]string{"Go", " SQL, Docker", ""}, "k8s,"))
	assert.Empty(t, SkillList(nil, " , "))
}
