package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCharacterMap(t *testing.T) {
	t.Run("正常なJSON配列から読み込めること", func(t *testing.T) {
		data := []byte(`[
			{"category": "Political Ideology", "attribute": "liberalism", "description": "Individual liberty and equality."}
		]`)
		m, err := ParseCharacterMap(data)
		require.NoError(t, err)
		require.Len(t, m, 1)
		assert.Equal(t, "liberalism", m[0].Attribute)
		assert.Equal(t, []string{"liberalism"}, m.Attributes())
	})

	t.Run("空配列は ErrEmptyCharacterMap になること", func(t *testing.T) {
		_, err := ParseCharacterMap([]byte(`[]`))
		assert.ErrorIs(t, err, ErrEmptyCharacterMap)
	})

	t.Run("属性のない Belief は拒否されること", func(t *testing.T) {
		_, err := ParseCharacterMap([]byte(`[{"category": "x", "description": "y"}]`))
		assert.Error(t, err)
	})

	t.Run("不正なJSONでエラーになること", func(t *testing.T) {
		_, err := ParseCharacterMap([]byte(`{ invalid`))
		assert.Error(t, err)
	})
}

func TestCharacterMap_Clone(t *testing.T) {
	orig := CharacterMap{{Category: "c", Attribute: "a", Description: "d"}}
	cloned := orig.Clone()
	cloned[0].Attribute = "changed"
	assert.Equal(t, "a", orig[0].Attribute)
}

func TestPhilosopherSet(t *testing.T) {
	set := PhilosopherSet{Philosophers: []Philosopher{
		{Name: "Albert Camus", Summary: "Life is absurd."},
		{Name: "Ayn Rand", Summary: "Rational self-interest."},
	}}

	assert.NoError(t, set.Validate(2))
	assert.Error(t, set.Validate(10))
	assert.Equal(t, []string{"Albert Camus", "Ayn Rand"}, set.Names())
	assert.Equal(t, "1. Albert Camus: Life is absurd.\n2. Ayn Rand: Rational self-interest.", set.String())

	blank := PhilosopherSet{Philosophers: []Philosopher{{Name: "X"}}}
	assert.Error(t, blank.Validate(1))
}

func TestStageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("story 2: %w", GenerationFailure(StagePlotSynthesis, cause))

	assert.ErrorIs(t, err, ErrGenerationFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSchemaViolation)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, StagePlotSynthesis, FailedStage(err))
	assert.Contains(t, err.Error(), "plot_synthesis")

	layout := LayoutFailure(cause)
	assert.ErrorIs(t, layout, ErrLayoutFailure)
	assert.False(t, IsRetryable(layout))
	assert.Equal(t, Stage(""), FailedStage(cause))
}
