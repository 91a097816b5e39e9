package tet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptionsAreValid(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.NoError(t, ValidateChoices(FlowerPeach, SubjectSingle))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *AdvancedOptions)
	}{
		{"unknown framing", func(o *AdvancedOptions) { o.Framing = "half" }},
		{"unknown lighting", func(o *AdvancedOptions) { o.Lighting = "neon" }},
		{"unknown companion", func(o *AdvancedOptions) { o.Companion = "dog" }},
		{"blank emotion", func(o *AdvancedOptions) { o.Emotion = "  " }},
		{"blank camera", func(o *AdvancedOptions) { o.CameraModel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			assert.ErrorIs(t, opts.Validate(), ErrInvalidOption)
		})
	}

	t.Run("free text outside catalog", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ShirtColor = "Áo dài tím"
		assert.NoError(t, opts.Validate())
	})
}

func TestValidateChoices(t *testing.T) {
	assert.ErrorIs(t, ValidateChoices("lotus", SubjectSingle), ErrInvalidOption)
	assert.ErrorIs(t, ValidateChoices(FlowerApricot, "crowd"), ErrInvalidOption)
	assert.NoError(t, ValidateChoices(FlowerApricot, SubjectGroup))
}

func TestAspectRatioFor(t *testing.T) {
	assert.Equal(t, "9:16", AspectRatioFor(FramingFullBody))
	assert.Equal(t, "3:4", AspectRatioFor(FramingPortrait))
	assert.Equal(t, "3:4", AspectRatioFor(FramingCloseUp))
}

func TestCatalogDefaults(t *testing.T) {
	c := Catalog()
	assert.Equal(t, DefaultOptions(), c.Defaults)
	assert.Equal(t, FlowerPeach, c.DefaultFlower)
	assert.Equal(t, SubjectSingle, c.DefaultSubject)
	assert.False(t, c.DefaultMergeMode)
	assert.Len(t, c.Framings, 3)
	assert.Len(t, c.Lightings, 4)
	assert.Len(t, c.Companions, 3)
}
