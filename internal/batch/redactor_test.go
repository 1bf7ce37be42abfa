package batch

import (
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRedactor_Defaults(t *testing.T) {
	redactor, err := buildRedactor(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, blur.DefaultStrength, redactor.Config().Strength)
	assert.True(t, redactor.Config().AutoDetect)
	assert.Len(t, redactor.Catalog().Areas, 5)
}

func TestBuildRedactor_SelectedAreas(t *testing.T) {
	config := DefaultConfig()
	config.Areas = []string{"totals"}

	redactor, err := buildRedactor(config)
	require.NoError(t, err)

	require.Len(t, redactor.Catalog().Areas, 1)
	assert.Equal(t, layout.LabelTotals, redactor.Catalog().Areas[0].Label)
}

func TestBuildRedactor_MissingLayout(t *testing.T) {
	config := DefaultConfig()
	config.Layout = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := buildRedactor(config)
	require.Error(t, err)
}
