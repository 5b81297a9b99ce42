package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseCatalog(t *testing.T) {
	t.Run("templates", func(t *testing.T) {
		templates, err := parseCatalog(strings.NewReader(`
templates:
  - name: Modern
    description: Two column layout
    component_name: modern-resume
    customization_rules:
      primary_color: "#1f2937"
  - name: Classic
    component_name: classic-resume
`))
		require.NoError(t, err)
		require.Len(t, templates, 2)
		assert.Equal(t, "Modern", templates[0].Name)
		assert.Equal(t, "modern-resume", templates[0].ComponentName)
		assert.Equal(t, "#1f2937", templates[0].CustomizationRules["primary_color"])
		assert.Nil(t, templates[1].CustomizationRules)
	})

	t.Run("empty input", func(t *testing.T) {
		templates, err := parseCatalog(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, templates)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := parseCatalog(strings.NewReader("templates:\n  - name: X\n    colour: red\n"))
		assert.Error(t, err)
	})

	t.Run("id is not read from the file", func(t *testing.T) {
		_, err := parseCatalog(strings.NewReader("templates:\n  - id: 7\n    name: X\n"))
		assert.Error(t, err)
	})
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, validateCredentials("ops@example.com", "longenough"))
	assert.Error(t, validateCredentials("ops.example.com", "longenough"))
	assert.Error(t, validateCredentials("ops@example.com", "short"))
	assert.Error(t, validateCredentials("ops@example.com", strings.Repeat("a", 73)))
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"hash-password", "S3cret!pass"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("S3cret!pass")))
}
