package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Passes(t *testing.T) {
	var v Validator
	err := v.Required("title", "African New Year").
		MaxLen("title", "African New Year", 200).
		Email("email", "thandi@example.com").
		Date("date", "2024-09-23").
		Slug("slug", "african-new-year").
		OneOf("type", "cultural", "cultural", "lunar").
		Custom("tags", false, "never").
		Err()

	assert.NoError(t, err)
}

func TestValidator_CollectsAllFailures(t *testing.T) {
	var v Validator
	err := v.Required("title", "   ").
		MaxLen("content", strings.Repeat("ü", 6), 5).
		Email("email", "not-an-email").
		Date("date", "2024-02-30").
		Slug("slug", "Not A Slug").
		OneOf("type", "solar", "cultural", "lunar").
		Custom("tags", true, "Too many tags").
		Err()

	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))

	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	assert.Equal(t, []string{"title", "content", "email", "date", "slug", "type", "tags"}, fields)
	assert.Contains(t, err.Error(), "type: Must be one of: cultural, lunar")
}

func TestValidator_MaxLenCountsRunes(t *testing.T) {
	var v Validator
	assert.NoError(t, v.MaxLen("name", "Neb-Hét", 7).Err())
}
