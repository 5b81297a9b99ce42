package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumePatchApply(t *testing.T) {
	tmpl := int64(1)
	r := &Resume{FullName: "Ada", Email: "ada@example.com", Summary: "old", TemplateID: &tmpl}

	name := "Ada Lovelace"
	ResumePatch{FullName: &name}.Apply(r)

	assert.Equal(t, "Ada Lovelace", r.FullName)
	assert.Equal(t, "ada@example.com", r.Email)
	assert.Equal(t, "old", r.Summary)
	require.NotNil(t, r.TemplateID)
	assert.Equal(t, int64(1), *r.TemplateID)

	empty := ""
	other := int64(2)
	patch := ResumePatch{Summary: &empty, TemplateID: &other}
	patch.Apply(r)
	assert.Equal(t, "", r.Summary)
	assert.Equal(t, int64(2), *r.TemplateID)

	other = 3
	assert.Equal(t, int64(2), *r.TemplateID, "patch value is copied, not aliased")

	assert.True(t, ResumePatch{}.Empty())
	assert.False(t, patch.Empty())
}

func TestResumeInputDefaults(t *testing.T) {
	in := ResumeInput{
		ResumeFields: ResumeFields{FullName: "Ada", Email: "ada@example.com"},
		Skills:       []SkillInput{{Keywords: []string{" go ", "sql"}}},
		Experiences:  []ExperienceInput{{StartDate: NewDate(2020, time.January, 1)}},
	}
	require.NoError(t, in.Validate())

	r := in.ToResume("user-1")
	assert.Equal(t, "user-1", r.UserID)
	require.Len(t, r.Skills, 1)
	assert.Equal(t, DefaultSkillName, r.Skills[0].Name)
	assert.Equal(t, DefaultSkillLevel, r.Skills[0].Level)
	assert.Equal(t, []string{"go", "sql"}, r.Skills[0].Keywords)

	require.Len(t, r.Experiences, 1)
	e := r.Experiences[0]
	assert.Equal(t, DefaultExperienceName, e.Name)
	assert.Equal(t, DefaultExperiencePosition, e.Position)
	assert.Equal(t, DefaultExperienceURL, e.URL)
	assert.Nil(t, e.EndDate)
}

func TestExperienceInputValidate(t *testing.T) {
	start := NewDate(2021, time.June, 1)
	before := NewDate(2021, time.May, 31)
	same := start

	assert.ErrorIs(t, ExperienceInput{}.Validate(), ErrMissingStartDate)
	assert.ErrorIs(t, ExperienceInput{StartDate: start, EndDate: &before}.Validate(), ErrInvalidDateRange)
	assert.NoError(t, ExperienceInput{StartDate: start, EndDate: &same}.Validate())
	assert.ErrorIs(t, ExperienceInput{StartDate: start, Highlights: []string{"  "}}.Validate(), ErrBlankListItem)
}

func TestListLimit(t *testing.T) {
	keywords := strings.Split(strings.Repeat("k,", MaxListItems), ",") // 51 entries, last one empty
	assert.ErrorIs(t, SkillInput{Keywords: keywords}.Validate(), ErrTooManyListItems)
	assert.NoError(t, SkillInput{Keywords: keywords[:MaxListItems]}.Validate())
}

func TestDateJSON(t *testing.T) {
	var e ExperienceInput
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2020-02-29","end_date":null}`), &e))
	assert.Equal(t, NewDate(2020, time.February, 29), e.StartDate)
	assert.Nil(t, e.EndDate)

	out, err := json.Marshal(Experience{StartDate: NewDate(2020, time.February, 29)})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"start_date":"2020-02-29"`)
	assert.Contains(t, string(out), `"end_date":null`)

	assert.Error(t, json.Unmarshal([]byte(`{"start_date":"29/02/2020"}`), &e))
}
