package extract

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

const structuredResume = `{
	"name": "Jane Doe",
	"email": "jane@example.com",
	"company": "Acme Inc",
	"title": "Software Engineer",
	"skills": ["Go", "SQL"],
	"work_history": [
		{"title": "Software Engineer", "company": "Acme Inc", "start_date": "2021-03", "end_date": "present"}
	]
}`

const textResume = `Jane Doe
jane@example.com
+1 555 123 4567

Skills:
Go, Python, SQL

Experience

Software Engineer, Acme Inc (2021-03 - present)
Backend Developer, Globex Corp (2018-01 - 2021-01)
`

func TestPrimaryExtractor_StructuredResume(t *testing.T) {
	record, err := (&PrimaryExtractor{}).Extract(context.Background(), Upload{
		Filename: "jane.json",
		Data:     []byte(structuredResume),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", record.Name)
	assert.Equal(t, "Acme Inc", record.Company)
	assert.Len(t, record.WorkHistory, 1)
}

func TestPrimaryExtractor_RejectsUnstructured(t *testing.T) {
	_, err := (&PrimaryExtractor{}).Extract(context.Background(), Upload{
		Filename: "resume.txt",
		Data:     []byte(textResume),
	})
	assert.Error(t, err)
}

func TestPrimaryExtractor_RequiresName(t *testing.T) {
	_, err := (&PrimaryExtractor{}).Extract(context.Background(), Upload{
		Filename: "anon.json",
		Data:     []byte(`{"email": "x@example.com"}`),
	})
	assert.Error(t, err)
}

func TestFallbackExtractor_PlainText(t *testing.T) {
	record, err := (&FallbackExtractor{}).Extract(context.Background(), Upload{
		Filename: "resume.txt",
		Data:     []byte(textResume),
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", record.Name)
	assert.Equal(t, "jane@example.com", record.Email)
	assert.NotEmpty(t, record.Phone)
	assert.Equal(t, []string{"Go", "Python", "SQL"}, record.Skills)

	require.Len(t, record.WorkHistory, 2)
	assert.Equal(t, "Software Engineer", record.WorkHistory[0].Title)
	assert.Equal(t, "Acme Inc", record.WorkHistory[0].Company)
	assert.Equal(t, "2021-03", record.WorkHistory[0].StartDate)
	assert.Equal(t, "present", record.WorkHistory[0].EndDate)

	// The most recent entry fills the top-level title and company.
	assert.Equal(t, "Software Engineer", record.Title)
	assert.Equal(t, "Acme Inc", record.Company)
}

func TestFallbackExtractor_EmptyDocument(t *testing.T) {
	_, err := (&FallbackExtractor{}).Extract(context.Background(), Upload{
		Filename: "blank.txt",
		Data:     []byte("   \n  "),
	})
	assert.Error(t, err)
}

func TestChain_PrefersStructured(t *testing.T) {
	chain := NewChain(testLogger())
	record, err := chain.Extract(context.Background(), Upload{
		Filename: "jane.json",
		Data:     []byte(structuredResume),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", record.Name)
	assert.Equal(t, "jane.json", record.SourceFile)
}

func TestChain_FallsBackToText(t *testing.T) {
	chain := NewChain(testLogger())
	record, err := chain.Extract(context.Background(), Upload{
		Filename: "resume.txt",
		Data:     []byte(textResume),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", record.Name)
	assert.Equal(t, "resume.txt", record.SourceFile)
}

func TestChain_AllExtractorsFail(t *testing.T) {
	chain := NewChain(testLogger())
	_, err := chain.Extract(context.Background(), Upload{
		Filename: "blank.txt",
		Data:     []byte(""),
	})
	assert.Error(t, err)
}
