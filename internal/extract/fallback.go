package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"code.sajari.com/docconv"

	"github.com/talentscope/talentscope/internal/types"
)

// FallbackExtractor recovers a candidate record from unstructured documents
// using docconv text extraction plus pattern heuristics. It is the last
// resort when the structured path cannot parse the upload.
type FallbackExtractor struct{}

// Name implements Extractor.
func (*FallbackExtractor) Name() string { return "fallback" }

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	// "Software Engineer, Acme Inc (2020-01 - present)"
	historyRe = regexp.MustCompile(`(?m)^(.{2,80}?),\s*(.{2,80}?)\s*\((\d{4}(?:-\d{2})?)\s*[-–—]\s*(present|current|\d{4}(?:-\d{2})?)\)\s*$`)
)

// Extract implements Extractor.
func (*FallbackExtractor) Extract(_ context.Context, up Upload) (*types.CandidateRecord, error) {
	text, err := extractText(up)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("document contains no text")
	}

	record := &types.CandidateRecord{
		Name:  firstLine(text),
		Email: emailRe.FindString(text),
		Phone: phoneRe.FindString(text),
	}
	record.Skills = parseSkills(text)
	record.WorkHistory = parseHistory(text)
	if len(record.WorkHistory) > 0 {
		latest := record.WorkHistory[0]
		record.Title = latest.Title
		record.Company = latest.Company
	}
	return record, nil
}

// extractText converts the upload to plain text. Binary document formats go
// through docconv; plain text passes through unchanged.
func extractText(up Upload) (string, error) {
	switch strings.ToLower(filepath.Ext(up.Filename)) {
	case ".txt", ".md", "":
		return string(up.Data), nil
	default:
		mime := docconv.MimeTypeByExtension(up.Filename)
		res, err := docconv.Convert(bytes.NewReader(up.Data), mime, true)
		if err != nil {
			return "", fmt.Errorf("failed to convert document: %w", err)
		}
		return res.Body, nil
	}
}

// firstLine treats the first non-empty line as the candidate name, the common
// convention at the top of a resume.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// parseSkills reads a comma- or bullet-separated list following a "Skills"
// heading.
func parseSkills(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.EqualFold(strings.TrimRight(strings.TrimSpace(line), ":"), "skills") {
			continue
		}
		var skills []string
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				break
			}
			for _, part := range strings.FieldsFunc(next, func(r rune) bool {
				return r == ',' || r == ';' || r == '•' || r == '|'
			}) {
				if s := strings.TrimSpace(part); s != "" {
					skills = append(skills, s)
				}
			}
		}
		return skills
	}
	return nil
}

// parseHistory collects work history entries, most recent first as resumes
// conventionally list them.
func parseHistory(text string) []types.WorkHistoryEntry {
	matches := historyRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	entries := make([]types.WorkHistoryEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, types.WorkHistoryEntry{
			Title:     strings.TrimSpace(m[1]),
			Company:   strings.TrimSpace(m[2]),
			StartDate: m[3],
			EndDate:   m[4],
		})
	}
	return entries
}
