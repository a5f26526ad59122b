// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requestview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

//go:embed templates/*.html
var templateFiles embed.FS

// TimeLayout formats the Created and Updated footer times.
const TimeLayout = "2006-01-02 15:04:05 MST"

var (
	markdown     goldmark.Markdown
	markdownOnce sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

var templates = template.Must(template.New("requestview").Funcs(template.FuncMap{
	"typeLabel":   TypeLabel,
	"statusLabel": StatusLabel,
	"permissions": Permissions,
	"notes":       Notes,
	"timestamp":   formatTime,
}).ParseFS(templateFiles, "templates/*.html"))

// TypeLabel names a record type for display.
func TypeLabel(kind request.Type) string {
	if kind == request.TypeSpaceCreation {
		return "Space Creation"
	}
	return "Access Request"
}

// StatusLabel names a status for display.
func StatusLabel(status request.Status) string {
	switch status {
	case request.StatusWorkInProgress:
		return "Work in Progress"
	case "":
		return "Unknown"
	}
	text := string(status)
	return strings.ToUpper(text[:1]) + text[1:]
}

// Permissions joins granted permissions for display.
func Permissions(result *request.Result) string {
	if result == nil || len(result.Permissions) == 0 {
		return "N/A"
	}
	return strings.Join(result.Permissions, ", ")
}

// Notes renders work-note comments as markdown, one line per comment.
func Notes(comments []string) (template.HTML, error) {
	if len(comments) == 0 {
		return "", nil
	}
	var source strings.Builder
	for _, comment := range comments {
		source.WriteString("- ")
		source.WriteString(strings.ReplaceAll(comment, "\n", " "))
		source.WriteString("\n")
	}
	var rendered bytes.Buffer
	if err := getMarkdown().Convert([]byte(source.String()), &rendered); err != nil {
		return "", fmt.Errorf("rendering work notes: %w", err)
	}
	return template.HTML(rendered.String()), nil
}

func formatTime(value any) string {
	switch t := value.(type) {
	case time.Time:
		return t.UTC().Format(TimeLayout)
	case *time.Time:
		if t != nil {
			return t.UTC().Format(TimeLayout)
		}
	}
	return "N/A"
}

// recordView is the template data for one card.
type recordView struct {
	request.Request
	RecordType request.Type
	Outcome    string
	Message    string
}

// newRecordView picks the outcome block for record.
func newRecordView(record request.Request) recordView {
	view := recordView{Request: record, RecordType: record.Kind()}
	switch {
	case record.Status == request.StatusCompleted && record.Result != nil:
		view.Outcome = "completed"
	case record.Status == request.StatusFailed:
		view.Outcome = "failed"
		if record.Result != nil && record.Result.Message != "" {
			view.Message = record.Result.Message
		} else {
			view.Message = record.Error
		}
	case record.Status == request.StatusWorkInProgress && record.Result != nil:
		view.Outcome = "work_in_progress"
	case record.Result == nil && record.Error != "":
		view.Outcome = "error"
		view.Message = record.Error
	}
	return view
}

// Render writes one record card.
func Render(w io.Writer, record request.Request) error {
	return templates.ExecuteTemplate(w, "record", newRecordView(record))
}

// EmptyMessage is shown when a filter matches no records.
func EmptyMessage(filter requestindex.Filter) string {
	if filter == "" || filter == requestindex.FilterAll {
		return "No requests found."
	}
	return fmt.Sprintf("No %s requests found.", filter)
}

type listView struct {
	Records []recordView
	Empty   string
}

// RenderList writes the cards for records, which the caller has
// already filtered and ordered.
func RenderList(w io.Writer, records []request.Request, filter requestindex.Filter) error {
	view := listView{Empty: EmptyMessage(filter)}
	for _, record := range records {
		view.Records = append(view.Records, newRecordView(record))
	}
	return templates.ExecuteTemplate(w, "list", view)
}

// RenderString renders one record card to a string.
func RenderString(record request.Request) (string, error) {
	var builder strings.Builder
	if err := Render(&builder, record); err != nil {
		return "", err
	}
	return builder.String(), nil
}
