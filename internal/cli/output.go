package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/reel/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	labelStyle = lipgloss.NewStyle().Bold(true)
)

// printer renders command results as styled text, JSON or YAML
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format}
}

// emit writes v in the structured formats, or calls text for the text format
func (p *printer) emit(v any, text func()) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text()
		return nil
	}
}

type pageOutput struct {
	domain.Page `yaml:",inline"`
	HasNextPage bool `json:"hasNextPage" yaml:"hasNextPage"`
}

func (p *printer) page(page domain.Page) error {
	return p.emit(pageOutput{Page: page, HasNextPage: page.HasNextPage()}, func() {
		for _, e := range page.Items {
			fmt.Fprintln(p.w, titleStyle.Render(e.Title))
			if meta := entryMeta(e); meta != "" {
				fmt.Fprintln(p.w, "  "+meta)
			}
			fmt.Fprintln(p.w, "  "+dimStyle.Render(e.Ref))
		}
		footer := fmt.Sprintf("page %d, %d items of %d", page.Number, len(page.Items), page.TotalCount)
		if page.HasNextPage() {
			footer += fmt.Sprintf(" (next: --page %d)", page.Number+1)
		}
		fmt.Fprintln(p.w, dimStyle.Render(footer))
	})
}

func (p *printer) entry(e domain.CatalogEntry) error {
	return p.emit(e, func() {
		fmt.Fprintln(p.w, titleStyle.Render(e.Title))
		p.field("Status", e.Status.String())
		p.field("Genre", e.Genre)
		p.field("Studio", e.Author)
		p.field("Image", e.Thumbnail)
		p.field("Ref", e.Ref)
		if e.Description != "" {
			fmt.Fprintln(p.w)
			fmt.Fprintln(p.w, e.Description)
		}
	})
}

func (p *printer) episodes(episodes []domain.Episode) error {
	if episodes == nil {
		episodes = []domain.Episode{}
	}
	return p.emit(episodes, func() {
		for _, ep := range episodes {
			line := fmt.Sprintf("%5s  %s", strconv.FormatFloat(ep.Number, 'f', -1, 64), labelStyle.Render(ep.Name))
			if !ep.UploadedAt.IsZero() {
				line += "  " + dimStyle.Render(ep.UploadedAt.Format("2006-01-02"))
			}
			fmt.Fprintln(p.w, line)
			if ep.Details != "" {
				fmt.Fprintln(p.w, "       "+dimStyle.Render(ep.Details))
			}
			fmt.Fprintln(p.w, "       "+dimStyle.Render(ep.Ref))
		}
	})
}

func (p *printer) options(options []domain.FilterOption) error {
	if options == nil {
		options = []domain.FilterOption{}
	}
	return p.emit(options, func() {
		for _, o := range options {
			value := o.Value
			if value == "" {
				value = "-"
			}
			fmt.Fprintf(p.w, "%s  %s\n", labelStyle.Render(o.Label), dimStyle.Render(value))
		}
	})
}

func (p *printer) source(src domain.PlaybackSource) error {
	return p.emit(src, func() {
		fmt.Fprintln(p.w, src.URL)
	})
}

// success prints a confirmation in text mode and v otherwise
func (p *printer) success(v any, msg string) error {
	return p.emit(v, func() {
		fmt.Fprintln(p.w, okStyle.Render("✓")+" "+msg)
	})
}

func (p *printer) field(label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render(label+":"), value)
}

func entryMeta(e domain.CatalogEntry) string {
	meta := ""
	if e.Status != domain.StatusUnknown {
		meta = e.Status.String()
	}
	if e.Genre != "" {
		if meta != "" {
			meta += " | "
		}
		meta += e.Genre
	}
	return meta
}
