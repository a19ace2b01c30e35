package field

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/contentkit/markdown"
)

// Built-in field type ids.
const (
	TypeString       = "string"
	TypeText         = "text"
	TypeMarkdown     = "markdown"
	TypeNumber       = "number"
	TypeBool         = "bool"
	TypeDate         = "date"
	TypeURL          = "url"
	TypeMedia        = "media"
	TypePage         = "page"
	TypePost         = "post"
	TypeAlignment    = "alignment"
	TypeHeadingLevel = "heading-level"
	TypeImageSize    = "image-size"
)

// DateLayout is the canonical form of date values.
const DateLayout = "2006-01-02"

// RegisterBuiltins registers the field types every installation ships with.
func RegisterBuiltins(r *Registry) error {
	builtins := []struct {
		id   string
		caps Capabilities
	}{
		{TypeString, Capabilities{Component: "TextField", Translatable: true, Normalize: trimmed}},
		{TypeText, Capabilities{Component: "TextArea", Translatable: true}},
		{TypeMarkdown, Capabilities{Component: "MarkdownEditor", Translatable: true, Title: markdownTitle}},
		{TypeNumber, Capabilities{Component: "NumberField", Normalize: normalizeNumber}},
		{TypeBool, Capabilities{Component: "Toggle", Normalize: normalizeBool, Title: noTitle}},
		{TypeDate, Capabilities{Component: "DatePicker", Normalize: normalizeDate}},
		{TypeURL, Capabilities{Component: "UrlField", Normalize: normalizeURL}},
		{TypeMedia, Capabilities{Component: "MediaPicker", Kind: KindReference, Normalize: trimmed}},
		{TypePage, Capabilities{Component: "PagePicker", Kind: KindReference, Normalize: trimmed}},
		{TypePost, Capabilities{Component: "PostPicker", Kind: KindReference, Normalize: trimmed}},
		{TypeAlignment, Capabilities{Component: "Select", Kind: KindChoice, Options: alignmentOptions}},
		{TypeHeadingLevel, Capabilities{Component: "Select", Kind: KindChoice, Options: headingLevelOptions}},
		{TypeImageSize, Capabilities{Component: "Select", Kind: KindChoice, Options: imageSizeOptions}},
	}
	for _, b := range builtins {
		if err := r.Register(b.id, b.caps); err != nil {
			return err
		}
	}
	return nil
}

// StaticOptions returns an option source that yields a copy of opts.
func StaticOptions(opts []Option) func() []Option {
	frozen := append([]Option(nil), opts...)
	return func() []Option {
		return append([]Option(nil), frozen...)
	}
}

func trimmed(raw string) (string, error) {
	return strings.TrimSpace(raw), nil
}

func normalizeNumber(raw string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func normalizeBool(raw string) (string, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(b), nil
}

func normalizeDate(raw string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "mailto" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func markdownTitle(v Value) string {
	if s, ok := v.(Scalar); ok {
		return markdown.PlainText(s.Text)
	}
	return ""
}

func noTitle(Value) string { return "" }

var alignmentOptions = StaticOptions([]Option{
	{Code: 0, Label: "Left"},
	{Code: 1, Label: "Center"},
	{Code: 2, Label: "Right"},
})

var imageSizeOptions = StaticOptions([]Option{
	{Code: 0, Label: "Small"},
	{Code: 1, Label: "Medium"},
	{Code: 2, Label: "Large"},
	{Code: 3, Label: "Full width"},
})

func headingLevelOptions() []Option {
	opts := make([]Option, 0, 6)
	for level := 1; level <= 6; level++ {
		opts = append(opts, Option{Code: level, Label: "Heading " + strconv.Itoa(level)})
	}
	return opts
}
