package block

import "github.com/eringen/contentkit/field"

// Built-in block type ids.
const (
	TypeText    = "TextBlock"
	TypeHeading = "HeadingBlock"
	TypeImage   = "ImageBlock"
	TypeQuote   = "QuoteBlock"
	TypeButton  = "ButtonBlock"
	TypeGallery = "GalleryBlock"
	TypeColumns = "ColumnsBlock"
)

// RegisterBuiltins registers the block types every installation ships with.
func RegisterBuiltins(r *Registry) error {
	builtins := []Type{
		{
			ID: TypeText, Title: "Text", Category: "text",
			Rendering: Specific, Component: "TextBlock",
			Fields: []field.Def{
				{ID: "text", Title: "Text", Type: field.TypeMarkdown},
			},
			TitleField: "text", Icon: "paragraph", Width: 12,
		},
		{
			ID: TypeHeading, Title: "Heading", Category: "text",
			Rendering: Generic,
			Fields: []field.Def{
				{ID: "text", Title: "Text", Type: field.TypeString},
				{ID: "level", Title: "Level", Type: field.TypeHeadingLevel, HalfWidth: true},
				{ID: "anchor", Title: "Anchor", Type: field.TypeString, HalfWidth: true},
			},
			TitleField: "text", Icon: "heading", Width: 12,
		},
		{
			ID: TypeImage, Title: "Image", Category: "media",
			Rendering: Specific, Component: "ImageBlock",
			Fields: []field.Def{
				{ID: "image", Title: "Image", Type: field.TypeMedia},
				{ID: "caption", Title: "Caption", Type: field.TypeString},
				{ID: "size", Title: "Size", Type: field.TypeImageSize, HalfWidth: true},
			},
			TitleField: "caption", Icon: "image", Width: 6,
		},
		{
			ID: TypeQuote, Title: "Quote", Category: "text",
			Rendering: Generic,
			Fields: []field.Def{
				{ID: "quote", Title: "Quote", Type: field.TypeText},
				{ID: "author", Title: "Author", Type: field.TypeString, HalfWidth: true},
				{ID: "align", Title: "Alignment", Type: field.TypeAlignment, HalfWidth: true},
			},
			TitleField: "quote", Icon: "quote", Width: 12,
		},
		{
			ID: TypeButton, Title: "Button", Category: "layout",
			Rendering: Generic,
			Fields: []field.Def{
				{ID: "label", Title: "Label", Type: field.TypeString},
				{ID: "url", Title: "Link", Type: field.TypeURL},
				{ID: "align", Title: "Alignment", Type: field.TypeAlignment, HalfWidth: true},
			},
			TitleField: "label", Icon: "link", Width: 4,
		},
		{
			ID: TypeGallery, Title: "Gallery", Category: "media",
			Kind: Group, Rendering: Generic,
			Fields: []field.Def{
				{ID: "title", Title: "Title", Type: field.TypeString},
			},
			TitleField: "title",
			Children:   []string{TypeImage},
			Icon:       "images", Width: 12,
		},
		{
			ID: TypeColumns, Title: "Columns", Category: "layout",
			Kind: Group, Rendering: Generic,
			Fields: []field.Def{
				{ID: "heading", Title: "Heading", Type: field.TypeString},
			},
			TitleField: "heading", Icon: "columns", Width: 12,
		},
	}
	for _, t := range builtins {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
