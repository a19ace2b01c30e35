package contentkit

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/field"
)

// Documents are encoded with Core Deterministic Encoding so equal content
// always produces identical bytes, and therefore an identical digest.
var (
	docEncMode cbor.EncMode
	docDecMode cbor.DecMode
)

func init() {
	var err error
	docEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("contentkit: CBOR encoder initialization failed: " + err.Error())
	}
	docDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("contentkit: CBOR decoder initialization failed: " + err.Error())
	}
}

// document is the stored body of an entity.
type document struct {
	Title        string                `cbor:"title"`
	Slug         string                `cbor:"slug,omitempty"`
	Excerpt      string                `cbor:"excerpt,omitempty"`
	PrimaryImage string                `cbor:"image,omitempty"`
	Category     *string               `cbor:"category,omitempty"`
	Tags         []string              `cbor:"tags,omitempty"`
	Regions      map[string]regionDoc  `cbor:"regions,omitempty"`
	Blocks       map[string][]blockDoc `cbor:"blocks,omitempty"`
}

type regionDoc struct {
	Collection bool       `cbor:"c,omitempty"`
	Items      []groupDoc `cbor:"i,omitempty"`
}

type groupDoc struct {
	Keyed  bool                `cbor:"k,omitempty"`
	Value  *valueDoc           `cbor:"v,omitempty"`
	Values map[string]valueDoc `cbor:"m,omitempty"`
}

type valueDoc struct {
	Type string     `cbor:"t"`
	Kind field.Kind `cbor:"k,omitempty"`
	Text string     `cbor:"s,omitempty"`
}

type blockDoc struct {
	ID       string              `cbor:"id"`
	Type     string              `cbor:"t"`
	Group    bool                `cbor:"g,omitempty"`
	Fields   map[string]valueDoc `cbor:"f,omitempty"`
	Children []blockDoc          `cbor:"c,omitempty"`
}

// encodeDocument returns the CBOR body of e and its hex blake3 digest.
func encodeDocument(e content.Entity) ([]byte, string, error) {
	doc := document{
		Title:        e.Title,
		Slug:         e.Slug,
		Excerpt:      e.Excerpt,
		PrimaryImage: e.PrimaryImage,
		Tags:         e.TagLabels(),
	}
	if e.Category != nil {
		c := string(*e.Category)
		doc.Category = &c
	}
	if len(e.Regions) > 0 {
		doc.Regions = make(map[string]regionDoc, len(e.Regions))
		for id, rv := range e.Regions {
			rd, err := encodeRegion(rv)
			if err != nil {
				return nil, "", fmt.Errorf("region %s: %w", id, err)
			}
			doc.Regions[id] = rd
		}
	}
	if len(e.Blocks) > 0 {
		doc.Blocks = make(map[string][]blockDoc, len(e.Blocks))
		for id, list := range e.Blocks {
			docs, err := encodeBlocks(list)
			if err != nil {
				return nil, "", fmt.Errorf("section %s: %w", id, err)
			}
			doc.Blocks[id] = docs
		}
	}
	body, err := docEncMode.Marshal(doc)
	if err != nil {
		return nil, "", err
	}
	sum := blake3.Sum256(body)
	return body, hex.EncodeToString(sum[:]), nil
}

func encodeRegion(rv content.RegionValue) (regionDoc, error) {
	switch v := rv.(type) {
	case nil:
		return regionDoc{}, nil
	case content.Single:
		if v.Group == nil {
			return regionDoc{}, nil
		}
		return regionDoc{Items: []groupDoc{encodeGroup(v.Group)}}, nil
	case content.Collection:
		rd := regionDoc{Collection: true}
		for _, g := range v.Items {
			rd.Items = append(rd.Items, encodeGroup(g))
		}
		return rd, nil
	default:
		return regionDoc{}, fmt.Errorf("unsupported region value %T", rv)
	}
}

func encodeGroup(g content.FieldGroup) groupDoc {
	switch v := g.(type) {
	case content.Bare:
		if v.Value == nil {
			return groupDoc{}
		}
		vd := encodeValue(v.Value)
		return groupDoc{Value: &vd}
	case content.Keyed:
		return groupDoc{Keyed: true, Values: encodeValues(v.Values)}
	default:
		return groupDoc{}
	}
}

func encodeValues(values map[string]field.Value) map[string]valueDoc {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]valueDoc, len(values))
	for id, v := range values {
		if v != nil {
			out[id] = encodeValue(v)
		}
	}
	return out
}

func encodeValue(v field.Value) valueDoc {
	switch val := v.(type) {
	case field.Reference:
		return valueDoc{Type: val.Type, Kind: field.KindReference, Text: val.ID}
	case field.Choice:
		return valueDoc{Type: val.Type, Kind: field.KindChoice, Text: strconv.Itoa(val.Code)}
	case field.Scalar:
		return valueDoc{Type: val.Type, Text: val.Text}
	default:
		return valueDoc{Type: v.TypeID()}
	}
}

func encodeBlocks(list []content.Block) ([]blockDoc, error) {
	out := make([]blockDoc, 0, len(list))
	for _, b := range list {
		switch v := b.(type) {
		case content.Leaf:
			out = append(out, blockDoc{ID: v.ID, Type: v.Type, Fields: encodeValues(v.Fields)})
		case content.Group:
			children, err := encodeBlocks(v.Children)
			if err != nil {
				return nil, err
			}
			if len(children) == 0 {
				children = nil
			}
			out = append(out, blockDoc{ID: v.ID, Type: v.Type, Group: true, Fields: encodeValues(v.Fields), Children: children})
		default:
			return nil, fmt.Errorf("unsupported block %T", b)
		}
	}
	return out, nil
}

// decodeDocument fills the document parts of e from body.
func decodeDocument(body []byte, e *content.Entity) error {
	var doc document
	if err := docDecMode.Unmarshal(body, &doc); err != nil {
		return err
	}
	e.Title = doc.Title
	e.Slug = doc.Slug
	e.Excerpt = doc.Excerpt
	e.PrimaryImage = doc.PrimaryImage
	e.Category = nil
	if doc.Category != nil {
		c := content.Taxonomy(*doc.Category)
		e.Category = &c
	}
	e.Tags = nil
	for _, t := range doc.Tags {
		e.Tags = append(e.Tags, content.Taxonomy(t))
	}
	e.Regions = make(map[string]content.RegionValue, len(doc.Regions))
	for id, rd := range doc.Regions {
		rv, err := decodeRegion(rd)
		if err != nil {
			return fmt.Errorf("region %s: %w", id, err)
		}
		e.Regions[id] = rv
	}
	e.Blocks = nil
	if len(doc.Blocks) > 0 {
		e.Blocks = make(map[string][]content.Block, len(doc.Blocks))
		for id, docs := range doc.Blocks {
			list, err := decodeBlocks(docs)
			if err != nil {
				return fmt.Errorf("section %s: %w", id, err)
			}
			e.Blocks[id] = list
		}
	}
	return nil
}

func decodeRegion(rd regionDoc) (content.RegionValue, error) {
	if rd.Collection {
		var items []content.FieldGroup
		for _, gd := range rd.Items {
			g, err := decodeGroup(gd)
			if err != nil {
				return nil, err
			}
			items = append(items, g)
		}
		return content.Collection{Items: items}, nil
	}
	switch len(rd.Items) {
	case 0:
		return content.Single{}, nil
	case 1:
		g, err := decodeGroup(rd.Items[0])
		if err != nil {
			return nil, err
		}
		return content.Single{Group: g}, nil
	default:
		return nil, fmt.Errorf("single region holds %d items", len(rd.Items))
	}
}

func decodeGroup(gd groupDoc) (content.FieldGroup, error) {
	if gd.Keyed {
		values, err := decodeValues(gd.Values)
		if err != nil {
			return nil, err
		}
		return content.Keyed{Values: values}, nil
	}
	if gd.Value == nil {
		return content.Bare{}, nil
	}
	v, err := decodeValue(*gd.Value)
	if err != nil {
		return nil, err
	}
	return content.Bare{Value: v}, nil
}

func decodeValues(docs map[string]valueDoc) (map[string]field.Value, error) {
	out := make(map[string]field.Value, len(docs))
	for id, vd := range docs {
		v, err := decodeValue(vd)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}

func decodeValue(vd valueDoc) (field.Value, error) {
	switch vd.Kind {
	case field.KindReference:
		return field.Reference{Type: vd.Type, ID: vd.Text}, nil
	case field.KindChoice:
		code, err := strconv.Atoi(vd.Text)
		if err != nil {
			return nil, fmt.Errorf("choice %s: %w", vd.Type, err)
		}
		return field.Choice{Type: vd.Type, Code: code}, nil
	default:
		return field.Scalar{Type: vd.Type, Text: vd.Text}, nil
	}
}

func decodeBlocks(docs []blockDoc) ([]content.Block, error) {
	out := make([]content.Block, 0, len(docs))
	for _, bd := range docs {
		fields, err := decodeValues(bd.Fields)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", bd.ID, err)
		}
		if !bd.Group {
			out = append(out, content.Leaf{ID: bd.ID, Type: bd.Type, Fields: fields})
			continue
		}
		var children []content.Block
		if len(bd.Children) > 0 {
			children, err = decodeBlocks(bd.Children)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, content.Group{ID: bd.ID, Type: bd.Type, Fields: fields, Children: children})
	}
	return out, nil
}
