package snapshot

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/coastwatch-labs/catalog/internal/cdm"
)

const ncmlNamespace = "http://www.unidata.ucar.edu/namespaces/netcdf/ncml-2.2"

type ncmlDoc struct {
	XMLName    xml.Name        `xml:"netcdf"`
	Namespace  string          `xml:"xmlns,attr"`
	Location   string          `xml:"location,attr"`
	Attributes []ncmlAttribute `xml:"attribute"`
	Variables  []ncmlVariable  `xml:"variable"`
}

type ncmlVariable struct {
	Name       string          `xml:"name,attr"`
	Shape      string          `xml:"shape,attr"`
	Type       string          `xml:"type,attr"`
	Attributes []ncmlAttribute `xml:"attribute"`
}

type ncmlAttribute struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:"value,attr"`
}

// StructuralMetadata renders the snapshot as an NcML document.
func (d *Dataset) StructuralMetadata(context.Context) (string, error) {
	doc := ncmlDoc{
		Namespace:  ncmlNamespace,
		Location:   d.url,
		Attributes: ncmlAttributes(d.globals),
	}
	for _, v := range d.vars {
		doc.Variables = append(doc.Variables, ncmlVariable{
			Name:       v.Name,
			Shape:      d.shapeOf(v),
			Type:       d.typeOf(v),
			Attributes: ncmlAttributes(v.Attributes),
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render ncml: %w", err)
	}
	return xml.Header + string(out), nil
}

func (d *Dataset) shapeOf(v *cdm.Variable) string {
	if dims := d.dims[v.Name]; len(dims) > 0 {
		return strings.Join(dims, " ")
	}
	parts := make([]string, len(v.Shape))
	for i, n := range v.Shape {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

func (d *Dataset) typeOf(v *cdm.Variable) string {
	if t := d.types[v.Name]; t != "" {
		return t
	}
	return "double"
}

// ncmlAttributes sorts by name so the document is stable across runs.
func ncmlAttributes(attrs cdm.Attributes) []ncmlAttribute {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ncmlAttribute, 0, len(names))
	for _, name := range names {
		val := attrs[name]
		attr := ncmlAttribute{Name: name, Value: val.String()}
		if _, isString := val.Raw().(string); !isString {
			attr.Type = "double"
		}
		out = append(out, attr)
	}
	return out
}
