package schema

import (
	"fmt"
	"strings"
)

// DefaultName is the schema used when nothing else is configured.
const DefaultName = "part"

// Part is the tab-delimited nine-field part layout.
var Part = &Schema{
	Name:      "part",
	Delimiter: '\t',
	Fields: []Field{
		{Name: "PARTKEY", Kind: Integer, Searchable: true},
		{Name: "NAME", Kind: Text, Searchable: true},
		{Name: "MFGR", Kind: Text},
		{Name: "BRAND", Kind: Text, Searchable: true},
		{Name: "TYPE", Kind: Text, Searchable: true},
		{Name: "SIZE", Kind: Text},
		{Name: "CONTAINER", Kind: Text},
		{Name: "RETAILPRICE", Kind: Decimal},
		{Name: "COMMENT", Kind: Text},
	},
}

// Universal is the pipe-delimited layout with a quantity column. It is not
// compatible with Part and the two must never share a backing file.
var Universal = &Schema{
	Name:      "universal",
	Delimiter: '|',
	Fields:    universalFields(),
}

// UniversalExtra is Universal plus a trailing free-text EXTRA column.
var UniversalExtra = &Schema{
	Name:      "universal-extra",
	Delimiter: '|',
	Fields:    append(universalFields(), Field{Name: "EXTRA", Kind: Text}),
}

func universalFields() []Field {
	return []Field{
		{Name: "PARTKEY", Kind: Integer, Searchable: true},
		{Name: "NAME", Kind: Text, Searchable: true},
		{Name: "MANUFACTURER", Kind: Text},
		{Name: "BRAND", Kind: Text, Searchable: true},
		{Name: "TYPE", Kind: Text, Searchable: true},
		{Name: "QUANTITY", Kind: Integer},
		{Name: "SIZE", Kind: Text},
		{Name: "PRICE", Kind: Decimal},
		{Name: "DESCRIPTION", Kind: Text},
	}
}

// Builtins returns the schemas compiled into the binary.
func Builtins() []*Schema {
	return []*Schema{Part, Universal, UniversalExtra}
}

// Lookup finds a builtin schema by name.
func Lookup(name string) (*Schema, error) {
	for _, s := range Builtins() {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
}
