// Package schema defines the positional field layouts a part file can use.
//
// A Schema pairs a delimiter with an ordered list of typed fields. The
// delimiter and layout are configuration, not code: the tab-delimited Part
// layout and the pipe-delimited Universal layouts are different Schema
// values driving the same store.
//
// # Field positions
//
// The default Part schema maps field names to positions as
//
//	PARTKEY:0 NAME:1 MFGR:2 BRAND:3 TYPE:4 SIZE:5 CONTAINER:6 RETAILPRICE:7 COMMENT:8
//
// Only fields marked Searchable may be used as search criteria. For Part
// those are PARTKEY, NAME, BRAND and TYPE.
package schema
