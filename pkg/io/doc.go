// Package io reads and writes family files.
//
// A family file holds a [family.Snapshot] as JSON or TOML. The format is
// picked from the file extension (.json, .toml); [FormatFromPath] exposes
// that rule.
//
// # JSON Format
//
//	{
//	  "people": [
//	    {"id": "1", "first_name": "Иван", "last_name": "Иванов", "birth_date": "1950-01-01"}
//	  ],
//	  "relationships": [
//	    {"id": "r1", "person1_id": "1", "person2_id": "2", "type": "spouse", "meta": "ex-wife"}
//	  ]
//	}
//
// # TOML Format
//
//	[[people]]
//	id = "1"
//	first_name = "Иван"
//	last_name = "Иванов"
//
//	[[relationships]]
//	id = "r1"
//	person1_id = "1"
//	person2_id = "2"
//	type = "spouse"
//
// Readers reject duplicate person or relationship IDs and unknown
// relationship types. References to missing people are accepted; the
// layout engine reports and skips them.
//
// [family.Snapshot]: github.com/firemesscode/drevorod/pkg/family.Snapshot
package io
