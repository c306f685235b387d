// Package parser reads form definitions from YAML or JSON documents.
//
// A document is either a list of field objects or a mapping with id, name, version and
// fields. Each field carries id, name, type, required, hidden, flat type-specific keys
// (rows, columns, options, min, max, ...) and an optional logic block:
//
//	logic:
//	  conditions:
//	    operatorIdentifier: and
//	    children:
//	      - value:
//	          property_meta: {id: usage, type: matrix}
//	          operator: equals
//	          value: {"15+": Viel}
//	  actions: [require]
//
// The parser records source locations for every node and rejects documents that
// nest conditions deeper than the configured limit or use YAML aliases inside
// condition trees. Operator and action names are normalized (camelCase operator
// aliases, block-style action aliases) but not checked; that is the validator's job.
package parser
