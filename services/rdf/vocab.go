// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rdf

// Base namespaces used throughout validation reports, shapes graphs,
// and the xSHACL ontology.
const (
	// NamespaceSHACL is the W3C SHACL vocabulary namespace.
	NamespaceSHACL = "http://www.w3.org/ns/shacl#"

	// NamespaceRDF is the RDF syntax namespace.
	NamespaceRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// NamespaceRDFS is the RDF Schema namespace.
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"

	// NamespaceXSD is the XML Schema datatypes namespace.
	NamespaceXSD = "http://www.w3.org/2001/XMLSchema#"

	// NamespaceXSH is the xSHACL ontology namespace for domain rules
	// and cached violation signatures.
	NamespaceXSH = "http://xshacl.org/#"
)

// Validation report terms. These are the predicates a SHACL processor
// emits on each sh:ValidationResult in the report graph.
const (
	SHValidationResult         = NamespaceSHACL + "ValidationResult"
	SHFocusNode                = NamespaceSHACL + "focusNode"
	SHSourceShape              = NamespaceSHACL + "sourceShape"
	SHSourceConstraintComponent = NamespaceSHACL + "sourceConstraintComponent"
	SHResultPath               = NamespaceSHACL + "resultPath"
	SHValue                    = NamespaceSHACL + "value"
	SHResultMessage            = NamespaceSHACL + "resultMessage"
	SHResultSeverity           = NamespaceSHACL + "resultSeverity"
)

// Shape constraint parameter terms. The tree builder reads these from the
// shapes graph to interpolate the configured constraint values into
// inference text.
const (
	SHPath             = NamespaceSHACL + "path"
	SHMinCount         = NamespaceSHACL + "minCount"
	SHMaxCount         = NamespaceSHACL + "maxCount"
	SHDatatype         = NamespaceSHACL + "datatype"
	SHClass            = NamespaceSHACL + "class"
	SHNodeKind         = NamespaceSHACL + "nodeKind"
	SHMinExclusive     = NamespaceSHACL + "minExclusive"
	SHMinInclusive     = NamespaceSHACL + "minInclusive"
	SHMaxExclusive     = NamespaceSHACL + "maxExclusive"
	SHMaxInclusive     = NamespaceSHACL + "maxInclusive"
	SHPattern          = NamespaceSHACL + "pattern"
	SHFlags            = NamespaceSHACL + "flags"
	SHEquals           = NamespaceSHACL + "equals"
	SHDisjoint         = NamespaceSHACL + "disjoint"
	SHLessThan         = NamespaceSHACL + "lessThan"
	SHLessThanOrEquals = NamespaceSHACL + "lessThanOrEquals"
	SHNot              = NamespaceSHACL + "not"
	SHAnd              = NamespaceSHACL + "and"
	SHOr               = NamespaceSHACL + "or"
	SHXone             = NamespaceSHACL + "xone"
)

// Common RDF(S) terms.
const (
	RDFType     = NamespaceRDF + "type"
	RDFSComment = NamespaceRDFS + "comment"
)

// xSHACL ontology terms for domain rules attached to properties.
const (
	XSHAppliesToProperty = NamespaceXSH + "appliesToProperty"
)
