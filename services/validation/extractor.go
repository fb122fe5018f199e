// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/AleutianAI/xshacl/services/rdf"
)

// Constraint component name patterns, matched against the full component
// IRI to classify a result into the violation taxonomy.
var (
	cardinalityRe  = regexp.MustCompile(`(MinCount|MaxCount)Constraint`)
	valueTypeRe    = regexp.MustCompile(`(Datatype|Class|NodeKind)Constraint`)
	valueRangeRe   = regexp.MustCompile(`(MinExclusive|MinInclusive|MaxExclusive|MaxInclusive)Constraint`)
	patternRe      = regexp.MustCompile(`PatternConstraint`)
	propertyPairRe = regexp.MustCompile(`(Equals|Disjoint|LessThanOrEquals|LessThan)Constraint`)
	logicalRe      = regexp.MustCompile(`(Not|And|Or|Xone)Constraint`)
)

// Extractor converts a SHACL validation report graph into detailed
// ConstraintViolation values.
//
// The shapes graph is consulted to recover constraint parameters (such as
// the configured sh:minCount) that the report itself does not repeat.
type Extractor struct {
	shapes *rdf.Graph
	logger *slog.Logger
}

// NewExtractor creates an extractor over the given shapes graph.
// A nil logger falls back to slog.Default().
func NewExtractor(shapes *rdf.Graph, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{shapes: shapes, logger: logger}
}

// Extract walks every sh:ValidationResult in the report and returns the
// violations it could fully decode, in deterministic (sorted result
// subject) order.
//
// A result missing a required field is skipped with a warning; extraction
// never fails a run outright.
func (e *Extractor) Extract(report *rdf.Graph) []ConstraintViolation {
	results := report.Subjects(rdf.RDFType, rdf.SHValidationResult)

	violations := make([]ConstraintViolation, 0, len(results))
	for _, result := range results {
		v, err := e.processResult(report, result)
		if err != nil {
			e.logger.Warn("skipping validation result",
				"result", result,
				"error", err.Error(),
			)
			continue
		}
		violations = append(violations, v)
	}

	e.logger.Info("extracted violations",
		"results", len(results),
		"violations", len(violations),
	)
	return violations
}

// processResult decodes a single validation result node.
func (e *Extractor) processResult(report *rdf.Graph, result string) (ConstraintViolation, error) {
	focusNode, ok := report.FirstObject(result, rdf.SHFocusNode)
	if !ok {
		return ConstraintViolation{}, fmt.Errorf("result %s: %w", result, ErrMissingFocusNode)
	}
	sourceShape, ok := report.FirstObject(result, rdf.SHSourceShape)
	if !ok {
		return ConstraintViolation{}, fmt.Errorf("result %s: %w", result, ErrMissingSourceShape)
	}
	component, ok := report.FirstObject(result, rdf.SHSourceConstraintComponent)
	if !ok {
		return ConstraintViolation{}, fmt.Errorf("result %s: %w", result, ErrMissingConstraintComponent)
	}

	v := ConstraintViolation{
		FocusNode:     focusNode.String(),
		ShapeID:       sourceShape.String(),
		ConstraintID:  component.String(),
		ViolationType: ClassifyConstraint(component.String()),
		Severity:      "Violation",
		Context:       make(map[string]string),
	}

	if path, ok := report.FirstObject(result, rdf.SHResultPath); ok {
		v.PropertyPath = StringPtr(path.String())
	}
	if value, ok := report.FirstObject(result, rdf.SHValue); ok {
		v.Value = StringPtr(value.String())
	}
	if message, ok := report.FirstObject(result, rdf.SHResultMessage); ok {
		v.Message = StringPtr(message.String())
	}
	if severity, ok := report.FirstObject(result, rdf.SHResultSeverity); ok {
		v.Severity = iriFragment(severity.String())
	}

	e.addConstraintContext(&v)
	return v, nil
}

// ClassifyConstraint maps a constraint component IRI to its taxonomy
// category. Unrecognized components classify as TypeOther.
func ClassifyConstraint(constraintID string) ViolationType {
	switch {
	case cardinalityRe.MatchString(constraintID):
		return TypeCardinality
	case valueTypeRe.MatchString(constraintID):
		return TypeValueType
	case valueRangeRe.MatchString(constraintID):
		return TypeValueRange
	case patternRe.MatchString(constraintID):
		return TypePattern
	case propertyPairRe.MatchString(constraintID):
		return TypePropertyPair
	case logicalRe.MatchString(constraintID):
		return TypeLogical
	default:
		return TypeOther
	}
}

// addConstraintContext fills v.Context with the constraint parameters
// configured on the source shape. Only populated where the tree builder
// and signature need them; everything else stays derivable from the
// shapes graph.
func (e *Extractor) addConstraintContext(v *ConstraintViolation) {
	switch v.ViolationType {
	case TypeCardinality:
		if strings.Contains(v.ConstraintID, "MinCountConstraintComponent") {
			if o, ok := e.shapes.FirstObject(v.ShapeID, rdf.SHMinCount); ok {
				v.Context["minCount"] = o.String()
			}
			// Some validators attach the observed count as sh:value. A
			// min-count failure has no offending value to report, so a
			// numeric sh:value here can only be a count. Max-count
			// results may carry the offending value itself, so their
			// count is left to a data-graph recount downstream.
			if v.Value != nil {
				if _, err := strconv.Atoi(*v.Value); err == nil {
					v.Context["actualCount"] = *v.Value
				}
			}
		} else if strings.Contains(v.ConstraintID, "MaxCountConstraintComponent") {
			if o, ok := e.shapes.FirstObject(v.ShapeID, rdf.SHMaxCount); ok {
				v.Context["maxCount"] = o.String()
			}
		}
	case TypePattern:
		if o, ok := e.shapes.FirstObject(v.ShapeID, rdf.SHPattern); ok {
			v.Context["pattern"] = o.String()
		}
		if o, ok := e.shapes.FirstObject(v.ShapeID, rdf.SHFlags); ok {
			v.Context["flags"] = o.String()
		}
	}
}

// iriFragment returns the part after '#', or the whole value when it has
// no fragment. sh:Violation becomes "Violation".
func iriFragment(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 && i+1 < len(iri) {
		return iri[i+1:]
	}
	return iri
}
