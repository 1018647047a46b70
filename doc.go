// Package japi provides the field/attribute layer of a JSON:API document
// (de)serialization framework:
//
//   - Typed attribute descriptors (string, integer, float, decimal, fraction,
//     date/time, UUID, boolean, URI, email, dict, list, tuple) that validate,
//     deserialize (wire -> native) and serialize (native -> wire) single
//     resource attributes
//   - Relationship and link descriptors for resource linkage
//   - A registry resolving a schema from a typename, an instance, or a
//     two-element/object identifier
//   - A stable error model via ErrorList (JSON:API error objects with JSON
//     Pointer sources)
//
// Design policy:
//
//   - Keep only shared contracts in the root package; descriptors live under
//     fields/, value checkers under checks/, the schema builder under
//     resource/, YAML declarations under manifest/, and the CLI under
//     cmd/japi.
//   - A JSON value in, a JSON value out: descriptors consume and produce the
//     any-trees DecodeValue yields; transport and persistence stay out of
//     scope.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := resource.New("articles").
//		Attr(fields.Str("title").MinLen(1).RequiredOn(japi.EventPost)).
//		MustBuild()
//
//	doc, err := japi.DecodeValue(body)
//	native, pm, err := s.Deserialize(ctx, doc, japi.DeserializeOpt{Event: japi.EventPost})
package japi
