/*
Package value defines the property value model shared by vertices, edges,
broadcast payloads and database drivers.

A Value is a closed sum type: Null, String, Number, Bool, List or Map. Maps
are ordered; the insertion order of keys is preserved through cloning, JSON
encoding and decoding. Values are plain data and carry no behavior beyond
construction, inspection, comparison and conversion.

Conversions are provided to and from cty.Value (used by HCL configuration and
expression predicates) and to and from plain Go values (used by database
drivers and JSON-like payloads).
*/
package value
