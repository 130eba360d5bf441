// Package vectorindex stores and queries product and support-document
// embeddings.
//
// Two backends implement the same Index interface: Client talks to a managed
// vector database over REST, and Memory keeps records in-process for
// development and tests. Both evaluate the same operator-map filter dialect
// ($gte, $lte, $gt), built from a FilterSpec by Builder. Metadata helpers
// flatten products into index records (lowercase shadow fields, per-tag
// boolean flags, a content type discriminator) and reconstruct them from
// query matches.
package vectorindex
