// Package entry implements the bulk data-entry workflow shared by the
// grade-entry and attendance screens: a row-keyed draft set seeded from the
// last-fetched remote rows, a tolerant score parser, a debounced auto-saver
// and a derived KPI summary.
//
// Drafts are local edit state only; committing them is the owning domain
// service's job (one conflict-tolerant batch upsert keyed by the record's
// natural key). The summary is a pure function of the current draft set and
// is recomputed in full on every call.
package entry
