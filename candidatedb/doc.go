/*
Package candidatedb builds and serves the in-memory candidate database of
spec.md §4.2: five mass-sorted catalogues per decoy flag (linear,
mono-link, self-loop, linkable, and flattened linkable), built once per
run from a peptidesource.Source and a bondmap.BondMap, then queried by
range (binary search on cached monoisotopic mass) for the rest of the
pipeline.

The database owns every Peptide and LinkablePeptide it produces for the
run's lifetime (spec.md §4.2 "Lifecycle"); candidates returned to callers
are borrowed references, never mutated after insertion except for the
lazily populated mass caches and the preliminary-score field.
*/
package candidatedb
