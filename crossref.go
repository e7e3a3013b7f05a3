package bst

import "strings"

// DefaultMinCrossrefs is how many citing entries it takes for a
// cross-referenced parent to be cited on its own.
const DefaultMinCrossrefs = 2

// expandCrossrefs appends the parents that at least minCrossrefs of the
// cited entries cross-reference, each once, in the order they reach the
// threshold. Parents already cited are not repeated. A crossref naming an
// entry missing from the database is reported and ignored.
func expandCrossrefs(db *Database, citations []string, minCrossrefs int, warnf func(mess string, args ...interface{})) []string {
	cited := make(map[string]bool, len(citations))
	for _, key := range citations {
		cited[strings.ToLower(key)] = true
	}
	counts := make(map[string]int)
	var extra []string
	for _, key := range citations {
		ent, ok := db.Lookup(key)
		if !ok {
			continue
		}
		ref, ok := ent.Fields["crossref"]
		if !ok {
			continue
		}
		parent, ok := db.Lookup(ref)
		if !ok {
			warnf("bad cross reference: entry %q refers to entry %q, which doesn't exist", key, ref)
			continue
		}
		lk := strings.ToLower(parent.Key)
		counts[lk]++
		if counts[lk] >= minCrossrefs && !cited[lk] {
			cited[lk] = true
			extra = append(extra, parent.Key)
		}
	}
	return append(citations[:len(citations):len(citations)], extra...)
}
