package bst

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Person is one decomposed person name. Each part holds the part's words;
// words joined by a hyphen stay together, as in "Smith-Jones".
type Person struct {
	First []string `cbor:"1,keyasint,omitempty"`
	Von   []string `cbor:"2,keyasint,omitempty"`
	Last  []string `cbor:"3,keyasint,omitempty"`
	Jr    []string `cbor:"4,keyasint,omitempty"`
}

// String renders p in the "von Last, Jr, First" form, which ParseName reads
// back into the same parts.
func (p Person) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(append(append([]string(nil), p.Von...), p.Last...), " "))
	if len(p.Jr) > 0 {
		sb.WriteString(", ")
		sb.WriteString(strings.Join(p.Jr, " "))
		sb.WriteString(", ")
		sb.WriteString(strings.Join(p.First, " "))
	} else if len(p.First) > 0 {
		sb.WriteString(", ")
		sb.WriteString(strings.Join(p.First, " "))
	}
	return sb.String()
}

// Entry is one bibliographic record. Field and person role names are
// lower cased when the entry is added to a Database.
type Entry struct {
	Key     string              `cbor:"1,keyasint"`
	Type    string              `cbor:"2,keyasint"`
	Fields  map[string]string   `cbor:"3,keyasint,omitempty"`
	Persons map[string][]Person `cbor:"4,keyasint,omitempty"`
}

// Database is an ordered collection of entries, indexed by key
// case-insensitively, plus the concatenated @preamble text. A Database
// assembled directly from its Entries is indexed on first lookup; Add is
// not safe for concurrent use.
type Database struct {
	Preamble string   `cbor:"1,keyasint,omitempty"`
	Entries  []*Entry `cbor:"2,keyasint,omitempty"`

	index     map[string]*Entry
	indexOnce sync.Once
}

// NewDatabase builds a Database from entries, in order.
func NewDatabase(preamble string, entries ...*Entry) *Database {
	db := &Database{Preamble: preamble}
	for _, ent := range entries {
		db.Add(ent)
	}
	return db
}

// Add appends ent, normalizing its field and role names. An entry whose key
// is already present replaces nothing; the first one wins lookups.
func (db *Database) Add(ent *Entry) {
	db.ensureIndex()
	db.Entries = append(db.Entries, ent)
	db.indexEntry(ent)
}

func (db *Database) indexEntry(ent *Entry) {
	ent.Fields = lowerKeys(ent.Fields)
	ent.Persons = lowerKeys(ent.Persons)
	if db.index == nil {
		db.index = make(map[string]*Entry)
	}
	if lk := strings.ToLower(ent.Key); db.index[lk] == nil {
		db.index[lk] = ent
	}
}

func lowerKeys[V any](m map[string]V) map[string]V {
	for k := range m {
		if lk := strings.ToLower(k); lk != k {
			out := make(map[string]V, len(m))
			for k, v := range m {
				out[strings.ToLower(k)] = v
			}
			return out
		}
	}
	return m
}

func (db *Database) reindex() {
	db.index = nil
	for _, ent := range db.Entries {
		db.indexEntry(ent)
	}
}

// ensureIndex indexes a Database assembled directly from its Entries, the
// first time it is looked into.
func (db *Database) ensureIndex() {
	db.indexOnce.Do(func() {
		if db.index == nil {
			db.reindex()
		}
	})
}

// Lookup finds an entry by key, ignoring case.
func (db *Database) Lookup(key string) (*Entry, bool) {
	if db == nil {
		return nil, false
	}
	db.ensureIndex()
	ent, ok := db.index[strings.ToLower(key)]
	return ent, ok
}

// Parent returns the entry that ent cross-references, if it is present.
func (db *Database) Parent(ent *Entry) (*Entry, bool) {
	ref, ok := ent.Fields["crossref"]
	if !ok {
		return nil, false
	}
	return db.Lookup(ref)
}

// Field returns ent's value for a field. Person roles without a plain field
// value are rendered from their parsed names joined by " and ". Fields the
// entry lacks are inherited from its cross-referenced parent.
func (db *Database) Field(ent *Entry, name string) (string, bool) {
	if s, ok := ownField(ent, name); ok {
		return s, true
	}
	if name == "crossref" {
		return "", false
	}
	if parent, ok := db.Parent(ent); ok && parent != ent {
		return ownField(parent, name)
	}
	return "", false
}

func ownField(ent *Entry, name string) (string, bool) {
	if s, ok := ent.Fields[name]; ok {
		return s, true
	}
	if persons, ok := ent.Persons[name]; ok {
		parts := make([]string, len(persons))
		for i, p := range persons {
			parts[i] = p.String()
		}
		return strings.Join(parts, " and "), true
	}
	return "", false
}

// DatabaseReader supplies the entries for a READ command. Macros holds the
// style's MACRO definitions, lower cased; citations are the requested keys,
// possibly including the "*" wildcard.
type DatabaseReader interface {
	ReadDatabase(ctx context.Context, macros map[string]string, citations []string) (*Database, error)
}

// StaticDatabase serves an already parsed Database, ignoring macros.
type StaticDatabase struct{ *Database }

// ReadDatabase returns the wrapped database.
func (sd StaticDatabase) ReadDatabase(ctx context.Context, _ map[string]string, _ []string) (*Database, error) {
	if sd.Database == nil {
		return NewDatabase(""), nil
	}
	return sd.Database, ctx.Err()
}

// CBORDatabase serves a database encoded by MarshalDatabase. It is decoded
// afresh for every read, so sessions never share entries.
type CBORDatabase []byte

// ReadDatabase decodes the database.
func (data CBORDatabase) ReadDatabase(ctx context.Context, _ map[string]string, _ []string) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return UnmarshalDatabase(data)
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	cborEncMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bst: cbor encoder: %v", err))
	}
	cborDecMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("bst: cbor decoder: %v", err))
	}
}

// MarshalDatabase encodes db as canonical CBOR, so equal databases encode
// to equal bytes.
func MarshalDatabase(db *Database) ([]byte, error) {
	data, err := cborEncMode.Marshal(db)
	if err != nil {
		return nil, fmt.Errorf("encoding database: %w", err)
	}
	return data, nil
}

// UnmarshalDatabase decodes a database encoded by MarshalDatabase.
func UnmarshalDatabase(data []byte) (*Database, error) {
	var db Database
	if err := cborDecMode.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("decoding database: %w", err)
	}
	db.reindex()
	return &db, nil
}
