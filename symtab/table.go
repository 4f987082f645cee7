package symtab

// Table is the multi-map `name -> []Symbol` plus the secondary
// indices spec.md §3 requires: by file, by kind, and the struct field
// / enum bit width / needs-struct-keyword maps the C header collector
// and code generator consult.
//
// Conflicts are computed lazily from the stored vector (GetConflicts),
// never incrementally, so the same input order always produces the
// same conflict list regardless of how AddSymbols was called (spec.md
// §3 invariant).
type Table struct {
	byName map[string][]Symbol
	byFile map[string][]Symbol

	StructFields       map[string]map[string]StructFieldInfo
	EnumBitWidth       map[string]int
	EnumMembers        map[string]map[string]int64
	NeedsStructKeyword map[string]bool

	// insertOrder preserves the sequence AddSymbols calls were made
	// in, independent of map iteration order, so GetConflicts is
	// deterministic.
	insertOrder []string
}

func New() *Table {
	return &Table{
		byName:             make(map[string][]Symbol),
		byFile:             make(map[string][]Symbol),
		StructFields:       make(map[string]map[string]StructFieldInfo),
		EnumBitWidth:       make(map[string]int),
		EnumMembers:        make(map[string]map[string]int64),
		NeedsStructKeyword: make(map[string]bool),
	}
}

// AddSymbols registers every Symbol in syms. Order matters: it is
// preserved for both GetOverloads and GetConflicts.
func (t *Table) AddSymbols(syms []Symbol) {
	for _, s := range syms {
		if _, ok := t.byName[s.Name]; !ok {
			t.insertOrder = append(t.insertOrder, s.Name)
		}
		t.byName[s.Name] = append(t.byName[s.Name], s)
		t.byFile[s.File] = append(t.byFile[s.File], s)
	}
}

// GetOverloads returns every Symbol named name, across all source
// languages, in insertion order.
func (t *Table) GetOverloads(name string) []Symbol {
	return t.byName[name]
}

// GetByFile returns every Symbol declared in path, in insertion order.
func (t *Table) GetByFile(path string) []Symbol {
	return t.byFile[path]
}

// GetByKind filters every known Symbol down to kind k.
func (t *Table) GetByKind(k Kind) []Symbol {
	var out []Symbol
	for _, name := range t.insertOrder {
		for _, s := range t.byName[name] {
			if s.Kind == k {
				out = append(out, s)
			}
		}
	}
	return out
}

// GetConflicts reports, for each name, the set of same-language
// Symbols declared in more than one file (spec.md §3: "within one
// language a name collision is a hard error").
func (t *Table) GetConflicts() []Conflict {
	var conflicts []Conflict
	for _, name := range t.insertOrder {
		byLang := make(map[SourceLanguage][]Symbol)
		var langOrder []SourceLanguage
		for _, s := range t.byName[name] {
			if _, ok := byLang[s.Language]; !ok {
				langOrder = append(langOrder, s.Language)
			}
			byLang[s.Language] = append(byLang[s.Language], s)
		}
		for _, lang := range langOrder {
			syms := byLang[lang]
			files := make(map[string]bool)
			for _, s := range syms {
				files[s.File] = true
			}
			if len(files) > 1 {
				conflicts = append(conflicts, Conflict{Name: name, Language: lang, Symbols: syms})
			}
		}
	}
	return conflicts
}

// RestoreFromCache re-registers symbols that were already validated
// by a Symbol Cache hit (package cache), along with their struct
// field / enum width / needs-struct-keyword metadata, without
// re-parsing the originating header.
func (t *Table) RestoreFromCache(
	syms []Symbol,
	structFields map[string]map[string]StructFieldInfo,
	needsStructKeyword map[string]bool,
	enumBitWidth map[string]int,
	enumMembers map[string]map[string]int64,
) {
	t.AddSymbols(syms)
	for name, fields := range structFields {
		if _, ok := t.StructFields[name]; !ok {
			t.StructFields[name] = make(map[string]StructFieldInfo)
		}
		for fname, info := range fields {
			t.StructFields[name][fname] = info
		}
	}
	for name, needs := range needsStructKeyword {
		t.NeedsStructKeyword[name] = needs
	}
	for name, width := range enumBitWidth {
		t.EnumBitWidth[name] = width
	}
	for name, members := range enumMembers {
		if _, ok := t.EnumMembers[name]; !ok {
			t.EnumMembers[name] = make(map[string]int64)
		}
		for mname, v := range members {
			t.EnumMembers[name][mname] = v
		}
	}
}
