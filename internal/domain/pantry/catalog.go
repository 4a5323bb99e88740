package pantry

// SubstitutionCatalog maps a lowercase ingredient name to its store-brand
// alternative. It is loaded from configuration at startup.
type SubstitutionCatalog map[string]Substitution

// NewSubstitutionCatalog normalizes the keys of entries.
func NewSubstitutionCatalog(entries map[string]Substitution) SubstitutionCatalog {
	catalog := make(SubstitutionCatalog, len(entries))
	for name, sub := range entries {
		catalog[NormalizeName(name)] = sub
	}
	return catalog
}

// Lookup returns a copy of the substitution registered for the exact
// lowercase ingredient name.
func (c SubstitutionCatalog) Lookup(name string) (*Substitution, bool) {
	sub, ok := c[NormalizeName(name)]
	if !ok {
		return nil, false
	}
	return &sub, true
}
