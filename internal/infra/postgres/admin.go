package postgres

// Admin bundles the catalog and question writers behind one value for the
// admin endpoints.
type Admin struct {
	*Catalog
	*QuestionLoader
}

func NewAdmin(catalog *Catalog, loader *QuestionLoader) *Admin {
	return &Admin{Catalog: catalog, QuestionLoader: loader}
}
