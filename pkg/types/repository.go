package types

// TypeRepository resolves product component types.
type TypeRepository interface {
	FindType(name string) (*ProductCmptType, bool)
	Supertype(t *ProductCmptType) (*ProductCmptType, bool)
	DeclaredProperties(t *ProductCmptType) []*Property
}

// ProductCmptFinder resolves product components by name.
type ProductCmptFinder interface {
	FindProductCmpt(name string) (*ProductCmpt, bool)
}

// Project is the view of a model that the engines work on.
type Project interface {
	TypeRepository
	ProductCmptFinder

	// ProductCmpts returns every component visible to the project.
	ProductCmpts() []*ProductCmpt
	Settings() ProjectSettings
}
