package models

// Product is one sellable entry of the restaurant menu.
type Product struct {
	Nombre      string  `json:"nombre"`
	Precio      float64 `json:"precio"`
	Descripcion string  `json:"descripcion,omitempty"`
}

// Menu maps a category slug to its ordered list of products. The menu
// is read-only input for the interpreter; freshness is per call.
type Menu map[string][]Product

// TotalProducts counts products across every category.
func (m Menu) TotalProducts() int {
	total := 0
	for _, products := range m {
		total += len(products)
	}
	return total
}

// Empty reports whether the menu has no products at all.
func (m Menu) Empty() bool {
	return m.TotalProducts() == 0
}
