package product

// Label is one key/value attribute attached to a catalog product.
type Label struct {
	Key   string
	Value string
}

// Product is a catalog entry returned by the product-search backend. Read-only.
type Product struct {
	name            string
	displayName     string
	productCategory string
	labels          []Label
	score           float64
}

// New creates a product.
func New(name, displayName, category string, labels []Label, score float64) Product {
	return Product{
		name:            name,
		displayName:     displayName,
		productCategory: category,
		labels:          labels,
		score:           score,
	}
}

// Name returns the backend resource name.
func (p *Product) Name() string { return p.name }

// DisplayName returns the human-readable name, possibly empty.
func (p *Product) DisplayName() string { return p.displayName }

// Category returns the product category.
func (p *Product) Category() string { return p.productCategory }

// Labels returns the labels in backend order.
func (p *Product) Labels() []Label { return p.labels }

// Score returns the product-level score carried inside the product object.
func (p *Product) Score() float64 { return p.score }
