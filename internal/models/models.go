package models

// Image is one entry of a product's ordered image list.
type Image struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Product is the catalog data referenced by a line item. The upstream API
// resolves the reference on every cart read; a product deleted server-side
// comes back as a nil reference, not an error.
type Product struct {
	ID     string  `json:"id"`
	Name   string  `json:"productName"`
	Price  float64 `json:"price"`
	Images []Image `json:"images"`
}

// LineItem is one product+quantity pairing in a user's cart. ID is issued by
// the server and stays stable across re-fetches until the item is removed.
type LineItem struct {
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Clone returns a deep copy detached from any shared product data.
func (li LineItem) Clone() LineItem {
	out := li
	if li.Product != nil {
		p := *li.Product
		if li.Product.Images != nil {
			p.Images = make([]Image, len(li.Product.Images))
			copy(p.Images, li.Product.Images)
		}
		out.Product = &p
	}
	return out
}

// CloneItems deep-copies a cart snapshot.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, li := range items {
		out[i] = li.Clone()
	}
	return out
}
