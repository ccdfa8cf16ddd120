package shopify

// Product is the platform product resource. Tags is the platform's
// comma-separated representation.
type Product struct {
	ID          int64       `json:"id,omitempty"`
	Title       string      `json:"title"`
	BodyHTML    string      `json:"body_html"`
	Vendor      string      `json:"vendor,omitempty"`
	ProductType string      `json:"product_type,omitempty"`
	Handle      string      `json:"handle,omitempty"`
	Tags        string      `json:"tags,omitempty"`
	Status      string      `json:"status,omitempty"`
	Variants    []Variant   `json:"variants,omitempty"`
	Images      []Image     `json:"images,omitempty"`
	Metafields  []Metafield `json:"metafields,omitempty"`
}

// Variant carries the single price/quantity variant this pipeline manages.
type Variant struct {
	ID                int64  `json:"id,omitempty"`
	SKU               string `json:"sku,omitempty"`
	Barcode           string `json:"barcode,omitempty"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// Image is one listing image.
type Image struct {
	ID       int64  `json:"id,omitempty"`
	Src      string `json:"src"`
	Position int    `json:"position,omitempty"`
}

// Metafield is a namespaced, typed key/value on the listing.
type Metafield struct {
	ID        int64  `json:"id,omitempty"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

type productEnvelope struct {
	Product Product `json:"product"`
}

type productListEnvelope struct {
	Products []Product `json:"products"`
}

type imageEnvelope struct {
	Image Image `json:"image"`
}

type imageListEnvelope struct {
	Images []Image `json:"images"`
}
