package domain

type WishlistSnapshot struct {
	Items []Product `json:"data"`
}

func (w WishlistSnapshot) Contains(productID string) bool {
	for _, p := range w.Items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

func (w WishlistSnapshot) IsEmpty() bool {
	return len(w.Items) == 0
}

func (w WishlistSnapshot) Clone() WishlistSnapshot {
	if w.Items != nil {
		items := make([]Product, len(w.Items))
		copy(items, w.Items)
		w.Items = items
	}
	return w
}
