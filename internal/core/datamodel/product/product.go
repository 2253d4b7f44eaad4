package product

type Product struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Stock    int    `json:"stock"`
	IsActive bool   `json:"isActive"`
}
