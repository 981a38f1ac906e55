package membership

// Membership активное членство клиента
type Membership struct {
	CustomerID string `json:"customer_id"`
	Tier       string `json:"tier"`
	Active     bool   `json:"active"`
}
