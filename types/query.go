package types

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

// QueryLeaseRequest asks for the state of a lease.
type QueryLeaseRequest struct {
	Lease string `json:"lease"`
}

// QueryLeasesOfRequest asks for the leases of a customer.
type QueryLeasesOfRequest struct {
	Customer string `json:"customer"`
}

// QueryLeasesOfResponse lists lease addresses in ascending order.
type QueryLeasesOfResponse struct {
	Leases []string `json:"leases"`
}
