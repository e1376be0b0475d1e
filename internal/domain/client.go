package domain

type ClientStatus string

const (
	ClientStatusActive     ClientStatus = "ACTIVE"
	ClientStatusRestricted ClientStatus = "RESTRICTED"
)

// Client is reference data owned by an external management collaborator.
// This core only reads it and maintains the derived Status field.
type Client struct {
	ID     int32        `json:"id"`
	Name   string       `json:"name"`
	Rut    string       `json:"rut"`
	Phone  string       `json:"phone"`
	Email  string       `json:"email"`
	Status ClientStatus `json:"status"`
}

// ClientStatusFor is the single derivation of a client's status. Every
// operation that can change either input (fine create/pay/cancel, loan
// create/return, overdue marking) recomputes status through this function
// rather than duplicating the rule at each call site.
func ClientStatusFor(hasUnpaidFine, hasOverdueLoan bool) ClientStatus {
	if hasUnpaidFine || hasOverdueLoan {
		return ClientStatusRestricted
	}
	return ClientStatusActive
}
