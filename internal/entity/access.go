package entity

// AccessRecord is a raw row of the access-control store. The account list is
// either stored as JSON text (RawAccountList) or as a native array
// (AccountNumbers); the authorizer normalizes both into an AccessGrant.
type AccessRecord struct {
	Domain         string
	CompanyName    string
	RawAccountList string
	AccountNumbers []string
	IsActive       bool
}

// AccessGrant is an active company grant with a non-empty account list.
type AccessGrant struct {
	Domain         string
	CompanyName    string
	AccountNumbers []string
	IsActive       bool
}

// Has reports whether accno belongs to the grant. Account numbers are
// compared as strings so leading zeros stay significant.
func (g AccessGrant) Has(accno string) bool {
	for _, a := range g.AccountNumbers {
		if a == accno {
			return true
		}
	}
	return false
}
