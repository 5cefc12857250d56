package http_server

import "strings"

// DomainMapper maps a login domain to the domain used for data access.
// Several login domains may share one data-access identity.
type DomainMapper map[string]string

func NewDomainMapper(aliases map[string]string) DomainMapper {
	m := make(DomainMapper, len(aliases))
	for from, to := range aliases {
		m[normDomain(from)] = normDomain(to)
	}
	return m
}

func (m DomainMapper) Map(domain string) string {
	d := normDomain(domain)
	if to, ok := m[d]; ok && to != "" {
		return to
	}
	return d
}

func normDomain(d string) string { return strings.ToLower(strings.TrimSpace(d)) }
