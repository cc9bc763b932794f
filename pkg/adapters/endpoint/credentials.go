package endpoint

import "github.com/DariaPPPPPP/rhizomerAPI/pkg/models"

// WithCredentials returns credentials for a username/password pair, or nil
// when either half is missing so the request goes out unauthenticated.
func WithCredentials(username, password string) *Credentials {
	if username == "" || password == "" {
		return nil
	}
	return &Credentials{Username: username, Password: password}
}

// QueryScope builds the scope for a query against the endpoint.
// extraGraphs are added for this call only; the endpoint is not modified.
func QueryScope(ep *models.Endpoint, extraGraphs ...string) Scope {
	graphs := make([]string, 0, len(ep.Graphs)+len(extraGraphs))
	graphs = append(graphs, ep.Graphs...)
	for _, g := range extraGraphs {
		if g == "" || contains(graphs, g) {
			continue
		}
		graphs = append(graphs, g)
	}

	return Scope{
		URL:         ep.QueryURL,
		Graphs:      graphs,
		Credentials: WithCredentials(ep.QueryUsername, ep.QueryPassword),
	}
}

// UpdateScope builds the scope for an update against the endpoint.
// Updates name their target graph in the request text, so no graphs are set.
func UpdateScope(ep *models.Endpoint) Scope {
	return Scope{
		URL:         ep.UpdateTarget(),
		Credentials: WithCredentials(ep.UpdateUsername, ep.UpdatePassword),
	}
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
