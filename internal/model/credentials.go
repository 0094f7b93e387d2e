package model

// Credentials is the closed set of authentication variants accepted by the
// single Authenticate entry point.
type Credentials interface {
	isCredentials()
}

// LocalCredentials authenticates against a stored password hash.
type LocalCredentials struct {
	Username string
	Password string
}

func (LocalCredentials) isCredentials() {}

// FederatedIdentity authenticates by a provider-asserted subject. Hints are
// captured at first login only; repeat logins never overwrite stored fields.
type FederatedIdentity struct {
	Provider       string
	ProviderUserID string
	Hints          ProfileHints
}

func (FederatedIdentity) isCredentials() {}

// ProfileHints carries optional profile data supplied by a provider.
type ProfileHints struct {
	DisplayName string
	AvatarURL   string
}
