package provider

import "github.com/nextlevelbuilder/dictaflow/internal/awscred"

// Auth is the tagged auth variant an active session carries. Exactly one of
// the concrete types below is used per session.
type Auth interface {
	authVariant()
}

// BearerAuth authenticates with a static "Authorization: Bearer" token.
type BearerAuth struct {
	Token string
}

// HeaderAuth authenticates with the custom x-api-key header scheme.
type HeaderAuth struct {
	Token string
}

// SigningAuth authenticates by signing each request with AWS credentials.
type SigningAuth struct {
	Credentials awscred.Credentials
}

func (BearerAuth) authVariant()  {}
func (HeaderAuth) authVariant()  {}
func (SigningAuth) authVariant() {}

// Session is the resolved, immutable runtime shape derived from exactly one
// configuration: everything needed to authenticate and address a request.
// Sessions are replaced, never mutated, so concurrent readers always see a
// complete value.
type Session struct {
	Provider ID
	Model    string
	Region   string // set for Bedrock sessions
	Endpoint string // full request URL
	Auth     Auth
}
