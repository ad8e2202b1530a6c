// tokenmanager/constants.go
package tokenmanager

// OAuth2 grant types accepted by the token endpoint.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeJWTBearer         = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	GrantTypeTokenExchange     = "urn:ietf:params:oauth:grant-type:token-exchange"
)

// Subject types for the client-credentials and JWT-bearer grants.
const (
	SubjectTypeEnterprise = "enterprise"
	SubjectTypeUser       = "user"
)

// Token type identifiers used in token-exchange requests.
const (
	TokenTypeAccessToken = "urn:ietf:params:oauth:token-type:access_token"
	TokenTypeIDToken     = "urn:ietf:params:oauth:token-type:id_token"
)
