// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
)

// EndpointSecurityConfig maps "METHOD /route/template" (gorilla/mux path templates) to the
// required security level. Routes not listed here require an access token.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health
	"GET /healthz": SecurityPublic,

	// Auth - Public
	"POST /api/auth/register": SecurityPublic,
	"POST /api/auth/login":    SecurityPublic,

	// Auth - Refresh Protected
	"POST /api/auth/refresh": SecurityRefresh,

	// Called by Meta: GET checks the verify token, POST checks X-Hub-Signature-256 against the app secret
	"GET /api/instagram/webhook":  SecurityPublic,
	"POST /api/instagram/webhook": SecurityPublic,

	// Mock storage routes carry their own upload token
	"PUT /api/media/mock/{key:.+}": SecurityPublic,
	"GET /api/media/mock/{key:.+}": SecurityPublic,

	// Avatar URLs are embedded in <img> tags
	"GET /api/media/avatars/{id}": SecurityPublic,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
