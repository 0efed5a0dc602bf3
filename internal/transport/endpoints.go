package transport

// Backend REST endpoints, relative to the API base URL.
const (
	EndpointLogin          = "/auth/login/"
	EndpointRegister       = "/auth/register/"
	EndpointLogout         = "/auth/logout/"
	EndpointProfile        = "/auth/profile/"
	EndpointChangePassword = "/auth/change-password/"
	EndpointDeleteAccount  = "/auth/delete-account/"
	EndpointTokenRefresh   = "/auth/token/refresh/"
)
