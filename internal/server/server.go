package server

// Server combines the HTTP servers of the individual resources.
type Server struct {
	SessionServer
}

func NewServer(
	sessionServer SessionServer,
) Server {
	return Server{
		SessionServer: sessionServer,
	}
}
