package client

const (
	EventClientCreated         = "ClientCreated"
	EventClientUpdated         = "ClientUpdated"
	EventClientDeleted         = "ClientDeleted"
	EventClientStatusProjected = "ClientStatusProjected"
)
