package constants

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreMemory   StoreDriver = "memory"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-Id"
)
