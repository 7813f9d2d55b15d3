package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "insights"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "INSIGHTS_DB_DSN"
	EnvDBHost = "INSIGHTS_DB_HOST"
	EnvDBUser = "INSIGHTS_DB_USER"
	EnvDBName = "INSIGHTS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
