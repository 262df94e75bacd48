package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "smkpro"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SMKPRO_DB_DSN"
	EnvDBHost = "SMKPRO_DB_HOST"
	EnvDBUser = "SMKPRO_DB_USER"
	EnvDBName = "SMKPRO_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
