package config

const (
	EnvPrefix = "COFFEEPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "COFFEEPOS_APP_ENV"
	EnvPort     = "COFFEEPOS_APP_PORT"
	EnvTimezone = "COFFEEPOS_APP_TIMEZONE"

	EnvDBDSN  = "COFFEEPOS_DB_DSN"
	EnvDBHost = "COFFEEPOS_DB_HOST"
	EnvDBUser = "COFFEEPOS_DB_USER"
	EnvDBName = "COFFEEPOS_DB_NAME"

	EnvCommandTimeout = "COFFEEPOS_DB_COMMAND_TIMEOUT"

	EnvRedisURL = "COFFEEPOS_REDIS_URL"

	EnvJWTSecret  = "COFFEEPOS_JWT_SECRET"
	EnvJWTExpMins = "COFFEEPOS_JWT_EXPIRATION_MINUTES"

	EnvAdminPass   = "COFFEEPOS_ADMIN_PASS"
	EnvBaristaPass = "COFFEEPOS_BARISTA_PASS"

	EnvPubSubOrdersTopic = "COFFEEPOS_PUBSUB_ORDERS_TOPIC"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
