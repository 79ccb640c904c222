package config

const (
	EnvPrefix = "SIMPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "SIMPOS_APP_ENV"
	EnvPort     = "SIMPOS_APP_PORT"
	EnvLogLevel = "SIMPOS_LOG_LEVEL"

	EnvDBDSN    = "SIMPOS_DB_DSN"
	EnvDBDriver = "SIMPOS_DB_DRIVER"
	EnvDBHost   = "SIMPOS_DB_HOST"
	EnvDBPort   = "SIMPOS_DB_PORT"
	EnvDBUser   = "SIMPOS_DB_USER"
	EnvDBPass   = "SIMPOS_DB_PASSWORD"
	EnvDBName   = "SIMPOS_DB_NAME"

	EnvRedisURL = "SIMPOS_REDIS_URL"

	EnvSalesVATRate        = "SIMPOS_SALES_VAT_RATE"
	EnvSalesCreditRestocks = "SIMPOS_SALES_CREDIT_RESTOCKS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
