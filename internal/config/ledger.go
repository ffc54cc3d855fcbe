package config

const (
	LedgerCSV      = "csv"
	LedgerSQLite   = "sqlite"
	LedgerPostgres = "postgres"
)

type Ledger struct {
	Driver     string `env:"LEDGER_DRIVER" envDefault:"csv" validate:"oneof=csv sqlite postgres"`
	Path       string `env:"LEDGER_PATH" envDefault:"purchases.csv"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"trade_pilot.db"`
}
