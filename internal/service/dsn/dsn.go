package dsn

import (
	"fmt"
	"os"
)

// FromEnv builds the Postgres DSN from DB_* variables. DATABASE_URL wins when set.
func FromEnv() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return build("DB_HOST", "DB_PORT", "DB_USER", "DB_PASS", "DB_NAME")
}

func FromEnvE2E() string {
	return build("DB_HOST_TEST", "DB_PORT_TEST", "DB_USER_TEST", "DB_PASS_TEST", "DB_NAME_TEST")
}

func build(hostKey, portKey, userKey, passKey, nameKey string) string {
	host := os.Getenv(hostKey)
	if host == "" {
		return ""
	}
	port := os.Getenv(portKey)
	user := os.Getenv(userKey)
	pass := os.Getenv(passKey)
	dbname := os.Getenv(nameKey)

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, pass, dbname)
}
