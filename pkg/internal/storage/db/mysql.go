//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/casefile/pkg/configs"
)

func createMySQLDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{DSN: dsn, DefaultStringSize: 255})
}

func init() {
	RegisterDialectorFactory(configs.MySQL, createMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, createMySQLDialector)
}
