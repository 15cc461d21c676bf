// Package config assembles runtime settings for the CLI from flags and
// environment variables.
package config

import (
	"github.com/spf13/viper"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/loaders"
)

// Defaults for the MySQL destination. Everything can be overridden via
// FUNDESP_MYSQL_* environment variables or the config file.
const (
	DefaultMySQLPort  = 3306
	DefaultMySQLTable = "despesas_fundos"
)

// MySQLFromEnv builds the warehouse config from viper-bound settings.
func MySQLFromEnv() loaders.MySQLConfig {
	viper.SetDefault("mysql_port", DefaultMySQLPort)
	viper.SetDefault("mysql_table", DefaultMySQLTable)

	return loaders.MySQLConfig{
		Host:     viper.GetString("mysql_host"),
		Port:     viper.GetInt("mysql_port"),
		User:     viper.GetString("mysql_user"),
		Password: viper.GetString("mysql_password"),
		Database: viper.GetString("mysql_database"),
		Table:    viper.GetString("mysql_table"),
	}
}
