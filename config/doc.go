// Package config loads apikit configuration from YAML files, .env files and
// the process environment.
//
// Viper reads the file and godotenv the .env file. Client and route
// definitions are decoded through mapstructure tags, so one file can
// describe the logging setup, the API client and its routes:
//
//	name: billing-sync
//	logging:
//	  level: debug
//	client:
//	  base_url: https://api.example.com
//	  timeout: 5s
//	routes:
//	  users:
//	    get: { path: /users/1 }
//
// With WithEnvPrefix("BILLING"), BILLING_CLIENT_TIMEOUT overrides
// client.timeout.
package config
