// Package security holds the TLS settings of API client transports.
//
//	client:
//	  tls:
//	    ca_file: /etc/ssl/internal-ca.pem
//	    min_version: "1.3"
package security
