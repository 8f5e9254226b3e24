// Package component manages long-lived apikit resources such as API
// clients. httpclient.Component adapts a Client to it.
package component
