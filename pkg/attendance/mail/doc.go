// Package mail delivers rendered attendance reports. It provides an SMTP
// sender with implicit TLS, a preview sender that writes reports to disk,
// and a Notifier that turns delivery failures into log entries.
package mail
