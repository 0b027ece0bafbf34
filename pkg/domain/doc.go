// Package domain contains the core domain entities of the application: users
// and the range scans they request. The types are free of infrastructure
// concerns so they can be shared across packages.
package domain
