// Package models contains the GORM models backing the mapping configuration
// store. They are kept apart from the domain entities so the domain stays free
// of ORM tags; ToDomain/FromDomain convert between the two.
//
// Target tables written by the mapping engine have no models: their shape is
// described by configuration and reached through dynamic SQL.
package models
