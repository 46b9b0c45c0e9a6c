// Package models contains the GORM persistence models for the host ledger
// tables this service reads and reconciles. They are kept apart from the
// domain types, which carry no ORM tags; each model converts to its domain
// type with ToDomain.
package models
